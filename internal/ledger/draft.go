package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyProducts  = errors.New("draft has no products")
	ErrInvalidProduct = errors.New("invalid product entry")
)

// Draft is the unvalidated proposed order the conversation layer
// extracts from the customer's message.
type Draft struct {
	Customer     string    `json:"customer"`
	Products     []Product `json:"products"`
	DeliveryTime string    `json:"delivery_time"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
}

// Validate rejects structurally malformed drafts before any rule or
// summation runs on them.
func (d Draft) Validate() error {
	if len(d.Products) == 0 {
		return ErrEmptyProducts
	}
	for i, p := range d.Products {
		if p.Name == "" {
			return fmt.Errorf("%w: product %d has no name", ErrInvalidProduct, i+1)
		}
		if p.Quantity <= 0 {
			return fmt.Errorf("%w: product %q has non-positive quantity", ErrInvalidProduct, p.Name)
		}
		if p.Price.IsNegative() {
			return fmt.Errorf("%w: product %q has negative price", ErrInvalidProduct, p.Name)
		}
	}
	return nil
}
