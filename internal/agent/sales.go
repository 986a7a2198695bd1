package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/yexhin/cookie-customer-service/internal/ledger"
	"github.com/yexhin/cookie-customer-service/internal/timeutil"
)

const menuText = `Here is our menu:
- Cookies Matcha: $5 per jar (15 cookies)
- Cookies Chocolate: $5 per jar (15 cookies)

To place an order, send your name, the cookies you want and how many,
the delivery time, your address and phone number.`

const msgDraftIncomplete = "Sorry, I couldn't read that order. Please list at least one product with a quantity and price."

const msgBadDeliveryTime = "Sorry, I couldn't understand that delivery time. Could you give it like 01.01.2025 14:00?"

// SalesHandler introduces the menu and turns structured drafts into
// placed orders.
type SalesHandler struct {
	ledger *ledger.Ledger
}

func NewSalesHandler(l *ledger.Ledger) *SalesHandler {
	return &SalesHandler{ledger: l}
}

func (h *SalesHandler) Handle(ctx context.Context, st *ledger.State, text string) (string, error) {
	return menuText, nil
}

// PlaceDraft is the structured entry the conversational model calls
// once it has extracted the order fields from the customer's message.
func (h *SalesHandler) PlaceDraft(ctx context.Context, st *ledger.State, draft ledger.Draft) (string, error) {
	res, err := h.ledger.PlaceOrder(ctx, st, draft)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrEmptyProducts), errors.Is(err, ledger.ErrInvalidProduct):
			return msgDraftIncomplete, nil
		case errors.Is(err, timeutil.ErrInvalidTimeFormat):
			return msgBadDeliveryTime, nil
		default:
			return "", err
		}
	}
	if res.Order == nil {
		return res.Message, nil
	}
	return fmt.Sprintf("%s Your order %s will be delivered to %s at %s. Subtotal (no shipping): $%s.",
		res.Message, res.Order.OrderID, res.Order.Address, res.Order.DeliveryTime, res.Order.Subtotal.String()), nil
}
