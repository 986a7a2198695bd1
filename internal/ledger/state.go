package ledger

import (
	"github.com/shopspring/decimal"
)

// Product is one line item of an order.
type Product struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Order is one purchase. Times are stored in the canonical
// timeutil.Layout text form, matching what customers see.
type Order struct {
	OrderID       string          `json:"order_id"`
	CustomerName  string          `json:"customer_name"`
	Phone         string          `json:"phone"`
	Address       string          `json:"address"`
	Products      []Product       `json:"products"`
	DeliveryTime  string          `json:"delivery_time"`
	PurchasedTime string          `json:"purchased_time"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// History actions recorded for ledger mutations and conversation turns.
const (
	ActionPurchase      = "purchase_product"
	ActionCancel        = "cancel_order"
	ActionReorder       = "reorder"
	ActionUserQuery     = "user_query"
	ActionAgentResponse = "agent_response"
)

// HistoryEntry is one append-only audit record. Entries are never
// mutated or removed once appended.
type HistoryEntry struct {
	Action    string            `json:"action"`
	OrderID   string            `json:"order_id,omitempty"`
	Timestamp string            `json:"timestamp"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// Profile is the per-session customer profile.
type Profile struct {
	Name string `json:"name"`
}

// State is the whole session state blob: the order ledger, the
// interaction history and the customer profile. Operations mutate it in
// place; the caller persists it as a unit after a successful turn.
type State struct {
	Orders             []Order        `json:"orders"`
	InteractionHistory []HistoryEntry `json:"interaction_history"`
	UserProfile        Profile        `json:"user_profile"`
}

// DefaultState is the state a fresh or reset session starts with.
func DefaultState() *State {
	return &State{
		Orders:             []Order{},
		InteractionHistory: []HistoryEntry{},
		UserProfile:        Profile{Name: "guest"},
	}
}
