package agent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yexhin/cookie-customer-service/internal/ledger"
	"github.com/yexhin/cookie-customer-service/internal/timeutil"
)

const (
	msgNoOrders      = "You haven't placed any order yet. You could check our menu to choose what you would love to first 🤩."
	msgOrderNotFound = "Sorry, we couldn't find that order."
	msgBadStoredTime = "Delivery time format invalid."
	msgRefundOK      = "Refund is acceptable and will be solved in 12 hours."
	msgRefundDenied  = "Sorry. The refund is denied."
	msgNeedTime      = "Sure, I can reorder your last order. What delivery time would you like?"
)

// OrderHandler serves tracking, cancellation, refunds and reorders.
type OrderHandler struct {
	ledger *ledger.Ledger
}

func NewOrderHandler(l *ledger.Ledger) *OrderHandler {
	return &OrderHandler{ledger: l}
}

func (h *OrderHandler) Handle(ctx context.Context, st *ledger.State, text string) (string, error) {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "cancel"):
		return h.cancel(ctx, st, extractOrderID(text))
	case strings.Contains(lower, "reorder"):
		return h.reorder(ctx, st, afterKeyword(text, "reorder"))
	case strings.Contains(lower, "refund"):
		return h.refund(ctx, st, extractOrderID(text))
	default:
		return h.track(ctx, st, extractOrderID(text))
	}
}

func (h *OrderHandler) track(ctx context.Context, st *ledger.State, orderID string) (string, error) {
	order, err := h.ledger.Track(ctx, st, orderID)
	if err != nil {
		return lookupFailure(err)
	}
	return fmt.Sprintf("Your order %s is on going. We will deliver to %s at %s.",
		order.OrderID, order.Address, order.DeliveryTime), nil
}

// cancel reports refund eligibility together with the cancellation, as
// the shop always tells the customer whether money comes back.
func (h *OrderHandler) cancel(ctx context.Context, st *ledger.State, orderID string) (string, error) {
	refund, err := h.ledger.Refund(ctx, st, orderID)
	refundNote := ""
	switch {
	case err == nil && refund.Eligible:
		refundNote = " " + msgRefundOK
	case err == nil:
		refundNote = " " + msgRefundDenied
	case errors.Is(err, timeutil.ErrInvalidTimeFormat):
		refundNote = " " + msgBadStoredTime
	default:
		return lookupFailure(err)
	}

	order, err := h.ledger.Cancel(ctx, st, orderID)
	if err != nil {
		return lookupFailure(err)
	}
	return fmt.Sprintf("Your order %s has been cancelled.%s", order.OrderID, refundNote), nil
}

func (h *OrderHandler) refund(ctx context.Context, st *ledger.State, orderID string) (string, error) {
	res, err := h.ledger.Refund(ctx, st, orderID)
	if err != nil {
		if errors.Is(err, timeutil.ErrInvalidTimeFormat) {
			return msgBadStoredTime, nil
		}
		return lookupFailure(err)
	}
	if res.Eligible {
		return msgRefundOK, nil
	}
	return msgRefundDenied, nil
}

func (h *OrderHandler) reorder(ctx context.Context, st *ledger.State, deliveryTime string) (string, error) {
	if strings.TrimSpace(deliveryTime) == "" {
		return msgNeedTime, nil
	}
	order, err := h.ledger.Reorder(ctx, st, deliveryTime)
	if err != nil {
		if errors.Is(err, timeutil.ErrInvalidTimeFormat) {
			return msgBadDeliveryTime, nil
		}
		return lookupFailure(err)
	}
	return fmt.Sprintf("We have successfully placed the new order %s, same as your previous one, for delivery at %s.",
		order.OrderID, order.DeliveryTime), nil
}

// lookupFailure maps the ledger's sentinel errors onto user-facing
// messages; anything else propagates and aborts the turn.
func lookupFailure(err error) (string, error) {
	switch {
	case errors.Is(err, ledger.ErrNoOrders):
		return msgNoOrders, nil
	case errors.Is(err, ledger.ErrOrderNotFound):
		return msgOrderNotFound, nil
	default:
		return "", err
	}
}

var idToken = regexp.MustCompile(`(?i)\b[a-z0-9]{8}\b`)

// extractOrderID picks the first 8-character token that contains a
// digit, the shape of the ledger's order ids. Plain words never
// qualify, so "cancel my order" resolves to the latest order.
func extractOrderID(text string) string {
	for _, m := range idToken.FindAllString(text, -1) {
		if strings.ContainsAny(m, "0123456789") {
			return strings.ToLower(m)
		}
	}
	return ""
}

// afterKeyword returns the text following the first occurrence of the
// keyword, used to lift "reorder for tomorrow 3pm" into a time string.
func afterKeyword(text, keyword string) string {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, keyword)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(text[idx+len(keyword):])
	for _, prefix := range []string{"for", "at", "to"} {
		if strings.HasPrefix(strings.ToLower(rest), prefix+" ") {
			rest = strings.TrimSpace(rest[len(prefix):])
			break
		}
	}
	return rest
}
