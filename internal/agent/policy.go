package agent

import (
	"context"
	"strings"

	"github.com/yexhin/cookie-customer-service/internal/ledger"
)

const (
	policyOrderTime = `Order time: cookie orders need to be made at least 4 hours in advance, with delivery between 10:00 and 21:00.`

	policyShipping = `Shipping: free shipping for District 8, Ward 8-10. Other locations pay a distance-based fee. Delivery runs from 10 AM until 9 PM daily.`

	policyRefund = `Refund policy: a cancellation made at least 3 hours before the delivery time gets a 100% refund. Later requests are non-refundable.`
)

// PolicyHandler answers policy questions only; it never performs order
// actions.
type PolicyHandler struct{}

func NewPolicyHandler() *PolicyHandler {
	return &PolicyHandler{}
}

func (h *PolicyHandler) Handle(ctx context.Context, st *ledger.State, text string) (string, error) {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "refund"):
		return policyRefund, nil
	case strings.Contains(lower, "ship") || strings.Contains(lower, "fee") || strings.Contains(lower, "delivery"):
		return policyShipping, nil
	case strings.Contains(lower, "order") || strings.Contains(lower, "time"):
		return policyOrderTime, nil
	default:
		return policyOrderTime + "\n" + policyShipping + "\n" + policyRefund, nil
	}
}
