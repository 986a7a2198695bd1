package agent

import (
	"context"
	"strings"
)

// Intent is the handler category a customer message is routed to.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentSales
	IntentOrder
	IntentPolicy
)

func (i Intent) String() string {
	switch i {
	case IntentSales:
		return "sales"
	case IntentOrder:
		return "order"
	case IntentPolicy:
		return "policy"
	default:
		return "unknown"
	}
}

// Classifier is the seam for the external language model that
// classifies free text into an intent.
type Classifier interface {
	Classify(ctx context.Context, text string) (Intent, error)
}

// KeywordClassifier is the offline fallback classifier. The routing
// mirrors the orchestrator instructions: policy questions go to the
// policy handler and never trigger order actions; order actions only
// run in the order handler.
type KeywordClassifier struct{}

var (
	policyKeywords = []string{"policy", "policies", "terms", "shipping fee"}
	orderKeywords  = []string{"track", "status", "cancel", "refund", "reorder", "history", "my order"}
	salesKeywords  = []string{"menu", "buy", "order", "cookie", "price", "jar", "matcha", "chocolate"}
)

func (KeywordClassifier) Classify(ctx context.Context, text string) (Intent, error) {
	lower := strings.ToLower(text)

	for _, kw := range policyKeywords {
		if strings.Contains(lower, kw) {
			return IntentPolicy, nil
		}
	}
	for _, kw := range orderKeywords {
		if strings.Contains(lower, kw) {
			return IntentOrder, nil
		}
	}
	for _, kw := range salesKeywords {
		if strings.Contains(lower, kw) {
			return IntentSales, nil
		}
	}
	return IntentUnknown, nil
}
