// Package agent routes customer messages to the sales, order and
// policy handlers and records the conversation in the session history.
package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yexhin/cookie-customer-service/internal/ledger"
	"github.com/yexhin/cookie-customer-service/internal/timeutil"
)

const msgUnknownIntent = "I can show you our cookie menu, track or change an order, or explain our policies. What would you like?"

// Handler names recorded on agent_response history entries, matching
// the original assistant naming.
const (
	agentSeller = "Seller"
	agentOrder  = "Order"
	agentPolicy = "Policy"
)

// Router classifies a message and dispatches it. Handle mutates the
// given state (history entries, ledger changes); the caller persists it
// only when Handle returns without error.
type Router struct {
	classifier Classifier
	sales      *SalesHandler
	order      *OrderHandler
	policy     *PolicyHandler
	log        *zap.Logger

	now func() time.Time
}

func NewRouter(classifier Classifier, l *ledger.Ledger, log *zap.Logger) *Router {
	return &Router{
		classifier: classifier,
		sales:      NewSalesHandler(l),
		order:      NewOrderHandler(l),
		policy:     NewPolicyHandler(),
		log:        log,
		now:        time.Now,
	}
}

func (r *Router) Handle(ctx context.Context, st *ledger.State, text string) (string, error) {
	r.recordTurn(st, ledger.HistoryEntry{
		Action: ledger.ActionUserQuery,
		Extra:  map[string]string{"query": text},
	})

	intent, err := r.classifier.Classify(ctx, text)
	if err != nil {
		return "", fmt.Errorf("classify message: %w", err)
	}

	var (
		reply     string
		agentName string
	)
	switch intent {
	case IntentSales:
		agentName = agentSeller
		reply, err = r.sales.Handle(ctx, st, text)
	case IntentOrder:
		agentName = agentOrder
		reply, err = r.order.Handle(ctx, st, text)
	case IntentPolicy:
		agentName = agentPolicy
		reply, err = r.policy.Handle(ctx, st, text)
	default:
		agentName = agentSeller
		reply = msgUnknownIntent
	}
	if err != nil {
		return "", fmt.Errorf("%s handler: %w", intent, err)
	}

	r.recordTurn(st, ledger.HistoryEntry{
		Action: ledger.ActionAgentResponse,
		Extra:  map[string]string{"agent": agentName, "response": reply},
	})

	r.log.Debug("turn handled",
		zap.String("intent", intent.String()),
		zap.String("agent", agentName))
	return reply, nil
}

// PlaceDraft is the structured order entry point for when the external
// model has already extracted the order fields.
func (r *Router) PlaceDraft(ctx context.Context, st *ledger.State, draft ledger.Draft) (string, error) {
	reply, err := r.sales.PlaceDraft(ctx, st, draft)
	if err != nil {
		return "", err
	}
	r.recordTurn(st, ledger.HistoryEntry{
		Action: ledger.ActionAgentResponse,
		Extra:  map[string]string{"agent": agentSeller, "response": reply},
	})
	return reply, nil
}

// recordTurn appends a conversation entry directly; conversation
// entries are part of the history but are not audit-shipped, only
// ledger mutations are.
func (r *Router) recordTurn(st *ledger.State, entry ledger.HistoryEntry) {
	entry.Timestamp = r.now().Format(timeutil.LayoutSeconds)
	st.InteractionHistory = append(st.InteractionHistory, entry)
}
