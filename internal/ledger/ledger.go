// Package ledger implements the order lifecycle operations over a
// session's state: place, track, cancel, refund, reorder.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yexhin/cookie-customer-service/internal/metrics"
	"github.com/yexhin/cookie-customer-service/internal/rules"
	"github.com/yexhin/cookie-customer-service/internal/timeutil"
)

var (
	ErrNoOrders      = errors.New("no orders placed yet")
	ErrOrderNotFound = errors.New("order not found")
)

// AuditSink receives a copy of every ledger-mutating history entry.
type AuditSink interface {
	Record(entry HistoryEntry)
}

// NopSink discards entries. Used when no audit pipeline is wired.
type NopSink struct{}

func (NopSink) Record(HistoryEntry) {}

// Ledger executes the order operations. It holds no order data itself;
// every call takes the session state and mutates it in place. The
// caller persists the state after a successful turn.
type Ledger struct {
	log   *zap.Logger
	audit AuditSink

	// Overridable in tests.
	now   func() time.Time
	newID func() string
}

func New(log *zap.Logger, audit AuditSink) *Ledger {
	if audit == nil {
		audit = NopSink{}
	}
	return &Ledger{
		log:   log,
		audit: audit,
		now:   time.Now,
		newID: shortID,
	}
}

// shortID matches the original backend's 8-character order tokens.
func shortID() string {
	return uuid.NewString()[:8]
}

// PlaceResult is the outcome of PlaceOrder. Order is nil when the
// delivery time was rejected by a rule; Message carries the rule's
// wording either way.
type PlaceResult struct {
	Order   *Order
	Message string
}

// PlaceOrder validates the draft, normalizes its delivery time, runs
// the order validation rule and, on success, appends the new order and
// a purchase_product history entry. On rejection the state is left
// untouched.
func (l *Ledger) PlaceOrder(ctx context.Context, st *State, draft Draft) (PlaceResult, error) {
	if err := draft.Validate(); err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("place_order").Inc()
		return PlaceResult{}, err
	}

	purchased := l.now()
	delivery, err := timeutil.ParseAt(draft.DeliveryTime, purchased)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("place_order").Inc()
		return PlaceResult{}, fmt.Errorf("delivery time: %w", err)
	}
	deliveryText := timeutil.Format(delivery)

	if res := rules.ValidateOrder(purchased, delivery); !res.Valid {
		metrics.RuleRejectionsTotal.WithLabelValues(ruleLabel(res)).Inc()
		l.log.Info("order rejected by rule",
			zap.String("delivery_time", deliveryText),
			zap.String("message", res.Message))
		return PlaceResult{Message: res.Message}, nil
	}

	subtotal := decimal.Zero
	for _, p := range draft.Products {
		subtotal = subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}

	order := Order{
		OrderID:       l.newID(),
		CustomerName:  draft.Customer,
		Phone:         draft.Phone,
		Address:       draft.Address,
		Products:      append([]Product(nil), draft.Products...),
		DeliveryTime:  deliveryText,
		PurchasedTime: timeutil.Format(purchased),
		Subtotal:      subtotal,
	}

	st.Orders = append(st.Orders, order)
	l.appendHistory(st, HistoryEntry{
		Action:    ActionPurchase,
		OrderID:   order.OrderID,
		Timestamp: order.PurchasedTime,
	})

	metrics.OrdersPlacedTotal.Inc()
	l.log.Info("order placed",
		zap.String("order_id", order.OrderID),
		zap.String("delivery_time", order.DeliveryTime),
		zap.String("subtotal", order.Subtotal.String()))

	return PlaceResult{Order: &order, Message: rules.MsgOrderAccepted}, nil
}

// Track returns the order with the given id, or the most recently
// placed order when orderID is empty.
func (l *Ledger) Track(ctx context.Context, st *State, orderID string) (*Order, error) {
	return l.resolve(st, orderID)
}

// Cancel removes the resolved order from the ledger and appends a
// cancel_order history entry. The removed order is returned.
func (l *Ledger) Cancel(ctx context.Context, st *State, orderID string) (*Order, error) {
	order, err := l.resolve(st, orderID)
	if err != nil {
		return nil, err
	}

	kept := st.Orders[:0]
	for _, o := range st.Orders {
		if o.OrderID != order.OrderID {
			kept = append(kept, o)
		}
	}
	st.Orders = kept

	l.appendHistory(st, HistoryEntry{
		Action:    ActionCancel,
		OrderID:   order.OrderID,
		Timestamp: timeutil.Format(l.now()),
	})

	metrics.OrdersCancelledTotal.Inc()
	l.log.Info("order cancelled", zap.String("order_id", order.OrderID))
	return order, nil
}

// Refund checks refund eligibility for the resolved order. It is
// advisory: the ledger is never mutated, and a repeated request gives
// the same answer. A parse failure on the stored delivery time is an
// error, distinct from a policy denial.
func (l *Ledger) Refund(ctx context.Context, st *State, orderID string) (rules.Refund, error) {
	order, err := l.resolve(st, orderID)
	if err != nil {
		return rules.Refund{}, err
	}

	now := l.now()
	delivery, err := timeutil.ParseAt(order.DeliveryTime, now)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("refund").Inc()
		return rules.Refund{}, fmt.Errorf("stored delivery time: %w", err)
	}

	res := rules.CheckRefund(now, delivery)
	metrics.RefundChecksTotal.WithLabelValues(refundOutcome(res)).Inc()
	return res, nil
}

// Reorder duplicates the most recent order under a new id with a fresh
// purchase time and the given delivery time. The new delivery time is
// normalized but deliberately not re-validated against the ordering
// rules; see the repository design notes.
func (l *Ledger) Reorder(ctx context.Context, st *State, newDeliveryTime string) (*Order, error) {
	if len(st.Orders) == 0 {
		return nil, ErrNoOrders
	}
	source := st.Orders[len(st.Orders)-1]

	purchased := l.now()
	deliveryText, err := timeutil.NormalizeAt(newDeliveryTime, purchased)
	if err != nil {
		metrics.OperationErrorsTotal.WithLabelValues("reorder").Inc()
		return nil, fmt.Errorf("delivery time: %w", err)
	}

	order := source
	order.OrderID = l.newID()
	order.PurchasedTime = timeutil.Format(purchased)
	order.DeliveryTime = deliveryText
	order.Products = append([]Product(nil), source.Products...)

	st.Orders = append(st.Orders, order)
	l.appendHistory(st, HistoryEntry{
		Action:    ActionReorder,
		OrderID:   order.OrderID,
		Timestamp: order.PurchasedTime,
	})

	metrics.OrdersReorderedTotal.Inc()
	l.log.Info("order reordered",
		zap.String("source_order_id", source.OrderID),
		zap.String("order_id", order.OrderID))
	return &order, nil
}

// resolve finds the target order: by id when given, otherwise the most
// recently appended one.
func (l *Ledger) resolve(st *State, orderID string) (*Order, error) {
	if len(st.Orders) == 0 {
		return nil, ErrNoOrders
	}
	if orderID == "" {
		o := st.Orders[len(st.Orders)-1]
		return &o, nil
	}
	for _, o := range st.Orders {
		if o.OrderID == orderID {
			o := o
			return &o, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
}

func (l *Ledger) appendHistory(st *State, entry HistoryEntry) {
	if entry.Timestamp == "" {
		entry.Timestamp = timeutil.Format(l.now())
	}
	st.InteractionHistory = append(st.InteractionHistory, entry)
	l.audit.Record(entry)
}

func ruleLabel(res rules.Result) string {
	if res.Message == rules.MsgOutsideHours {
		return "hour_window"
	}
	return "advance_notice"
}

func refundOutcome(res rules.Refund) string {
	if res.Eligible {
		return "approved"
	}
	return "denied"
}
