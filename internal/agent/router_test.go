package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yexhin/cookie-customer-service/internal/ledger"
)

func TestKeywordClassifier(t *testing.T) {
	ctx := context.Background()
	c := KeywordClassifier{}

	tests := []struct {
		text string
		want Intent
	}{
		{"Can I see the menu?", IntentSales},
		{"how much is a jar of matcha", IntentSales},
		{"track my order please", IntentOrder},
		{"Cancel my order having id dd189034", IntentOrder},
		{"can I get a refund", IntentOrder},
		{"what is your refund policy", IntentPolicy},
		{"tell me about shipping fee", IntentPolicy},
		{"hello there", IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := c.Classify(ctx, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type stubClassifier struct {
	intent Intent
	err    error
}

func (s stubClassifier) Classify(ctx context.Context, text string) (Intent, error) {
	return s.intent, s.err
}

func placedState(t *testing.T, r *Router, delivery string) *ledger.State {
	t.Helper()
	st := ledger.DefaultState()
	reply, err := r.PlaceDraft(context.Background(), st, ledger.Draft{
		Customer:     "Yen Nhi",
		Phone:        "0908353308",
		Address:      "22H D8 W9",
		DeliveryTime: delivery,
		Products: []ledger.Product{
			{Name: "Cookies Chocolate", Quantity: 2, Price: decimal.NewFromInt(5)},
		},
	})
	require.NoError(t, err)
	require.Len(t, st.Orders, 1, "draft was rejected: %s", reply)
	return st
}

func newTestRouter(classifier Classifier) *Router {
	l := ledger.New(zap.NewNop(), nil)
	return NewRouter(classifier, l, zap.NewNop())
}

func TestRouterRecordsConversation(t *testing.T) {
	r := newTestRouter(KeywordClassifier{})
	st := ledger.DefaultState()

	reply, err := r.Handle(context.Background(), st, "show me the menu")
	require.NoError(t, err)
	assert.Contains(t, reply, "Cookies Matcha")

	require.Len(t, st.InteractionHistory, 2)
	assert.Equal(t, ledger.ActionUserQuery, st.InteractionHistory[0].Action)
	assert.Equal(t, "show me the menu", st.InteractionHistory[0].Extra["query"])
	assert.Equal(t, ledger.ActionAgentResponse, st.InteractionHistory[1].Action)
	assert.Equal(t, "Seller", st.InteractionHistory[1].Extra["agent"])
	assert.NotEmpty(t, st.InteractionHistory[0].Timestamp)
}

func TestRouterClassifierFailureAbortsTurn(t *testing.T) {
	r := newTestRouter(stubClassifier{err: errors.New("model unavailable")})
	st := ledger.DefaultState()

	_, err := r.Handle(context.Background(), st, "anything")
	require.Error(t, err)
	// The user_query entry is recorded but the caller must not persist
	// a failed turn, so no response entry follows it.
	require.Len(t, st.InteractionHistory, 1)
	assert.Equal(t, ledger.ActionUserQuery, st.InteractionHistory[0].Action)
}

func TestRouterUnknownIntent(t *testing.T) {
	r := newTestRouter(stubClassifier{intent: IntentUnknown})
	st := ledger.DefaultState()

	reply, err := r.Handle(context.Background(), st, "blub")
	require.NoError(t, err)
	assert.Equal(t, msgUnknownIntent, reply)
}

func TestPlaceDraftReplies(t *testing.T) {
	r := newTestRouter(KeywordClassifier{})

	t.Run("accepted", func(t *testing.T) {
		st := placedState(t, r, "01.01.2030 14:00")
		assert.Equal(t, "01.01.2030 14:00", st.Orders[0].DeliveryTime)
	})

	t.Run("rejected by hour window", func(t *testing.T) {
		st := ledger.DefaultState()
		reply, err := r.PlaceDraft(context.Background(), st, ledger.Draft{
			Customer:     "Yen Nhi",
			DeliveryTime: "01.01.2030 22:00",
			Products: []ledger.Product{
				{Name: "Cookies Matcha", Quantity: 1, Price: decimal.NewFromInt(5)},
			},
		})
		require.NoError(t, err)
		assert.Contains(t, reply, "between 10:00 and 21:00")
		assert.Empty(t, st.Orders)
	})

	t.Run("malformed draft gets a readable reply", func(t *testing.T) {
		st := ledger.DefaultState()
		reply, err := r.PlaceDraft(context.Background(), st, ledger.Draft{Customer: "X"})
		require.NoError(t, err)
		assert.Equal(t, msgDraftIncomplete, reply)
	})

	t.Run("bad delivery time gets a readable reply", func(t *testing.T) {
		st := ledger.DefaultState()
		reply, err := r.PlaceDraft(context.Background(), st, ledger.Draft{
			Customer:     "X",
			DeliveryTime: "garbage %%%",
			Products: []ledger.Product{
				{Name: "Cookies Matcha", Quantity: 1, Price: decimal.NewFromInt(5)},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, msgBadDeliveryTime, reply)
	})
}

func TestOrderHandlerFlows(t *testing.T) {
	ctx := context.Background()
	r := newTestRouter(KeywordClassifier{})

	t.Run("track latest", func(t *testing.T) {
		st := placedState(t, r, "01.01.2030 14:00")
		reply, err := r.Handle(ctx, st, "track my order")
		require.NoError(t, err)
		assert.Contains(t, reply, st.Orders[0].OrderID)
		assert.Contains(t, reply, "22H D8 W9")
	})

	t.Run("track with empty ledger", func(t *testing.T) {
		st := ledger.DefaultState()
		reply, err := r.Handle(ctx, st, "track my order")
		require.NoError(t, err)
		assert.Equal(t, msgNoOrders, reply)
	})

	t.Run("cancel reports refund eligibility", func(t *testing.T) {
		st := placedState(t, r, "01.01.2030 14:00")
		st.Orders[0].OrderID = "dd189034"

		reply, err := r.Handle(ctx, st, "please cancel order dd189034")
		require.NoError(t, err)
		assert.Contains(t, reply, "has been cancelled")
		assert.Contains(t, reply, msgRefundOK)
		assert.Empty(t, st.Orders)
	})

	t.Run("cancel after delivery window denies refund", func(t *testing.T) {
		st := placedState(t, r, "01.01.2030 14:00")
		st.Orders[0].DeliveryTime = "01.01.2020 14:00"

		reply, err := r.Handle(ctx, st, "cancel my order")
		require.NoError(t, err)
		assert.Contains(t, reply, "has been cancelled")
		assert.Contains(t, reply, msgRefundDenied)
	})

	t.Run("cancel unknown id", func(t *testing.T) {
		st := placedState(t, r, "01.01.2030 14:00")
		reply, err := r.Handle(ctx, st, "cancel order zz999999")
		require.NoError(t, err)
		assert.Equal(t, msgOrderNotFound, reply)
		assert.Len(t, st.Orders, 1)
	})

	t.Run("refund is advisory", func(t *testing.T) {
		st := placedState(t, r, "01.01.2030 14:00")
		reply, err := r.Handle(ctx, st, "can I refund this")
		require.NoError(t, err)
		assert.Equal(t, msgRefundOK, reply)
		assert.Len(t, st.Orders, 1, "refund must not remove the order")
	})

	t.Run("reorder with new time", func(t *testing.T) {
		st := placedState(t, r, "01.01.2030 14:00")
		reply, err := r.Handle(ctx, st, "reorder for 02.01.2030 15:00")
		require.NoError(t, err)
		assert.Contains(t, reply, "successfully placed the new order")
		require.Len(t, st.Orders, 2)
		assert.Equal(t, "02.01.2030 15:00", st.Orders[1].DeliveryTime)
		assert.NotEqual(t, st.Orders[0].OrderID, st.Orders[1].OrderID)
	})

	t.Run("reorder without time asks for one", func(t *testing.T) {
		st := placedState(t, r, "01.01.2030 14:00")
		reply, err := r.Handle(ctx, st, "reorder")
		require.NoError(t, err)
		assert.Equal(t, msgNeedTime, reply)
		assert.Len(t, st.Orders, 1)
	})
}

func TestPolicyHandlerAnswers(t *testing.T) {
	ctx := context.Background()
	r := newTestRouter(KeywordClassifier{})
	st := ledger.DefaultState()

	reply, err := r.Handle(ctx, st, "what is your refund policy?")
	require.NoError(t, err)
	assert.Contains(t, reply, "100% refund")

	reply, err = r.Handle(ctx, st, "shipping fee policy please")
	require.NoError(t, err)
	assert.Contains(t, reply, "District 8")
}

func TestExtractOrderID(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"cancel order dd189034 please", "dd189034"},
		{"cancel my order", ""},
		{"track delivery tomorrow", ""},
		{"refund ab12cd34", "ab12cd34"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, extractOrderID(tt.text))
		})
	}
}
