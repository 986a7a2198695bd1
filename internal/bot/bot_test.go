package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/yexhin/cookie-customer-service/internal/agent"
	"github.com/yexhin/cookie-customer-service/internal/ledger"
	session_mocks "github.com/yexhin/cookie-customer-service/internal/session/mocks"
)

type stubClassifier struct {
	intent agent.Intent
	err    error
}

func (s stubClassifier) Classify(ctx context.Context, text string) (agent.Intent, error) {
	return s.intent, s.err
}

func newBot(classifier agent.Classifier, store *session_mocks.MockStore) *Bot {
	l := ledger.New(zap.NewNop(), nil)
	router := agent.NewRouter(classifier, l, zap.NewNop())
	return New(store, router, zap.NewNop(), "local")
}

func TestTurnPersistsStateAfterSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := session_mocks.NewMockStore(ctrl)
	b := newBot(agent.KeywordClassifier{}, store)

	store.EXPECT().
		Get(gomock.Any(), "local").
		Return(ledger.DefaultState(), nil)
	store.EXPECT().
		Put(gomock.Any(), "local", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, st *ledger.State) error {
			// The turn's history entries ride along in the same commit.
			require.Len(t, st.InteractionHistory, 2)
			assert.Equal(t, ledger.ActionUserQuery, st.InteractionHistory[0].Action)
			return nil
		})

	reply, err := b.Turn(context.Background(), "show me the menu")
	require.NoError(t, err)
	assert.Contains(t, reply, "Cookies Matcha")
}

func TestTurnDoesNotPersistOnHandlerFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := session_mocks.NewMockStore(ctrl)
	b := newBot(stubClassifier{err: errors.New("model unavailable")}, store)

	store.EXPECT().
		Get(gomock.Any(), "local").
		Return(ledger.DefaultState(), nil)
	// No Put expectation: a failed turn must not commit anything.

	_, err := b.Turn(context.Background(), "anything")
	require.Error(t, err)
}

func TestTurnPropagatesStoreFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := session_mocks.NewMockStore(ctrl)
	b := newBot(agent.KeywordClassifier{}, store)

	store.EXPECT().
		Get(gomock.Any(), "local").
		Return(nil, errors.New("disk gone"))

	_, err := b.Turn(context.Background(), "menu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load session")
}

func TestResetClearsSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := session_mocks.NewMockStore(ctrl)
	b := newBot(agent.KeywordClassifier{}, store)

	store.EXPECT().Delete(gomock.Any(), "local").Return(nil)
	store.EXPECT().
		Put(gomock.Any(), "local", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, st *ledger.State) error {
			assert.Empty(t, st.Orders)
			assert.Empty(t, st.InteractionHistory)
			assert.Equal(t, "guest", st.UserProfile.Name)
			return nil
		})

	require.NoError(t, b.Reset(context.Background()))
}
