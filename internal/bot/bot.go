// Package bot drives one conversation session: load state, handle the
// turn, persist state as a unit.
package bot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yexhin/cookie-customer-service/internal/agent"
	"github.com/yexhin/cookie-customer-service/internal/ledger"
	"github.com/yexhin/cookie-customer-service/internal/session"
)

type Bot struct {
	store  session.Store
	router *agent.Router
	log    *zap.Logger
	key    string
}

func New(store session.Store, router *agent.Router, log *zap.Logger, sessionKey string) *Bot {
	return &Bot{
		store:  store,
		router: router,
		log:    log,
		key:    sessionKey,
	}
}

// Turn processes one customer message. The state is read at turn start
// and written back whole only after the handler succeeds; a failure
// anywhere leaves the persisted state exactly as it was.
func (b *Bot) Turn(ctx context.Context, text string) (string, error) {
	st, err := b.store.Get(ctx, b.key)
	if err != nil {
		return "", fmt.Errorf("load session %s: %w", b.key, err)
	}

	reply, err := b.router.Handle(ctx, st, text)
	if err != nil {
		return "", fmt.Errorf("handle turn: %w", err)
	}

	if err := b.store.Put(ctx, b.key, st); err != nil {
		return "", fmt.Errorf("persist session %s: %w", b.key, err)
	}
	return reply, nil
}

// PlaceDraft runs the structured order path with the same load/commit
// discipline as Turn.
func (b *Bot) PlaceDraft(ctx context.Context, draft ledger.Draft) (string, error) {
	st, err := b.store.Get(ctx, b.key)
	if err != nil {
		return "", fmt.Errorf("load session %s: %w", b.key, err)
	}

	reply, err := b.router.PlaceDraft(ctx, st, draft)
	if err != nil {
		return "", fmt.Errorf("place draft: %w", err)
	}

	if err := b.store.Put(ctx, b.key, st); err != nil {
		return "", fmt.Errorf("persist session %s: %w", b.key, err)
	}
	return reply, nil
}

// Reset clears the session back to the default state: empty ledger,
// empty history, guest profile.
func (b *Bot) Reset(ctx context.Context) error {
	if err := b.store.Delete(ctx, b.key); err != nil {
		return fmt.Errorf("delete session %s: %w", b.key, err)
	}
	if err := b.store.Put(ctx, b.key, ledger.DefaultState()); err != nil {
		return fmt.Errorf("reset session %s: %w", b.key, err)
	}
	b.log.Info("session reset", zap.String("session", b.key))
	return nil
}
