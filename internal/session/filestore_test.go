package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yexhin/cookie-customer-service/internal/ledger"
)

func sampleState() *ledger.State {
	st := ledger.DefaultState()
	st.UserProfile.Name = "Be Nhi"
	st.Orders = append(st.Orders, ledger.Order{
		OrderID:       "abc12345",
		CustomerName:  "Be Nhi",
		Phone:         "0908353308",
		Address:       "22H D8 W9",
		DeliveryTime:  "01.01.2025 14:00",
		PurchasedTime: "01.01.2025 10:00",
		Subtotal:      decimal.NewFromInt(15),
		Products: []ledger.Product{
			{Name: "Cookies Matcha", Quantity: 3, Price: decimal.NewFromInt(5)},
		},
	})
	st.InteractionHistory = append(st.InteractionHistory, ledger.HistoryEntry{
		Action:    ledger.ActionPurchase,
		OrderID:   "abc12345",
		Timestamp: "01.01.2025 10:00",
	})
	return st
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.json")

	fs, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, fs.Put(ctx, "local", sampleState()))

	// A second store over the same file sees the persisted state.
	fs2, err := NewFileStore(path)
	require.NoError(t, err)

	got, err := fs2.Get(ctx, "local")
	require.NoError(t, err)
	require.Len(t, got.Orders, 1)
	assert.Equal(t, "abc12345", got.Orders[0].OrderID)
	assert.True(t, got.Orders[0].Subtotal.Equal(decimal.NewFromInt(15)))
	require.Len(t, got.InteractionHistory, 1)
	assert.Equal(t, ledger.ActionPurchase, got.InteractionHistory[0].Action)
	assert.Equal(t, "Be Nhi", got.UserProfile.Name)
}

func TestFileStoreUnknownKeyReturnsDefault(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "sessions.json"))
	require.NoError(t, err)

	got, err := fs.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, got.Orders)
	assert.Empty(t, got.InteractionHistory)
	assert.Equal(t, "guest", got.UserProfile.Name)
}

func TestFileStoreDelete(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "sessions.json"))
	require.NoError(t, err)

	require.NoError(t, fs.Put(ctx, "local", sampleState()))
	require.NoError(t, fs.Delete(ctx, "local"))

	got, err := fs.Get(ctx, "local")
	require.NoError(t, err)
	assert.Empty(t, got.Orders)
}

func TestFileStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "sessions.json"))
	require.NoError(t, err)

	require.NoError(t, fs.Put(ctx, "local", sampleState()))

	first, err := fs.Get(ctx, "local")
	require.NoError(t, err)
	first.Orders[0].Address = "changed"

	second, err := fs.Get(ctx, "local")
	require.NoError(t, err)
	assert.Equal(t, "22H D8 W9", second.Orders[0].Address)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	got, err := ms.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.Empty(t, got.Orders)

	require.NoError(t, ms.Put(ctx, "k", sampleState()))
	got, err = ms.Get(ctx, "k")
	require.NoError(t, err)
	require.Len(t, got.Orders, 1)

	got.Orders[0].Phone = "mutated"
	again, err := ms.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "0908353308", again.Orders[0].Phone)

	require.NoError(t, ms.Delete(ctx, "k"))
	got, err = ms.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, got.Orders)
}
