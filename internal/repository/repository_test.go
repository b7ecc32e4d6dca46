package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"economy_server/internal/domain"
)

// exerciseStore checks the contract every DocumentStore backend must honour.
func exerciseStore(t *testing.T, store DocumentStore) {
	t.Helper()
	ctx := context.Background()
	name := "test_" + uuid.NewString()

	_, err := store.Load(ctx, name)
	require.ErrorIs(t, err, ErrDocumentNotFound)

	require.NoError(t, store.Save(ctx, name, []byte(`{"v":1}`)))
	require.NoError(t, store.Save(ctx, name, []byte(`{"v":2}`)))

	body, err := store.Load(ctx, name)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(body))
	require.NoError(t, store.Ping(ctx))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreCopiesBodies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	body := []byte(`{"a":1}`)
	require.NoError(t, s.Save(ctx, "doc", body))
	body[2] = 'b'

	got, err := s.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(context.Background(), t.TempDir()+"/economy.db")
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestRepositoryMissingDocumentIsEmpty(t *testing.T) {
	repo := NewRepository[domain.BalancesDocument](NewMemoryStore(), DocBalances)
	doc, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, doc.Balances)
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository[domain.BalancesDocument](NewMemoryStore(), DocBalances)
	id := uuid.New()

	in := domain.BalancesDocument{
		Balances:     map[domain.PlayerID]decimal.Decimal{id: decimal.RequireFromString("28.5")},
		TaxCollected: decimal.RequireFromString("1.5"),
	}
	require.NoError(t, repo.Save(ctx, in))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, out.Balances[id].Equal(in.Balances[id]))
	assert.True(t, out.TaxCollected.Equal(in.TaxCollected))
}

type failingStore struct{ MemoryStore }

func (f *failingStore) Load(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func TestLoadOrEmptyFallsBack(t *testing.T) {
	repo := NewRepository[domain.RewardsDocument](&failingStore{}, DocRewards)
	doc := repo.LoadOrEmpty(context.Background())
	assert.Nil(t, doc.Players)
}

func TestLoadRejectsCorruptDocument(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, DocShops, []byte("not json")))

	_, err := NewRepository[domain.ShopsDocument](store, DocShops).Load(ctx)
	require.Error(t, err)
}
