package repository

import (
	"context"
	"errors"
)

var ErrDocumentNotFound = errors.New("document not found")

// Document names, one per persisted aggregate.
const (
	DocBalances     = "balances"
	DocShops        = "shops"
	DocTransactions = "transactions"
	DocRewards      = "daily_rewards"
	DocPlayerFlags  = "player_flags"
	DocInventories  = "inventories"
)

// DocumentStore loads and saves opaque aggregate bodies by name.
type DocumentStore interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, body []byte) error
	Ping(ctx context.Context) error
	Close() error
}
