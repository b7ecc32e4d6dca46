package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Persisted aggregate shapes, one per named document.

type BalancesDocument struct {
	Balances     map[PlayerID]decimal.Decimal `json:"balances"`
	TaxCollected decimal.Decimal              `json:"tax_collected"`
}

type ShopsDocument struct {
	Shops     []Shop                   `json:"shops"`
	Favorites map[PlayerID][]uuid.UUID `json:"favorites"`
}

type TransactionsDocument struct {
	Records map[PlayerID][]TransactionRecord `json:"records"`
}

type RewardsDocument struct {
	Players map[PlayerID]RewardInfo `json:"players"`
}

type PlayerFlagsDocument struct {
	Names           map[PlayerID]string              `json:"names"`
	StartingBalance []PlayerID                       `json:"starting_balance"`
	OfflineSales    map[PlayerID]OfflineSalesSummary `json:"offline_sales"`
}

type InventoriesDocument struct {
	Held   map[PlayerID][]ItemStack `json:"held"`
	Ground map[PlayerID][]ItemStack `json:"ground"`
}
