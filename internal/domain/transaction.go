package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxPurchase        TransactionType = "PURCHASE"
	TxSale            TransactionType = "SALE"
	TxPaymentSent     TransactionType = "PAYMENT_SENT"
	TxPaymentReceived TransactionType = "PAYMENT_RECEIVED"
	TxAdminAdd        TransactionType = "ADMIN_ADD"
	TxAdminRemove     TransactionType = "ADMIN_REMOVE"
	TxTax             TransactionType = "TAX"
	TxStartingBalance TransactionType = "STARTING_BALANCE"
	TxDailyReward     TransactionType = "DAILY_REWARD"
	TxInterest        TransactionType = "INTEREST"
	TxMobDrop         TransactionType = "MOB_DROP"
	TxCoinflipWin     TransactionType = "COINFLIP_WIN"
	TxCoinflipLoss    TransactionType = "COINFLIP_LOSS"
	TxPvPKill         TransactionType = "PVP_KILL"
	TxPvPDeath        TransactionType = "PVP_DEATH"
)

// TransactionRecord is one ledger-affecting event in a player's history.
// Amount is signed: negative for money leaving the player.
type TransactionRecord struct {
	Type         TransactionType `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Timestamp    time.Time       `json:"timestamp"`
	Counterparty *PlayerID       `json:"counterparty,omitempty"`
}
