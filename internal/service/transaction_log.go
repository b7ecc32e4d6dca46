package service

import (
	"fmt"
	"sync"

	"economy_server/internal/clock"
	"economy_server/internal/domain"

	"github.com/shopspring/decimal"
)

// MaxTransactionsPerPlayer bounds each player's history; older records are evicted.
const MaxTransactionsPerPlayer = 50

// TransactionLog keeps a bounded, newest-first history per player.
type TransactionLog struct {
	mu      sync.RWMutex
	records map[domain.PlayerID][]domain.TransactionRecord
	clock   clock.Clock
	dirty   DirtyMarker
}

func NewTransactionLog(clk clock.Clock, dirty DirtyMarker) *TransactionLog {
	if clk == nil {
		clk = clock.Real{}
	}
	return &TransactionLog{
		records: make(map[domain.PlayerID][]domain.TransactionRecord),
		clock:   clk,
		dirty:   orNopDirty(dirty),
	}
}

// Append inserts rec at the head of the player's history, stamping it if the
// timestamp is unset.
func (t *TransactionLog) Append(player domain.PlayerID, rec domain.TransactionRecord) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = t.clock.Now()
	}

	t.mu.Lock()
	list := t.records[player]
	list = append(list, domain.TransactionRecord{})
	copy(list[1:], list)
	list[0] = rec
	if len(list) > MaxTransactionsPerPlayer {
		list = list[:MaxTransactionsPerPlayer]
	}
	t.records[player] = list
	t.mu.Unlock()

	t.dirty.MarkDirty()
}

// Recent returns up to limit records, newest first.
func (t *TransactionLog) Recent(player domain.PlayerID, limit int) []domain.TransactionRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	list := t.records[player]
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]domain.TransactionRecord, limit)
	copy(out, list[:limit])
	return out
}

func (t *TransactionLog) Snapshot() domain.TransactionsDocument {
	t.mu.RLock()
	defer t.mu.RUnlock()
	doc := domain.TransactionsDocument{Records: make(map[domain.PlayerID][]domain.TransactionRecord, len(t.records))}
	for id, list := range t.records {
		doc.Records[id] = append([]domain.TransactionRecord(nil), list...)
	}
	return doc
}

func (t *TransactionLog) Restore(doc domain.TransactionsDocument) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = make(map[domain.PlayerID][]domain.TransactionRecord, len(doc.Records))
	for id, list := range doc.Records {
		if len(list) > MaxTransactionsPerPlayer {
			list = list[:MaxTransactionsPerPlayer]
		}
		t.records[id] = append([]domain.TransactionRecord(nil), list...)
	}
}

// Record constructors. Amounts are passed positive; the sign is applied here.

func record(typ domain.TransactionType, amount decimal.Decimal, desc string, other *domain.PlayerID) domain.TransactionRecord {
	return domain.TransactionRecord{Type: typ, Amount: amount, Description: desc, Counterparty: other}
}

func party(id domain.PlayerID) *domain.PlayerID { return &id }

func PurchaseRecord(amount decimal.Decimal, itemName string, seller domain.PlayerID) domain.TransactionRecord {
	return record(domain.TxPurchase, amount.Neg(), "Bought "+itemName, party(seller))
}

func SaleRecord(amount decimal.Decimal, itemName string, buyer domain.PlayerID) domain.TransactionRecord {
	return record(domain.TxSale, amount, "Sold "+itemName, party(buyer))
}

func PaymentSentRecord(amount decimal.Decimal, recipient domain.PlayerID, recipientName string) domain.TransactionRecord {
	return record(domain.TxPaymentSent, amount.Neg(), "Paid "+recipientName, party(recipient))
}

func PaymentReceivedRecord(amount decimal.Decimal, sender domain.PlayerID, senderName string) domain.TransactionRecord {
	return record(domain.TxPaymentReceived, amount, "From "+senderName, party(sender))
}

func AdminAddRecord(amount decimal.Decimal) domain.TransactionRecord {
	return record(domain.TxAdminAdd, amount, "Admin granted", nil)
}

func AdminRemoveRecord(amount decimal.Decimal) domain.TransactionRecord {
	return record(domain.TxAdminRemove, amount.Neg(), "Admin removed", nil)
}

func StartingBalanceRecord(amount decimal.Decimal) domain.TransactionRecord {
	return record(domain.TxStartingBalance, amount, "Starting balance", nil)
}

func DailyRewardRecord(amount decimal.Decimal, streak int) domain.TransactionRecord {
	return record(domain.TxDailyReward, amount, fmt.Sprintf("Daily reward (day %d)", streak), nil)
}

func InterestRecord(amount decimal.Decimal) domain.TransactionRecord {
	return record(domain.TxInterest, amount, "Weekly interest", nil)
}

func MobDropRecord(amount decimal.Decimal, mobName string) domain.TransactionRecord {
	return record(domain.TxMobDrop, amount, "Killed "+mobName, nil)
}

func CoinflipWinRecord(amount decimal.Decimal, opponent domain.PlayerID) domain.TransactionRecord {
	return record(domain.TxCoinflipWin, amount, "Coinflip win", party(opponent))
}

func CoinflipLossRecord(amount decimal.Decimal, opponent domain.PlayerID) domain.TransactionRecord {
	return record(domain.TxCoinflipLoss, amount.Neg(), "Coinflip loss", party(opponent))
}

func PvPKillRecord(amount decimal.Decimal, victim domain.PlayerID, victimName string) domain.TransactionRecord {
	return record(domain.TxPvPKill, amount, "Killed "+victimName, party(victim))
}

func PvPDeathRecord(amount decimal.Decimal, killer domain.PlayerID, killerName string) domain.TransactionRecord {
	return record(domain.TxPvPDeath, amount.Neg(), "Killed by "+killerName, party(killer))
}
