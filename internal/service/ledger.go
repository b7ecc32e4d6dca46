package service

import (
	"bytes"
	"sort"
	"sync"

	"economy_server/internal/domain"

	"github.com/shopspring/decimal"
)

// Ledger owns every player balance. All methods are safe for concurrent use;
// each one is a single critical section, and the ledger lock is never held
// while calling into another component.
type Ledger struct {
	mu           sync.Mutex
	balances     map[domain.PlayerID]decimal.Decimal
	taxCollected decimal.Decimal
	dirty        DirtyMarker
}

func NewLedger(dirty DirtyMarker) *Ledger {
	return &Ledger{
		balances: make(map[domain.PlayerID]decimal.Decimal),
		dirty:    orNopDirty(dirty),
	}
}

// TransferResult breaks a taxed transfer into what left, what arrived and
// what was removed from circulation.
type TransferResult struct {
	Amount   decimal.Decimal `json:"amount"`
	Tax      decimal.Decimal `json:"tax"`
	Received decimal.Decimal `json:"received"`
}

// CalculateTax returns amount*rate rounded to cents.
func CalculateTax(amount, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() || amount.IsZero() {
		return decimal.Zero
	}
	return domain.RoundAmount(amount.Mul(rate))
}

func (l *Ledger) Get(id domain.PlayerID) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[id]
}

func (l *Ledger) Has(id domain.PlayerID, amount decimal.Decimal) bool {
	return l.Get(id).GreaterThanOrEqual(amount)
}

// Set overwrites a balance, clamping negatives to zero. It returns the old balance.
func (l *Ledger) Set(id domain.PlayerID, amount decimal.Decimal) decimal.Decimal {
	amount = domain.RoundAmount(amount)
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	l.mu.Lock()
	old := l.balances[id]
	l.balances[id] = amount
	l.mu.Unlock()

	l.dirty.MarkDirty()
	ledgerOps.WithLabelValues("set", "ok").Inc()
	return old
}

// Credit adds a non-negative amount and returns the new balance.
func (l *Ledger) Credit(id domain.PlayerID, amount decimal.Decimal) (decimal.Decimal, error) {
	amount = domain.RoundAmount(amount)
	if amount.IsNegative() {
		ledgerOps.WithLabelValues("credit", "rejected").Inc()
		return decimal.Zero, ErrInvalidAmount
	}

	l.mu.Lock()
	bal := l.balances[id].Add(amount)
	l.balances[id] = bal
	l.mu.Unlock()

	l.dirty.MarkDirty()
	ledgerOps.WithLabelValues("credit", "ok").Inc()
	return bal, nil
}

// Debit removes a non-negative amount, failing without effect if the balance
// is short.
func (l *Ledger) Debit(id domain.PlayerID, amount decimal.Decimal) (decimal.Decimal, error) {
	amount = domain.RoundAmount(amount)
	if amount.IsNegative() {
		ledgerOps.WithLabelValues("debit", "rejected").Inc()
		return decimal.Zero, ErrInvalidAmount
	}

	l.mu.Lock()
	bal := l.balances[id]
	if bal.LessThan(amount) {
		l.mu.Unlock()
		ledgerOps.WithLabelValues("debit", "rejected").Inc()
		return bal, ErrInsufficientFunds
	}
	bal = bal.Sub(amount)
	l.balances[id] = bal
	l.mu.Unlock()

	l.dirty.MarkDirty()
	ledgerOps.WithLabelValues("debit", "ok").Inc()
	return bal, nil
}

// DebitUpTo removes min(amount, balance) and returns what was removed.
func (l *Ledger) DebitUpTo(id domain.PlayerID, amount decimal.Decimal) (decimal.Decimal, error) {
	amount = domain.RoundAmount(amount)
	if amount.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}

	l.mu.Lock()
	bal := l.balances[id]
	removed := decimal.Min(amount, bal)
	l.balances[id] = bal.Sub(removed)
	l.mu.Unlock()

	l.dirty.MarkDirty()
	ledgerOps.WithLabelValues("debit", "ok").Inc()
	return removed, nil
}

// Transfer debits amount from one player and credits amount minus tax to the
// other. The tax is not credited to anyone.
func (l *Ledger) Transfer(from, to domain.PlayerID, amount, taxRate decimal.Decimal) (TransferResult, error) {
	amount = domain.RoundAmount(amount)
	if amount.IsNegative() {
		ledgerOps.WithLabelValues("transfer", "rejected").Inc()
		return TransferResult{}, ErrInvalidAmount
	}
	if from == to {
		ledgerOps.WithLabelValues("transfer", "rejected").Inc()
		return TransferResult{}, ErrSelfTarget
	}

	tax := CalculateTax(amount, taxRate)
	res := TransferResult{Amount: amount, Tax: tax, Received: amount.Sub(tax)}

	l.mu.Lock()
	bal := l.balances[from]
	if bal.LessThan(amount) {
		l.mu.Unlock()
		ledgerOps.WithLabelValues("transfer", "rejected").Inc()
		return TransferResult{}, ErrInsufficientFunds
	}
	l.balances[from] = bal.Sub(amount)
	l.balances[to] = l.balances[to].Add(res.Received)
	l.taxCollected = l.taxCollected.Add(tax)
	l.mu.Unlock()

	l.dirty.MarkDirty()
	ledgerOps.WithLabelValues("transfer", "ok").Inc()
	if tax.IsPositive() {
		taxCollectedTotal.Add(tax.InexactFloat64())
	}
	return res, nil
}

// TotalSupply sums every balance.
func (l *Ledger) TotalSupply() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := decimal.Zero
	for _, b := range l.balances {
		total = total.Add(b)
	}
	return total
}

func (l *Ledger) TaxCollected() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.taxCollected
}

func (l *Ledger) Accounts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.balances)
}

type BalanceEntry struct {
	Rank     int             `json:"rank"`
	PlayerID domain.PlayerID `json:"player_id"`
	Name     string          `json:"name,omitempty"`
	Balance  decimal.Decimal `json:"balance"`
}

type BalancePage struct {
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	Entries    []BalanceEntry `json:"entries"`
}

func (l *Ledger) sorted() []BalanceEntry {
	l.mu.Lock()
	all := make([]BalanceEntry, 0, len(l.balances))
	for id, b := range l.balances {
		all = append(all, BalanceEntry{PlayerID: id, Balance: b})
	}
	l.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if c := all[i].Balance.Cmp(all[j].Balance); c != 0 {
			return c > 0
		}
		return bytes.Compare(all[i].PlayerID[:], all[j].PlayerID[:]) < 0
	})
	for i := range all {
		all[i].Rank = i + 1
	}
	return all
}

// Top returns one page of balances, richest first. page is clamped to the
// available range.
func (l *Ledger) Top(page, perPage int) BalancePage {
	if perPage <= 0 {
		perPage = 10
	}
	all := l.sorted()
	if len(all) == 0 {
		return BalancePage{Page: 1, TotalPages: 0}
	}
	totalPages := (len(all) + perPage - 1) / perPage
	page = max(1, min(page, totalPages))
	start := (page - 1) * perPage
	end := min(start+perPage, len(all))
	return BalancePage{Page: page, TotalPages: totalPages, Entries: all[start:end]}
}

// Rank returns the 1-based leaderboard position, or 0 for unknown players.
func (l *Ledger) Rank(id domain.PlayerID) int {
	for _, e := range l.sorted() {
		if e.PlayerID == id {
			return e.Rank
		}
	}
	return 0
}

func (l *Ledger) Snapshot() domain.BalancesDocument {
	l.mu.Lock()
	defer l.mu.Unlock()
	doc := domain.BalancesDocument{
		Balances:     make(map[domain.PlayerID]decimal.Decimal, len(l.balances)),
		TaxCollected: l.taxCollected,
	}
	for id, b := range l.balances {
		doc.Balances[id] = b
	}
	return doc
}

// Restore replaces the ledger state. Negative stored balances are clamped.
func (l *Ledger) Restore(doc domain.BalancesDocument) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances = make(map[domain.PlayerID]decimal.Decimal, len(doc.Balances))
	for id, b := range doc.Balances {
		if b.IsNegative() {
			b = decimal.Zero
		}
		l.balances[id] = b
	}
	l.taxCollected = doc.TaxCollected
}
