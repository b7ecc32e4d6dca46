package service

import (
	"fmt"

	"economy_server/internal/domain"
	"economy_server/internal/logger"

	"github.com/shopspring/decimal"
)

const (
	DefaultHistoryLimit = 10
	LeaderboardPageSize = 10
)

// Economy serves the balance commands: balance, pay, eco and baltop.
type Economy struct {
	ledger   *Ledger
	txlog    *TransactionLog
	dir      *Directory
	notifier Notifier
	taxRate  decimal.Decimal
}

func NewEconomy(ledger *Ledger, txlog *TransactionLog, dir *Directory, notifier Notifier, taxRate decimal.Decimal) *Economy {
	return &Economy{
		ledger:   ledger,
		txlog:    txlog,
		dir:      dir,
		notifier: orNopNotifier(notifier),
		taxRate:  taxRate,
	}
}

type BalanceView struct {
	PlayerID  domain.PlayerID `json:"player_id"`
	Name      string          `json:"name"`
	Balance   decimal.Decimal `json:"balance"`
	Formatted string          `json:"formatted"`
}

func (e *Economy) Balance(id domain.PlayerID) BalanceView {
	bal := e.ledger.Get(id)
	return BalanceView{PlayerID: id, Name: e.dir.Name(id), Balance: bal, Formatted: domain.FormatAmount(bal)}
}

// BalanceOf looks a player up by id or name.
func (e *Economy) BalanceOf(ref string) (BalanceView, error) {
	p, err := e.dir.Resolve(ref)
	if err != nil {
		return BalanceView{}, err
	}
	return e.Balance(p.ID), nil
}

type PaymentResult struct {
	To domain.Player `json:"to"`
	TransferResult
	Balance decimal.Decimal `json:"balance"`
}

// Pay moves amount from sender to the player named by ref, less tax.
func (e *Economy) Pay(sender domain.Player, ref string, amount decimal.Decimal) (PaymentResult, error) {
	amount = domain.RoundAmount(amount)
	if amount.LessThan(domain.MinAmount) {
		return PaymentResult{}, ErrInvalidAmount
	}
	to, err := e.dir.Resolve(ref)
	if err != nil {
		return PaymentResult{}, err
	}
	if to.ID == sender.ID {
		return PaymentResult{}, ErrSelfTarget
	}

	res, err := e.ledger.Transfer(sender.ID, to.ID, amount, e.taxRate)
	if err != nil {
		return PaymentResult{}, fmt.Errorf("pay %s: %w", to.Name, err)
	}
	e.txlog.Append(sender.ID, PaymentSentRecord(res.Amount, to.ID, to.Name))
	e.txlog.Append(to.ID, PaymentReceivedRecord(res.Received, sender.ID, sender.Name))

	e.notifier.Notify(to.ID, domain.Event{
		Type:    domain.EventPaymentReceived,
		Message: fmt.Sprintf("You received %s from %s", domain.FormatAmount(res.Received), sender.Name),
		Data:    map[string]any{"from": sender.ID, "amount": res.Received, "tax": res.Tax},
	})
	logger.Info("payment", "player_id", sender.ID, "to", to.ID, "amount", res.Amount, "tax", res.Tax)

	return PaymentResult{To: to, TransferResult: res, Balance: e.ledger.Get(sender.ID)}, nil
}

// AdminOp is one of the eco subcommands.
type AdminOp string

const (
	AdminOpAdd    AdminOp = "add"
	AdminOpRemove AdminOp = "remove"
	AdminOpSet    AdminOp = "set"
)

type AdminResult struct {
	Player  domain.Player   `json:"player"`
	Old     decimal.Decimal `json:"old"`
	Balance decimal.Decimal `json:"balance"`
	Delta   decimal.Decimal `json:"delta"`
}

// Admin applies an untaxed balance adjustment.
func (e *Economy) Admin(actor domain.Player, op AdminOp, ref string, amount decimal.Decimal) (AdminResult, error) {
	if !actor.Admin {
		return AdminResult{}, ErrNotAuthorized
	}
	amount = domain.RoundAmount(amount)
	if amount.IsNegative() || (op != AdminOpSet && amount.IsZero()) {
		return AdminResult{}, ErrInvalidAmount
	}
	target, err := e.dir.Resolve(ref)
	if err != nil {
		return AdminResult{}, err
	}

	old := e.ledger.Get(target.ID)
	switch op {
	case AdminOpAdd:
		if _, err := e.ledger.Credit(target.ID, amount); err != nil {
			return AdminResult{}, err
		}
		e.txlog.Append(target.ID, AdminAddRecord(amount))
	case AdminOpRemove:
		removed, err := e.ledger.DebitUpTo(target.ID, amount)
		if err != nil {
			return AdminResult{}, err
		}
		if removed.IsPositive() {
			e.txlog.Append(target.ID, AdminRemoveRecord(removed))
		}
	case AdminOpSet:
		old = e.ledger.Set(target.ID, amount)
		switch delta := amount.Sub(old); {
		case delta.IsPositive():
			e.txlog.Append(target.ID, AdminAddRecord(delta))
		case delta.IsNegative():
			e.txlog.Append(target.ID, AdminRemoveRecord(delta.Neg()))
		}
	default:
		return AdminResult{}, fmt.Errorf("unknown eco operation %q: %w", op, ErrInvalidAmount)
	}

	bal := e.ledger.Get(target.ID)
	logger.Info("admin balance change", "actor", actor.ID, "player_id", target.ID, "op", op, "amount", amount)
	e.notifier.Notify(target.ID, domain.Event{
		Type:    domain.EventBalanceChanged,
		Message: "Your balance is now " + domain.FormatAmount(bal),
		Data:    map[string]any{"balance": bal},
	})
	return AdminResult{Player: target, Old: old, Balance: bal, Delta: bal.Sub(old)}, nil
}

// History returns recent records; limit defaults to 10 and is capped at the log size.
func (e *Economy) History(id domain.PlayerID, limit int) []domain.TransactionRecord {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return e.txlog.Recent(id, min(limit, MaxTransactionsPerPlayer))
}

type Leaderboard struct {
	BalancePage
	YourRank    int             `json:"your_rank"`
	YourBalance decimal.Decimal `json:"your_balance"`
}

func (e *Economy) Leaderboard(requester domain.PlayerID, page int) Leaderboard {
	p := e.ledger.Top(page, LeaderboardPageSize)
	for i := range p.Entries {
		p.Entries[i].Name = e.dir.Name(p.Entries[i].PlayerID)
	}
	return Leaderboard{BalancePage: p, YourRank: e.ledger.Rank(requester), YourBalance: e.ledger.Get(requester)}
}
