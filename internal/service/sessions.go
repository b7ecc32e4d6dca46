package service

import (
	"fmt"

	"economy_server/internal/domain"
	"economy_server/internal/logger"

	"github.com/shopspring/decimal"
)

// Sessions runs the per-login bookkeeping.
type Sessions struct {
	ledger          *Ledger
	txlog           *TransactionLog
	dir             *Directory
	rewards         *RewardScheduler
	notifier        Notifier
	startingBalance decimal.Decimal
}

func NewSessions(ledger *Ledger, txlog *TransactionLog, dir *Directory, rewards *RewardScheduler, notifier Notifier, startingBalance decimal.Decimal) *Sessions {
	return &Sessions{
		ledger:          ledger,
		txlog:           txlog,
		dir:             dir,
		rewards:         rewards,
		notifier:        orNopNotifier(notifier),
		startingBalance: domain.RoundAmount(startingBalance),
	}
}

type SessionStart struct {
	Player          domain.Player               `json:"player"`
	StartingBalance decimal.Decimal             `json:"starting_balance"`
	OfflineSales    *domain.OfflineSalesSummary `json:"offline_sales,omitempty"`
	Interest        decimal.Decimal             `json:"interest"`
	Balance         decimal.Decimal             `json:"balance"`
}

// Start grants the one-time starting balance, delivers the offline sales
// summary and then runs weekly interest, in that order.
func (s *Sessions) Start(p domain.Player) SessionStart {
	s.dir.Remember(p)
	out := SessionStart{Player: p}

	if s.dir.MarkStartingBalance(p.ID) && s.startingBalance.IsPositive() {
		if _, err := s.ledger.Credit(p.ID, s.startingBalance); err == nil {
			out.StartingBalance = s.startingBalance
			s.txlog.Append(p.ID, StartingBalanceRecord(s.startingBalance))
			s.notifier.Notify(p.ID, domain.Event{
				Type:    domain.EventStartingBalance,
				Message: "Welcome! You received " + domain.FormatAmount(s.startingBalance),
				Data:    map[string]any{"amount": s.startingBalance},
			})
		}
	}

	if sum, ok := s.dir.TakeOfflineSales(p.ID); ok && sum.Count > 0 {
		out.OfflineSales = &sum
		s.notifier.Notify(p.ID, domain.Event{
			Type:    domain.EventOfflineSales,
			Message: fmt.Sprintf("While you were away you made %d sale(s) for %s", sum.Count, domain.FormatAmount(sum.Total)),
			Data:    sum,
		})
	}

	if s.rewards != nil {
		out.Interest, _ = s.rewards.WeeklyInterest(p.ID)
	}
	out.Balance = s.ledger.Get(p.ID)

	logger.Info("session started", "player_id", p.ID, "name", p.Name, "balance", out.Balance)
	return out
}

func (s *Sessions) End(p domain.Player) {
	logger.Debug("session ended", "player_id", p.ID)
}
