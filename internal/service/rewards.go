package service

import (
	"fmt"
	"sync"
	"time"

	"economy_server/internal/clock"
	"economy_server/internal/domain"
	"economy_server/internal/logger"

	"github.com/shopspring/decimal"
)

type RewardConfig struct {
	DailyBase      decimal.Decimal
	DailyIncrement decimal.Decimal
	MaxStreak      int
	InterestRate   decimal.Decimal
	MaxInterest    decimal.Decimal
	Location       *time.Location
}

// RewardScheduler pays the daily streak reward and the weekly interest.
// Days are counted in cfg.Location; a week is seven epoch days.
type RewardScheduler struct {
	mu       sync.Mutex
	info     map[domain.PlayerID]domain.RewardInfo
	cfg      RewardConfig
	ledger   *Ledger
	txlog    *TransactionLog
	notifier Notifier
	clock    clock.Clock
	dirty    DirtyMarker
}

func NewRewardScheduler(cfg RewardConfig, ledger *Ledger, txlog *TransactionLog, notifier Notifier, clk clock.Clock, dirty DirtyMarker) *RewardScheduler {
	if cfg.MaxStreak < 1 {
		cfg.MaxStreak = 1
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if clk == nil {
		clk = clock.Real{}
	}
	return &RewardScheduler{
		info:     make(map[domain.PlayerID]domain.RewardInfo),
		cfg:      cfg,
		ledger:   ledger,
		txlog:    txlog,
		notifier: orNopNotifier(notifier),
		clock:    clk,
		dirty:    orNopDirty(dirty),
	}
}

func (r *RewardScheduler) today() int64 {
	return clock.EpochDay(r.clock.Now(), r.cfg.Location)
}

// rewardFor is the payout of a claim that lands on the given streak day.
func (r *RewardScheduler) rewardFor(streak int) decimal.Decimal {
	return domain.RoundAmount(r.cfg.DailyBase.Add(r.cfg.DailyIncrement.Mul(decimal.NewFromInt(int64(streak - 1)))))
}

// ClaimDaily pays today's reward. Claiming on consecutive days grows the
// streak up to MaxStreak; skipping a day resets it to 1.
func (r *RewardScheduler) ClaimDaily(player domain.PlayerID) (domain.DailyClaim, error) {
	today := r.today()

	r.mu.Lock()
	info := r.info[player]
	delta := today - info.LastClaimDay
	if info.Claimed && delta <= 0 {
		r.mu.Unlock()
		return domain.DailyClaim{}, ErrAlreadyClaimedToday
	}
	streak := 1
	if info.Claimed && delta == 1 {
		streak = min(info.Streak+1, r.cfg.MaxStreak)
	}
	reward := r.rewardFor(streak)
	if _, err := r.ledger.Credit(player, reward); err != nil {
		r.mu.Unlock()
		return domain.DailyClaim{}, err
	}
	info.Streak = streak
	info.Claimed = true
	info.LastClaimDay = today
	r.info[player] = info
	r.mu.Unlock()

	r.dirty.MarkDirty()
	r.txlog.Append(player, DailyRewardRecord(reward, streak))
	rewardsPaid.WithLabelValues("daily").Inc()
	logger.Info("daily reward claimed", "player_id", player, "streak", streak, "amount", reward)

	claim := domain.DailyClaim{
		Reward:     reward,
		Streak:     streak,
		MaxStreak:  r.cfg.MaxStreak,
		NextReward: reward,
		MaxedOut:   streak >= r.cfg.MaxStreak,
	}
	if !claim.MaxedOut {
		claim.NextReward = r.rewardFor(streak + 1)
	}
	return claim, nil
}

// Streak reports the streak as it stands today without claiming.
func (r *RewardScheduler) Streak(player domain.PlayerID) domain.StreakStatus {
	today := r.today()
	r.mu.Lock()
	info := r.info[player]
	r.mu.Unlock()

	delta := today - info.LastClaimDay
	st := domain.StreakStatus{
		Streak:    info.Streak,
		MaxStreak: r.cfg.MaxStreak,
		CanClaim:  !info.Claimed || delta > 0,
		Broken:    info.Claimed && delta > 1,
	}
	if st.Broken {
		st.Streak = 0
	}
	st.NextReward = r.rewardFor(min(st.Streak, r.cfg.MaxStreak-1) + 1)
	return st
}

// CalculateInterest is min(floor(balance*rate), cap) in cents.
func CalculateInterest(balance, rate, limit decimal.Decimal) decimal.Decimal {
	if !balance.IsPositive() || !rate.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(domain.FloorAmount(balance.Mul(rate)), limit)
}

// WeeklyInterest credits interest at most once per epoch week. The first
// observation of a player only stamps the week.
func (r *RewardScheduler) WeeklyInterest(player domain.PlayerID) (decimal.Decimal, bool) {
	week := r.today() / 7

	r.mu.Lock()
	info := r.info[player]
	if info.LastInterestWeek >= week {
		r.mu.Unlock()
		return decimal.Zero, false
	}
	first := info.LastInterestWeek == 0
	info.LastInterestWeek = week
	r.info[player] = info

	var interest decimal.Decimal
	if !first {
		interest = CalculateInterest(r.ledger.Get(player), r.cfg.InterestRate, r.cfg.MaxInterest)
		if interest.GreaterThanOrEqual(domain.MinAmount) {
			if _, err := r.ledger.Credit(player, interest); err != nil {
				interest = decimal.Zero
			}
		} else {
			interest = decimal.Zero
		}
	}
	r.mu.Unlock()
	r.dirty.MarkDirty()

	if interest.IsZero() {
		return decimal.Zero, false
	}
	r.txlog.Append(player, InterestRecord(interest))
	rewardsPaid.WithLabelValues("interest").Inc()
	logger.Info("interest paid", "player_id", player, "amount", interest, "week", week)
	r.notifier.Notify(player, domain.Event{
		Type:    domain.EventInterest,
		Message: fmt.Sprintf("You earned %s in weekly interest", domain.FormatAmount(interest)),
		Data:    map[string]any{"amount": interest},
	})
	return interest, true
}

func (r *RewardScheduler) Info(player domain.PlayerID) domain.RewardInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.info[player]
}

func (r *RewardScheduler) Snapshot() domain.RewardsDocument {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc := domain.RewardsDocument{Players: make(map[domain.PlayerID]domain.RewardInfo, len(r.info))}
	for id, info := range r.info {
		doc.Players[id] = info
	}
	return doc
}

func (r *RewardScheduler) Restore(doc domain.RewardsDocument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info = make(map[domain.PlayerID]domain.RewardInfo, len(doc.Players))
	for id, info := range doc.Players {
		// documents written before the claimed flag existed
		if info.LastClaimDay != 0 {
			info.Claimed = true
		}
		if info.Streak > r.cfg.MaxStreak {
			info.Streak = r.cfg.MaxStreak
		}
		r.info[id] = info
	}
}
