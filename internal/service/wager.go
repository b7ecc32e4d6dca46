package service

import (
	"fmt"
	"sync"
	"time"

	"economy_server/internal/clock"
	"economy_server/internal/domain"
	"economy_server/internal/game"
	"economy_server/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WagerConfig struct {
	Timeout     time.Duration
	RevealDelay time.Duration
	MinStake    decimal.Decimal
}

// WagerDeps are the collaborators of a WagerEngine. Scheduler callbacks are
// handed to Executor before they touch any state.
type WagerDeps struct {
	Ledger    *Ledger
	Log       *TransactionLog
	Presence  Presence
	Notifier  Notifier
	Clock     clock.Clock
	Scheduler clock.Scheduler
	Executor  Executor
	Flipper   game.Flipper
}

type payout struct {
	result domain.FlipResult
	timer  clock.Timer
}

// WagerEngine runs coinflip challenges. A challenge is keyed by its target;
// each target has at most one pending challenge and each challenger at most
// one outgoing one. Stakes are escrowed at accept and the pot is credited
// when the reveal timer fires.
type WagerEngine struct {
	mu       sync.Mutex
	pending  map[domain.PlayerID]domain.Challenge
	outgoing map[domain.PlayerID]domain.PlayerID
	inflight map[uuid.UUID]*payout

	cfg      WagerConfig
	ledger   *Ledger
	txlog    *TransactionLog
	presence Presence
	notifier Notifier
	clock    clock.Clock
	sched    clock.Scheduler
	exec     Executor
	flipper  game.Flipper
}

func NewWagerEngine(cfg WagerConfig, deps WagerDeps) *WagerEngine {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Scheduler == nil {
		deps.Scheduler = clock.Real{}
	}
	if deps.Flipper == nil {
		deps.Flipper = game.CryptoFlipper{}
	}
	return &WagerEngine{
		pending:  make(map[domain.PlayerID]domain.Challenge),
		outgoing: make(map[domain.PlayerID]domain.PlayerID),
		inflight: make(map[uuid.UUID]*payout),
		cfg:      cfg,
		ledger:   deps.Ledger,
		txlog:    deps.Log,
		presence: deps.Presence,
		notifier: orNopNotifier(deps.Notifier),
		clock:    deps.Clock,
		sched:    deps.Scheduler,
		exec:     deps.Executor,
		flipper:  deps.Flipper,
	}
}

// dispatch runs fn on the executor, or inline when there is none or it has
// stopped accepting work.
func (e *WagerEngine) dispatch(fn func()) {
	if e.exec == nil || !e.exec.Submit(fn) {
		fn()
	}
}

func (e *WagerEngine) online(id domain.PlayerID) bool {
	return e.presence == nil || e.presence.IsOnline(id)
}

// Challenge offers a coinflip for amount to target. No funds move yet.
func (e *WagerEngine) Challenge(challenger, target domain.Player, amount decimal.Decimal) (domain.Challenge, error) {
	amount = domain.RoundAmount(amount)
	if challenger.ID == target.ID {
		return domain.Challenge{}, ErrSelfTarget
	}
	if !amount.IsPositive() || amount.LessThan(e.cfg.MinStake) {
		return domain.Challenge{}, fmt.Errorf("minimum stake is %s: %w", domain.FormatAmount(e.cfg.MinStake), ErrInvalidAmount)
	}
	if !e.online(target.ID) {
		return domain.Challenge{}, ErrPlayerOffline
	}
	if !e.ledger.Has(challenger.ID, amount) {
		return domain.Challenge{}, ErrInsufficientFunds
	}
	if !e.ledger.Has(target.ID, amount) {
		return domain.Challenge{}, fmt.Errorf("%s cannot cover the stake: %w", target.Name, ErrInsufficientFunds)
	}

	e.mu.Lock()
	if _, busy := e.pending[target.ID]; busy {
		e.mu.Unlock()
		return domain.Challenge{}, ErrTargetBusy
	}
	if _, busy := e.outgoing[challenger.ID]; busy {
		e.mu.Unlock()
		return domain.Challenge{}, ErrChallengerBusy
	}
	c := domain.Challenge{
		ID:             uuid.New(),
		ChallengerID:   challenger.ID,
		ChallengerName: challenger.Name,
		TargetID:       target.ID,
		TargetName:     target.Name,
		Amount:         amount,
		CreatedAt:      e.clock.Now(),
	}
	e.pending[target.ID] = c
	e.outgoing[challenger.ID] = target.ID
	e.mu.Unlock()

	// The timer is never stopped; expire ignores challenges that moved on.
	e.sched.AfterFunc(e.cfg.Timeout, func() {
		e.dispatch(func() { _ = e.Expire(c.TargetID, c.ID) })
	})

	wagers.WithLabelValues("challenged").Inc()
	e.notifier.Notify(target.ID, domain.Event{
		Type: domain.EventChallengeReceived,
		Message: fmt.Sprintf("%s challenged you to a coinflip for %s. Accept within %s",
			challenger.Name, domain.FormatAmount(amount), e.cfg.Timeout),
		Data: c,
	})
	logger.Info("coinflip challenge", "challenge_id", c.ID, "player_id", challenger.ID, "target", target.ID, "amount", amount)
	return c, nil
}

// take removes the pending challenge for target. The caller holds e.mu.
func (e *WagerEngine) take(target domain.PlayerID) (domain.Challenge, bool) {
	c, ok := e.pending[target]
	if !ok {
		return c, false
	}
	delete(e.pending, target)
	if e.outgoing[c.ChallengerID] == target {
		delete(e.outgoing, c.ChallengerID)
	}
	return c, true
}

// Accept escrows both stakes, flips, and schedules the payout. The challenge
// is consumed even when accept fails.
func (e *WagerEngine) Accept(target domain.Player) (domain.FlipResult, error) {
	e.mu.Lock()
	c, ok := e.take(target.ID)
	if !ok {
		e.mu.Unlock()
		return domain.FlipResult{}, ErrChallengeNotFound
	}
	res, err := e.escrow(c)
	if err != nil {
		e.mu.Unlock()
		wagers.WithLabelValues("accept_failed").Inc()
		e.notifier.Notify(c.ChallengerID, domain.Event{
			Type:    domain.EventChallengeCanceled,
			Message: fmt.Sprintf("Coinflip with %s was cancelled: %v", c.TargetName, err),
			Data:    c,
		})
		return domain.FlipResult{}, err
	}
	p := &payout{result: res}
	e.inflight[c.ID] = p
	p.timer = e.sched.AfterFunc(e.cfg.RevealDelay, func() {
		e.dispatch(func() { e.reveal(c.ID) })
	})
	e.mu.Unlock()

	wagers.WithLabelValues("accepted").Inc()
	started := domain.Event{
		Type:    domain.EventFlipStarted,
		Message: fmt.Sprintf("Flipping for a pot of %s...", domain.FormatAmount(res.Pot)),
		Data:    map[string]any{"challenge_id": c.ID, "pot": res.Pot, "reveal_at": res.RevealAt},
	}
	e.notifier.Notify(c.ChallengerID, started)
	e.notifier.Notify(c.TargetID, started)
	logger.Info("coinflip accepted", "challenge_id", c.ID, "winner", res.WinnerID, "amount", c.Amount)
	return res, nil
}

// escrow debits both parties and decides the winner. The caller holds e.mu.
func (e *WagerEngine) escrow(c domain.Challenge) (domain.FlipResult, error) {
	if !e.online(c.ChallengerID) {
		return domain.FlipResult{}, ErrPlayerOffline
	}
	if !e.ledger.Has(c.ChallengerID, c.Amount) || !e.ledger.Has(c.TargetID, c.Amount) {
		return domain.FlipResult{}, ErrInsufficientFunds
	}
	if _, err := e.ledger.Debit(c.ChallengerID, c.Amount); err != nil {
		return domain.FlipResult{}, err
	}
	if _, err := e.ledger.Debit(c.TargetID, c.Amount); err != nil {
		if _, rerr := e.ledger.Credit(c.ChallengerID, c.Amount); rerr != nil {
			logger.Error("coinflip refund failed", "challenge_id", c.ID, "player_id", c.ChallengerID, "error", rerr)
		}
		return domain.FlipResult{}, err
	}

	res := domain.FlipResult{
		ChallengeID: c.ID,
		Stake:       c.Amount,
		Pot:         c.Amount.Add(c.Amount),
		RevealAt:    e.clock.Now().Add(e.cfg.RevealDelay),
	}
	if e.flipper.Heads() {
		res.WinnerID, res.WinnerName = c.ChallengerID, c.ChallengerName
		res.LoserID, res.LoserName = c.TargetID, c.TargetName
	} else {
		res.WinnerID, res.WinnerName = c.TargetID, c.TargetName
		res.LoserID, res.LoserName = c.ChallengerID, c.ChallengerName
	}
	return res, nil
}

func (e *WagerEngine) reveal(id uuid.UUID) {
	e.mu.Lock()
	p, ok := e.inflight[id]
	if ok {
		delete(e.inflight, id)
	}
	e.mu.Unlock()
	if ok {
		e.settle(p.result)
	}
}

// settle credits the pot to the winner whether or not they are still online.
func (e *WagerEngine) settle(r domain.FlipResult) {
	if _, err := e.ledger.Credit(r.WinnerID, r.Pot); err != nil {
		logger.Error("coinflip payout failed", "challenge_id", r.ChallengeID, "player_id", r.WinnerID, "error", err)
		return
	}
	e.txlog.Append(r.WinnerID, CoinflipWinRecord(r.Stake, r.LoserID))
	e.txlog.Append(r.LoserID, CoinflipLossRecord(r.Stake, r.WinnerID))

	wagers.WithLabelValues("paid").Inc()
	ev := domain.Event{
		Type:    domain.EventFlipResult,
		Message: fmt.Sprintf("%s won the coinflip and %s!", r.WinnerName, domain.FormatAmount(r.Pot)),
		Data:    r,
	}
	e.notifier.Notify(r.WinnerID, ev)
	e.notifier.Notify(r.LoserID, ev)
	logger.Info("coinflip resolved", "challenge_id", r.ChallengeID, "player_id", r.WinnerID, "amount", r.Pot)
}

// Expire removes the challenge if it is still the one pending for target.
func (e *WagerEngine) Expire(target domain.PlayerID, id uuid.UUID) error {
	e.mu.Lock()
	c, ok := e.pending[target]
	if !ok || c.ID != id {
		e.mu.Unlock()
		return ErrAlreadyResolved
	}
	e.take(target)
	e.mu.Unlock()

	wagers.WithLabelValues("expired").Inc()
	ev := domain.Event{
		Type:    domain.EventChallengeExpired,
		Message: fmt.Sprintf("Coinflip between %s and %s expired", c.ChallengerName, c.TargetName),
		Data:    c,
	}
	e.notifier.Notify(c.ChallengerID, ev)
	e.notifier.Notify(c.TargetID, ev)
	return nil
}

// Deny rejects the challenge pending for target.
func (e *WagerEngine) Deny(target domain.Player) (domain.Challenge, error) {
	e.mu.Lock()
	c, ok := e.take(target.ID)
	e.mu.Unlock()
	if !ok {
		return domain.Challenge{}, ErrChallengeNotFound
	}
	wagers.WithLabelValues("denied").Inc()
	e.notifier.Notify(c.ChallengerID, domain.Event{
		Type:    domain.EventChallengeDenied,
		Message: target.Name + " denied your coinflip",
		Data:    c,
	})
	return c, nil
}

// Cancel withdraws the challenger's outgoing challenge.
func (e *WagerEngine) Cancel(challenger domain.Player) (domain.Challenge, error) {
	e.mu.Lock()
	target, ok := e.outgoing[challenger.ID]
	var c domain.Challenge
	if ok {
		c, ok = e.take(target)
	}
	e.mu.Unlock()
	if !ok {
		return domain.Challenge{}, ErrChallengeNotFound
	}
	wagers.WithLabelValues("cancelled").Inc()
	e.notifier.Notify(c.TargetID, domain.Event{
		Type:    domain.EventChallengeCanceled,
		Message: challenger.Name + " cancelled their coinflip",
		Data:    c,
	})
	return c, nil
}

func (e *WagerEngine) Pending(target domain.PlayerID) (domain.Challenge, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.pending[target]
	return c, ok
}

func (e *WagerEngine) Outgoing(challenger domain.PlayerID) (domain.Challenge, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target, ok := e.outgoing[challenger]
	if !ok {
		return domain.Challenge{}, false
	}
	c, ok := e.pending[target]
	return c, ok
}

func (e *WagerEngine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// InFlight counts accepted flips whose payout has not fired.
func (e *WagerEngine) InFlight() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inflight)
}

// SettleInFlight pays every scheduled pot now. It is used at shutdown.
func (e *WagerEngine) SettleInFlight() int {
	e.mu.Lock()
	due := make([]*payout, 0, len(e.inflight))
	for id, p := range e.inflight {
		if p.timer != nil {
			p.timer.Stop()
		}
		due = append(due, p)
		delete(e.inflight, id)
	}
	e.mu.Unlock()

	for _, p := range due {
		e.settle(p.result)
	}
	if len(due) > 0 {
		logger.Info("settled in-flight coinflips", "count", len(due))
	}
	return len(due)
}
