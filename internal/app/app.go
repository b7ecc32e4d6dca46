// Package app wires the economy services to each other, to the document
// store and to the WebSocket hub.
package app

import (
	"context"
	"time"

	"economy_server/internal/clock"
	"economy_server/internal/config"
	"economy_server/internal/dispatch"
	"economy_server/internal/domain"
	"economy_server/internal/game"
	"economy_server/internal/http/handlers"
	"economy_server/internal/inventory"
	"economy_server/internal/logger"
	"economy_server/internal/repository"
	"economy_server/internal/service"
	"economy_server/internal/ws"
)

// Options override the production collaborators, mainly for tests.
type Options struct {
	Clock     clock.Clock
	Scheduler clock.Scheduler
	Flipper   game.Flipper
	MobDrops  *game.MobDrops
	// Inline runs wager timers on the scheduler goroutine instead of the loop.
	Inline bool
}

type App struct {
	Store   repository.DocumentStore
	Flusher *repository.Flusher
	Loop    *dispatch.Loop
	Hub     *ws.Hub

	Ledger    *service.Ledger
	TxLog     *service.TransactionLog
	Directory *service.Directory
	Inventory *inventory.Mailbox
	Market    *service.Marketplace
	Rewards   *service.RewardScheduler
	Wagers    *service.WagerEngine
	Sessions  *service.Sessions
	Economy   *service.Economy
	Combat    *service.Combat
	Admin     *service.AdminService

	flushInterval time.Duration
	inline        bool
}

// Build constructs every service and restores the persisted aggregates.
// Missing or unreadable documents start empty.
func Build(ctx context.Context, cfg *config.Config, store repository.DocumentStore, opts Options) *App {
	eco := cfg.Economy
	eco.Validate()

	var clk clock.Clock = clock.Real{}
	if opts.Clock != nil {
		clk = opts.Clock
	}
	var sched clock.Scheduler = clock.Real{}
	if opts.Scheduler != nil {
		sched = opts.Scheduler
	}

	a := &App{
		Store:         store,
		Flusher:       repository.NewFlusher(),
		Loop:          dispatch.NewLoop(0),
		flushInterval: cfg.FlushInterval,
		inline:        opts.Inline,
	}

	balancesDirty := a.Flusher.Track(repository.DocBalances)
	shopsDirty := a.Flusher.Track(repository.DocShops)
	txDirty := a.Flusher.Track(repository.DocTransactions)
	rewardsDirty := a.Flusher.Track(repository.DocRewards)
	flagsDirty := a.Flusher.Track(repository.DocPlayerFlags)
	invDirty := a.Flusher.Track(repository.DocInventories)

	a.Hub = ws.NewHub(nil)
	a.Ledger = service.NewLedger(balancesDirty)
	a.TxLog = service.NewTransactionLog(clk, txDirty)
	a.Directory = service.NewDirectory(flagsDirty)
	a.Inventory = inventory.NewMailbox(cfg.InventorySlots, invDirty)

	a.Market = service.NewMarketplace(service.MarketConfig{
		TaxRate:           eco.TaxRate,
		MaxShopsPerPlayer: eco.MaxShopsPerPlayer,
		MaxItemsPerShop:   eco.MaxItemsPerShop,
	}, service.MarketDeps{
		Ledger:    a.Ledger,
		Log:       a.TxLog,
		Directory: a.Directory,
		Inventory: a.Inventory,
		Holder:    a.Inventory,
		Presence:  a.Hub,
		Notifier:  a.Hub,
		Clock:     clk,
		Dirty:     shopsDirty,
	})

	a.Rewards = service.NewRewardScheduler(service.RewardConfig{
		DailyBase:      eco.DailyBaseReward,
		DailyIncrement: eco.DailyRewardIncrement,
		MaxStreak:      eco.MaxStreak,
		InterestRate:   eco.WeeklyInterestRate,
		MaxInterest:    eco.MaxInterestAmount,
		Location:       eco.Location(),
	}, a.Ledger, a.TxLog, a.Hub, clk, rewardsDirty)

	var exec service.Executor = a.Loop
	if opts.Inline {
		exec = dispatch.Inline{}
	}
	a.Wagers = service.NewWagerEngine(service.WagerConfig{
		Timeout:     eco.ChallengeTimeout,
		RevealDelay: eco.RevealDelay,
		MinStake:    eco.MinStake,
	}, service.WagerDeps{
		Ledger:    a.Ledger,
		Log:       a.TxLog,
		Presence:  a.Hub,
		Notifier:  a.Hub,
		Clock:     clk,
		Scheduler: sched,
		Executor:  exec,
		Flipper:   opts.Flipper,
	})

	a.Sessions = service.NewSessions(a.Ledger, a.TxLog, a.Directory, a.Rewards, a.Hub, eco.StartingBalance)
	a.Hub.SetLifecycle(a.Sessions)
	if !opts.Inline {
		a.Hub.SetRunner(a.Loop)
	}

	a.Economy = service.NewEconomy(a.Ledger, a.TxLog, a.Directory, a.Hub, eco.TaxRate)
	a.Combat = service.NewCombat(a.Ledger, a.TxLog, a.Hub, opts.MobDrops, eco.KillRewardPercent)
	a.Admin = service.NewAdminService(a.Ledger, a.TxLog, a.Directory, a.Market, a.Rewards, a.Wagers)

	balances := repository.NewRepository[domain.BalancesDocument](store, repository.DocBalances)
	shops := repository.NewRepository[domain.ShopsDocument](store, repository.DocShops)
	txs := repository.NewRepository[domain.TransactionsDocument](store, repository.DocTransactions)
	rewards := repository.NewRepository[domain.RewardsDocument](store, repository.DocRewards)
	flags := repository.NewRepository[domain.PlayerFlagsDocument](store, repository.DocPlayerFlags)
	invs := repository.NewRepository[domain.InventoriesDocument](store, repository.DocInventories)

	a.Ledger.Restore(balances.LoadOrEmpty(ctx))
	a.Directory.Restore(flags.LoadOrEmpty(ctx))
	a.Market.Restore(shops.LoadOrEmpty(ctx))
	a.TxLog.Restore(txs.LoadOrEmpty(ctx))
	a.Rewards.Restore(rewards.LoadOrEmpty(ctx))
	a.Inventory.Restore(invs.LoadOrEmpty(ctx))

	repository.BindRepository(a.Flusher, balancesDirty, balances, a.Ledger.Snapshot)
	repository.BindRepository(a.Flusher, shopsDirty, shops, a.Market.Snapshot)
	repository.BindRepository(a.Flusher, txDirty, txs, a.TxLog.Snapshot)
	repository.BindRepository(a.Flusher, rewardsDirty, rewards, a.Rewards.Snapshot)
	repository.BindRepository(a.Flusher, flagsDirty, flags, a.Directory.Snapshot)
	repository.BindRepository(a.Flusher, invDirty, invs, a.Inventory.Snapshot)

	logger.Info("economy loaded",
		"accounts", a.Ledger.Accounts(),
		"shops", a.Market.ShopCount(),
		"players", a.Directory.Count(),
	)
	return a
}

// Handler exposes the services to the HTTP layer. Commands are serialized on
// the loop unless the app was built inline.
func (a *App) Handler() *handlers.Handler {
	h := &handlers.Handler{
		Economy:   a.Economy,
		Market:    a.Market,
		Rewards:   a.Rewards,
		Wagers:    a.Wagers,
		Sessions:  a.Sessions,
		Combat:    a.Combat,
		Admin:     a.Admin,
		Directory: a.Directory,
		Inventory: a.Inventory,
	}
	if !a.inline {
		h.Loop = a.Loop
	}
	return h
}

// Start runs the command loop and the periodic flusher until ctx is done.
func (a *App) Start(ctx context.Context) {
	go a.Loop.Run()
	go a.Flusher.Run(ctx, a.flushInterval)
}

// SettleInFlight pays out every wager awaiting its reveal.
func (a *App) SettleInFlight(context.Context) error {
	if n := a.Wagers.SettleInFlight(); n > 0 {
		logger.Info("settled in-flight wagers", "count", n)
	}
	return nil
}

// StopLoop drains queued commands.
func (a *App) StopLoop(ctx context.Context) error {
	return a.Loop.Stop(ctx)
}

// Flush writes every dirty aggregate.
func (a *App) Flush(ctx context.Context) error {
	if err := a.Flusher.Flush(ctx); err != nil {
		return err
	}
	logger.Info("store flushed")
	return nil
}

func (a *App) Close(context.Context) error {
	a.Hub.CloseAll()
	return a.Store.Close()
}
