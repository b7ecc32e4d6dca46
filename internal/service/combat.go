package service

import (
	"fmt"

	"economy_server/internal/domain"
	"economy_server/internal/game"

	"github.com/shopspring/decimal"
)

// mobDropLogThreshold keeps small farming drops out of the history.
const mobDropLogThreshold = 5

// Combat pays coin rewards for mob and player kills.
type Combat struct {
	ledger      *Ledger
	txlog       *TransactionLog
	notifier    Notifier
	drops       *game.MobDrops
	killPercent decimal.Decimal
}

func NewCombat(ledger *Ledger, txlog *TransactionLog, notifier Notifier, drops *game.MobDrops, killPercent decimal.Decimal) *Combat {
	if drops == nil {
		drops = game.NewMobDrops(nil)
	}
	return &Combat{
		ledger:      ledger,
		txlog:       txlog,
		notifier:    orNopNotifier(notifier),
		drops:       drops,
		killPercent: killPercent,
	}
}

func (c *Combat) MobKill(player domain.PlayerID, kill game.Kill) (game.Drop, error) {
	drop := c.drops.Roll(kill)
	if drop.Coins <= 0 {
		return drop, nil
	}
	coins := decimal.NewFromInt(int64(drop.Coins))
	if _, err := c.ledger.Credit(player, coins); err != nil {
		return game.Drop{}, err
	}
	rewardsPaid.WithLabelValues("mob").Inc()
	if drop.Coins >= mobDropLogThreshold {
		c.txlog.Append(player, MobDropRecord(coins, drop.Mob))
		c.notifier.Notify(player, domain.Event{
			Type:    domain.EventMobDrop,
			Message: fmt.Sprintf("+%s for killing %s", domain.FormatAmount(coins), drop.Mob),
			Data:    drop,
		})
	}
	return drop, nil
}

// CalculateBounty is victimBalance*percent rounded down to cents.
func CalculateBounty(balance, percent decimal.Decimal) decimal.Decimal {
	if !balance.IsPositive() || !percent.IsPositive() {
		return decimal.Zero
	}
	return domain.FloorAmount(balance.Mul(percent))
}

// PvPKill moves the configured share of the victim's balance to the killer,
// untaxed. It returns zero when no bounty applies.
func (c *Combat) PvPKill(killer, victim domain.Player) (decimal.Decimal, error) {
	if killer.ID == victim.ID {
		return decimal.Zero, ErrSelfTarget
	}
	bounty := CalculateBounty(c.ledger.Get(victim.ID), c.killPercent)
	if bounty.LessThan(domain.MinAmount) {
		return decimal.Zero, nil
	}
	if _, err := c.ledger.Transfer(victim.ID, killer.ID, bounty, decimal.Zero); err != nil {
		return decimal.Zero, err
	}
	c.txlog.Append(killer.ID, PvPKillRecord(bounty, victim.ID, victim.Name))
	c.txlog.Append(victim.ID, PvPDeathRecord(bounty, killer.ID, killer.Name))
	rewardsPaid.WithLabelValues("pvp").Inc()

	amount := domain.FormatAmount(bounty)
	c.notifier.Notify(killer.ID, domain.Event{
		Type:    domain.EventPvPReward,
		Message: fmt.Sprintf("+%s for killing %s", amount, victim.Name),
		Data:    map[string]any{"amount": bounty, "victim": victim.ID},
	})
	c.notifier.Notify(victim.ID, domain.Event{
		Type:    domain.EventPvPLoss,
		Message: fmt.Sprintf("-%s lost to %s", amount, killer.Name),
		Data:    map[string]any{"amount": bounty, "killer": killer.ID},
	})
	return bounty, nil
}
