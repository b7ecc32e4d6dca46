package service

import (
	"math/rand/v2"
	"testing"

	"economy_server/internal/domain"
	"economy_server/internal/game"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPvPKillBounty(t *testing.T) {
	ledger := NewLedger(nil)
	txlog := NewTransactionLog(nil, nil)
	notes := &recordingNotifier{}
	c := NewCombat(ledger, txlog, notes, nil, dec("0.1"))
	killer := domain.Player{ID: uuid.New(), Name: "k"}
	victim := domain.Player{ID: uuid.New(), Name: "v"}
	ledger.Set(victim.ID, dec("123.45"))

	bounty, err := c.PvPKill(killer, victim)
	require.NoError(t, err)
	assertAmount(t, "12.34", bounty)
	assertAmount(t, "111.11", ledger.Get(victim.ID))
	assertAmount(t, "12.34", ledger.Get(killer.ID))
	assertAmount(t, "0", ledger.TaxCollected())
	assert.Equal(t, domain.TxPvPKill, txlog.Recent(killer.ID, 1)[0].Type)
	assert.Equal(t, domain.TxPvPDeath, txlog.Recent(victim.ID, 1)[0].Type)
	assert.Len(t, notes.of(victim.ID, domain.EventPvPLoss), 1)

	ledger.Set(victim.ID, dec("0.05"))
	bounty, err = c.PvPKill(killer, victim)
	require.NoError(t, err)
	assert.True(t, bounty.IsZero())

	_, err = c.PvPKill(killer, killer)
	require.ErrorIs(t, err, ErrSelfTarget)
}

func TestPvPKillDisabled(t *testing.T) {
	ledger := NewLedger(nil)
	c := NewCombat(ledger, NewTransactionLog(nil, nil), nil, nil, dec("0"))
	victim := domain.Player{ID: uuid.New()}
	ledger.Set(victim.ID, dec("100"))
	bounty, err := c.PvPKill(domain.Player{ID: uuid.New()}, victim)
	require.NoError(t, err)
	assert.True(t, bounty.IsZero())
	assertAmount(t, "100", ledger.Get(victim.ID))
}

func TestMobKillLogsOnlySignificantDrops(t *testing.T) {
	ledger := NewLedger(nil)
	txlog := NewTransactionLog(nil, nil)
	c := NewCombat(ledger, txlog, nil, game.NewMobDrops(rand.New(rand.NewPCG(7, 8))), dec("0"))
	p := uuid.New()

	drop, err := c.MobKill(p, game.Kill{Kind: "minecraft:wither"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, drop.Coins, 250)
	recs := txlog.Recent(p, 0)
	require.Len(t, recs, 1)
	assert.Equal(t, "Killed Wither", recs[0].Description)

	for range 50 {
		_, err := c.MobKill(p, game.Kill{Kind: "silverfish"})
		require.NoError(t, err)
	}
	assert.Len(t, txlog.Recent(p, 0), 1)
	assert.True(t, ledger.Get(p).GreaterThanOrEqual(dec("250")))
}
