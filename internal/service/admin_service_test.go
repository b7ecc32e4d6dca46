package service

import (
	"testing"

	"economy_server/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminStats(t *testing.T) {
	f := newMarketFixture(t)
	shop, item := f.listing(t, 2, "10")
	f.ledger.Set(f.buyer.ID, dec("100"))
	_, err := f.market.Purchase(f.buyer, shop.ID, item.ID, 1)
	require.NoError(t, err)

	rewards := NewRewardScheduler(RewardConfig{MaxStreak: 1}, f.ledger, f.txlog, nil, f.clk, nil)
	wagers := NewWagerEngine(WagerConfig{}, WagerDeps{Ledger: f.ledger, Log: f.txlog, Clock: f.clk, Scheduler: f.clk})
	admin := NewAdminService(f.ledger, f.txlog, f.dir, f.market, rewards, wagers)

	st := admin.GetStats()
	assert.Equal(t, 2, st.PlayersKnown)
	assert.Equal(t, 1, st.Shops)
	assert.Equal(t, 1, st.Listings)
	assertAmount(t, "0.5", st.TaxCollected)
	assertAmount(t, "99.5", st.TotalSupply)
	assert.Zero(t, st.PendingChallenges)

	info, err := admin.GetPlayer("SELLER")
	require.NoError(t, err)
	assert.Equal(t, f.seller.ID, info.Player.ID)
	assertAmount(t, "9.5", info.Balance)
	assert.Len(t, info.Shops, 1)
	require.Len(t, info.Transactions, 1)
	assert.Equal(t, domain.TxSale, info.Transactions[0].Type)

	_, err = admin.GetPlayer(uuid.NewString())
	require.ErrorIs(t, err, ErrPlayerNotFound)
}
