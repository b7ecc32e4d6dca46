package service

import (
	"testing"
	"time"

	"economy_server/internal/clock"
	"economy_server/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStartOrder(t *testing.T) {
	clk := clock.NewManual(time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC))
	ledger := NewLedger(nil)
	txlog := NewTransactionLog(clk, nil)
	dir := NewDirectory(nil)
	notes := &recordingNotifier{}
	rewards := NewRewardScheduler(RewardConfig{
		DailyBase: dec("100"), MaxStreak: 7, InterestRate: dec("0.10"), MaxInterest: dec("500"),
	}, ledger, txlog, notes, clk, nil)
	s := NewSessions(ledger, txlog, dir, rewards, notes, dec("100"))
	p := domain.Player{ID: uuid.New(), Name: "steve"}

	first := s.Start(p)
	assertAmount(t, "100", first.StartingBalance)
	assertAmount(t, "0", first.Interest)
	assertAmount(t, "100", first.Balance)
	assert.Nil(t, first.OfflineSales)
	assert.Len(t, notes.of(p.ID, domain.EventStartingBalance), 1)

	resolved, err := dir.Resolve("STEVE")
	require.NoError(t, err)
	assert.Equal(t, p.ID, resolved.ID)

	dir.QueueOfflineSale(p.ID, dec("19"))
	dir.QueueOfflineSale(p.ID, dec("9.5"))
	clk.Advance(8 * day)

	second := s.Start(p)
	assertAmount(t, "0", second.StartingBalance)
	require.NotNil(t, second.OfflineSales)
	assert.Equal(t, 2, second.OfflineSales.Count)
	assertAmount(t, "28.5", second.OfflineSales.Total)
	assertAmount(t, "10", second.Interest)
	assertAmount(t, "110", second.Balance)

	third := s.Start(p)
	assert.Nil(t, third.OfflineSales)
	assertAmount(t, "0", third.Interest)

	recs := txlog.Recent(p.ID, 0)
	require.Len(t, recs, 2)
	assert.Equal(t, domain.TxInterest, recs[0].Type)
	assert.Equal(t, domain.TxStartingBalance, recs[1].Type)
}
