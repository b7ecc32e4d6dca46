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

const day = 24 * time.Hour

func newRewards(t *testing.T) (*RewardScheduler, *Ledger, *clock.Manual, *recordingNotifier) {
	t.Helper()
	clk := clock.NewManual(time.Date(2026, 4, 6, 10, 0, 0, 0, time.UTC))
	ledger := NewLedger(nil)
	notes := &recordingNotifier{}
	r := NewRewardScheduler(RewardConfig{
		DailyBase:      dec("100"),
		DailyIncrement: dec("50"),
		MaxStreak:      3,
		InterestRate:   dec("0.10"),
		MaxInterest:    dec("500"),
	}, ledger, NewTransactionLog(clk, nil), notes, clk, nil)
	return r, ledger, clk, notes
}

func TestDailyStreakGrowsAndResets(t *testing.T) {
	r, ledger, clk, _ := newRewards(t)
	p := uuid.New()

	c, err := r.ClaimDaily(p)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Streak)
	assertAmount(t, "100", c.Reward)
	assertAmount(t, "150", c.NextReward)

	_, err = r.ClaimDaily(p)
	require.ErrorIs(t, err, ErrAlreadyClaimedToday)

	clk.Advance(day)
	c, err = r.ClaimDaily(p)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Streak)
	assertAmount(t, "150", c.Reward)

	for range 3 {
		clk.Advance(day)
		c, err = r.ClaimDaily(p)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, c.Streak)
	assertAmount(t, "200", c.Reward)
	assert.True(t, c.MaxedOut)

	clk.Advance(3 * day)
	c, err = r.ClaimDaily(p)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Streak)

	assertAmount(t, "950", ledger.Get(p))
}

func TestDailyUsesCalendarDays(t *testing.T) {
	r, _, clk, _ := newRewards(t)
	p := uuid.New()
	clk.Advance(13*time.Hour + 30*time.Minute)
	_, err := r.ClaimDaily(p)
	require.NoError(t, err)

	clk.Advance(time.Hour)
	c, err := r.ClaimDaily(p)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Streak)
}

func TestStreakStatus(t *testing.T) {
	r, _, clk, _ := newRewards(t)
	p := uuid.New()

	st := r.Streak(p)
	assert.True(t, st.CanClaim)
	assert.False(t, st.Broken)
	assertAmount(t, "100", st.NextReward)

	_, err := r.ClaimDaily(p)
	require.NoError(t, err)
	st = r.Streak(p)
	assert.False(t, st.CanClaim)
	assert.Equal(t, 1, st.Streak)
	assertAmount(t, "150", st.NextReward)

	clk.Advance(2 * day)
	st = r.Streak(p)
	assert.True(t, st.Broken)
	assert.True(t, st.CanClaim)
	assert.Equal(t, 0, st.Streak)
	assertAmount(t, "100", st.NextReward)
}

func TestWeeklyInterest(t *testing.T) {
	r, ledger, clk, notes := newRewards(t)
	p := uuid.New()
	ledger.Set(p, dec("1000"))

	paid, ok := r.WeeklyInterest(p)
	assert.False(t, ok, "first observation only stamps")
	assert.True(t, paid.IsZero())
	assert.NotZero(t, r.Info(p).LastInterestWeek)

	_, ok = r.WeeklyInterest(p)
	assert.False(t, ok)

	clk.Advance(7 * day)
	paid, ok = r.WeeklyInterest(p)
	require.True(t, ok)
	assertAmount(t, "100", paid)
	assertAmount(t, "1100", ledger.Get(p))
	assert.Len(t, notes.of(p, domain.EventInterest), 1)

	_, ok = r.WeeklyInterest(p)
	assert.False(t, ok)
	assertAmount(t, "1100", ledger.Get(p))
}

func TestWeeklyInterestCapAndDust(t *testing.T) {
	r, ledger, clk, _ := newRewards(t)
	rich, poor, broke := uuid.New(), uuid.New(), uuid.New()
	ledger.Set(rich, dec("999999"))
	ledger.Set(poor, dec("0.09"))
	for _, p := range []domain.PlayerID{rich, poor, broke} {
		r.WeeklyInterest(p)
	}
	clk.Advance(7 * day)

	paid, ok := r.WeeklyInterest(rich)
	require.True(t, ok)
	assertAmount(t, "500", paid)

	_, ok = r.WeeklyInterest(poor)
	assert.False(t, ok)
	assertAmount(t, "0.09", ledger.Get(poor))
	_, ok = r.WeeklyInterest(broke)
	assert.False(t, ok)

	week := r.Info(poor).LastInterestWeek
	assert.Equal(t, clock.EpochDay(clk.Now(), time.UTC)/7, week)
}

func TestCalculateInterest(t *testing.T) {
	cases := []struct{ bal, rate, limit, want string }{
		{"1000", "0.10", "500", "100"},
		{"10000", "0.10", "500", "500"},
		{"12.345", "0.10", "500", "1.23"},
		{"0", "0.10", "500", "0"},
		{"100", "0", "500", "0"},
	}
	for _, tc := range cases {
		got := CalculateInterest(dec(tc.bal), dec(tc.rate), dec(tc.limit))
		assert.Truef(t, dec(tc.want).Equal(got), "%s@%s: want %s got %s", tc.bal, tc.rate, tc.want, got)
	}
}

func TestDailyClaimOnEpochDayZero(t *testing.T) {
	clk := clock.NewManual(time.Date(1970, 1, 1, 12, 0, 0, 0, time.UTC))
	r := NewRewardScheduler(RewardConfig{
		DailyBase:      dec("100"),
		DailyIncrement: dec("50"),
		MaxStreak:      3,
	}, NewLedger(nil), NewTransactionLog(clk, nil), nil, clk, nil)
	p := uuid.New()

	_, err := r.ClaimDaily(p)
	require.NoError(t, err)
	_, err = r.ClaimDaily(p)
	require.ErrorIs(t, err, ErrAlreadyClaimedToday)
	assert.False(t, r.Streak(p).CanClaim)

	clk.Advance(day)
	c, err := r.ClaimDaily(p)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Streak)
}

func TestRestoreMarksLegacyClaims(t *testing.T) {
	r, _, clk, _ := newRewards(t)
	p := uuid.New()
	today := clock.EpochDay(clk.Now(), nil)
	r.Restore(domain.RewardsDocument{Players: map[domain.PlayerID]domain.RewardInfo{
		p: {Streak: 2, LastClaimDay: today},
	}})

	assert.True(t, r.Info(p).Claimed)
	_, err := r.ClaimDaily(p)
	require.ErrorIs(t, err, ErrAlreadyClaimedToday)
}
