package service

import (
	"sync"
	"sync/atomic"
	"testing"

	"economy_server/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestLedgerTransferWithTax(t *testing.T) {
	l := NewLedger(nil)
	a, b := uuid.New(), uuid.New()
	_, err := l.Credit(a, dec("50"))
	require.NoError(t, err)

	res, err := l.Transfer(a, b, dec("30"), dec("0.05"))
	require.NoError(t, err)

	assertAmount(t, "20", l.Get(a))
	assertAmount(t, "28.5", l.Get(b))
	assertAmount(t, "1.5", res.Tax)
	assertAmount(t, "28.5", res.Received)
	assertAmount(t, "1.5", l.TaxCollected())
	assertAmount(t, "48.5", l.TotalSupply())
}

func TestLedgerTransferFailsWithoutEffect(t *testing.T) {
	l := NewLedger(nil)
	a, b := uuid.New(), uuid.New()
	l.Set(a, dec("10"))

	_, err := l.Transfer(a, b, dec("10.01"), dec("0.05"))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assertAmount(t, "10", l.Get(a))
	assertAmount(t, "0", l.Get(b))
	assertAmount(t, "0", l.TaxCollected())

	_, err = l.Transfer(a, a, dec("1"), decimal.Zero)
	require.ErrorIs(t, err, ErrSelfTarget)

	_, err = l.Transfer(a, b, dec("-1"), decimal.Zero)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestLedgerRejectsNegativeAmounts(t *testing.T) {
	l := NewLedger(nil)
	id := uuid.New()

	_, err := l.Credit(id, dec("-5"))
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = l.Debit(id, dec("-5"))
	require.ErrorIs(t, err, ErrInvalidAmount)

	old := l.Set(id, dec("-3"))
	assertAmount(t, "0", old)
	assertAmount(t, "0", l.Get(id))
}

func TestLedgerDebitUpTo(t *testing.T) {
	l := NewLedger(nil)
	id := uuid.New()
	l.Set(id, dec("7.25"))

	removed, err := l.DebitUpTo(id, dec("100"))
	require.NoError(t, err)
	assertAmount(t, "7.25", removed)
	assertAmount(t, "0", l.Get(id))
}

func TestLedgerConcurrentDebitsNeverOverdraw(t *testing.T) {
	l := NewLedger(nil)
	id := uuid.New()
	l.Set(id, dec("100"))

	var ok, short atomic.Int32
	var wg sync.WaitGroup
	for range 250 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Debit(id, dec("1")); err != nil {
				short.Add(1)
				return
			}
			ok.Add(1)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 100, ok.Load())
	assert.EqualValues(t, 150, short.Load())
	assertAmount(t, "0", l.Get(id))
}

func TestLedgerUntaxedOperationsConserveMoney(t *testing.T) {
	l := NewLedger(nil)
	a, b := uuid.New(), uuid.New()
	l.Set(a, dec("40"))
	l.Set(b, dec("60"))

	_, err := l.Transfer(a, b, dec("25"), decimal.Zero)
	require.NoError(t, err)
	assertAmount(t, "100", l.TotalSupply())
	assertAmount(t, "0", l.TaxCollected())
}

func TestLedgerTopAndRank(t *testing.T) {
	l := NewLedger(nil)
	ids := make([]domain.PlayerID, 25)
	for i := range ids {
		ids[i] = uuid.New()
		l.Set(ids[i], decimal.NewFromInt(int64(i+1)))
	}

	page := l.Top(1, 10)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Entries, 10)
	assert.Equal(t, ids[24], page.Entries[0].PlayerID)
	assert.Equal(t, 1, page.Entries[0].Rank)

	last := l.Top(99, 10)
	assert.Equal(t, 3, last.Page)
	require.Len(t, last.Entries, 5)
	assert.Equal(t, 25, last.Entries[4].Rank)

	assert.Equal(t, 1, l.Rank(ids[24]))
	assert.Equal(t, 25, l.Rank(ids[0]))
	assert.Equal(t, 0, l.Rank(uuid.New()))

	empty := NewLedger(nil).Top(1, 10)
	assert.Empty(t, empty.Entries)
}

func TestLedgerSnapshotRestore(t *testing.T) {
	l := NewLedger(nil)
	a, b := uuid.New(), uuid.New()
	l.Set(a, dec("12.34"))
	_, err := l.Transfer(a, b, dec("10"), dec("0.1"))
	require.NoError(t, err)

	doc := l.Snapshot()
	doc.Balances[uuid.New()] = dec("-4")

	r := NewLedger(nil)
	r.Restore(doc)
	assertAmount(t, "2.34", r.Get(a))
	assertAmount(t, "9", r.Get(b))
	assertAmount(t, "1", r.TaxCollected())
	assertAmount(t, "11.34", r.TotalSupply())
}

type countingDirty struct{ n atomic.Int32 }

func (c *countingDirty) MarkDirty() { c.n.Add(1) }

func TestLedgerMarksDirty(t *testing.T) {
	d := &countingDirty{}
	l := NewLedger(d)
	_, _ = l.Credit(uuid.New(), dec("1"))
	assert.EqualValues(t, 1, d.n.Load())
}
