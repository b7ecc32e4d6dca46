package inventory

import (
	"testing"

	"economy_server/internal/domain"
	"economy_server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stone(n int) domain.ItemStack {
	return domain.ItemStack{ItemID: "minecraft:stone", DisplayName: "Stone", Count: n}
}

func TestGiveMergesAndRespectsSlots(t *testing.T) {
	m := NewMailbox(2, nil)
	p := uuid.New()

	require.True(t, m.Give(p, stone(40)))
	require.True(t, m.Give(p, stone(40)))
	c := m.Contents(p)
	require.Len(t, c.Held, 2)
	assert.Equal(t, 64, c.Held[0].Count)
	assert.Equal(t, 16, c.Held[1].Count)

	assert.False(t, m.Give(p, stone(60)))
	assert.Equal(t, 80, m.Units(p, "minecraft:stone"))

	assert.True(t, m.Give(p, stone(48)))
	assert.Equal(t, 128, m.Units(p, "minecraft:stone"))
}

func TestDropAndCollect(t *testing.T) {
	m := NewMailbox(1, nil)
	p := uuid.New()
	require.True(t, m.Give(p, stone(64)))

	assert.True(t, m.Grant(p, domain.ItemStack{ItemID: "minecraft:dirt", Count: 3}))
	c := m.Contents(p)
	require.Len(t, c.Ground, 1)

	assert.Equal(t, 0, m.Collect(p))

	_, err := m.Take(p, "minecraft:stone", 64)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Collect(p))
	c = m.Contents(p)
	assert.Empty(t, c.Ground)
	assert.Equal(t, 3, m.Units(p, "minecraft:dirt"))
}

func TestTake(t *testing.T) {
	m := NewMailbox(0, nil)
	p := uuid.New()
	require.True(t, m.Give(p, stone(100)))

	_, err := m.Take(p, "minecraft:stone", 101)
	require.ErrorIs(t, err, service.ErrNotEnoughItems)
	assert.Equal(t, 100, m.Units(p, "minecraft:stone"))

	got, err := m.Take(p, "minecraft:stone", 70)
	require.NoError(t, err)
	assert.Equal(t, 70, got.Count)
	assert.Equal(t, "Stone", got.DisplayName)
	assert.Equal(t, 30, m.Units(p, "minecraft:stone"))

	_, err = m.Take(p, "minecraft:gold", 1)
	require.ErrorIs(t, err, service.ErrNotEnoughItems)
	_, err = m.Take(p, "minecraft:stone", 0)
	require.ErrorIs(t, err, service.ErrInvalidAmount)
}

func TestSnapshotRestore(t *testing.T) {
	m := NewMailbox(5, nil)
	p := uuid.New()
	m.Give(p, stone(10))
	m.Drop(p, stone(2))

	r := NewMailbox(5, nil)
	r.Restore(m.Snapshot())
	c := r.Contents(p)
	assert.Equal(t, 10, c.Held[0].Count)
	assert.Equal(t, 2, c.Ground[0].Count)
}
