package game

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBossesAlwaysDrop(t *testing.T) {
	d := NewMobDrops(rand.New(rand.NewPCG(1, 2)))
	for range 200 {
		drop := d.Roll(Kill{Kind: "minecraft:ender_dragon"})
		assert.True(t, drop.Boss)
		assert.GreaterOrEqual(t, drop.Coins, 500)
		assert.Less(t, drop.Coins, 1000)
	}
}

func TestRegularMobsDropAboutHalfTheTime(t *testing.T) {
	d := NewMobDrops(rand.New(rand.NewPCG(3, 4)))
	dropped := 0
	const n = 2000
	for range n {
		drop := d.Roll(Kill{Kind: "zombie"})
		if drop.Coins > 0 {
			dropped++
			assert.GreaterOrEqual(t, drop.Coins, 2)
			assert.LessOrEqual(t, drop.Coins, 3)
		}
		assert.Equal(t, "Zombie", drop.Mob)
	}
	assert.InDelta(t, n/2, dropped, n/10)
}

func TestSizedAndUnknownMobs(t *testing.T) {
	d := NewMobDrops(rand.New(rand.NewPCG(5, 6)))
	seen := map[int]bool{}
	for range 100 {
		seen[d.Roll(Kill{Kind: "magma_cube", Size: 4}).Coins] = true
		assert.Zero(t, d.Roll(Kill{Kind: "villager"}).Coins)
		c := d.Roll(Kill{Kind: "modded:thing", Hostile: true}).Coins
		assert.True(t, c == 0 || (c >= 1 && c <= 3), c)
	}
	assert.Equal(t, map[int]bool{0: true, 8: true}, seen)
}

func TestCryptoFlipperIsRoughlyFair(t *testing.T) {
	heads := 0
	const n = 4000
	for range n {
		if (CryptoFlipper{}).Heads() {
			heads++
		}
	}
	assert.InDelta(t, n/2, heads, n/10)
	assert.True(t, FlipFunc(func() bool { return true }).Heads())
}
