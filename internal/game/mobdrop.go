package game

import (
	"math/rand/v2"
	"strings"
	"sync"
)

// DropChance is the probability that a non-boss kill drops coins.
const DropChance = 0.5

type mobReward struct {
	name   string
	min    int
	spread int // reward is min + [0, spread)
	boss   bool
	// perSize multiplies the mob's size instead of rolling a range.
	perSize int
	passive bool
}

var mobTable = map[string]mobReward{
	"ender_dragon":   {name: "Ender Dragon", min: 500, spread: 500, boss: true},
	"wither":         {name: "Wither", min: 250, spread: 250, boss: true},
	"elder_guardian": {name: "Elder Guardian", min: 50, spread: 50, boss: true},
	"warden":         {name: "Warden", min: 100, spread: 100, boss: true},
	"ravager":        {name: "Ravager", min: 20, spread: 20, boss: true},

	"evoker":       {name: "Evoker", min: 15, spread: 10},
	"vindicator":   {name: "Vindicator", min: 8, spread: 7},
	"witch":        {name: "Witch", min: 5, spread: 5},
	"piglin_brute": {name: "Piglin Brute", min: 10, spread: 10},
	"piglin":       {name: "Piglin", min: 3, spread: 3},
	"ghast":        {name: "Ghast", min: 8, spread: 7},
	"blaze":        {name: "Blaze", min: 5, spread: 5},
	"magma_cube":   {name: "Magma Cube", perSize: 2},
	"slime":        {name: "Slime", perSize: 1},

	"creeper":     {name: "Creeper", min: 3, spread: 3},
	"skeleton":    {name: "Skeleton", min: 2, spread: 3},
	"zombie":      {name: "Zombie", min: 2, spread: 2},
	"spider":      {name: "Spider", min: 2, spread: 2},
	"enderman":    {name: "Enderman", min: 5, spread: 5},
	"guardian":    {name: "Guardian", min: 5, spread: 5},
	"phantom":     {name: "Phantom", min: 3, spread: 3},
	"drowned":     {name: "Drowned", min: 2, spread: 3},
	"husk":        {name: "Husk", min: 2, spread: 3},
	"stray":       {name: "Stray", min: 2, spread: 3},
	"silverfish":  {name: "Silverfish", min: 1},
	"endermite":   {name: "Endermite", min: 1},
	"cave_spider": {name: "Cave Spider", min: 3, spread: 2},
	"shulker":     {name: "Shulker", min: 10, spread: 10},

	"wither_skeleton": {name: "Wither Skeleton", min: 5, spread: 5},
	"hoglin":          {name: "Hoglin", min: 5, spread: 5},
	"zoglin":          {name: "Zoglin", min: 5, spread: 5},

	"cow":     {name: "Cow", passive: true},
	"pig":     {name: "Pig", passive: true},
	"sheep":   {name: "Sheep", passive: true},
	"chicken": {name: "Chicken", passive: true},
}

// Kill describes a mob killed by a player.
type Kill struct {
	Kind    string `json:"kind"`
	Size    int    `json:"size,omitempty"`
	Hostile bool   `json:"hostile,omitempty"`
}

// Drop is the outcome of a kill. Coins is zero when nothing dropped.
type Drop struct {
	Mob   string `json:"mob"`
	Coins int    `json:"coins"`
	Boss  bool   `json:"boss"`
}

// MobDrops rolls coin rewards for mob kills. It is safe for concurrent use.
type MobDrops struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewMobDrops(rng *rand.Rand) *MobDrops {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &MobDrops{rng: rng}
}

func normalizeKind(kind string) string {
	kind = strings.ToLower(strings.TrimSpace(kind))
	return strings.TrimPrefix(kind, "minecraft:")
}

// Roll picks the reward for a kill and applies the drop chance.
func (d *MobDrops) Roll(k Kill) Drop {
	kind := normalizeKind(k.Kind)
	r, known := mobTable[kind]
	if !known {
		if !k.Hostile {
			return Drop{Mob: kind}
		}
		r = mobReward{name: kind, min: 1, spread: 3}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var coins int
	switch {
	case r.perSize > 0:
		coins = max(k.Size, 1) * r.perSize
	case r.passive:
		if d.rng.Float64() < 0.3 {
			coins = 1
		}
	default:
		coins = r.min
		if r.spread > 0 {
			coins += d.rng.IntN(r.spread)
		}
	}
	if coins <= 0 {
		return Drop{Mob: r.name}
	}
	if d.rng.Float64() > DropChance && !r.boss {
		return Drop{Mob: r.name, Boss: r.boss}
	}
	return Drop{Mob: r.name, Coins: coins, Boss: r.boss}
}
