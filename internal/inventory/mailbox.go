// Package inventory holds the items players carry between purchases and
// listings. It stands in for the game world's player inventory.
package inventory

import (
	"fmt"
	"reflect"
	"sync"

	"economy_server/internal/domain"
	"economy_server/internal/service"
)

const DefaultSlots = 36

var (
	_ service.Inventory = (*Mailbox)(nil)
	_ service.Holder    = (*Mailbox)(nil)
)

// Mailbox keeps a slot-capped list of held stacks per player and a ground
// pile for stacks that did not fit.
type Mailbox struct {
	mu     sync.Mutex
	slots  int
	held   map[domain.PlayerID][]domain.ItemStack
	ground map[domain.PlayerID][]domain.ItemStack
	dirty  service.DirtyMarker
}

func NewMailbox(slots int, dirty service.DirtyMarker) *Mailbox {
	if slots <= 0 {
		slots = DefaultSlots
	}
	if dirty == nil {
		dirty = nop{}
	}
	return &Mailbox{
		slots:  slots,
		held:   make(map[domain.PlayerID][]domain.ItemStack),
		ground: make(map[domain.PlayerID][]domain.ItemStack),
		dirty:  dirty,
	}
}

type nop struct{}

func (nop) MarkDirty() {}

func sameItem(a, b domain.ItemStack) bool {
	return a.ItemID == b.ItemID && reflect.DeepEqual(a.Tag, b.Tag)
}

// place merges stack into held, returning the new slice, or false if the
// stack does not fit. held is not modified on failure.
func place(held []domain.ItemStack, stack domain.ItemStack, slots int) ([]domain.ItemStack, bool) {
	out := make([]domain.ItemStack, len(held), len(held)+1)
	copy(out, held)

	left := stack.Count
	limit := stack.StackLimit()
	for i := range out {
		if left == 0 {
			break
		}
		if !sameItem(out[i], stack) || out[i].Count >= limit {
			continue
		}
		n := min(left, limit-out[i].Count)
		out[i].Count += n
		left -= n
	}
	for _, chunk := range stack.Split(left) {
		if len(out) >= slots {
			return held, false
		}
		out = append(out, chunk)
	}
	return out, true
}

// Give adds the stack to the player's held items. It reports false, changing
// nothing, when there is no room.
func (m *Mailbox) Give(player domain.PlayerID, stack domain.ItemStack) bool {
	if stack.Count <= 0 {
		return true
	}
	m.mu.Lock()
	out, ok := place(m.held[player], stack, m.slots)
	if ok {
		m.held[player] = out
	}
	m.mu.Unlock()
	if ok {
		m.dirty.MarkDirty()
	}
	return ok
}

// Drop leaves the stack on the player's ground pile.
func (m *Mailbox) Drop(player domain.PlayerID, stack domain.ItemStack) {
	if stack.Count <= 0 {
		return
	}
	m.mu.Lock()
	m.ground[player] = append(m.ground[player], stack)
	m.mu.Unlock()
	m.dirty.MarkDirty()
}

// Take removes units of itemID from the player's held stacks, most recent
// stacks last. It fails without effect if the player holds fewer units.
func (m *Mailbox) Take(player domain.PlayerID, itemID string, units int) (domain.ItemStack, error) {
	if units <= 0 {
		return domain.ItemStack{}, service.ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	held := m.held[player]
	var proto *domain.ItemStack
	total := 0
	for i := range held {
		if held[i].ItemID == itemID {
			if proto == nil {
				proto = &held[i]
			}
			if sameItem(held[i], *proto) {
				total += held[i].Count
			}
		}
	}
	if proto == nil || total < units {
		return domain.ItemStack{}, fmt.Errorf("%s: %w", itemID, service.ErrNotEnoughItems)
	}

	taken := *proto
	taken.Count = units
	left := units
	out := make([]domain.ItemStack, 0, len(held))
	for _, s := range held {
		if left > 0 && sameItem(s, taken) {
			n := min(left, s.Count)
			s.Count -= n
			left -= n
		}
		if s.Count > 0 {
			out = append(out, s)
		}
	}
	m.held[player] = out
	m.dirty.MarkDirty()
	return taken, nil
}

// Collect moves as much of the ground pile into held slots as fits and
// returns how many stacks were picked up.
func (m *Mailbox) Collect(player domain.PlayerID) int {
	m.mu.Lock()
	held := m.held[player]
	var rest []domain.ItemStack
	picked := 0
	for _, s := range m.ground[player] {
		out, ok := place(held, s, m.slots)
		if !ok {
			rest = append(rest, s)
			continue
		}
		held = out
		picked++
	}
	m.held[player] = held
	if len(rest) == 0 {
		delete(m.ground, player)
	} else {
		m.ground[player] = rest
	}
	m.mu.Unlock()
	if picked > 0 {
		m.dirty.MarkDirty()
	}
	return picked
}

// Grant adds a stack for testing, dropping what does not fit.
func (m *Mailbox) Grant(player domain.PlayerID, stack domain.ItemStack) (dropped bool) {
	if !m.Give(player, stack) {
		m.Drop(player, stack)
		return true
	}
	return false
}

type Contents struct {
	Held   []domain.ItemStack `json:"held"`
	Ground []domain.ItemStack `json:"ground"`
	Slots  int                `json:"slots"`
}

func (m *Mailbox) Contents(player domain.PlayerID) Contents {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Contents{
		Held:   append([]domain.ItemStack{}, m.held[player]...),
		Ground: append([]domain.ItemStack{}, m.ground[player]...),
		Slots:  m.slots,
	}
}

// Units counts the held units of itemID.
func (m *Mailbox) Units(player domain.PlayerID, itemID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.held[player] {
		if s.ItemID == itemID {
			n += s.Count
		}
	}
	return n
}

func copyStacks(src map[domain.PlayerID][]domain.ItemStack) map[domain.PlayerID][]domain.ItemStack {
	out := make(map[domain.PlayerID][]domain.ItemStack, len(src))
	for id, list := range src {
		if len(list) > 0 {
			out[id] = append([]domain.ItemStack(nil), list...)
		}
	}
	return out
}

func (m *Mailbox) Snapshot() domain.InventoriesDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.InventoriesDocument{Held: copyStacks(m.held), Ground: copyStacks(m.ground)}
}

func (m *Mailbox) Restore(doc domain.InventoriesDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = copyStacks(doc.Held)
	m.ground = copyStacks(doc.Ground)
}
