package service

import (
	"sync"

	"economy_server/internal/domain"
)

type fakePresence struct {
	mu     sync.Mutex
	online map[domain.PlayerID]bool
}

func newPresence(ids ...domain.PlayerID) *fakePresence {
	p := &fakePresence{online: map[domain.PlayerID]bool{}}
	for _, id := range ids {
		p.online[id] = true
	}
	return p
}

func (p *fakePresence) IsOnline(id domain.PlayerID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online[id]
}

func (p *fakePresence) set(id domain.PlayerID, on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[id] = on
}

type sentEvent struct {
	to domain.PlayerID
	ev domain.Event
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) Notify(to domain.PlayerID, ev domain.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{to, ev})
}

func (n *recordingNotifier) of(to domain.PlayerID, typ domain.EventType) []domain.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.Event
	for _, e := range n.events {
		if e.to == to && e.ev.Type == typ {
			out = append(out, e.ev)
		}
	}
	return out
}

// bag is an unbounded Inventory and Holder; full makes Give refuse.
type bag struct {
	mu      sync.Mutex
	full    bool
	held    map[domain.PlayerID][]domain.ItemStack
	dropped map[domain.PlayerID][]domain.ItemStack
}

func newBag() *bag {
	return &bag{held: map[domain.PlayerID][]domain.ItemStack{}, dropped: map[domain.PlayerID][]domain.ItemStack{}}
}

func (b *bag) Give(p domain.PlayerID, s domain.ItemStack) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.full {
		return false
	}
	b.held[p] = append(b.held[p], s)
	return true
}

func (b *bag) Drop(p domain.PlayerID, s domain.ItemStack) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dropped[p] = append(b.dropped[p], s)
}

func (b *bag) Take(p domain.PlayerID, itemID string, units int) (domain.ItemStack, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	have := 0
	var proto domain.ItemStack
	for _, s := range b.held[p] {
		if s.ItemID == itemID {
			have += s.Count
			proto = s
		}
	}
	if have < units {
		return domain.ItemStack{}, ErrNotEnoughItems
	}
	var rest []domain.ItemStack
	left := units
	for _, s := range b.held[p] {
		if s.ItemID == itemID && left > 0 {
			n := min(left, s.Count)
			s.Count -= n
			left -= n
		}
		if s.Count > 0 {
			rest = append(rest, s)
		}
	}
	b.held[p] = rest
	proto.Count = units
	return proto, nil
}

func (b *bag) units(p domain.PlayerID, itemID string, ground bool) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	src := b.held[p]
	if ground {
		src = b.dropped[p]
	}
	n := 0
	for _, s := range src {
		if s.ItemID == itemID {
			n += s.Count
		}
	}
	return n
}
