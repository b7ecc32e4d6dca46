package service

import (
	"strings"
	"sync"

	"economy_server/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Directory maps player ids to display names and keeps the per-player flags
// that survive restarts: the starting balance grant and queued offline sales.
type Directory struct {
	mu           sync.RWMutex
	names        map[domain.PlayerID]string
	byName       map[string]domain.PlayerID
	started      map[domain.PlayerID]struct{}
	offlineSales map[domain.PlayerID]domain.OfflineSalesSummary
	dirty        DirtyMarker
}

func NewDirectory(dirty DirtyMarker) *Directory {
	return &Directory{
		names:        make(map[domain.PlayerID]string),
		byName:       make(map[string]domain.PlayerID),
		started:      make(map[domain.PlayerID]struct{}),
		offlineSales: make(map[domain.PlayerID]domain.OfflineSalesSummary),
		dirty:        orNopDirty(dirty),
	}
}

// Remember records the current display name of a player.
func (d *Directory) Remember(p domain.Player) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return
	}
	d.mu.Lock()
	if old, ok := d.names[p.ID]; ok {
		if old == name {
			d.mu.Unlock()
			return
		}
		if d.byName[strings.ToLower(old)] == p.ID {
			delete(d.byName, strings.ToLower(old))
		}
	}
	d.names[p.ID] = name
	d.byName[strings.ToLower(name)] = p.ID
	d.mu.Unlock()
	d.dirty.MarkDirty()
}

// Name returns the last known name, or a shortened id.
func (d *Directory) Name(id domain.PlayerID) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if n, ok := d.names[id]; ok {
		return n
	}
	return id.String()[:8]
}

func (d *Directory) Known(id domain.PlayerID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.names[id]
	return ok
}

func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.names)
}

// Resolve accepts a player id or a case-insensitive name.
func (d *Directory) Resolve(ref string) (domain.Player, error) {
	ref = strings.TrimSpace(ref)
	d.mu.RLock()
	defer d.mu.RUnlock()
	if id, err := uuid.Parse(ref); err == nil {
		if n, ok := d.names[id]; ok {
			return domain.Player{ID: id, Name: n}, nil
		}
		return domain.Player{}, ErrPlayerNotFound
	}
	if id, ok := d.byName[strings.ToLower(ref)]; ok {
		return domain.Player{ID: id, Name: d.names[id]}, nil
	}
	return domain.Player{}, ErrPlayerNotFound
}

// MarkStartingBalance sets the flag and reports whether it was unset before.
func (d *Directory) MarkStartingBalance(id domain.PlayerID) bool {
	d.mu.Lock()
	if _, ok := d.started[id]; ok {
		d.mu.Unlock()
		return false
	}
	d.started[id] = struct{}{}
	d.mu.Unlock()
	d.dirty.MarkDirty()
	return true
}

func (d *Directory) ReceivedStartingBalance(id domain.PlayerID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.started[id]
	return ok
}

// QueueOfflineSale adds one sale worth amount to the owner's pending summary.
func (d *Directory) QueueOfflineSale(owner domain.PlayerID, amount decimal.Decimal) {
	d.mu.Lock()
	s := d.offlineSales[owner]
	s.Count++
	s.Total = s.Total.Add(amount)
	d.offlineSales[owner] = s
	d.mu.Unlock()
	d.dirty.MarkDirty()
}

// TakeOfflineSales returns and clears the owner's pending summary.
func (d *Directory) TakeOfflineSales(owner domain.PlayerID) (domain.OfflineSalesSummary, bool) {
	d.mu.Lock()
	s, ok := d.offlineSales[owner]
	if ok {
		delete(d.offlineSales, owner)
	}
	d.mu.Unlock()
	if ok {
		d.dirty.MarkDirty()
	}
	return s, ok
}

func (d *Directory) Snapshot() domain.PlayerFlagsDocument {
	d.mu.RLock()
	defer d.mu.RUnlock()
	doc := domain.PlayerFlagsDocument{
		Names:           make(map[domain.PlayerID]string, len(d.names)),
		StartingBalance: make([]domain.PlayerID, 0, len(d.started)),
		OfflineSales:    make(map[domain.PlayerID]domain.OfflineSalesSummary, len(d.offlineSales)),
	}
	for id, n := range d.names {
		doc.Names[id] = n
	}
	for id := range d.started {
		doc.StartingBalance = append(doc.StartingBalance, id)
	}
	for id, s := range d.offlineSales {
		doc.OfflineSales[id] = s
	}
	return doc
}

func (d *Directory) Restore(doc domain.PlayerFlagsDocument) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names = make(map[domain.PlayerID]string, len(doc.Names))
	d.byName = make(map[string]domain.PlayerID, len(doc.Names))
	for id, n := range doc.Names {
		d.names[id] = n
		d.byName[strings.ToLower(n)] = id
	}
	d.started = make(map[domain.PlayerID]struct{}, len(doc.StartingBalance))
	for _, id := range doc.StartingBalance {
		d.started[id] = struct{}{}
	}
	d.offlineSales = make(map[domain.PlayerID]domain.OfflineSalesSummary, len(doc.OfflineSales))
	for id, s := range doc.OfflineSales {
		d.offlineSales[id] = s
	}
}
