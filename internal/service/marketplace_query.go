package service

import (
	"slices"
	"sort"
	"strings"

	"economy_server/internal/domain"

	"github.com/google/uuid"
)

// clones copies every live shop. Callers must not hold m.mu.
func (m *Marketplace) clones(keep func(*domain.Shop) bool) []domain.Shop {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Shop, 0, len(m.shops))
	for _, e := range m.shops {
		e.mu.Lock()
		if !e.deleted && (keep == nil || keep(&e.shop)) {
			out = append(out, e.shop.Clone())
		}
		e.mu.Unlock()
	}
	return out
}

func byCreated(shops []domain.Shop) {
	sort.SliceStable(shops, func(i, j int) bool {
		if !shops[i].CreatedAt.Equal(shops[j].CreatedAt) {
			return shops[i].CreatedAt.Before(shops[j].CreatedAt)
		}
		return shops[i].ID.String() < shops[j].ID.String()
	})
}

// findEntry resolves a shop id or a case-insensitive exact name. When several
// shops share the name the oldest wins.
func (m *Marketplace) findEntry(ref string) (*shopEntry, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return m.entry(id)
	}
	matches := m.clones(func(s *domain.Shop) bool { return strings.EqualFold(s.Name, ref) })
	if len(matches) == 0 {
		return nil, ErrShopNotFound
	}
	byCreated(matches)
	return m.entry(matches[0].ID)
}

func (m *Marketplace) FindShop(ref string) (domain.Shop, error) {
	e, err := m.findEntry(ref)
	if err != nil {
		return domain.Shop{}, err
	}
	return cloneEntry(e)
}

func (m *Marketplace) Shop(id uuid.UUID) (domain.Shop, error) {
	e, err := m.entry(id)
	if err != nil {
		return domain.Shop{}, err
	}
	return cloneEntry(e)
}

func cloneEntry(e *shopEntry) (domain.Shop, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.deleted {
		return domain.Shop{}, ErrShopNotFound
	}
	return e.shop.Clone(), nil
}

func (m *Marketplace) ShopsByOwner(owner domain.PlayerID) []domain.Shop {
	out := m.clones(func(s *domain.Shop) bool { return s.OwnerID == owner })
	byCreated(out)
	return out
}

type BrowseQuery struct {
	Sort        domain.ShopSort
	Category    *domain.ShopCategory
	FavoritesOf *domain.PlayerID
}

// Browse lists shops filtered by category and, optionally, by a player's
// favorites, in the requested order.
func (m *Marketplace) Browse(q BrowseQuery) []domain.Shop {
	var favs map[uuid.UUID]struct{}
	if q.FavoritesOf != nil {
		favs = m.favoriteSet(*q.FavoritesOf)
	}
	out := m.clones(func(s *domain.Shop) bool {
		if q.Category != nil && s.Category != *q.Category {
			return false
		}
		if favs != nil {
			_, ok := favs[s.ID]
			return ok
		}
		return true
	})
	sortShops(out, q.Sort)
	return out
}

func sortShops(shops []domain.Shop, by domain.ShopSort) {
	byCreated(shops)
	switch by {
	case domain.SortOldest:
	case domain.SortMostSales:
		sort.SliceStable(shops, func(i, j int) bool { return shops[i].TotalSales > shops[j].TotalSales })
	case domain.SortAlphabetical:
		sort.SliceStable(shops, func(i, j int) bool {
			return strings.ToLower(shops[i].Name) < strings.ToLower(shops[j].Name)
		})
	case domain.SortFeaturedFirst:
		slices.Reverse(shops)
		sort.SliceStable(shops, func(i, j int) bool { return shops[i].Featured && !shops[j].Featured })
	default:
		slices.Reverse(shops)
	}
}

type SearchHit struct {
	ShopID   uuid.UUID       `json:"shop_id"`
	ShopName string          `json:"shop_name"`
	Owner    string          `json:"owner"`
	Item     domain.ShopItem `json:"item"`
}

// Search matches listings whose display name or item id contains query,
// ignoring case.
func (m *Marketplace) Search(query string) []SearchHit {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	shops := m.clones(nil)
	sortShops(shops, domain.SortFeaturedFirst)

	var hits []SearchHit
	for _, s := range shops {
		for _, it := range s.Items {
			if strings.Contains(strings.ToLower(it.Item.DisplayName), query) ||
				strings.Contains(strings.ToLower(it.Item.ItemID), query) {
				hits = append(hits, SearchHit{ShopID: s.ID, ShopName: s.Name, Owner: s.OwnerName, Item: it})
			}
		}
	}
	return hits
}

// ToggleFavorite flips the favorite mark and returns the new state.
func (m *Marketplace) ToggleFavorite(player domain.PlayerID, shopID uuid.UUID) (bool, error) {
	m.mu.Lock()
	if _, ok := m.shops[shopID]; !ok {
		m.mu.Unlock()
		return false, ErrShopNotFound
	}
	favs := m.favorites[player]
	if favs == nil {
		favs = make(map[uuid.UUID]struct{})
		m.favorites[player] = favs
	}
	_, on := favs[shopID]
	if on {
		delete(favs, shopID)
	} else {
		favs[shopID] = struct{}{}
	}
	m.mu.Unlock()

	m.dirty.MarkDirty()
	return !on, nil
}

func (m *Marketplace) favoriteSet(player domain.PlayerID) map[uuid.UUID]struct{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uuid.UUID]struct{}, len(m.favorites[player]))
	for id := range m.favorites[player] {
		out[id] = struct{}{}
	}
	return out
}

func (m *Marketplace) Favorites(player domain.PlayerID) []domain.Shop {
	return m.Browse(BrowseQuery{Sort: domain.SortAlphabetical, FavoritesOf: &player})
}

func (m *Marketplace) ShopCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.shops)
}

func (m *Marketplace) ListingCount() int {
	n := 0
	for _, s := range m.clones(nil) {
		n += len(s.Items)
	}
	return n
}

func (m *Marketplace) Snapshot() domain.ShopsDocument {
	shops := m.clones(nil)
	byCreated(shops)

	m.mu.RLock()
	defer m.mu.RUnlock()
	doc := domain.ShopsDocument{Shops: shops, Favorites: make(map[domain.PlayerID][]uuid.UUID, len(m.favorites))}
	for player, favs := range m.favorites {
		if len(favs) == 0 {
			continue
		}
		ids := make([]uuid.UUID, 0, len(favs))
		for id := range favs {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
		doc.Favorites[player] = ids
	}
	return doc
}

// Restore replaces all shops. Favorites of unknown shops are dropped.
func (m *Marketplace) Restore(doc domain.ShopsDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shops = make(map[uuid.UUID]*shopEntry, len(doc.Shops))
	for _, s := range doc.Shops {
		s = s.Clone()
		if s.Items == nil {
			s.Items = []domain.ShopItem{}
		}
		m.shops[s.ID] = &shopEntry{shop: s}
	}
	m.favorites = make(map[domain.PlayerID]map[uuid.UUID]struct{}, len(doc.Favorites))
	for player, ids := range doc.Favorites {
		set := make(map[uuid.UUID]struct{}, len(ids))
		for _, id := range ids {
			if _, ok := m.shops[id]; ok {
				set[id] = struct{}{}
			}
		}
		if len(set) > 0 {
			m.favorites[player] = set
		}
	}
}
