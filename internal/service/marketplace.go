package service

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"economy_server/internal/clock"
	"economy_server/internal/domain"
	"economy_server/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MaxShopNameLength        = 32
	MaxShopDescriptionLength = 128
)

type MarketConfig struct {
	TaxRate           decimal.Decimal
	MaxShopsPerPlayer int
	MaxItemsPerShop   int
}

// MarketDeps are the collaborators a Marketplace calls into. Inventory,
// Holder, Presence and Notifier may be nil.
type MarketDeps struct {
	Ledger    *Ledger
	Log       *TransactionLog
	Directory *Directory
	Inventory Inventory
	Holder    Holder
	Presence  Presence
	Notifier  Notifier
	Clock     clock.Clock
	Dirty     DirtyMarker
}

// shopEntry guards one shop. Lock order is Marketplace.mu before shopEntry.mu;
// the ledger is only called with shopEntry.mu held and never takes either.
type shopEntry struct {
	mu      sync.Mutex
	shop    domain.Shop
	deleted bool
}

type Marketplace struct {
	mu        sync.RWMutex
	shops     map[uuid.UUID]*shopEntry
	favorites map[domain.PlayerID]map[uuid.UUID]struct{}

	cfg      MarketConfig
	ledger   *Ledger
	txlog    *TransactionLog
	dir      *Directory
	inv      Inventory
	holder   Holder
	presence Presence
	notifier Notifier
	clock    clock.Clock
	dirty    DirtyMarker
}

func NewMarketplace(cfg MarketConfig, deps MarketDeps) *Marketplace {
	if cfg.MaxShopsPerPlayer < 1 {
		cfg.MaxShopsPerPlayer = 1
	}
	if cfg.MaxItemsPerShop < 1 {
		cfg.MaxItemsPerShop = 1
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	return &Marketplace{
		shops:     make(map[uuid.UUID]*shopEntry),
		favorites: make(map[domain.PlayerID]map[uuid.UUID]struct{}),
		cfg:       cfg,
		ledger:    deps.Ledger,
		txlog:     deps.Log,
		dir:       deps.Directory,
		inv:       deps.Inventory,
		holder:    deps.Holder,
		presence:  deps.Presence,
		notifier:  orNopNotifier(deps.Notifier),
		clock:     deps.Clock,
		dirty:     orNopDirty(deps.Dirty),
	}
}

func validShopName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxShopNameLength {
		return "", fmt.Errorf("shop name must be 1-%d characters: %w", MaxShopNameLength, ErrInvalidName)
	}
	return name, nil
}

func validDescription(desc string) (string, error) {
	desc = strings.TrimSpace(desc)
	if utf8.RuneCountInString(desc) > MaxShopDescriptionLength {
		return "", fmt.Errorf("description must be at most %d characters: %w", MaxShopDescriptionLength, ErrInvalidName)
	}
	return desc, nil
}

func (m *Marketplace) entry(id uuid.UUID) (*shopEntry, error) {
	m.mu.RLock()
	e, ok := m.shops[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrShopNotFound
	}
	return e, nil
}

// lockOwned locks the shop and checks actor may edit it. The caller unlocks.
func (m *Marketplace) lockOwned(actor domain.Player, id uuid.UUID, allowAdmin bool) (*shopEntry, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return nil, ErrShopNotFound
	}
	if e.shop.OwnerID != actor.ID && !(allowAdmin && actor.Admin) {
		e.mu.Unlock()
		return nil, ErrNotOwner
	}
	return e, nil
}

// CreateShop opens a new empty GENERAL shop for owner.
func (m *Marketplace) CreateShop(owner domain.Player, name string) (domain.Shop, error) {
	name, err := validShopName(name)
	if err != nil {
		return domain.Shop{}, err
	}

	m.mu.Lock()
	owned := 0
	for _, e := range m.shops {
		// OwnerID is immutable after creation.
		if e.shop.OwnerID == owner.ID {
			owned++
		}
	}
	if owned >= m.cfg.MaxShopsPerPlayer {
		m.mu.Unlock()
		return domain.Shop{}, ErrShopLimitReached
	}
	shop := domain.Shop{
		ID:           uuid.New(),
		OwnerID:      owner.ID,
		OwnerName:    owner.Name,
		Name:         name,
		Category:     domain.CategoryGeneral,
		TotalRevenue: decimal.Zero,
		Items:        []domain.ShopItem{},
		CreatedAt:    m.clock.Now(),
	}
	m.shops[shop.ID] = &shopEntry{shop: shop}
	m.mu.Unlock()

	m.dirty.MarkDirty()
	logger.Info("shop created", "shop_id", shop.ID, "player_id", owner.ID, "name", name)
	return shop.Clone(), nil
}

type ShopUpdate struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Category    *domain.ShopCategory `json:"category"`
}

func (m *Marketplace) UpdateShop(actor domain.Player, id uuid.UUID, upd ShopUpdate) (domain.Shop, error) {
	var (
		name, desc string
		err        error
	)
	if upd.Name != nil {
		if name, err = validShopName(*upd.Name); err != nil {
			return domain.Shop{}, err
		}
	}
	if upd.Description != nil {
		if desc, err = validDescription(*upd.Description); err != nil {
			return domain.Shop{}, err
		}
	}

	e, err := m.lockOwned(actor, id, true)
	if err != nil {
		return domain.Shop{}, err
	}
	if upd.Name != nil {
		e.shop.Name = name
	}
	if upd.Description != nil {
		e.shop.Description = desc
	}
	if upd.Category != nil {
		e.shop.Category = *upd.Category
	}
	out := e.shop.Clone()
	e.mu.Unlock()

	m.dirty.MarkDirty()
	return out, nil
}

// stockStacks returns the units a listing still holds, chunked by stack size.
// Infinite listings hold nothing.
func stockStacks(item domain.ShopItem) []domain.ItemStack {
	if item.Infinite || item.Stock <= 0 {
		return nil
	}
	return item.Item.Split(item.Stock * item.BundleSize())
}

// DeleteShop removes the shop and returns its unsold stock to the owner.
// Admins may delete any shop.
func (m *Marketplace) DeleteShop(actor domain.Player, id uuid.UUID) (domain.Shop, error) {
	m.mu.Lock()
	e, ok := m.shops[id]
	if !ok {
		m.mu.Unlock()
		return domain.Shop{}, ErrShopNotFound
	}
	e.mu.Lock()
	if e.shop.OwnerID != actor.ID && !actor.Admin {
		e.mu.Unlock()
		m.mu.Unlock()
		return domain.Shop{}, ErrNotOwner
	}
	e.deleted = true
	shop := e.shop.Clone()
	e.mu.Unlock()
	delete(m.shops, id)
	for _, favs := range m.favorites {
		delete(favs, id)
	}
	m.mu.Unlock()

	var stacks []domain.ItemStack
	for _, item := range shop.Items {
		stacks = append(stacks, stockStacks(item)...)
	}
	deliver(m.inv, shop.OwnerID, stacks)

	m.dirty.MarkDirty()
	logger.Info("shop deleted", "shop_id", id, "player_id", actor.ID, "owner", shop.OwnerID, "returned_stacks", len(stacks))
	return shop, nil
}

// Listing describes a new shop item. Item.Count is the bundle size.
type Listing struct {
	Item  domain.ItemStack
	Stock int
	Price decimal.Decimal
}

func (m *Marketplace) ListItem(owner domain.Player, shopID uuid.UUID, l Listing) (domain.ShopItem, error) {
	price := domain.RoundAmount(l.Price)
	if !price.IsPositive() || l.Stock < 1 || l.Item.Count < 1 || l.Item.ItemID == "" {
		return domain.ShopItem{}, ErrInvalidAmount
	}

	e, err := m.lockOwned(owner, shopID, false)
	if err != nil {
		return domain.ShopItem{}, err
	}
	if len(e.shop.Items) >= m.cfg.MaxItemsPerShop {
		e.mu.Unlock()
		return domain.ShopItem{}, ErrItemLimitReached
	}
	item := domain.ShopItem{
		ID:       uuid.New(),
		Item:     l.Item,
		Price:    price,
		Stock:    l.Stock,
		ListedAt: m.clock.Now(),
	}
	e.shop.Items = append(e.shop.Items, item)
	e.mu.Unlock()

	m.dirty.MarkDirty()
	logger.Info("item listed", "shop_id", shopID, "item_id", item.ID, "item", l.Item.ItemID, "stock", l.Stock, "price", price)
	return item, nil
}

// ListFromInventory takes whole bundles from the owner's held items and lists
// them. Units not filling a bundle stay with the owner.
func (m *Marketplace) ListFromInventory(owner domain.Player, shopID uuid.UUID, itemID string, units, bundleSize int, price decimal.Decimal) (domain.ShopItem, error) {
	if m.holder == nil {
		return domain.ShopItem{}, ErrNotEnoughItems
	}
	if bundleSize < 1 || units < bundleSize {
		return domain.ShopItem{}, ErrInvalidAmount
	}
	if !domain.RoundAmount(price).IsPositive() {
		return domain.ShopItem{}, ErrInvalidAmount
	}
	if err := m.canList(owner, shopID); err != nil {
		return domain.ShopItem{}, err
	}

	stock := units / bundleSize
	taken, err := m.holder.Take(owner.ID, itemID, stock*bundleSize)
	if err != nil {
		return domain.ShopItem{}, err
	}
	bundle := taken
	bundle.Count = bundleSize

	item, err := m.ListItem(owner, shopID, Listing{Item: bundle, Stock: stock, Price: price})
	if err != nil {
		deliver(m.inv, owner.ID, taken.Split(taken.Count))
		return domain.ShopItem{}, err
	}
	return item, nil
}

func (m *Marketplace) canList(owner domain.Player, shopID uuid.UUID) error {
	e, err := m.lockOwned(owner, shopID, false)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()
	if len(e.shop.Items) >= m.cfg.MaxItemsPerShop {
		return ErrItemLimitReached
	}
	return nil
}

// DelistItem removes a listing and returns its remaining stock to the owner.
func (m *Marketplace) DelistItem(owner domain.Player, shopID, itemID uuid.UUID) (domain.ShopItem, error) {
	e, err := m.lockOwned(owner, shopID, false)
	if err != nil {
		return domain.ShopItem{}, err
	}
	idx := e.shop.ItemIndex(itemID)
	if idx < 0 {
		e.mu.Unlock()
		return domain.ShopItem{}, ErrItemNotFound
	}
	item := e.shop.Items[idx]
	e.shop.Items = append(e.shop.Items[:idx:idx], e.shop.Items[idx+1:]...)
	ownerID := e.shop.OwnerID
	e.mu.Unlock()

	deliver(m.inv, ownerID, stockStacks(item))
	m.dirty.MarkDirty()
	return item, nil
}

// MaxPurchaseStacks bounds how many full stacks one purchase may deliver.
const MaxPurchaseStacks = 36

// MaxPurchaseBundles is the largest quantity of item a single purchase accepts.
func MaxPurchaseBundles(item domain.ShopItem) int {
	return max(1, item.Item.StackLimit()*MaxPurchaseStacks/item.BundleSize())
}

// Purchase buys quantity bundles. The stock check, the transfer and the stock
// decrement happen under the shop lock; item delivery happens after it.
func (m *Marketplace) Purchase(buyer domain.Player, shopID, itemID uuid.UUID, quantity int) (res domain.PurchaseResult, err error) {
	defer func() { purchases.WithLabelValues(result(err)).Inc() }()

	if quantity < 1 {
		return domain.PurchaseResult{}, ErrInvalidAmount
	}
	e, err := m.entry(shopID)
	if err != nil {
		return domain.PurchaseResult{}, err
	}

	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return domain.PurchaseResult{}, ErrShopNotFound
	}
	idx := e.shop.ItemIndex(itemID)
	if idx < 0 {
		e.mu.Unlock()
		return domain.PurchaseResult{}, ErrItemNotFound
	}
	if e.shop.OwnerID == buyer.ID {
		e.mu.Unlock()
		return domain.PurchaseResult{}, ErrSelfTarget
	}
	item := &e.shop.Items[idx]
	if quantity > MaxPurchaseBundles(*item) {
		e.mu.Unlock()
		return domain.PurchaseResult{}, ErrInvalidAmount
	}
	if !item.Infinite && item.Stock < quantity {
		e.mu.Unlock()
		return domain.PurchaseResult{}, ErrOutOfStock
	}

	total := domain.RoundAmount(item.Price.Mul(decimal.NewFromInt(int64(quantity))))
	tr, err := m.ledger.Transfer(buyer.ID, e.shop.OwnerID, total, m.cfg.TaxRate)
	if err != nil {
		e.mu.Unlock()
		return domain.PurchaseResult{}, err
	}
	if !item.Infinite {
		item.Stock -= quantity
	}
	item.TotalSold += quantity
	e.shop.TotalSales++
	e.shop.TotalRevenue = e.shop.TotalRevenue.Add(total)

	bought := *item
	ownerID, shopName := e.shop.OwnerID, e.shop.Name
	e.mu.Unlock()
	m.dirty.MarkDirty()

	name := bought.Item.DisplayName
	if name == "" {
		name = bought.Item.ItemID
	}
	units := quantity * bought.BundleSize()
	label := fmt.Sprintf("%dx %s", units, name)
	m.txlog.Append(buyer.ID, PurchaseRecord(total, label, ownerID))
	m.txlog.Append(ownerID, SaleRecord(tr.Received, label, buyer.ID))

	if m.presence != nil && m.presence.IsOnline(ownerID) {
		m.notifier.Notify(ownerID, domain.Event{
			Type:    domain.EventSale,
			Message: fmt.Sprintf("%s bought %s from %s for %s", buyer.Name, label, shopName, domain.FormatAmount(tr.Received)),
			Data: map[string]any{
				"shop_id": shopID, "item_id": itemID, "buyer": buyer.ID,
				"quantity": quantity, "received": tr.Received,
			},
		})
	} else if m.dir != nil {
		m.dir.QueueOfflineSale(ownerID, tr.Received)
	}

	delivered := bought.Item
	delivered.Count = units
	dropped := deliver(m.inv, buyer.ID, bought.Item.Split(units))

	logger.Info("purchase completed", "shop_id", shopID, "item_id", itemID, "player_id", buyer.ID, "quantity", quantity, "amount", total, "tax", tr.Tax)
	return domain.PurchaseResult{
		ShopID:    shopID,
		ItemID:    itemID,
		Quantity:  quantity,
		Delivered: delivered,
		Total:     total,
		Tax:       tr.Tax,
		Dropped:   dropped,
	}, nil
}

// SetFeatured is an admin action on a shop named by id or name.
func (m *Marketplace) SetFeatured(actor domain.Player, ref string, featured bool) (domain.Shop, error) {
	if !actor.Admin {
		return domain.Shop{}, ErrNotAuthorized
	}
	e, err := m.findEntry(ref)
	if err != nil {
		return domain.Shop{}, err
	}
	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return domain.Shop{}, ErrShopNotFound
	}
	e.shop.Featured = featured
	out := e.shop.Clone()
	e.mu.Unlock()

	m.dirty.MarkDirty()
	logger.Info("shop featured", "shop_id", out.ID, "featured", featured, "actor", actor.ID)
	return out, nil
}

// SetInfinite toggles infinite stock on one listing, or on every listing
// when itemID is nil. It returns the number of listings changed.
func (m *Marketplace) SetInfinite(actor domain.Player, ref string, itemID *uuid.UUID, infinite bool) (int, error) {
	if !actor.Admin {
		return 0, ErrNotAuthorized
	}
	e, err := m.findEntry(ref)
	if err != nil {
		return 0, err
	}
	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return 0, ErrShopNotFound
	}
	changed := 0
	for i := range e.shop.Items {
		if itemID != nil && e.shop.Items[i].ID != *itemID {
			continue
		}
		e.shop.Items[i].Infinite = infinite
		changed++
	}
	e.mu.Unlock()

	if itemID != nil && changed == 0 {
		return 0, ErrItemNotFound
	}
	m.dirty.MarkDirty()
	return changed, nil
}

func (m *Marketplace) AdminDelete(actor domain.Player, ref string) (domain.Shop, error) {
	if !actor.Admin {
		return domain.Shop{}, ErrNotAuthorized
	}
	shop, err := m.FindShop(ref)
	if err != nil {
		return domain.Shop{}, err
	}
	return m.DeleteShop(actor, shop.ID)
}
