package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ShopCategory string

const (
	CategoryGeneral   ShopCategory = "GENERAL"
	CategoryTools     ShopCategory = "TOOLS"
	CategoryWeapons   ShopCategory = "WEAPONS"
	CategoryArmor     ShopCategory = "ARMOR"
	CategoryFood      ShopCategory = "FOOD"
	CategoryBlocks    ShopCategory = "BLOCKS"
	CategoryRedstone  ShopCategory = "REDSTONE"
	CategoryMaterials ShopCategory = "MATERIALS"
	CategoryMagic     ShopCategory = "MAGIC"
	CategoryModded    ShopCategory = "MODDED"
)

var ShopCategories = []ShopCategory{
	CategoryGeneral, CategoryTools, CategoryWeapons, CategoryArmor, CategoryFood,
	CategoryBlocks, CategoryRedstone, CategoryMaterials, CategoryMagic, CategoryModded,
}

// ParseShopCategory accepts a category name in any case.
func ParseShopCategory(s string) (ShopCategory, bool) {
	for _, c := range ShopCategories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}

type ShopSort string

const (
	SortNewest        ShopSort = "NEWEST"
	SortOldest        ShopSort = "OLDEST"
	SortMostSales     ShopSort = "MOST_SALES"
	SortAlphabetical  ShopSort = "ALPHABETICAL"
	SortFeaturedFirst ShopSort = "FEATURED_FIRST"
)

// ParseShopSort falls back to NEWEST for unknown input.
func ParseShopSort(s string) ShopSort {
	switch ShopSort(strings.ToUpper(strings.TrimSpace(s))) {
	case SortOldest:
		return SortOldest
	case SortMostSales:
		return SortMostSales
	case SortAlphabetical:
		return SortAlphabetical
	case SortFeaturedFirst:
		return SortFeaturedFirst
	default:
		return SortNewest
	}
}

// DefaultMaxStack is used when an item does not declare its own stack size.
const DefaultMaxStack = 64

// ItemStack describes a tradeable good. Count is the number of units.
type ItemStack struct {
	ItemID      string         `json:"item_id"`
	DisplayName string         `json:"display_name"`
	Count       int            `json:"count"`
	MaxStack    int            `json:"max_stack,omitempty"`
	Tag         map[string]any `json:"tag,omitempty"`
}

// StackLimit returns the largest count a single stack of this item may hold.
func (s ItemStack) StackLimit() int {
	if s.MaxStack <= 0 {
		return DefaultMaxStack
	}
	return s.MaxStack
}

// Split breaks units of this item into stacks no larger than the stack limit.
func (s ItemStack) Split(units int) []ItemStack {
	var out []ItemStack
	limit := s.StackLimit()
	for units > 0 {
		n := min(units, limit)
		chunk := s
		chunk.Count = n
		out = append(out, chunk)
		units -= n
	}
	return out
}

// ShopItem is a listing. Item.Count is the bundle size and Stock counts bundles.
type ShopItem struct {
	ID        uuid.UUID       `json:"id"`
	Item      ItemStack       `json:"item"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	Infinite  bool            `json:"infinite"`
	TotalSold int             `json:"total_sold"`
	ListedAt  time.Time       `json:"listed_at"`
}

// BundleSize is the number of units one unit of stock represents.
func (i ShopItem) BundleSize() int {
	if i.Item.Count <= 0 {
		return 1
	}
	return i.Item.Count
}

type Shop struct {
	ID           uuid.UUID       `json:"id"`
	OwnerID      PlayerID        `json:"owner_id"`
	OwnerName    string          `json:"owner_name"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Category     ShopCategory    `json:"category"`
	Featured     bool            `json:"featured"`
	TotalSales   int64           `json:"total_sales"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Items        []ShopItem      `json:"items"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Clone returns a copy that shares no mutable state with s.
func (s Shop) Clone() Shop {
	c := s
	c.Items = make([]ShopItem, len(s.Items))
	copy(c.Items, s.Items)
	return c
}

// ItemIndex returns the position of the listing or -1.
func (s *Shop) ItemIndex(id uuid.UUID) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// PurchaseResult reports a completed purchase.
type PurchaseResult struct {
	ShopID    uuid.UUID       `json:"shop_id"`
	ItemID    uuid.UUID       `json:"item_id"`
	Quantity  int             `json:"quantity"`
	Delivered ItemStack       `json:"delivered"`
	Total     decimal.Decimal `json:"total"`
	Tax       decimal.Decimal `json:"tax"`
	Dropped   bool            `json:"dropped"`
}
