package handlers

import (
	"net/http"

	"economy_server/internal/domain"
	"economy_server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type createShopRequest struct {
	Name string `json:"name"`
}

func (h *Handler) CreateShop(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	var req createShopRequest
	if !bind(c, &req) {
		return
	}

	var shop domain.Shop
	if !h.do(c, func() (err error) {
		shop, err = h.Market.CreateShop(p, req.Name)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, shop)
}

// BrowseShops supports ?sort=, ?category= and ?favorites=true.
func (h *Handler) BrowseShops(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	q := service.BrowseQuery{Sort: domain.ParseShopSort(c.Query("sort"))}
	if raw := c.Query("category"); raw != "" {
		cat, ok := domain.ParseShopCategory(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
			return
		}
		q.Category = &cat
	}
	if c.Query("favorites") == "true" {
		q.FavoritesOf = &p.ID
	}
	c.JSON(http.StatusOK, gin.H{"shops": h.Market.Browse(q)})
}

func (h *Handler) SearchShops(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"results": h.Market.Search(c.Query("q"))})
}

func (h *Handler) MyShops(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"shops": h.Market.ShopsByOwner(p.ID)})
}

// FindShop resolves :ref as a shop id or a case-insensitive name.
func (h *Handler) FindShop(c *gin.Context) {
	shop, err := h.Market.FindShop(c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shop)
}

type updateShopRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

func (h *Handler) UpdateShop(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req updateShopRequest
	if !bind(c, &req) {
		return
	}
	upd := service.ShopUpdate{Name: req.Name, Description: req.Description}
	if req.Category != nil {
		cat, ok := domain.ParseShopCategory(*req.Category)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
			return
		}
		upd.Category = &cat
	}

	var shop domain.Shop
	if !h.do(c, func() (err error) {
		shop, err = h.Market.UpdateShop(p, id, upd)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, shop)
}

// DeleteShop returns remaining stock to the owner. Admins may delete any shop.
func (h *Handler) DeleteShop(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var shop domain.Shop
	if !h.do(c, func() (err error) {
		shop, err = h.Market.DeleteShop(p, id)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": shop.ID, "name": shop.Name})
}

type listItemRequest struct {
	ItemID     string          `json:"item_id" binding:"required"`
	Units      int             `json:"units"`
	BundleSize int             `json:"bundle_size"`
	Price      decimal.Decimal `json:"price"`
}

// ListItem moves held units into the shop. Units must be a multiple of
// bundle_size; bundle_size defaults to 1.
func (h *Handler) ListItem(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	shopID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req listItemRequest
	if !bind(c, &req) {
		return
	}
	if req.BundleSize == 0 {
		req.BundleSize = 1
	}

	var item domain.ShopItem
	if !h.do(c, func() (err error) {
		item, err = h.Market.ListFromInventory(p, shopID, req.ItemID, req.Units, req.BundleSize, req.Price)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) DelistItem(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	shopID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "item")
	if !ok {
		return
	}

	var item domain.ShopItem
	if !h.do(c, func() (err error) {
		item, err = h.Market.DelistItem(p, shopID, itemID)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, item)
}

type buyRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) Buy(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	shopID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := uuidParam(c, "item")
	if !ok {
		return
	}
	req := buyRequest{Quantity: 1}
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}

	var res domain.PurchaseResult
	if !h.do(c, func() (err error) {
		res, err = h.Market.Purchase(p, shopID, itemID, req.Quantity)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ToggleFavorite(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var fav bool
	if !h.do(c, func() (err error) {
		fav, err = h.Market.ToggleFavorite(p.ID, id)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"shop_id": id, "favorite": fav})
}

type featureRequest struct {
	Featured bool `json:"featured"`
}

func (h *Handler) FeatureShop(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	var req featureRequest
	if !bind(c, &req) {
		return
	}

	var shop domain.Shop
	if !h.do(c, func() (err error) {
		shop, err = h.Market.SetFeatured(p, c.Param("ref"), req.Featured)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, shop)
}

type infiniteRequest struct {
	ItemID   *uuid.UUID `json:"item_id"`
	Infinite bool       `json:"infinite"`
}

// SetInfinite toggles infinite stock on one listing, or every listing when
// item_id is omitted.
func (h *Handler) SetInfinite(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	var req infiniteRequest
	if !bind(c, &req) {
		return
	}

	var n int
	if !h.do(c, func() (err error) {
		n, err = h.Market.SetInfinite(p, c.Param("ref"), req.ItemID, req.Infinite)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n, "infinite": req.Infinite})
}

func (h *Handler) AdminDeleteShop(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}

	var shop domain.Shop
	if !h.do(c, func() (err error) {
		shop, err = h.Market.AdminDelete(p, c.Param("ref"))
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": shop.ID, "name": shop.Name})
}
