package handlers

import (
	"net/http"

	"economy_server/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) InventoryContents(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Inventory.Contents(p.ID))
}

// Collect moves the ground pile into free slots.
func (h *Handler) Collect(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	n := h.Inventory.Collect(p.ID)
	c.JSON(http.StatusOK, gin.H{"collected": n, "inventory": h.Inventory.Contents(p.ID)})
}

type grantRequest struct {
	Player string           `json:"player" binding:"required"`
	Item   domain.ItemStack `json:"item"`
}

// Grant stocks a player's inventory. Admin only.
func (h *Handler) Grant(c *gin.Context) {
	var req grantRequest
	if !bind(c, &req) {
		return
	}
	if req.Item.ItemID == "" || req.Item.Count <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id and a positive count are required"})
		return
	}
	if req.Item.DisplayName == "" {
		req.Item.DisplayName = req.Item.ItemID
	}
	target, err := h.Directory.Resolve(req.Player)
	if err != nil {
		respondError(c, err)
		return
	}
	dropped := h.Inventory.Grant(target.ID, req.Item)
	c.JSON(http.StatusOK, gin.H{"player": target, "item": req.Item, "dropped": dropped})
}
