package handlers

import (
	"net/http"
	"strconv"

	"economy_server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *Handler) Balance(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Economy.Balance(p.ID))
}

// BalanceOf looks up another player by name or id.
func (h *Handler) BalanceOf(c *gin.Context) {
	view, err := h.Economy.BalanceOf(c.Param("player"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type payRequest struct {
	To     string          `json:"to" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) Pay(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	var req payRequest
	if !bind(c, &req) {
		return
	}

	var res service.PaymentResult
	if !h.do(c, func() (err error) {
		res, err = h.Economy.Pay(p, req.To, req.Amount)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, res)
}

type ecoRequest struct {
	Player string          `json:"player" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// Eco runs an admin balance operation: add, remove or set.
func (h *Handler) Eco(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	op := service.AdminOp(c.Param("op"))
	switch op {
	case service.AdminOpAdd, service.AdminOpRemove, service.AdminOpSet:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown operation"})
		return
	}
	var req ecoRequest
	if !bind(c, &req) {
		return
	}

	var res service.AdminResult
	if !h.do(c, func() (err error) {
		res, err = h.Economy.Admin(p, op, req.Player, req.Amount)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Transactions(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	c.JSON(http.StatusOK, gin.H{"transactions": h.Economy.History(p.ID, limit)})
}

// Baltop returns one leaderboard page plus the caller's rank.
func (h *Handler) Baltop(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	c.JSON(http.StatusOK, h.Economy.Leaderboard(p.ID, page))
}
