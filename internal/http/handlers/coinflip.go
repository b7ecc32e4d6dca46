package handlers

import (
	"net/http"

	"economy_server/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type challengeRequest struct {
	Target string          `json:"target" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) Challenge(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	var req challengeRequest
	if !bind(c, &req) {
		return
	}
	target, err := h.Directory.Resolve(req.Target)
	if err != nil {
		respondError(c, err)
		return
	}

	var ch domain.Challenge
	if !h.do(c, func() (err error) {
		ch, err = h.Wagers.Challenge(p, target, req.Amount)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, ch)
}

// Accept escrows both stakes and returns the decided flip. The pot is paid
// when the reveal fires.
func (h *Handler) Accept(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}

	var res domain.FlipResult
	if !h.do(c, func() (err error) {
		res, err = h.Wagers.Accept(p)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Deny(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}

	var ch domain.Challenge
	if !h.do(c, func() (err error) {
		ch, err = h.Wagers.Deny(p)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"denied": ch})
}

func (h *Handler) Cancel(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}

	var ch domain.Challenge
	if !h.do(c, func() (err error) {
		ch, err = h.Wagers.Cancel(p)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": ch})
}

// Coinflips reports the caller's incoming and outgoing challenge, if any.
func (h *Handler) Coinflips(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	out := gin.H{"incoming": nil, "outgoing": nil}
	if ch, ok := h.Wagers.Pending(p.ID); ok {
		out["incoming"] = ch
	}
	if ch, ok := h.Wagers.Outgoing(p.ID); ok {
		out["outgoing"] = ch
	}
	c.JSON(http.StatusOK, out)
}
