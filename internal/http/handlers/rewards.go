package handlers

import (
	"net/http"

	"economy_server/internal/domain"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ClaimDaily(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}

	var claim domain.DailyClaim
	if !h.do(c, func() (err error) {
		claim, err = h.Rewards.ClaimDaily(p.ID)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, claim)
}

func (h *Handler) Streak(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Rewards.Streak(p.ID))
}
