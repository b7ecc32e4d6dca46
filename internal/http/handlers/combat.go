package handlers

import (
	"net/http"

	"economy_server/internal/game"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type mobKillRequest struct {
	Player string `json:"player" binding:"required"`
	game.Kill
}

// MobKill is reported by the game server when a player kills a mob.
func (h *Handler) MobKill(c *gin.Context) {
	var req mobKillRequest
	if !bind(c, &req) {
		return
	}
	player, err := h.Directory.Resolve(req.Player)
	if err != nil {
		respondError(c, err)
		return
	}

	var drop game.Drop
	if !h.do(c, func() (err error) {
		drop, err = h.Combat.MobKill(player.ID, req.Kill)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, drop)
}

type pvpKillRequest struct {
	Killer string `json:"killer" binding:"required"`
	Victim string `json:"victim" binding:"required"`
}

func (h *Handler) PvPKill(c *gin.Context) {
	var req pvpKillRequest
	if !bind(c, &req) {
		return
	}
	killer, err := h.Directory.Resolve(req.Killer)
	if err != nil {
		respondError(c, err)
		return
	}
	victim, err := h.Directory.Resolve(req.Victim)
	if err != nil {
		respondError(c, err)
		return
	}

	var bounty decimal.Decimal
	if !h.do(c, func() (err error) {
		bounty, err = h.Combat.PvPKill(killer, victim)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"bounty": bounty})
}
