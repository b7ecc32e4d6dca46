package handlers

import (
	"context"
	"net/http"

	"economy_server/internal/domain"
	"economy_server/internal/http/middleware"
	"economy_server/internal/inventory"
	"economy_server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Runner executes a command on the authoritative loop and waits for it.
type Runner interface {
	Do(ctx context.Context, fn func() error) error
}

type Handler struct {
	Economy   *service.Economy
	Market    *service.Marketplace
	Rewards   *service.RewardScheduler
	Wagers    *service.WagerEngine
	Sessions  *service.Sessions
	Combat    *service.Combat
	Admin     *service.AdminService
	Directory *service.Directory
	Inventory *inventory.Mailbox

	// Commands run through Loop when it is set, directly otherwise.
	Loop Runner
}

// do runs a mutating command and writes the error response if it failed.
func (h *Handler) do(c *gin.Context, fn func() error) bool {
	var err error
	if h.Loop != nil {
		err = h.Loop.Do(c.Request.Context(), fn)
	} else {
		err = fn()
	}
	if err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// getPlayer extracts the authenticated player set by the JWT middleware.
func getPlayer(c *gin.Context) (domain.Player, bool) {
	p, ok := middleware.CurrentPlayer(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return p, ok
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return false
	}
	return true
}
