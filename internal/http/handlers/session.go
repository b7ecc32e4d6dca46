package handlers

import (
	"net/http"

	"economy_server/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionStart runs the join sequence for game servers that do not keep a
// WebSocket open for the player.
func (h *Handler) SessionStart(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}

	var res service.SessionStart
	if !h.do(c, func() error {
		res = h.Sessions.Start(p)
		return nil
	}) {
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) SessionEnd(c *gin.Context) {
	p, ok := getPlayer(c)
	if !ok {
		return
	}
	h.Sessions.End(p)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
