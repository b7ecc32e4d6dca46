package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Admin.GetStats())
}

func (h *Handler) PlayerInfo(c *gin.Context) {
	info, err := h.Admin.GetPlayer(c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
