package handlers

import (
	"errors"
	"net/http"

	"economy_server/internal/dispatch"
	"economy_server/internal/logger"
	"economy_server/internal/service"

	"github.com/gin-gonic/gin"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrInsufficientFunds, http.StatusPaymentRequired},

	{service.ErrInvalidAmount, http.StatusBadRequest},
	{service.ErrSelfTarget, http.StatusBadRequest},
	{service.ErrInvalidName, http.StatusBadRequest},
	{service.ErrNotEnoughItems, http.StatusBadRequest},

	{service.ErrNotOwner, http.StatusForbidden},
	{service.ErrNotAuthorized, http.StatusForbidden},

	{service.ErrShopNotFound, http.StatusNotFound},
	{service.ErrItemNotFound, http.StatusNotFound},
	{service.ErrChallengeNotFound, http.StatusNotFound},
	{service.ErrPlayerNotFound, http.StatusNotFound},

	{service.ErrShopLimitReached, http.StatusConflict},
	{service.ErrItemLimitReached, http.StatusConflict},
	{service.ErrOutOfStock, http.StatusConflict},
	{service.ErrAlreadyClaimedToday, http.StatusConflict},
	{service.ErrTargetBusy, http.StatusConflict},
	{service.ErrChallengerBusy, http.StatusConflict},
	{service.ErrAlreadyResolved, http.StatusConflict},
	{service.ErrPlayerOffline, http.StatusConflict},

	{dispatch.ErrStopped, http.StatusServiceUnavailable},
}

// statusFor maps a service error to its HTTP status and user-facing message.
func statusFor(err error) (int, string) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status, e.err.Error()
		}
	}
	return http.StatusInternalServerError, "internal error"
}

func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "route", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": msg})
}
