package http

import (
	"time"

	"economy_server/internal/http/handlers"
	"economy_server/internal/http/middleware"
	"economy_server/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// RouteConfig carries the limits and collaborators the routes need beyond
// the handler itself.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Hub           *ws.Hub
	AllowedOrigin string

	// Redis enables the shared limiter; nil falls back to in-memory counters.
	Redis           *redis.Client
	APIRateLimit    int
	APIRateWindow   time.Duration
	WagerRateLimit  int
	WagerRateWindow time.Duration
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, cfg RouteConfig) {
	r.Use(middleware.Metrics())

	// Health checks (no rate limiting)
	r.GET("/health", cfg.Health.Health)
	r.GET("/healthz", cfg.Health.Liveness)
	r.GET("/readyz", cfg.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Hub != nil {
		r.GET("/ws", ws.HandleWS(cfg.Hub, cfg.AllowedOrigin))
	}

	limiter := middleware.NewLimiter()
	apiRL := middleware.RateLimit(cfg.Redis, limiter, "rl", cfg.APIRateLimit, cfg.APIRateWindow)
	wagerRL := middleware.RateLimit(cfg.Redis, limiter, "wager_rl", cfg.WagerRateLimit, cfg.WagerRateWindow)

	api := r.Group("/api/v1")
	api.Use(middleware.JWT(), apiRL)
	registerAPIRoutes(api, h, wagerRL)
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, wagerRL gin.HandlerFunc) {
	admin := middleware.AdminOnly()

	api.POST("/session/start", h.SessionStart)
	api.POST("/session/end", h.SessionEnd)

	// Balances and payments
	api.GET("/balance", h.Balance)
	api.GET("/balance/:player", h.BalanceOf)
	api.POST("/pay", h.Pay)
	api.POST("/eco/:op", admin, h.Eco)
	api.GET("/transactions", h.Transactions)
	api.GET("/baltop", h.Baltop)

	// Marketplace
	shops := api.Group("/shops")
	{
		shops.POST("", h.CreateShop)
		shops.GET("", h.BrowseShops)
		shops.GET("/search", h.SearchShops)
		shops.GET("/mine", h.MyShops)
		shops.GET("/:ref", h.FindShop)
		shops.PATCH("/:ref", withParam("id", h.UpdateShop))
		shops.DELETE("/:ref", withParam("id", h.DeleteShop))
		shops.POST("/:ref/items", withParam("id", h.ListItem))
		shops.DELETE("/:ref/items/:item", withParam("id", h.DelistItem))
		shops.POST("/:ref/items/:item/buy", withParam("id", h.Buy))
		shops.POST("/:ref/favorite", withParam("id", h.ToggleFavorite))
	}

	// Coinflip wagers (per player rate limit)
	api.GET("/coinflip", h.Coinflips)
	api.POST("/coinflip", wagerRL, h.Challenge)
	api.POST("/coinflip/accept", wagerRL, h.Accept)
	api.POST("/coinflip/deny", h.Deny)
	api.POST("/coinflip/cancel", h.Cancel)

	// Rewards
	api.POST("/daily", h.ClaimDaily)
	api.GET("/streak", h.Streak)

	// Inventory
	api.GET("/inventory", h.InventoryContents)
	api.POST("/inventory/collect", h.Collect)
	api.POST("/inventory/grant", admin, h.Grant)

	// Reported by the game server
	api.POST("/combat/mob", admin, h.MobKill)
	api.POST("/combat/pvp", admin, h.PvPKill)

	adm := api.Group("/admin", admin)
	{
		adm.GET("/stats", h.Stats)
		adm.GET("/players/:ref", h.PlayerInfo)
		adm.POST("/shops/:ref/feature", h.FeatureShop)
		adm.POST("/shops/:ref/setinfinite", h.SetInfinite)
		adm.DELETE("/shops/:ref", h.AdminDeleteShop)
	}
}

// withParam exposes the :ref segment under name. gin requires one wildcard
// name per path position, so id-based shop routes share :ref with lookup.
func withParam(name string, next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.AddParam(name, c.Param("ref"))
		next(c)
	}
}
