package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"economy_server/internal/app"
	"economy_server/internal/bot"
	"economy_server/internal/config"
	"economy_server/internal/db"
	httpServer "economy_server/internal/http"
	"economy_server/internal/http/handlers"
	"economy_server/internal/logger"
	"economy_server/internal/service"
	"economy_server/internal/shutdown"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, rdb, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open store", "backend", cfg.StoreBackend, "error", err)
	}
	// A non-redis backend may still use Redis for rate limiting.
	var limiterRedis *redis.Client = rdb
	if rdb == nil && cfg.RedisAddr != "" {
		limiterRedis, err = db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, using in-memory rate limits", "error", err)
			limiterRedis = nil
		}
	}

	a := app.Build(ctx, cfg, store, app.Options{})
	a.Start(ctx)

	if cfg.LogJSON {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for clients served from another origin
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, a.Handler(), httpServer.RouteConfig{
		Health:          handlers.NewHealthHandler(store, cfg.StoreBackend, cfg.Version),
		Hub:             a.Hub,
		AllowedOrigin:   cfg.AllowedOrigin,
		Redis:           limiterRedis,
		APIRateLimit:    cfg.APIRateLimit,
		APIRateWindow:   cfg.APIRateWindow,
		WagerRateLimit:  cfg.WagerRateLimit,
		WagerRateWindow: cfg.WagerRateWindow,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Drained last-in first-out: HTTP stops, wagers settle, the loop drains,
	// the final flush runs, then the store closes.
	q := shutdown.New()
	q.Add("close store", a.Close)
	if limiterRedis != nil && limiterRedis != rdb {
		q.Add("close rate limiter redis", func(context.Context) error { return limiterRedis.Close() })
	}
	q.Add("flush", a.Flush)
	q.Add("stop loop", a.StopLoop)
	q.Add("settle wagers", a.SettleInFlight)
	q.Add("http server", srv.Shutdown)

	if cfg.AdminBotEnabled {
		commands := &bot.Commands{Admin: a.Admin, Economy: a.Economy, Market: a.Market}
		adminBot, err := bot.NewAdminBot(cfg.BotToken, commands, a.Loop, cfg.AdminTelegramIDs)
		if err != nil {
			logger.Error("admin bot disabled", "error", err)
		} else {
			go adminBot.Start()
			q.Add("admin bot", func(context.Context) error {
				adminBot.Stop()
				return nil
			})
		}
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := q.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown finished with errors", "error", err)
		os.Exit(1)
	}
	logger.Info("server exited")
}
