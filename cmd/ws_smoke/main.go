package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"economy_server/internal/domain"
	"economy_server/internal/logger"
	"economy_server/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

// Connects to /ws as a player and prints every pushed event until interrupted.
func main() {
	name := flag.String("name", "smoke", "player name used when minting a token")
	token := flag.String("token", "", "existing token (minted from JWT_SECRET when empty)")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), false)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	if *token == "" {
		secret := os.Getenv("JWT_SECRET")
		if secret == "" {
			logger.Fatal("JWT_SECRET not set and no -token given")
		}
		service.InitJWT(secret)
		t, err := service.GenerateJWT(domain.Player{ID: uuid.New(), Name: *name}, time.Hour)
		if err != nil {
			logger.Fatal("gen token", "error", err)
		}
		*token = t
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	url := fmt.Sprintf("ws://127.0.0.1:%s/ws?token=%s", port, *token)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		logger.Fatal("dial", "error", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				logger.Info("connection closed", "error", err)
				return
			}
			fmt.Println(string(msg))
		}
	}()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		logger.Fatal("write ping", "error", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	select {
	case <-done:
	case <-interrupt:
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
