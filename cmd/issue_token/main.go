package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"economy_server/internal/domain"
	"economy_server/internal/logger"
	"economy_server/internal/service"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Prints a signed player token for local testing.
func main() {
	id := flag.String("id", "", "player uuid (random when empty)")
	name := flag.String("name", "Tester", "player name")
	admin := flag.Bool("admin", false, "grant admin rights")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), false)

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Fatal("JWT_SECRET not set")
	}
	service.InitJWT(secret)

	playerID := uuid.New()
	if *id != "" {
		parsed, err := uuid.Parse(*id)
		if err != nil {
			logger.Fatal("invalid player id", "id", *id, "error", err)
		}
		playerID = parsed
	}

	p := domain.Player{ID: playerID, Name: *name, Admin: *admin}
	token, err := service.GenerateJWT(p, *ttl)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	logger.Info("token issued", "player_id", p.ID, "name", p.Name, "admin", p.Admin)
	fmt.Println(token)
}
