package main

import (
	"flag"
	"fmt"
	"os"

	"economy_server/internal/logger"
	"economy_server/internal/migrations"

	"github.com/joho/godotenv"
)

func main() {
	apply := flag.Bool("apply", false, "apply pending migrations")
	down := flag.Bool("down", false, "roll back every migration")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), false)

	if !*apply && !*down {
		files, err := migrations.Files()
		if err != nil {
			logger.Fatal("list migrations", "error", err)
		}
		for _, f := range files {
			fmt.Println(f)
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	if *down {
		if err := migrations.Down(dsn); err != nil {
			logger.Fatal("migrate down failed", "error", err)
		}
		logger.Info("migrations rolled back")
		return
	}
	if err := migrations.Up(dsn); err != nil {
		logger.Fatal("migrate up failed", "error", err)
	}
	logger.Info("migrations applied")
}
