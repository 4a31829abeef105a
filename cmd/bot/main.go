package main

import (
	"log"

	"nosybot/internal/config"
	"nosybot/internal/logger"
	"nosybot/internal/server"
)

func main() {
	lg := logger.New()
	defer lg.Sync()

	cfg := config.Load()

	s, err := server.Init(cfg, lg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
