package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urbano-social/backend/internal/auth"
	"github.com/urbano-social/backend/internal/router"
	"github.com/urbano-social/backend/pkg/config"
	"github.com/urbano-social/backend/pkg/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Error("failed to initialise database", "error", err)
		os.Exit(1)
	}
	defer db.CloseDB()

	if err := db.EnsureIndexes(context.Background()); err != nil {
		logger.Error("failed to create indexes", "error", err)
		os.Exit(1)
	}

	deps := router.Dependencies{Config: cfg, DB: db, Logger: logger}
	if cfg.AuthProvider == "firebase" {
		client, err := auth.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
		if err != nil {
			logger.Error("failed to initialise firebase", "error", err)
			os.Exit(1)
		}
		deps.FirebaseClient = client
	}

	e := router.SetupRouter(deps)

	logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
