package main

import (
	"github.com/wfunc/taparena/config"
	"github.com/wfunc/taparena/logger"
	"github.com/wfunc/taparena/persistence"
	"github.com/wfunc/taparena/server"
)

func main() {
	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Round history is optional: without a database the server runs fully
	// in-memory and rounds are simply not recorded.
	var store persistence.Store = persistence.Noop{}
	if cfg.Database.Enabled {
		pg, err := persistence.NewGormPostgreSQL(
			cfg.Database.Postgres.Host,
			cfg.Database.Postgres.Port,
			cfg.Database.Postgres.User,
			cfg.Database.Postgres.Password,
			cfg.Database.Postgres.DBName,
		)
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		logger.Log.Info("Database connection successful.")
		store = pg
		defer pg.Close()
	}

	// Initialize Game Server
	gameServer := server.NewGameServer(cfg, store)

	// Start Server
	logger.Log.Infof("Starting tap arena server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
