package main

import (
	log "github.com/sirupsen/logrus"

	"solarfarm-server/confs"
	"solarfarm-server/db"
	"solarfarm-server/fleet"
	"solarfarm-server/logger"
	"solarfarm-server/server"
)

func main() {
	// load config
	cfg, err := confs.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	if err := logger.Init(cfg.LogLevel, cfg.LogDir); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}

	// device→panel mapping, validated once at startup
	mapping, err := fleet.Load(cfg.FleetMapping)
	if err != nil {
		log.Fatalf("Error loading fleet mapping: %v", err)
	}
	log.Infof("Fleet mapping loaded: %d devices", len(mapping.DeviceIDs()))

	// connect to database Postgres
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	// run server
	srv := server.NewServer(database, cfg, mapping)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
