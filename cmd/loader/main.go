package main

import (
	"flag"
	"path/filepath"
	_ "time/tzdata"

	"github.com/rs/zerolog/log"

	"github.com/storewatch/store-uptime-monitor/internal/config"
	"github.com/storewatch/store-uptime-monitor/internal/database"
	"github.com/storewatch/store-uptime-monitor/internal/repository"
	"github.com/storewatch/store-uptime-monitor/internal/service"
)

func main() {
	dataDir := flag.String("data", "./data", "directory holding store_status.csv, menu_hours.csv, timezones.csv")
	flag.Parse()

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	repos := repository.New(db)
	err = service.LoadCSVs(repos,
		filepath.Join(*dataDir, "store_status.csv"),
		filepath.Join(*dataDir, "menu_hours.csv"),
		filepath.Join(*dataDir, "timezones.csv"),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("csv load failed")
	}
	log.Info().Msg("load complete")
}
