package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/picowx/stationctl/internal/config"
	"github.com/picowx/stationctl/internal/ingest"
	"github.com/picowx/stationctl/internal/observability"
	"github.com/picowx/stationctl/internal/protocol/session"
	"github.com/picowx/stationctl/internal/storage/postgres"
)

const keepAliveInterval = 30 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", config.DefaultPath, "path to the stationctl config file")
	flag.Parse()

	logger := observability.InitLogger("stationctl")
	observability.RegisterMetrics()

	cfg, err := config.Load(*configPath)
	if errors.Is(err, config.ErrNotFound) {
		if werr := config.WriteTemplate(*configPath, false); werr != nil {
			logger.Error().Err(werr).Msg("could not write config template")
			return 1
		}
		logger.Error().Str("path", *configPath).
			Msg("no config file found; a template has been written, please fill it out")
		return 1
	}
	if err != nil {
		logger.Error().Err(err).Msg("config load failed")
		return 1
	}

	zone, err := cfg.Zone()
	if err != nil {
		logger.Error().Err(err).Msg("timezone load failed")
		return 1
	}

	ctx := context.Background()

	store, err := postgres.Open(ctx, cfg.Database.DSN, cfg.StationID, logger)
	if err != nil {
		logger.Error().Err(err).Msg("database connect failed")
		return 1
	}
	defer store.Close()
	go store.KeepAlive(ctx, keepAliveInterval)

	driver := &ingest.Driver{
		DeviceAddr: cfg.DeviceAddr(),
		Zone:       zone,
		Sink:       store,
		Logger:     logger,
	}

	switch err := driver.Run(ctx); {
	case err == nil:
		return 0
	case errors.Is(err, session.ErrCountExceedsMax):
		// A plausible device-side condition, not a programming error: report
		// it cleanly without an error chain.
		logger.Error().Msg("station reported more than the theoretical maximum measurement count")
		return 1
	default:
		logger.Error().Err(err).Msg("ingestion run aborted")
		return 1
	}
}
