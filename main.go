package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/sheikhrachel/go-life/utils"
)

const configFile = "config.json"

func main() {
	// Load configuration - fallback to defaults if file doesn't exist
	config, configErr := utils.LoadConfig(configFile)
	config, envErr := utils.LoadEnv(config)

	closeLog, err := setupLogging(config, os.Stderr)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}
	defer closeLog()

	if configErr != nil {
		log.Info().Err(configErr).Msg("config file not loaded, using default configuration")
	}
	if envErr != nil {
		log.Fatal().Err(envErr).Msg("failed to read environment")
	}

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	game, err := initializeGame(config)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize simulation")
	}

	if config.Headless {
		err = runHeadless(ctx, game, os.Stdout)
	} else {
		err = runInteractive(ctx, game)
	}
	if err != nil {
		log.Error().Err(err).Msg("simulation exited")
		closeLog()
		os.Exit(1)
	}
}
