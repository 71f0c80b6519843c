package main

import (
	"context"

	"buffr-host/bootstrap"
	"buffr-host/internal/config"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	if err := bootstrap.Serve(context.Background(), cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
