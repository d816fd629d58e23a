// Package commands implements the bookkeeper subcommands.
package commands

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ledgerbook/bookkeeper/internal/infrastructure/config"
	"github.com/ledgerbook/bookkeeper/pkg/logger"
)

type Globals struct {
	Version string
}

// setup loads the environment configuration and initialises the logger.
func setup(ctx context.Context, g *Globals) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "bookkeeper",
	})
	log.Debug().Str("version", g.Version).Str("store", cfg.Store.Backend).Msg("configuration loaded")
	return cfg, log, nil
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    8 * 1024,
	}
}
