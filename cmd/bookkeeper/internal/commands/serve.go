package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgerbook/bookkeeper/internal/api"
	"github.com/ledgerbook/bookkeeper/internal/core/analytics"
	"github.com/ledgerbook/bookkeeper/internal/core/service"
	"github.com/ledgerbook/bookkeeper/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

type ServeCmd struct {
	Listen string `help:"listen address; defaults to :PORT"`
}

func (s *ServeCmd) Run(ctx context.Context, g *Globals) error {
	cfg, log, err := setup(ctx, g)
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required to serve the API")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer b.Close(context.Background())

	repo := b.repository(cfg)
	if err := repo.Init(ctx, cfg.Ledger.BootstrapAdminID); err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}

	opts := analytics.Options{LTVMultiplier: cfg.Ledger.LTVMultiplier}
	router := api.NewRouter(api.Deps{
		Ledger:    service.NewLedgerService(repo, b.idem, logger.Component("ledger")),
		Analytics: service.NewAnalyticsService(repo, opts, cfg.Location(), logger.Component("analytics")),
		Access: service.NewAccessService(repo, cfg.Ledger.BootstrapAdminID, cfg.Ledger.DefaultAccessDays,
			logger.Component("access")),
		Checks:    b.checks,
		JWTSecret: cfg.JWTSecret,
		Logger:    logger.Component("http"),
	})

	addr := s.Listen
	if addr == "" {
		addr = net.JoinHostPort("", cfg.Port)
	}
	srv := configureHTTPServer(addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("version", g.Version).Msg("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
