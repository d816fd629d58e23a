package commands

import (
	"context"
	"fmt"
)

type InitCmd struct {
	AdminID int64 `help:"bootstrap admin user id; defaults to BOOTSTRAP_ADMIN_ID"`
}

func (c *InitCmd) Run(ctx context.Context, g *Globals) error {
	cfg, log, err := setup(ctx, g)
	if err != nil {
		return err
	}
	adminID := c.AdminID
	if adminID == 0 {
		adminID = cfg.Ledger.BootstrapAdminID
	}

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer b.Close(ctx)

	if err := b.repository(cfg).Init(ctx, adminID); err != nil {
		return fmt.Errorf("init ledger: %w", err)
	}
	log.Info().Int64("admin_id", adminID).Str("backend", cfg.Store.Backend).Msg("ledger initialised")
	return nil
}
