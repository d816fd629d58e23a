package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ledgerbook/bookkeeper/internal/core/service"
)

type TokenCmd struct {
	UserID int64         `arg:"" help:"chat user id to put in the token subject"`
	TTL    time.Duration `help:"token lifetime; defaults to TOKEN_TTL"`
}

func (c *TokenCmd) Run(ctx context.Context, g *Globals) error {
	cfg, _, err := setup(ctx, g)
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required to sign tokens")
	}
	ttl := c.TTL
	if ttl == 0 {
		ttl = cfg.TokenTTL
	}

	token, expires, err := service.NewTokenIssuer(cfg.JWTSecret, ttl).Issue(c.UserID)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expires.Format(time.RFC3339))
	return nil
}
