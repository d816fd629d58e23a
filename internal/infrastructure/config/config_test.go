package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.Store.Backend != BackendMemory {
		t.Errorf("backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Store.MaxAttempts != 5 {
		t.Errorf("max attempts = %d, want 5", cfg.Store.MaxAttempts)
	}
	if cfg.Store.IdempotencyTTL != 24*time.Hour {
		t.Errorf("idempotency ttl = %v, want 24h", cfg.Store.IdempotencyTTL)
	}
	if cfg.Ledger.LTVMultiplier != 3 {
		t.Errorf("ltv multiplier = %v, want 3", cfg.Ledger.LTVMultiplier)
	}
	if cfg.Ledger.DefaultAccessDays != 30 {
		t.Errorf("default access days = %d, want 30", cfg.Ledger.DefaultAccessDays)
	}
	if cfg.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", cfg.Location())
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"STORE_BACKEND":      "jsonbin",
		"JSONBIN_BIN_ID":     "bin",
		"JSONBIN_MASTER_KEY": "key",
		"BOOTSTRAP_ADMIN_ID": "42",
		"LEDGER_TIMEZONE":    "Europe/Moscow",
		"STORE_MAX_ATTEMPTS": "9",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Ledger.BootstrapAdminID != 42 {
		t.Errorf("bootstrap admin = %d, want 42", cfg.Ledger.BootstrapAdminID)
	}
	if cfg.Store.MaxAttempts != 9 {
		t.Errorf("max attempts = %d, want 9", cfg.Store.MaxAttempts)
	}
	if cfg.Location().String() != "Europe/Moscow" {
		t.Errorf("location = %v", cfg.Location())
	}
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":     {"STORE_BACKEND": "sqlite"},
		"jsonbin without bin": {"STORE_BACKEND": "jsonbin", "JSONBIN_MASTER_KEY": "key"},
		"redis without addr":  {"STORE_BACKEND": "redis"},
		"zero attempts":       {"STORE_MAX_ATTEMPTS": "0"},
		"bad timezone":        {"LEDGER_TIMEZONE": "Mars/Olympus"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := load(context.Background(), envconfig.MapLookuper(env)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
