package config

import (
	"strings"
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "LEDGER_MODE", "LEDGER_TIMEOUT_MS", "LEDGER_RETRY_MAX", "BULK_CONCURRENCY", "RATE_LIMIT_REQUESTS"} {
		t.Setenv(key, "")
	}
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" || cfg.LedgerMode != LedgerModeAlgod {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.LedgerTimeout() != 3*time.Second || cfg.LedgerRetryMax != 2 || cfg.BulkConcurrency != 8 {
		t.Fatalf("unexpected ledger defaults: %+v", cfg)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LEDGER_MODE", "MEMORY")
	t.Setenv("LEDGER_RETRY_MAX", "0")
	t.Setenv("LEDGER_TIMEOUT_MS", "-5")
	t.Setenv("RATE_LIMIT_FAIL_CLOSED", "yes")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "10")
	cfg := FromEnv()
	if cfg.LedgerMode != LedgerModeMemory {
		t.Fatalf("expected memory mode, got %q", cfg.LedgerMode)
	}
	if cfg.LedgerRetryMax != 0 {
		t.Fatalf("expected retries disabled, got %d", cfg.LedgerRetryMax)
	}
	if cfg.LedgerTimeoutMillis != 3000 {
		t.Fatalf("expected invalid timeout to fall back to default, got %d", cfg.LedgerTimeoutMillis)
	}
	if !cfg.RateLimitFailClosed || cfg.RateLimitWindow() != 10*time.Second {
		t.Fatalf("unexpected rate limit config: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{LedgerMode: LedgerModeAlgod}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"TICKET_SIGNING_PUBLIC_KEY", "ALGOD_ADDRESS"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}

	cfg = Config{LedgerMode: LedgerModeMemory, VerifyingPublicKey: "abc"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.LedgerMode = "ethereum"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown ledger mode")
	}
}
