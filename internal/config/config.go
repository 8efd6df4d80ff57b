package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	LedgerModeAlgod  = "algod"
	LedgerModeMemory = "memory"
)

type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	// Key material is PEM or hex/base64 ed25519. Literal "\n" sequences are
	// accepted so PEM blocks survive single-line env files.
	SigningPrivateKey  string
	VerifyingPublicKey string
	AdminAPIKey        string

	LedgerMode           string
	AlgodAddress         string
	AlgodToken           string
	LedgerTimeoutMillis  int
	LedgerRPS            int
	LedgerBurst          int
	LedgerRetryMax       int
	LedgerMemoryHoldings string

	BulkConcurrency int
	BulkMaxTickets  int
	ScanMaxBytes    int

	PostgresDSN string
	AutoMigrate bool

	AdmissionPolicyEnabled bool
	AdmissionPolicyPath    string

	RateLimitRequests      int
	RateLimitWindowSeconds int
	RateLimitFailClosed    bool
	RateLimitMaxKeys       int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:  addr,
		LogLevel:  envDefault("LOG_LEVEL", "info"),
		LogFormat: envDefault("LOG_FORMAT", "json"),

		SigningPrivateKey:  os.Getenv("TICKET_SIGNING_PRIVATE_KEY"),
		VerifyingPublicKey: os.Getenv("TICKET_SIGNING_PUBLIC_KEY"),
		AdminAPIKey:        os.Getenv("ADMIN_API_KEY"),

		LedgerMode:           strings.ToLower(envDefault("LEDGER_MODE", LedgerModeAlgod)),
		AlgodAddress:         os.Getenv("ALGOD_ADDRESS"),
		AlgodToken:           os.Getenv("ALGOD_TOKEN"),
		LedgerTimeoutMillis:  envIntDefault("LEDGER_TIMEOUT_MS", 3000),
		LedgerRPS:            envIntDefault("LEDGER_RPS", 20),
		LedgerBurst:          envIntDefault("LEDGER_BURST", 40),
		LedgerRetryMax:       envNonNegativeIntDefault("LEDGER_RETRY_MAX", 2),
		LedgerMemoryHoldings: os.Getenv("LEDGER_MEMORY_HOLDINGS"),

		BulkConcurrency: envIntDefault("BULK_CONCURRENCY", 8),
		BulkMaxTickets:  envIntDefault("BULK_MAX_TICKETS", 200),
		ScanMaxBytes:    envIntDefault("SCAN_MAX_BYTES", 4<<20),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		AutoMigrate: envBoolDefault("DB_AUTO_MIGRATE", true),

		AdmissionPolicyEnabled: envBoolDefault("ADMISSION_POLICY_ENABLED", true),
		AdmissionPolicyPath:    os.Getenv("ADMISSION_POLICY_PATH"),

		RateLimitRequests:      envNonNegativeIntDefault("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindowSeconds: envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitFailClosed:    envBoolDefault("RATE_LIMIT_FAIL_CLOSED", false),
		RateLimitMaxKeys:       envIntDefault("RATE_LIMIT_MAX_KEYS", 10000),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envNonNegativeIntDefault("REDIS_DB", 0),
	}
}

// Validate reports configuration the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.VerifyingPublicKey) == "" && strings.TrimSpace(c.SigningPrivateKey) == "" {
		errs = append(errs, errors.New("TICKET_SIGNING_PUBLIC_KEY or TICKET_SIGNING_PRIVATE_KEY is required"))
	}
	switch c.LedgerMode {
	case LedgerModeAlgod:
		if c.AlgodAddress == "" {
			errs = append(errs, errors.New("ALGOD_ADDRESS is required when LEDGER_MODE=algod"))
		}
	case LedgerModeMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown LEDGER_MODE %q", c.LedgerMode))
	}
	return errors.Join(errs...)
}

func (c Config) LedgerTimeout() time.Duration {
	return time.Duration(c.LedgerTimeoutMillis) * time.Millisecond
}

func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

// envNonNegativeIntDefault is envIntDefault for settings where 0 means off.
func envNonNegativeIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}
