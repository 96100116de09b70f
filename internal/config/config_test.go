package config

import (
	"flag"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// resetFlagSet создаёт новый FlagSet перед каждым вызовом NewConfig,
// чтобы избежать повторной регистрации одних и тех же флагов между тестами.
func resetFlagSet(t *testing.T) {
	t.Helper()
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	// подавляем вывод парсера флагов в тестах
	flag.CommandLine.SetOutput(os.Stderr)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATABASE_URI", "AUTH_SECRET", "BASE_URL", "ENABLE_HTTPS", "DEBUG",
		"LISTING_FEE", "INITIAL_BALANCE", "BLOCK_INTERVAL", "CORS_ORIGINS",
		"LEDGER", "RPC_URL", "CONTRACT_ADDRESS", "PRIVATE_KEY", "CHAIN_ID",
		"CONFIRM_TIMEOUT", "POLL_INTERVAL", "IMAGE_CACHE", "CLIENT_DB_PATH",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "IMAGE_MAX_KB",
	} {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestNewConfig_DefaultsWhenEnvEmpty(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.AuthSecret != "dev-secret-key" {
		t.Fatalf("AuthSecret default expected 'dev-secret-key', got %q", cfg.AuthSecret)
	}
	if cfg.BaseURL != "localhost:8081" {
		t.Fatalf("BaseURL default expected 'localhost:8081', got %q", cfg.BaseURL)
	}
	if cfg.ServerURL != "http://localhost:8081" {
		t.Fatalf("ServerURL default expected 'http://localhost:8081', got %q", cfg.ServerURL)
	}
	assert.Equal(t, "elegora-ledger.db", cfg.DatabaseDSN)
	assert.Equal(t, "0.001", cfg.ListingFee)
	assert.Equal(t, "1", cfg.InitialBalance)
	assert.Equal(t, time.Second, cfg.BlockInterval)
	assert.Equal(t, LedgerHTTP, cfg.Ledger)
	assert.Equal(t, 2*time.Minute, cfg.ConfirmTimeout)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, ImageCacheSQLite, cfg.ImageCache)
	assert.Equal(t, int64(5120*1024), cfg.ImageMaxBytes())
	assert.NotEmpty(t, cfg.ClientDBPath)
}

func TestNewConfig_BaseURLAndHTTPS(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASE_URL", "example.com:443")
	t.Setenv("ENABLE_HTTPS", "true")
	t.Setenv("AUTH_SECRET", "top")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.BaseURL != "example.com:443" {
		t.Fatalf("BaseURL expected 'example.com:443', got %q", cfg.BaseURL)
	}
	if cfg.ServerURL != "https://example.com:443" {
		t.Fatalf("ServerURL expected 'https://example.com:443', got %q", cfg.ServerURL)
	}
	if cfg.AuthSecret != "top" {
		t.Fatalf("AuthSecret expected from env 'top', got %q", cfg.AuthSecret)
	}
}

func TestNewConfig_InvalidBaseURLFallsBack(t *testing.T) {
	clearEnv(t)
	// Невалидный BASE_URL (со схемой) должен откатиться на localhost:8081
	t.Setenv("BASE_URL", "http://bad:8080")
	t.Setenv("ENABLE_HTTPS", "false")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.BaseURL != "localhost:8081" {
		t.Fatalf("invalid BASE_URL must fallback to 'localhost:8081', got %q", cfg.BaseURL)
	}
	if !strings.HasPrefix(cfg.ServerURL, "http://localhost:8081") {
		t.Fatalf("ServerURL must reflect fallback base, got %q", cfg.ServerURL)
	}
}

func TestNewConfig_EthereumAndRedis(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEDGER", " Ethereum ")
	t.Setenv("RPC_URL", "http://127.0.0.1:8545")
	t.Setenv("CHAIN_ID", "31337")
	t.Setenv("CONFIRM_TIMEOUT", "30s")
	t.Setenv("IMAGE_CACHE", "REDIS")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	resetFlagSet(t)
	cfg := NewConfig()

	assert.Equal(t, LedgerEthereum, cfg.Ledger)
	assert.Equal(t, "http://127.0.0.1:8545", cfg.RPCURL)
	assert.Equal(t, int64(31337), cfg.ChainID)
	assert.Equal(t, 30*time.Second, cfg.ConfirmTimeout)
	assert.Equal(t, ImageCacheRedis, cfg.ImageCache)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
}

func TestNewConfig_UnknownModesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEDGER", "carrier-pigeon")
	t.Setenv("IMAGE_CACHE", "floppy")

	resetFlagSet(t)
	cfg := NewConfig()

	assert.Equal(t, LedgerHTTP, cfg.Ledger)
	assert.Equal(t, ImageCacheSQLite, cfg.ImageCache)
}
