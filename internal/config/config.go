package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Режимы клиента.
const (
	LedgerHTTP     = "http"
	LedgerEthereum = "ethereum"

	ImageCacheSQLite = "sqlite"
	ImageCacheMemory = "memory"
	ImageCacheRedis  = "redis"
)

type Config struct {
	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`
	Debug       bool   `env:"DEBUG"`

	// Dev ledger server
	DatabaseDSN    string        `env:"DATABASE_URI"`
	AuthSecret     string        `env:"AUTH_SECRET"`
	ListingFee     string        `env:"LISTING_FEE" envDefault:"0.001"`
	InitialBalance string        `env:"INITIAL_BALANCE" envDefault:"1"`
	BlockInterval  time.Duration `env:"BLOCK_INTERVAL" envDefault:"1s"`
	CORSOrigins    []string      `env:"CORS_ORIGINS" envSeparator:","`

	// Client: ledger
	Ledger          string        `env:"LEDGER" envDefault:"http"`
	RPCURL          string        `env:"RPC_URL"`
	ContractAddress string        `env:"CONTRACT_ADDRESS"`
	PrivateKey      string        `env:"PRIVATE_KEY"`
	ChainID         int64         `env:"CHAIN_ID"`
	ConfirmTimeout  time.Duration `env:"CONFIRM_TIMEOUT" envDefault:"2m"`
	PollInterval    time.Duration `env:"POLL_INTERVAL" envDefault:"1s"`

	// Client: image cache
	ImageCache    string `env:"IMAGE_CACHE" envDefault:"sqlite"`
	ClientDBPath  string `env:"CLIENT_DB_PATH"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`
	ImageMaxKB    int64  `env:"IMAGE_MAX_KB" envDefault:"5120"`

	ServerURL string `env:"-"`
	Version   bool   `env:"-"` // show client version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	// Shared flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "address of the dev ledger server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "use https scheme for BaseURL")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "verbose logging")
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres DSN или путь к sqlite)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.ListingFee, "listing-fee", cfg.ListingFee, "комиссия за listItem в ether")
	flag.StringVar(&cfg.InitialBalance, "initial-balance", cfg.InitialBalance, "стартовый баланс аккаунта в ether")
	flag.DurationVar(&cfg.BlockInterval, "block-interval", cfg.BlockInterval, "период майнинга блоков")
	// Client flags
	flag.StringVar(&cfg.Ledger, "ledger", cfg.Ledger, "ledger adapter: http | ethereum")
	flag.StringVar(&cfg.RPCURL, "rpc-url", cfg.RPCURL, "JSON-RPC endpoint (ethereum ledger)")
	flag.StringVar(&cfg.ContractAddress, "contract", cfg.ContractAddress, "marketplace contract address (ethereum ledger)")
	flag.Int64Var(&cfg.ChainID, "chain-id", cfg.ChainID, "chain id; 0 = ask the node")
	flag.DurationVar(&cfg.ConfirmTimeout, "confirm-timeout", cfg.ConfirmTimeout, "how long to wait for confirmation")
	flag.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "confirmation poll interval")
	flag.StringVar(&cfg.ImageCache, "image-cache", cfg.ImageCache, "image cache backend: sqlite | memory | redis")
	flag.StringVar(&cfg.ClientDBPath, "client-db", cfg.ClientDBPath, "directory of the client SQLite DB")
	flag.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "redis address for the image cache")
	flag.Int64Var(&cfg.ImageMaxKB, "image-max-kb", cfg.ImageMaxKB, "max image size in KiB")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	// Defaults
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "elegora-ledger.db"
	}
	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	cfg.Ledger = strings.ToLower(strings.TrimSpace(cfg.Ledger))
	if cfg.Ledger != LedgerEthereum {
		cfg.Ledger = LedgerHTTP
	}
	cfg.ImageCache = strings.ToLower(strings.TrimSpace(cfg.ImageCache))
	switch cfg.ImageCache {
	case ImageCacheMemory, ImageCacheRedis:
	default:
		cfg.ImageCache = ImageCacheSQLite
	}
	if cfg.ImageMaxKB <= 0 {
		cfg.ImageMaxKB = 5120
	}
	if cfg.ClientDBPath == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.ClientDBPath = filepath.Join(dir, "Elegora")
		}
	}

	return cfg
}

// ImageMaxBytes — лимит размера изображения в байтах.
func (c *Config) ImageMaxBytes() int64 { return c.ImageMaxKB * 1024 }
