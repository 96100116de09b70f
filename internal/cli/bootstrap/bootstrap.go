// Package bootstrap собирает зависимости клиента из конфигурации:
// адаптер леджера, кэш изображений и сервисы поверх них.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"Elegora/internal/cli/imagecache"
	"Elegora/internal/cli/ledger"
	"Elegora/internal/cli/ledger/ethereum"
	"Elegora/internal/cli/ledger/httpledger"
	fsrepo "Elegora/internal/cli/repo/fs"
	reposqlite "Elegora/internal/cli/repo/sqlite"
	"Elegora/internal/cli/service"
	"Elegora/internal/config"
)

// Ledger — адаптер леджера вместе с аккаунтом и ключом namespace для кэша изображений.
type Ledger interface {
	ledger.Gateway
	ledger.Connector
	Namespace() string
}

// Session — набор зависимостей одной команды.
type Session struct {
	Ledger  Ledger
	Images  imagecache.Cache
	Catalog *service.Catalog
	Listing *service.ListingService
}

// HTTPLedger создаёт клиент dev-леджера с токеном из пользовательского каталога.
func HTTPLedger(cfg *config.Config, logger *zap.SugaredLogger) *httpledger.Client {
	return httpledger.New(httpledger.Options{
		BaseURL:        cfg.ServerURL,
		Tokens:         fsrepo.AuthFSStore{},
		PollInterval:   cfg.PollInterval,
		ConfirmTimeout: cfg.ConfirmTimeout,
		Logger:         logger,
	})
}

// OpenLedger выбирает адаптер по cfg.Ledger.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (Ledger, error) {
	switch cfg.Ledger {
	case config.LedgerEthereum:
		gw, err := ethereum.Dial(ctx, ethereum.Config{
			RPCURL:          cfg.RPCURL,
			ContractAddress: cfg.ContractAddress,
			PrivateKey:      cfg.PrivateKey,
			ChainID:         cfg.ChainID,
			ConfirmTimeout:  cfg.ConfirmTimeout,
			PollInterval:    cfg.PollInterval,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("open ethereum ledger: %w", err)
		}
		return gw, nil
	default:
		return HTTPLedger(cfg, logger), nil
	}
}

// OpenImageCache открывает кэш изображений выбранного бэкенда и возвращает (cache, cleanup, error).
// cleanup необходимо вызвать после окончания работы, чтобы закрыть соединение.
func OpenImageCache(ctx context.Context, cfg *config.Config, namespace string) (imagecache.Cache, func() error, error) {
	switch cfg.ImageCache {
	case config.ImageCacheMemory:
		c := imagecache.NewMemoryCache()
		return c, c.Close, nil
	case config.ImageCacheRedis:
		c, err := imagecache.NewRedisCache(ctx, imagecache.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: namespace,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open redis image cache: %w", err)
		}
		return c, c.Close, nil
	default:
		r, _, err := reposqlite.Open(cfg.ClientDBPath, namespace)
		if err != nil {
			return nil, nil, fmt.Errorf("open image db: %w", err)
		}
		if err := r.Migrate(); err != nil {
			_ = r.Close()
			return nil, nil, fmt.Errorf("migrate image db: %w", err)
		}
		return r, r.Close, nil
	}
}

// Open собирает Session. cleanup закрывает кэш изображений.
func Open(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*Session, func() error, error) {
	l, err := OpenLedger(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return NewSession(ctx, cfg, l, logger)
}

// NewSession собирает Session поверх готового адаптера.
func NewSession(ctx context.Context, cfg *config.Config, l Ledger, logger *zap.SugaredLogger) (*Session, func() error, error) {
	images, cleanup, err := OpenImageCache(ctx, cfg, l.Namespace())
	if err != nil {
		return nil, nil, err
	}
	return Assemble(l, images, logger), cleanup, nil
}

// Assemble связывает каталог и протокол отправки с адаптером и кэшем.
func Assemble(l Ledger, images imagecache.Cache, logger *zap.SugaredLogger) *Session {
	catalog := service.NewCatalog(l, logger)
	return &Session{
		Ledger:  l,
		Images:  images,
		Catalog: catalog,
		Listing: service.NewListingService(l, catalog, images, logger),
	}
}
