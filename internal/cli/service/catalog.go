package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"Elegora/internal/cli/ledger"
)

// Catalog — локальный снимок каталога леджера. Снимок только перечитывается целиком,
// инкрементальных обновлений нет.
type Catalog struct {
	gw     ledger.Gateway
	logger *zap.SugaredLogger

	started atomic.Uint64

	mu      sync.RWMutex
	applied uint64
	items   []ledger.Item
}

// NewCatalog создаёт пустой каталог поверх gateway.
func NewCatalog(gw ledger.Gateway, logger *zap.SugaredLogger) *Catalog {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Catalog{gw: gw, logger: logger}
}

const maxPrealloc = 1024

// Reload читает itemCount, затем items(1..count) по возрастанию id и заменяет снимок за один шаг.
// При любой ошибке чтения прежний снимок сохраняется. Результат применяется,
// только если не был применён более поздний по старту Reload.
func (c *Catalog) Reload(ctx context.Context) ([]ledger.Item, error) {
	seq := c.started.Add(1)

	count, err := c.gw.ItemCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("reload catalog: %w", err)
	}
	// count приходит от леджера: ёмкость ограничена, лишние id упадут на чтении
	items := make([]ledger.Item, 0, min(count, maxPrealloc))
	for id := uint64(1); id <= count; id++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("reload catalog: %w", err)
		}
		it, err := c.gw.Item(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("reload catalog: item %d: %w", id, err)
		}
		items = append(items, it)
	}

	c.mu.Lock()
	if seq > c.applied {
		c.items = items
		c.applied = seq
	} else {
		c.logger.Debugw("catalog reload superseded", "seq", seq, "applied", c.applied)
	}
	c.mu.Unlock()

	return cloneItems(items), nil
}

// Items возвращает копию текущего снимка.
func (c *Catalog) Items() []ledger.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneItems(c.items)
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func cloneItems(src []ledger.Item) []ledger.Item {
	out := make([]ledger.Item, len(src))
	copy(out, src)
	return out
}
