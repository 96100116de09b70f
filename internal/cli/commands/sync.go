package commands

import (
	"context"
	"fmt"

	"Elegora/internal/config"
)

type syncCmd struct{}

func (syncCmd) Name() string { return "sync" }
func (syncCmd) Description() string {
	return "Полностью перечитать каталог из леджера"
}
func (syncCmd) Usage() string { return "sync" }

func (syncCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	s, done, err := openSession(ctx, cfg, newLogger(cfg.Debug))
	if err != nil {
		return err
	}
	defer done()

	list, err := s.Catalog.Reload(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Catalog synced: %d items\n", len(list))
	return nil
}

func init() { RegisterCmd(syncCmd{}) }
