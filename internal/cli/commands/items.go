package commands

import (
	"context"
	"fmt"

	"Elegora/internal/amount"
	"Elegora/internal/config"
)

type itemsCmd struct{}

func (itemsCmd) Name() string { return "items" }
func (itemsCmd) Description() string {
	return "Перечитать каталог из леджера и показать все листинги"
}
func (itemsCmd) Usage() string { return "items" }

func (itemsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
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
	if len(list) == 0 {
		fmt.Fprintln(Out, "Нет листингов")
		return nil
	}
	for _, it := range list {
		img := ""
		if _, ok, err := s.Images.Get(ctx, it.ID); err == nil && ok {
			img = "  [image]"
		}
		terms := describeTerms(it)
		if terms != "" {
			terms = "  (" + terms + ")"
		}
		fmt.Fprintf(Out, "- #%d  %s  price=%s%s%s\n", it.ID, it.Name, amount.ToDisplayString(it.Price), terms, img)
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(list))
	return nil
}

func init() { RegisterCmd(itemsCmd{}) }
