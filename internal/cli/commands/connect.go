package commands

import (
	"context"
	"fmt"

	"Elegora/internal/config"
)

type connectCmd struct{}

func (connectCmd) Name() string { return "connect" }
func (connectCmd) Description() string {
	return "Подключить аккаунт и показать его адрес"
}
func (connectCmd) Usage() string { return "connect" }

func (connectCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	l, err := openLedger(ctx, cfg, newLogger(cfg.Debug))
	if err != nil {
		return err
	}
	acc, err := l.Connect(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Connected: %s\n", acc.Address)
	return nil
}

func init() { RegisterCmd(connectCmd{}) }
