package commands

import (
	"context"
	"errors"
	"fmt"

	"Elegora/internal/cli/bootstrap"
	"Elegora/internal/config"
)

var errHTTPLedgerOnly = errors.New("accounts are managed by the dev ledger: use --ledger http")

type registerCmd struct{}

func (registerCmd) Name() string { return "register" }
func (registerCmd) Description() string {
	return "Создать аккаунт в dev-леджере и сохранить сессию"
}
func (registerCmd) Usage() string { return "register <login> <password>" }

func (registerCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	if cfg.Ledger == config.LedgerEthereum {
		return errHTTPLedgerOnly
	}
	acc, err := bootstrap.HTTPLedger(cfg, newLogger(cfg.Debug)).Register(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Registered %s, account %s\n", args[0], acc.Address)
	return nil
}

func init() { RegisterCmd(registerCmd{}) }
