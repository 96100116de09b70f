package commands

import (
	"context"
	"fmt"

	"Elegora/internal/cli/bootstrap"
	"Elegora/internal/config"
)

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store auth cookie" }
func (loginCmd) Usage() string       { return "login <login> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	if cfg.Ledger == config.LedgerEthereum {
		return errHTTPLedgerOnly
	}
	acc, err := bootstrap.HTTPLedger(cfg, newLogger(cfg.Debug)).Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Logged in successfully, account %s\n", acc.Address)
	return nil
}

func init() { RegisterCmd(loginCmd{}) }
