package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"Elegora/internal/cli/ledger"
	"Elegora/internal/config"
)

// Dispatch is the single entry point to execute CLI commands.
// It prints help and usage messages and returns a process exit code.
func Dispatch(ctx context.Context, cfg *config.Config, args []string) int {
	// If user passed global --help after flags parsing, show global usage
	for _, a := range os.Args[1:] {
		if a == "--help" || a == "-h" {
			fmt.Fprint(Out, FormatGlobalUsage())
			return 0
		}
	}

	if !flag.Parsed() {
		flag.Parse()
	}

	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return 2
	}

	name := strings.ToLower(args[0])
	if name == "help" { // elegora help [command]
		if len(args) == 1 {
			fmt.Fprint(Out, FormatGlobalUsage())
			return 0
		}
		if c, ok := Get(args[1]); ok {
			fmt.Fprintf(Out, "Usage: %s\n", c.Usage())
			return 0
		}
		fmt.Fprintf(Out, "Unknown command: %s\n\n", args[1])
		fmt.Fprint(Out, FormatGlobalUsage())
		return 2
	}

	c, ok := Get(name)
	if !ok {
		fmt.Fprintf(Out, "Unknown command: %s\n\n", name)
		fmt.Fprint(Out, FormatGlobalUsage())
		return 2
	}

	err := c.Run(ctx, cfg, args[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUsage):
		fmt.Fprintf(Out, "Usage: %s\n", c.Usage())
		return 2
	default:
		fmt.Fprintf(Out, "%s error: %v\n", name, err)
		if hint := errorHint(err, cfg); hint != "" {
			fmt.Fprintf(Out, "hint: %s\n", hint)
		}
		return 1
	}
}

// errorHint подсказывает, что делать дальше; для прочих ошибок пусто.
func errorHint(err error, cfg *config.Config) string {
	var rejected *ledger.RejectedError
	var confirm *ledger.ConfirmationError
	switch {
	case errors.Is(err, ledger.ErrGatewayUnavailable):
		if cfg != nil && cfg.Ledger == config.LedgerEthereum {
			return "ledger node is unreachable, check RPC_URL"
		}
		return "ledger server is unreachable, check --base-url"
	case errors.As(err, &confirm) && confirm.Reason == ledger.ReasonTimeout:
		return "the transaction may still be mined; run sync later before listing again"
	case errors.As(err, &confirm) && confirm.Reason == ledger.ReasonInsufficientFunds:
		return "top up the account balance and list again"
	case errors.As(err, &rejected):
		return "nothing was written to the ledger"
	}
	return ""
}
