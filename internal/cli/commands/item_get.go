package commands

import (
	"context"
	"fmt"
	"strconv"

	"Elegora/internal/amount"
	"Elegora/internal/cli/media"
	"Elegora/internal/config"
)

type itemGetCmd struct{}

func (itemGetCmd) Name() string { return "item-get" }
func (itemGetCmd) Description() string {
	return "Показать листинг по id со всеми условиями"
}
func (itemGetCmd) Usage() string { return "item-get <id>" }

func (itemGetCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	s, done, err := openSession(ctx, cfg, newLogger(cfg.Debug))
	if err != nil {
		return err
	}
	defer done()

	it, err := s.Ledger.Item(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "ID: %d\n", it.ID)
	fmt.Fprintf(Out, "Name: %s\n", it.Name)
	fmt.Fprintf(Out, "Price: %s\n", amount.ToDisplayString(it.Price))
	if it.IsAuction {
		fmt.Fprintf(Out, "Auction: %d s\n", it.AuctionDuration)
	}
	if it.IsRent {
		fmt.Fprintf(Out, "Rent: %s for %d s\n", amount.ToDisplayString(it.RentalPrice), it.RentalDuration)
	}
	if it.UseLogistics {
		fmt.Fprintf(Out, "Logistics: %s\n", amount.ToDisplayString(it.LogisticsPrice))
	}

	payload, ok, err := s.Images.Get(ctx, id)
	switch {
	case err != nil:
		return fmt.Errorf("read image cache: %w", err)
	case !ok:
		fmt.Fprintln(Out, "Image: none")
	default:
		mime, data, err := media.DecodeDataURL(payload)
		if err != nil {
			fmt.Fprintf(Out, "Image: unreadable (%v)\n", err)
			return nil
		}
		fmt.Fprintf(Out, "Image: %s, %d bytes\n", mime, len(data))
	}
	return nil
}

// parseID разбирает положительный id листинга.
func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrUsage
	}
	return id, nil
}

func init() { RegisterCmd(itemGetCmd{}) }
