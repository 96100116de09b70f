package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"Elegora/internal/cli/media"
	"Elegora/internal/cli/service"
	"Elegora/internal/config"
)

type listItemCmd struct{}

func (listItemCmd) Name() string { return "list-item" }
func (listItemCmd) Description() string {
	return "Выставить листинг: отправка, подтверждение, сверка"
}
func (listItemCmd) Usage() string {
	return "list-item --name N --price P --image FILE [--auction --auction-duration S] [--rent --rental-price P --rental-duration S] [--logistics --logistics-price P]"
}

func (listItemCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("list-item", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var d service.Draft
	var imagePath string
	fs.StringVar(&d.Name, "name", "", "")
	fs.StringVar(&d.Price, "price", "", "")
	fs.StringVar(&imagePath, "image", "", "")
	fs.BoolVar(&d.IsAuction, "auction", false, "")
	fs.StringVar(&d.AuctionDuration, "auction-duration", "", "")
	fs.BoolVar(&d.IsRent, "rent", false, "")
	fs.StringVar(&d.RentalPrice, "rental-price", "", "")
	fs.StringVar(&d.RentalDuration, "rental-duration", "", "")
	fs.BoolVar(&d.UseLogistics, "logistics", false, "")
	fs.StringVar(&d.LogisticsPrice, "logistics-price", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	if imagePath != "" {
		img, err := media.SelectImage(imagePath, cfg.ImageMaxBytes())
		if err != nil {
			return err
		}
		d.Image = img
	}
	// черновик проверяется до любого обращения к леджеру
	if _, err := service.BuildRequest(&d); err != nil {
		return err
	}

	s, done, err := openSession(ctx, cfg, newLogger(cfg.Debug))
	if err != nil {
		return err
	}
	defer done()

	acc, err := s.Ledger.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	fmt.Fprintf(Out, "Account: %s\n", acc.Address)

	s.Listing.OnState = func(st service.State) { fmt.Fprintf(Out, "-> %s\n", st) }
	res, err := s.Listing.Submit(ctx, &d)
	if res.TxHash == "" {
		return err
	}
	note := ""
	if res.Predicted {
		note = " (id predicted)"
	}
	fmt.Fprintf(Out, "Listed item #%d%s, tx %s, block %d\n", res.ItemID, note, res.TxHash, res.Block)
	return err
}

func init() { RegisterCmd(listItemCmd{}) }
