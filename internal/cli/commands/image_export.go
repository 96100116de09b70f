package commands

import (
	"context"
	"fmt"
	"os"

	"Elegora/internal/cli/media"
	"Elegora/internal/config"
)

type imageExportCmd struct{}

func (imageExportCmd) Name() string { return "image-export" }
func (imageExportCmd) Description() string {
	return "Сохранить изображение листинга из кэша в файл; без аргументов — список закэшированных id"
}
func (imageExportCmd) Usage() string { return "image-export [<id> <file>]" }

func (imageExportCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	var id uint64
	switch len(args) {
	case 0:
	case 2:
		var err error
		if id, err = parseID(args[0]); err != nil {
			return err
		}
	default:
		return ErrUsage
	}
	s, done, err := openSession(ctx, cfg, newLogger(cfg.Debug))
	if err != nil {
		return err
	}
	defer done()

	if len(args) == 0 {
		ids, err := s.Images.IDs(ctx)
		if err != nil {
			return fmt.Errorf("list image cache: %w", err)
		}
		if len(ids) == 0 {
			fmt.Fprintln(Out, "No cached images")
			return nil
		}
		for _, id := range ids {
			fmt.Fprintf(Out, "#%d\n", id)
		}
		fmt.Fprintf(Out, "Всего: %d\n", len(ids))
		return nil
	}

	payload, ok, err := s.Images.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("read image cache: %w", err)
	}
	if !ok {
		return fmt.Errorf("no cached image for item %d", id)
	}
	mime, data, err := media.DecodeDataURL(payload)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], data, 0o600); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	fmt.Fprintf(Out, "Saved %s (%s, %d bytes)\n", args[1], mime, len(data))
	return nil
}

func init() { RegisterCmd(imageExportCmd{}) }
