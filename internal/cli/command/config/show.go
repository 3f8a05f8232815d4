package config

import (
	"context"
	"fmt"

	"github.com/Tomas-vilte/dbts/internal/config"
	"github.com/Tomas-vilte/dbts/internal/i18n"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("config_show_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			data, err := config.Encode(cfg)
			if err != nil {
				return err
			}
			if cfg.PathFile != "" {
				if _, err := fmt.Fprintln(c.out, t.GetMessage("config_file_label", 0, map[string]interface{}{"Path": cfg.PathFile})); err != nil {
					return err
				}
			}
			_, err = c.out.Write(data)
			return err
		},
	}
}
