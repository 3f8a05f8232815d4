package show

import (
	"context"

	"github.com/Tomas-vilte/dbts/internal/cli/completion_helper"
	"github.com/Tomas-vilte/dbts/internal/config"
	"github.com/Tomas-vilte/dbts/internal/debian"
	"github.com/Tomas-vilte/dbts/internal/domain/ports"
	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/i18n"
	"github.com/Tomas-vilte/dbts/internal/logger"
	"github.com/Tomas-vilte/dbts/internal/ui"
	"github.com/urfave/cli/v3"
)

type ShowCommandFactory struct {
	tracker ports.BugTrackerProvider
	output  ui.Output
}

func NewShowCommandFactory(tracker ports.BugTrackerProvider, output ui.Output) *ShowCommandFactory {
	return &ShowCommandFactory{
		tracker: tracker,
		output:  output,
	}
}

func (f *ShowCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     t.GetMessage("show_usage", 0, nil),
		ArgsUsage: t.GetMessage("show_args_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "merged",
				Usage: t.GetMessage("show_merged_usage", 0, nil),
			},
		},
		ShellComplete: completion_helper.FlagComplete(),
		Action:        f.createAction(cfg),
	}
}

func (f *ShowCommandFactory) createAction(cfg *config.Config) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		specs := cmd.Args().Slice()
		if len(specs) == 0 {
			return apperrors.ErrMissingArgument.WithContext("arguments", "BUGSPEC")
		}
		ids := make([]int, 0, len(specs))
		for _, spec := range specs {
			id, err := debian.ParseBugSpec(spec)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		tracker, err := f.tracker(ctx)
		if err != nil {
			return err
		}

		out, err := f.output.Open()
		if err != nil {
			return err
		}
		r := &renderer{
			tracker: tracker,
			p:       ui.NewPrinter(out),
			baseURL: cfg.BaseURL,
		}
		var showErr error
		for _, id := range ids {
			if showErr = r.show(logger.With(ctx, "bug", id), id, cmd.Bool("merged")); showErr != nil {
				break
			}
		}
		if showErr == nil {
			showErr = r.p.Err()
		}
		closeErr := out.Close()
		if showErr != nil {
			return showErr
		}
		return closeErr
	}
}
