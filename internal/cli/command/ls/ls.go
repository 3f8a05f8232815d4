package ls

import (
	"context"
	"encoding/json"
	"io"
	"sort"

	"github.com/Tomas-vilte/dbts/internal/cli/completion_helper"
	"github.com/Tomas-vilte/dbts/internal/config"
	"github.com/Tomas-vilte/dbts/internal/domain/models"
	"github.com/Tomas-vilte/dbts/internal/domain/ports"
	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/i18n"
	"github.com/Tomas-vilte/dbts/internal/logger"
	"github.com/Tomas-vilte/dbts/internal/services"
	"github.com/Tomas-vilte/dbts/internal/ui"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

type LsCommandFactory struct {
	tracker    ports.BugTrackerProvider
	selections *services.SelectionService
	output     ui.Output
}

func NewLsCommandFactory(tracker ports.BugTrackerProvider, selections *services.SelectionService, output ui.Output) *LsCommandFactory {
	return &LsCommandFactory{
		tracker:    tracker,
		selections: selections,
		output:     output,
	}
}

func (f *LsCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Aliases:   []string{"list"},
		Usage:     t.GetMessage("ls_usage", 0, nil),
		ArgsUsage: t.GetMessage("ls_args_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   formatText,
				Usage:   t.GetMessage("ls_format_usage", 0, nil),
			},
		},
		ShellComplete: completion_helper.FlagComplete(selectorWords()...),
		Action:        f.createAction(t),
	}
}

func (f *LsCommandFactory) createAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		selections := cmd.Args().Slice()
		if len(selections) == 0 {
			return apperrors.ErrMissingArgument.WithContext("arguments", "SELECTION")
		}
		format := cmd.String("format")
		switch format {
		case formatText, formatJSON, formatYAML:
		default:
			return apperrors.ErrInvalidFormat.WithContext("argument", format)
		}

		queries, err := f.selections.Resolve(ctx, selections)
		if err != nil {
			return err
		}

		tracker, err := f.tracker(ctx)
		if err != nil {
			return err
		}
		bugs, err := tracker.GetBugs(ctx, queries...)
		if err != nil {
			return err
		}
		if len(bugs) == 0 {
			logger.Info(ctx, t.GetMessage("no_bugs_found", 0, nil))
		}
		sort.Slice(bugs, func(i, j int) bool { return bugs[i].ID > bugs[j].ID })

		out, err := f.output.Open()
		if err != nil {
			return err
		}
		writeErr := write(out, format, bugs)
		closeErr := out.Close()
		if writeErr != nil {
			return writeErr
		}
		return closeErr
	}
}

func write(w io.Writer, format string, bugs []models.Bug) error {
	switch format {
	case formatJSON:
		if bugs == nil {
			bugs = []models.Bug{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(bugs)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(bugs); err != nil {
			return err
		}
		return enc.Close()
	}

	p := ui.NewPrinter(w)
	RenderBugs(p, bugs)
	return p.Err()
}

func selectorWords() []string {
	names := services.SelectorNames()
	words := make([]string, len(names))
	for i, name := range names {
		words[i] = name + ":"
	}
	return words
}
