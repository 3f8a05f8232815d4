package newbug

import (
	"context"
	"strings"

	"github.com/Tomas-vilte/dbts/internal/cli/completion_helper"
	"github.com/Tomas-vilte/dbts/internal/config"
	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/i18n"
	"github.com/Tomas-vilte/dbts/internal/logger"
	"github.com/Tomas-vilte/dbts/internal/services"
	"github.com/urfave/cli/v3"
)

// Composer opens a prefilled message in the mail client.
type Composer interface {
	Compose(ctx context.Context, mailto string, attachments []string) error
}

type NewCommandFactory struct {
	reports *services.ReportService
	mailer  Composer
}

func NewNewCommandFactory(reports *services.ReportService, mailer Composer) *NewCommandFactory {
	return &NewCommandFactory{
		reports: reports,
		mailer:  mailer,
	}
}

func (f *NewCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     t.GetMessage("new_usage", 0, nil),
		ArgsUsage: t.GetMessage("new_args_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "severity",
				Aliases: []string{"s"},
				Usage:   t.GetMessage("new_severity_usage", 0, nil),
			},
			&cli.StringSliceFlag{
				Name:    "attach",
				Aliases: []string{"a"},
				Usage:   t.GetMessage("new_attach_usage", 0, nil),
			},
		},
		ShellComplete: completion_helper.FlagComplete(),
		Action:        f.createAction(),
	}
}

func (f *NewCommandFactory) createAction() cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		args := cmd.Args().Slice()
		switch {
		case len(args) == 0:
			return apperrors.ErrMissingArgument.WithContext("arguments", "PACKAGE")
		case len(args) > 1:
			return apperrors.ErrExtraArguments.WithContext("arguments", strings.Join(args[1:], " "))
		}

		report, err := f.reports.BuildReport(ctx, args[0], cmd.String("severity"))
		if err != nil {
			return err
		}
		body, err := f.reports.Body(report)
		if err != nil {
			return err
		}

		logger.Info(ctx, "opening mail client", "package", report.Package, "version", report.Version)
		return f.mailer.Compose(ctx, services.MailtoURL(report.Subject(), body), cmd.StringSlice("attach"))
	}
}
