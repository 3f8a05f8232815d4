package main

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/Tomas-vilte/dbts/internal/cli/command/completion"
	"github.com/Tomas-vilte/dbts/internal/cli/command/config"
	"github.com/Tomas-vilte/dbts/internal/cli/command/ls"
	"github.com/Tomas-vilte/dbts/internal/cli/command/newbug"
	"github.com/Tomas-vilte/dbts/internal/cli/command/show"
	"github.com/Tomas-vilte/dbts/internal/cli/registry"
	cfg "github.com/Tomas-vilte/dbts/internal/config"
	"github.com/Tomas-vilte/dbts/internal/debian"
	"github.com/Tomas-vilte/dbts/internal/domain/ports"
	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/i18n"
	"github.com/Tomas-vilte/dbts/internal/infrastructure/cache"
	"github.com/Tomas-vilte/dbts/internal/infrastructure/debbugs"
	"github.com/Tomas-vilte/dbts/internal/infrastructure/httpclient"
	"github.com/Tomas-vilte/dbts/internal/infrastructure/mailer"
	"github.com/Tomas-vilte/dbts/internal/logger"
	"github.com/Tomas-vilte/dbts/internal/services"
	"github.com/Tomas-vilte/dbts/internal/ui"
	"github.com/Tomas-vilte/dbts/internal/version"
	"github.com/urfave/cli/v3"
	"golang.org/x/sys/unix"
)

const prog = "dbts"

func main() {
	os.Exit(run(context.Background(), os.Args))
}

func run(ctx context.Context, args []string) int {
	cfgApp, err := loadConfig(args)
	if err != nil {
		ui.HandleAppError(os.Stderr, prog, err, nil)
		return 1
	}

	translations, err := i18n.NewTranslations(cfgApp.Language)
	if err != nil {
		ui.HandleAppError(os.Stderr, prog, err, nil)
		return 1
	}

	app, err := initializeApp(cfgApp, translations)
	if err != nil {
		ui.HandleAppError(os.Stderr, prog, err, translations)
		return 1
	}

	return exitStatus(os.Stderr, app.Run(ctx, args), translations)
}

// exitStatus reports err on w and maps it to the process exit status. A
// closed pipe ends the program silently with the status a shell expects from
// a process killed by SIGPIPE.
func exitStatus(w io.Writer, err error, t *i18n.Translations) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, unix.EPIPE):
		return 128 + int(unix.SIGPIPE)
	}
	ui.HandleAppError(w, prog, err, t)
	if apperrors.IsUsage(err) {
		return 2
	}
	return 1
}

// loadConfig reads the file named by --config, or the default one. The flag
// is looked up before the command line is parsed because the language of
// every usage string depends on it.
func loadConfig(args []string) (*cfg.Config, error) {
	path, ok := configFlag(args)
	if !ok {
		var err error
		if path, err = cfg.DefaultPath(); err != nil {
			return nil, apperrors.ErrConfigRead.WithError(err)
		}
	}
	cfgApp, err := cfg.LoadConfig(path)
	if err != nil {
		return nil, apperrors.ErrConfigInvalid.WithError(err).WithContext("path", path)
	}
	return cfgApp, nil
}

func configFlag(args []string) (string, bool) {
	for i := 1; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		for _, name := range []string{"--config", "-config"} {
			if arg == name && i+1 < len(args) {
				return args[i+1], true
			}
			if value, found := strings.CutPrefix(arg, name+"="); found {
				return value, true
			}
		}
	}
	return "", false
}

func initializeApp(cfgApp *cfg.Config, translations *i18n.Translations) (*cli.Command, error) {
	var forceCache bool
	output := &ui.PagedOutput{File: os.Stdout, Pager: cfgApp.Pager}

	trackerProvider := func(ctx context.Context) (ports.BugTracker, error) {
		var opts []httpclient.Option
		if forceCache {
			c, err := cache.NewCache("", cfgApp.CacheTTL.Duration)
			if err != nil {
				logger.Warn(ctx, "http cache disabled", "error", err)
			} else {
				opts = append(opts, httpclient.WithCache(c))
			}
		}
		ua := httpclient.NewUserAgent(cfgApp.UserAgent, opts...)
		return debbugs.NewClient(cfgApp.BaseURL, ua), nil
	}

	local := debian.NewLocal(debian.ExecRunner{})

	registerCommand := registry.NewRegistry(cfgApp, translations)

	if err := registerCommand.Register("ls", ls.NewLsCommandFactory(trackerProvider, services.NewSelectionService(local), output)); err != nil {
		return nil, err
	}

	if err := registerCommand.Register("show", show.NewShowCommandFactory(trackerProvider, output)); err != nil {
		return nil, err
	}

	if err := registerCommand.Register("new", newbug.NewNewCommandFactory(services.NewReportService(local), mailer.NewMailer(cfgApp.MailClient))); err != nil {
		return nil, err
	}

	if err := registerCommand.Register("config", config.NewConfigCommandFactory()); err != nil {
		return nil, err
	}

	if err := registerCommand.Register("completion", completion.NewCompletionCommandFactory()); err != nil {
		return nil, err
	}

	commands := registerCommand.CreateCommands()

	helpCommand := &cli.Command{
		Name:    "help",
		Aliases: []string{"h"},
		Usage:   translations.GetMessage("help_command_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd.Root())
		},
	}
	commands = append(commands, helpCommand)

	return &cli.Command{
		Name:        prog,
		Usage:       translations.GetMessage("app_usage", 0, nil),
		Version:     version.Version,
		Description: translations.GetMessage("app_description", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: translations.GetMessage("flag_config_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: translations.GetMessage("flag_debug_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: translations.GetMessage("flag_verbose_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:   "force-cache",
				Hidden: true,
			},
			&cli.BoolFlag{
				Name:  "no-pager",
				Usage: translations.GetMessage("flag_no_pager_usage", 0, nil),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logger.Initialize(cmd.Bool("debug"), cmd.Bool("verbose"))
			output.Disabled = cmd.Bool("no-pager")
			forceCache = cmd.Bool("force-cache")
			return ctx, nil
		},
		Commands:              commands,
		EnableShellCompletion: true,
	}, nil
}
