package completion

import (
	"context"
	"io"
	"os"

	"github.com/Tomas-vilte/dbts/internal/config"
	"github.com/Tomas-vilte/dbts/internal/i18n"
	"github.com/urfave/cli/v3"
)

const bashCompletionScript = `#! /bin/bash

_dbts_bash_autocomplete() {
  if [[ "${COMP_WORDS[0]}" != "source" ]]; then
    local cur opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    local cmd_context=("${COMP_WORDS[@]:0:$COMP_CWORD}")
    opts=$( "${cmd_context[@]}" --generate-shell-completion )
    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
    return 0
  fi
}

complete -o bashdefault -o default -o nospace -F _dbts_bash_autocomplete dbts
`

const zshCompletionScript = `#compdef dbts

_dbts() {
  local -a opts
  local cmd_context=("${(@)words[1,$CURRENT-1]}")
  opts=("${(@f)$("${cmd_context[@]}" --generate-shell-completion)}")
  _describe 'values' opts
}

compdef _dbts dbts
`

type CompletionCommandFactory struct {
	out io.Writer
}

func NewCompletionCommandFactory() *CompletionCommandFactory {
	return &CompletionCommandFactory{out: os.Stdout}
}

func (f *CompletionCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "completion",
		Usage: t.GetMessage("completion_usage", 0, nil),
		Commands: []*cli.Command{
			f.scriptCommand("bash", t.GetMessage("completion_bash_usage", 0, nil), bashCompletionScript),
			f.scriptCommand("zsh", t.GetMessage("completion_zsh_usage", 0, nil), zshCompletionScript),
		},
	}
}

func (f *CompletionCommandFactory) scriptCommand(shell, usage, script string) *cli.Command {
	return &cli.Command{
		Name:  shell,
		Usage: usage,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, err := io.WriteString(f.out, script)
			return err
		},
	}
}
