package completion_helper

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
)

// FlagComplete returns a completion func that prints the flags of the
// current command followed by words.
func FlagComplete(words ...string) cli.ShellCompleteFunc {
	return func(_ context.Context, cmd *cli.Command) {
		w := writer(cmd)
		for _, f := range cmd.Flags {
			for _, name := range f.Names() {
				if len(name) == 1 {
					_, _ = fmt.Fprintln(w, "-"+name)
				} else {
					_, _ = fmt.Fprintln(w, "--"+name)
				}
			}
		}
		for _, word := range words {
			_, _ = fmt.Fprintln(w, word)
		}
	}
}

func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
