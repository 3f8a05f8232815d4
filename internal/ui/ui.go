package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/i18n"
	"github.com/fatih/color"
)

var (
	// Colors for diagnostics on stderr
	Error = color.New(color.FgRed, color.Bold)
	Info  = color.New(color.FgCyan)
	Dim   = color.New(color.FgHiBlack)
)

// HandleAppError prints err as "PROG: error: MESSAGE" followed by a hint
// when the error carries one. If t is nil, English defaults are used.
func HandleAppError(w io.Writer, prog string, err error, t *i18n.Translations) {
	if err == nil {
		return
	}

	errorPrefix, hintPrefix := "error", "hint"
	if t != nil {
		errorPrefix = t.GetMessage("error_prefix", 0, nil)
		hintPrefix = t.GetMessage("suggestion_prefix", 0, nil)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		_, _ = fmt.Fprintf(w, "%s: %s %s\n", prog, Error.Sprint(errorPrefix+":"), err.Error())
		return
	}

	if appErr.Type == apperrors.TypeUsage {
		_, _ = fmt.Fprintf(w, "%s: %s %s\n", prog, Error.Sprint(errorPrefix+":"), usageMessage(err, appErr, t))
	} else {
		_, _ = fmt.Fprintf(w, "%s: %s %s\n", prog, Error.Sprint(errorPrefix+":"), appErr.Message)
		if appErr.Err != nil {
			_, _ = fmt.Fprintf(w, "  %s\n", Dim.Sprint(appErr.Err.Error()))
		}
		if stderr, ok := appErr.Context["stderr"].(string); ok && stderr != "" {
			_, _ = fmt.Fprintf(w, "  %s\n", Dim.Sprint(stderr))
		}
	}

	if appErr.Suggestion != "" {
		lines := strings.Split(appErr.Suggestion, "\n")
		_, _ = fmt.Fprintf(w, "%s %s\n", Info.Sprint(hintPrefix+":"), lines[0])
		for _, line := range lines[1:] {
			_, _ = fmt.Fprintf(w, "      %s\n", line)
		}
	}
}

func usageMessage(err error, appErr *apperrors.AppError, t *i18n.Translations) string {
	args, ok := appErr.Context["arguments"].(string)
	if !ok || t == nil || !errors.Is(err, apperrors.ErrMissingArgument) {
		return apperrors.UsageMessage(err)
	}
	return t.GetMessage("missing_arguments", len(strings.Fields(args)), map[string]interface{}{
		"Args": args,
	})
}
