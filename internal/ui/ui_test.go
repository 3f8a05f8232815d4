package ui

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/i18n"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAppError(t *testing.T) {
	color.NoColor = true

	t.Run("usage error", func(t *testing.T) {
		var buf bytes.Buffer
		err := fmt.Errorf("ls: %w", apperrors.ErrInvalidPackageName.WithContext("argument", "Foo"))

		HandleAppError(&buf, "dbts", err, nil)

		assert.Equal(t, "dbts: error: \"Foo\" is not a valid package name\n", buf.String())
	})

	t.Run("error with details and hint", func(t *testing.T) {
		var buf bytes.Buffer
		err := apperrors.ErrHTTPRequest.WithError(errors.New("connection refused"))

		HandleAppError(&buf, "dbts", err, nil)

		assert.Equal(t,
			"dbts: error: HTTP request failed\n"+
				"  connection refused\n"+
				"hint: Check your network connection and that bugs.debian.org is reachable\n",
			buf.String())
	})

	t.Run("command stderr is shown", func(t *testing.T) {
		var buf bytes.Buffer
		err := apperrors.ErrCommandFailed.WithContext("stderr", "dpkg-query: no packages found matching nope")

		HandleAppError(&buf, "dbts", err, nil)

		assert.Contains(t, buf.String(), "  dpkg-query: no packages found matching nope\n")
	})

	t.Run("plain error", func(t *testing.T) {
		var buf bytes.Buffer

		HandleAppError(&buf, "dbts", errors.New("boom"), nil)

		assert.Equal(t, "dbts: error: boom\n", buf.String())
	})

	t.Run("missing arguments are translated", func(t *testing.T) {
		trans, err := i18n.NewTranslations("es")
		require.NoError(t, err)
		var buf bytes.Buffer

		HandleAppError(&buf, "dbts", apperrors.ErrMissingArgument.WithContext("arguments", "PACKAGE"), trans)

		assert.Equal(t, "dbts: error: falta el argumento requerido: PACKAGE\n", buf.String())
	})

	t.Run("missing arguments without translations", func(t *testing.T) {
		var buf bytes.Buffer

		HandleAppError(&buf, "dbts", apperrors.ErrMissingArgument.WithContext("arguments", "BUGSPEC"), nil)

		assert.Equal(t, "dbts: error: the following arguments are required: BUGSPEC\n", buf.String())
	})

	t.Run("nil error prints nothing", func(t *testing.T) {
		var buf bytes.Buffer

		HandleAppError(&buf, "dbts", nil, nil)

		assert.Empty(t, buf.String())
	})
}
