package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestConfigFlag(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		path  string
		found bool
	}{
		{"separate value", []string{"dbts", "--config", "/tmp/a.toml", "ls", "dpkg"}, "/tmp/a.toml", true},
		{"equals form", []string{"dbts", "--config=/tmp/b.toml", "show", "1"}, "/tmp/b.toml", true},
		{"single dash", []string{"dbts", "-config", "/tmp/c.toml"}, "/tmp/c.toml", true},
		{"absent", []string{"dbts", "ls", "dpkg"}, "", false},
		{"after terminator", []string{"dbts", "ls", "--", "--config", "x"}, "", false},
		{"missing value", []string{"dbts", "--config"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, found := configFlag(tt.args)

			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.path, path)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("reads the file given with --config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(`mail_client = "neomutt"`), 0o644))

		cfgApp, err := loadConfig([]string{"dbts", "--config", path, "config", "show"})

		require.NoError(t, err)
		assert.Equal(t, "neomutt", cfgApp.MailClient)
		assert.Equal(t, path, cfgApp.PathFile)
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(`base_url = ""`), 0o644))

		_, err := loadConfig([]string{"dbts", "--config=" + path})

		assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)
	})

	t.Run("falls back to DBTS_CONFIG", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing.toml")
		t.Setenv("DBTS_CONFIG", path)

		cfgApp, err := loadConfig([]string{"dbts", "ls"})

		require.NoError(t, err)
		assert.Equal(t, path, cfgApp.PathFile)
		assert.Equal(t, "https://bugs.debian.org", cfgApp.BaseURL)
	})
}

func TestExitStatus(t *testing.T) {
	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)

	tests := []struct {
		name   string
		err    error
		status int
		output string
	}{
		{"success", nil, 0, ""},
		{"closed pipe", fmt.Errorf("writing bugs: %w", unix.EPIPE), 141, ""},
		{"closed pager", apperrors.ErrPager.WithError(unix.EPIPE), 141, ""},
		{"usage error", apperrors.ErrMissingArgument.WithContext("arguments", "PACKAGE"), 2, "dbts: "},
		{"other error", apperrors.ErrBugNotFound.WithContext("bug", 9), 1, "bug not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer

			status := exitStatus(&stderr, tt.err, translations)

			assert.Equal(t, tt.status, status)
			if tt.output == "" {
				assert.Empty(t, stderr.String())
			} else {
				assert.Contains(t, stderr.String(), tt.output)
			}
		})
	}
}
