// Package mailer hands a drafted message over to the user's mail client.
package mailer

import (
	"context"
	"os"
	"os/exec"

	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/logger"
	"golang.org/x/sys/unix"
)

// ExecFunc replaces the current process. unix.Exec by default.
type ExecFunc func(argv0 string, argv []string, envv []string) error

type Mailer struct {
	client   string
	lookPath func(file string) (string, error)
	exec     ExecFunc
}

type Option func(*Mailer)

func WithExec(lookPath func(string) (string, error), exec ExecFunc) Option {
	return func(m *Mailer) {
		m.lookPath = lookPath
		m.exec = exec
	}
}

func NewMailer(client string, opts ...Option) *Mailer {
	m := &Mailer{
		client:   client,
		lookPath: exec.LookPath,
		exec:     unix.Exec,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Args returns the command line used to compose a message. Attachments are
// passed mutt-style: -a FILE... --
func (m *Mailer) Args(mailto string, attachments []string) []string {
	args := []string{m.client}
	if len(attachments) > 0 {
		args = append(args, "-a")
		args = append(args, attachments...)
		args = append(args, "--")
	}
	return append(args, mailto)
}

// Compose execs the mail client. It only returns on failure.
func (m *Mailer) Compose(ctx context.Context, mailto string, attachments []string) error {
	for _, a := range attachments {
		info, err := os.Stat(a)
		if err != nil || info.IsDir() {
			return apperrors.ErrInvalidAttachment.WithContext("argument", a)
		}
	}

	path, err := m.lookPath(m.client)
	if err != nil {
		return apperrors.ErrMailClient.WithError(err).WithContext("client", m.client)
	}

	args := m.Args(mailto, attachments)
	logger.Debug(ctx, "starting mail client", "path", path, "attachments", len(attachments))
	if err := m.exec(path, args, os.Environ()); err != nil {
		return apperrors.ErrMailClient.WithError(err).WithContext("client", m.client)
	}
	return nil
}
