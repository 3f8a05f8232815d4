package ui

import (
	"io"
	"os"
	"os/exec"

	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"golang.org/x/term"
)

const defaultPager = "pager"

var isTerminal = func(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Pager pipes output through $PAGER when writing to a terminal.
type Pager struct {
	out   io.Writer
	cmd   *exec.Cmd
	stdin io.WriteCloser
}

// StartPager starts command (or $PAGER, or "pager") with its output going to
// out. When out is not a terminal, or the pager is "cat", the returned Pager
// writes to out directly.
func StartPager(out *os.File, command string) (*Pager, error) {
	if command == "" {
		command = os.Getenv("PAGER")
	}
	if command == "" {
		command = defaultPager
	}
	if !isTerminal(out) || command == "cat" {
		return &Pager{out: out}, nil
	}

	cmd := exec.Command("sh", "-c", command)
	cmd.Stdout = out
	cmd.Stderr = os.Stderr
	cmd.Env = pagerEnv()

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, apperrors.ErrPager.WithError(err)
	}
	if err := cmd.Start(); err != nil {
		return nil, apperrors.ErrPager.WithError(err).WithContext("command", command)
	}
	return &Pager{out: stdin, cmd: cmd, stdin: stdin}, nil
}

func pagerEnv() []string {
	env := os.Environ()
	if _, ok := os.LookupEnv("LESS"); !ok {
		env = append(env, "LESS=-FRXi")
	}
	if _, ok := os.LookupEnv("LV"); !ok {
		env = append(env, "LV=-c")
	}
	return env
}

func (p *Pager) Write(b []byte) (int, error) {
	return p.out.Write(b)
}

// Close waits for the pager to exit. A non-zero exit status is an error.
func (p *Pager) Close() error {
	if p.cmd == nil {
		return nil
	}
	_ = p.stdin.Close()
	if err := p.cmd.Wait(); err != nil {
		return apperrors.ErrPager.WithError(err)
	}
	return nil
}

// Output is where a command writes its results.
type Output interface {
	Open() (io.WriteCloser, error)
}

// PagedOutput writes to File through the pager unless Disabled is set.
type PagedOutput struct {
	File     *os.File
	Pager    string
	Disabled bool
}

func (o *PagedOutput) Open() (io.WriteCloser, error) {
	if o.Disabled {
		return &Pager{out: o.File}, nil
	}
	return StartPager(o.File, o.Pager)
}
