package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Tomas-vilte/dbts/internal/regex"
	"golang.org/x/term"
)

// ANSI escape sequences.
const (
	Black     = "\x1b[30m"
	Red       = "\x1b[31m"
	Green     = "\x1b[32m"
	Yellow    = "\x1b[33m"
	Blue      = "\x1b[34m"
	Cyan      = "\x1b[36m"
	Bold      = "\x1b[1m"
	Off       = "\x1b[0m"
	Reverse   = "\x1b[7m"
	Unreverse = "\x1b[27m"
)

const defaultWidth = 80

// Printer writes colored text to a terminal. String arguments are quoted so
// that data coming from the network cannot inject escape sequences.
//
// The first write error is kept and every later write is skipped; callers
// check Err once they are done.
type Printer struct {
	w     io.Writer
	ascii bool
	width int
	err   error
}

type PrinterOption func(*Printer)

// WithASCII makes the printer quote every non-ASCII character.
func WithASCII(ascii bool) PrinterOption {
	return func(p *Printer) {
		p.ascii = ascii
	}
}

// WithWidth sets the width used by HR.
func WithWidth(width int) PrinterOption {
	return func(p *Printer) {
		if width > 0 {
			p.width = width
		}
	}
}

func NewPrinter(w io.Writer, opts ...PrinterOption) *Printer {
	p := &Printer{
		w:     w,
		ascii: IsASCIILocale(os.Getenv),
		width: TerminalWidth(os.Stdout),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Printf formats like fmt.Printf after quoting every string argument.
func (p *Printer) Printf(format string, args ...interface{}) {
	quoted := make([]interface{}, len(args))
	for i, arg := range args {
		if s, ok := arg.(string); ok {
			quoted[i] = p.Quote(s)
		} else {
			quoted[i] = arg
		}
	}
	p.write(fmt.Sprintf(format, quoted...))
}

// Println writes s, quoted, followed by a newline.
func (p *Printer) Println(s string) {
	p.write(p.Quote(s) + "\n")
}

// Raw writes s as is.
func (p *Printer) Raw(s string) {
	p.write(s)
}

// HR draws a horizontal rule across the terminal.
func (p *Printer) HR() {
	ch := "─"
	if p.ascii {
		ch = "-"
	}
	p.write(Black + Bold + strings.Repeat(ch, p.width) + Off + "\n")
}

// ASCII reports whether non-ASCII output is quoted.
func (p *Printer) ASCII() bool {
	return p.ascii
}

// Err returns the first write error.
func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) write(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

// Quote replaces control characters with a reverse-video <U+XXXX> marker.
// Tabs are kept but shown in reverse video. In ASCII mode non-ASCII
// characters are replaced the same way.
func (p *Printer) Quote(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range regex.ControlChars.FindAllStringIndex(s, -1) {
		p.quoteText(&b, s[last:loc[0]])
		for _, r := range s[loc[0]:loc[1]] {
			quoteRune(&b, r)
		}
		last = loc[1]
	}
	p.quoteText(&b, s[last:])
	return b.String()
}

func (p *Printer) quoteText(b *strings.Builder, s string) {
	if !p.ascii {
		b.WriteString(s)
		return
	}
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
		} else {
			quoteRune(b, r)
		}
	}
}

func quoteRune(b *strings.Builder, r rune) {
	if r == '\t' {
		b.WriteString(Reverse + "\t" + Unreverse)
		return
	}
	fmt.Fprintf(b, "%s<U+%04X>%s", Reverse, r, Unreverse)
}

// IsASCIILocale reports whether the locale selected by LC_ALL, LC_CTYPE or
// LANG names a character set other than UTF-8. The C and POSIX locales are
// treated as UTF-8.
func IsASCIILocale(getenv func(string) string) bool {
	var locale string
	for _, name := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		if locale = getenv(name); locale != "" {
			break
		}
	}
	_, codeset, found := strings.Cut(locale, ".")
	if !found {
		return false
	}
	codeset, _, _ = strings.Cut(codeset, "@")
	switch strings.ToLower(codeset) {
	case "utf8", "utf-8":
		return false
	}
	return true
}

// TerminalWidth returns the width of the terminal f is attached to, or 80.
func TerminalWidth(f *os.File) int {
	if f == nil || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}
