package debian

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/logger"
	"github.com/Tomas-vilte/dbts/internal/regex"
	"pault.ag/go/debian/control"
)

// Runner executes an external command and returns its standard output.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	logger.Debug(ctx, "running command", "command", name, "args", strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		appErr := apperrors.ErrCommandFailed.WithError(err).WithContext("command", name)
		if s := strings.TrimSpace(stderr.String()); s != "" {
			appErr = appErr.WithContext("stderr", s)
		}
		return out, appErr
	}
	return out, nil
}

// Local answers questions about packages known to this machine.
type Local struct {
	runner Runner
}

func NewLocal(runner Runner) *Local {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Local{runner: runner}
}

// SourceFromDsc returns the source package described by a .dsc file.
func (l *Local) SourceFromDsc(path string) (string, error) {
	dsc, err := control.ParseDscFile(path)
	if err != nil {
		return "", apperrors.ErrControlFile.WithError(err).WithContext("path", path)
	}
	if dsc.Source == "" {
		return "", apperrors.ErrControlFile.WithContext("path", path).WithContext("field", "Source")
	}
	return dsc.Source, nil
}

// SourceFromUnpacked returns the source package of an unpacked source tree.
func (l *Local) SourceFromUnpacked(dir string) (string, error) {
	path := filepath.Join(dir, "debian", "control")
	ctrl, err := control.ParseControlFile(path)
	if err != nil {
		return "", apperrors.ErrControlFile.WithError(err).WithContext("path", path)
	}
	if ctrl.Source.Source == "" {
		return "", apperrors.ErrControlFile.WithContext("path", path).WithContext("field", "Source")
	}
	return ctrl.Source.Source, nil
}

// PackageFromDeb returns the binary package name stored in a .deb file.
func (l *Local) PackageFromDeb(ctx context.Context, path string) (string, error) {
	out, err := l.runner.Output(ctx, "dpkg-deb", "-f", path, "Package")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// SourcesFor returns the source packages that built any known version of
// the binary package pkg.
func (l *Local) SourcesFor(ctx context.Context, pkg string) ([]string, error) {
	out, err := l.runner.Output(ctx, "apt-cache", "show", pkg)
	if err != nil {
		return nil, err
	}
	index, err := control.ParseBinaryIndex(bufio.NewReader(bytes.NewReader(out)))
	if err != nil {
		return nil, apperrors.ErrControlFile.WithError(err).WithContext("package", pkg)
	}

	seen := make(map[string]bool)
	var sources []string
	for _, entry := range index {
		src := entry.Source
		if src == "" {
			src = entry.Package
		}
		// "Source: foo (1.2-3)" when the source version differs
		if name, _, found := strings.Cut(src, " "); found {
			src = name
		}
		if src != "" && !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}
	return sources, nil
}

// Installed describes an installed package as reported by dpkg-query.
type Installed struct {
	Package      string
	Architecture string
	Version      string
	PreDepends   []string
	Depends      []string
	Recommends   []string
	Suggests     []string
}

const installedFormat = "${Package}\n${Architecture}\n${Version}\n${Pre-Depends}\n${Depends}\n${Recommends}\n${Suggests}\n"

// QueryInstalled returns dpkg's view of an installed package.
func (l *Local) QueryInstalled(ctx context.Context, pkg string) (*Installed, error) {
	out, err := l.runner.Output(ctx, "dpkg-query", "-Wf", installedFormat, pkg)
	if err != nil {
		return nil, apperrors.ErrPackageNotInstalled.WithError(err).WithContext("package", pkg)
	}
	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	if len(lines) < 7 {
		return nil, apperrors.ErrPackageNotInstalled.WithContext("package", pkg)
	}
	return &Installed{
		Package:      lines[0],
		Architecture: lines[1],
		Version:      lines[2],
		PreDepends:   FlattenDepends(lines[3]),
		Depends:      FlattenDepends(lines[4]),
		Recommends:   FlattenDepends(lines[5]),
		Suggests:     FlattenDepends(lines[6]),
	}, nil
}

// PackageVersion is one row of dpkg's status for a dependency.
type PackageVersion struct {
	Status  string
	Version string
}

// NotInstalled is reported for packages dpkg knows nothing about.
var NotInstalled = PackageVersion{Status: "pn", Version: "<none>"}

// QueryVersions returns the status and version of each package. Packages
// unknown to dpkg map to NotInstalled.
func (l *Local) QueryVersions(ctx context.Context, pkgs []string) (map[string]PackageVersion, error) {
	info := make(map[string]PackageVersion, len(pkgs))
	if len(pkgs) == 0 {
		return info, nil
	}

	uniq := make(map[string]bool, len(pkgs))
	args := []string{"-Wf", "${db:Status-Abbrev} ${Package} ${Version}\n"}
	for _, p := range pkgs {
		if !uniq[p] {
			uniq[p] = true
			args = append(args, p)
		}
	}
	sort.Strings(args[2:])

	out, err := l.runner.Output(ctx, "dpkg-query", args...)
	if err != nil {
		// dpkg-query exits 1 when some packages are unknown but still
		// prints the ones it found.
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			return nil, err
		}
	}

	for _, line := range strings.Split(string(out), "\n") {
		if pkg, v, ok := parseVersionLine(line); ok {
			info[pkg] = v
		}
	}
	for p := range uniq {
		if _, ok := info[p]; !ok {
			info[p] = NotInstalled
		}
	}
	return info, nil
}

// parseVersionLine reads "SSS PACKAGE VERSION", where SSS is the
// three-character status abbreviation and VERSION may be empty for packages
// dpkg knows but has not installed.
func parseVersionLine(line string) (string, PackageVersion, bool) {
	if len(line) < 5 || line[3] != ' ' {
		return "", PackageVersion{}, false
	}
	pkg, version, _ := strings.Cut(line[4:], " ")
	if pkg == "" {
		return "", PackageVersion{}, false
	}
	return pkg, PackageVersion{
		Status:  strings.TrimSpace(line[:3]),
		Version: strings.TrimSpace(version),
	}, true
}

// FlattenDepends turns "a (>= 1), b | c:any" into [a b c].
func FlattenDepends(deps string) []string {
	deps = regex.VersionConstraint.ReplaceAllString(deps, "")
	var out []string
	for _, d := range regex.DependSeparator.Split(deps, -1) {
		d = strings.TrimSpace(d)
		d = strings.TrimSuffix(d, ":any")
		if d != "" {
			out = append(out, d)
		}
	}
	return out
}

func (i *Installed) String() string {
	return fmt.Sprintf("%s %s (%s)", i.Package, i.Version, i.Architecture)
}
