package services

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/Tomas-vilte/dbts/internal/debian"
	"github.com/Tomas-vilte/dbts/internal/domain/ports"
	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/logger"
	"github.com/mattn/go-runewidth"
)

// SubmitAddress receives new bug reports.
const SubmitAddress = "submit@bugs.debian.org"

const reportTemplate = `Package: {{ .Package }}
Version: {{ .Version }}
{{- with trim .Severity }}
Severity: {{ . }}
{{- end }}


-- System Information:
Architecture: {{ .Architecture }}
{{ range .Tables }}
Versions of packages {{ $.Package }} {{ .Verb }}:
{{ table .Rows }}
{{ end -}}
`

type (
	// Report is a bug report drafted from the local package database.
	Report struct {
		Package      string
		Version      string
		Architecture string
		Severity     string
		Tables       []DependencyTable
	}

	// DependencyTable lists the status, name and version of the packages
	// the reported package depends on, recommends or suggests.
	DependencyTable struct {
		Verb string
		Rows [][]string
	}
)

type ReportService struct {
	local ports.LocalPackages
	tmpl  *template.Template
}

func NewReportService(local ports.LocalPackages) *ReportService {
	funcs := sprig.TxtFuncMap()
	funcs["table"] = formatTable
	return &ReportService{
		local: local,
		tmpl:  template.Must(template.New("report").Funcs(funcs).Parse(reportTemplate)),
	}
}

// BuildReport collects what the report needs to know about pkg. Every
// dependency is listed once, in the first relationship that names it.
func (s *ReportService) BuildReport(ctx context.Context, pkg, severity string) (*Report, error) {
	if !debian.IsPackageName(pkg) {
		return nil, apperrors.ErrInvalidPackageName.WithContext("argument", pkg)
	}
	if severity != "" && !debian.IsSeverity(severity) {
		return nil, apperrors.ErrInvalidSeverity.WithContext("argument", severity)
	}

	installed, err := s.local.QueryInstalled(ctx, pkg)
	if err != nil {
		return nil, err
	}

	relations := []struct {
		verb string
		deps []string
	}{
		{"depends on", append(append([]string{}, installed.PreDepends...), installed.Depends...)},
		{"recommends", installed.Recommends},
		{"suggests", installed.Suggests},
	}

	var all []string
	for _, r := range relations {
		all = append(all, r.deps...)
	}
	versions, err := s.local.QueryVersions(ctx, all)
	if err != nil {
		return nil, fmt.Errorf("querying dependency versions: %w", err)
	}

	report := &Report{
		Package:      installed.Package,
		Version:      installed.Version,
		Architecture: installed.Architecture,
		Severity:     severity,
	}
	seen := make(map[string]bool)
	for _, r := range relations {
		table := DependencyTable{Verb: r.verb}
		for _, dep := range r.deps {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			v, ok := versions[dep]
			if !ok {
				v = debian.NotInstalled
			}
			table.Rows = append(table.Rows, []string{v.Status, dep, v.Version})
		}
		if len(table.Rows) > 0 {
			report.Tables = append(report.Tables, table)
		}
	}

	logger.Debug(ctx, "drafted report", "package", report.Package, "version", report.Version, "tables", len(report.Tables))
	return report, nil
}

// Body renders the text of the report.
func (s *ReportService) Body(report *Report) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, report); err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	return buf.String(), nil
}

// Subject returns the initial subject of the report.
func (r *Report) Subject() string {
	return r.Package + ":"
}

// MailtoURL returns a mailto: URL for the submit address with the given
// subject and body.
func MailtoURL(subject, body string) string {
	return "mailto:" + SubmitAddress + "?subject=" + quote(subject) + "&body=" + quote(body)
}

func quote(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// formatTable left-aligns the columns of rows, two spaces apart. Widths are
// measured in terminal cells.
func formatTable(rows [][]string) string {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = cell + strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell))
		}
		lines = append(lines, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
	return strings.Join(lines, "\n")
}
