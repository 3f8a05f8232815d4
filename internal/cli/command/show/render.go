package show

import (
	"context"
	"fmt"
	"strings"

	"github.com/Tomas-vilte/dbts/internal/debian"
	"github.com/Tomas-vilte/dbts/internal/domain/models"
	"github.com/Tomas-vilte/dbts/internal/domain/ports"
	"github.com/Tomas-vilte/dbts/internal/dot"
	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/logger"
	"github.com/Tomas-vilte/dbts/internal/ui"
)

const (
	indent     = "  "
	dateLayout = "2006-01-02 15:04:05-07:00"
)

var versionColors = map[string]string{
	"salmon":     ui.Red,
	"chartreuse": ui.Green,
}

type renderer struct {
	tracker ports.BugTracker
	p       *ui.Printer
	baseURL string
}

func (r *renderer) bugURL(id int) string {
	return fmt.Sprintf("%s/%d", r.baseURL, id)
}

// header prints "Name:" and, when format is not empty, a space and the
// formatted value.
func (r *renderer) header(name, format string, args ...interface{}) {
	r.p.Raw(ui.Yellow + name + ":" + ui.Off)
	if format != "" {
		r.p.Raw(" ")
		r.p.Printf(format, args...)
	}
	r.p.Raw("\n")
}

func (r *renderer) urlList(name string, ids []int) {
	if len(ids) == 0 {
		return
	}
	r.header(name, "")
	for _, id := range ids {
		r.p.Printf(indent+ui.Cyan+"%s"+ui.Off+"\n", r.bugURL(id))
	}
}

func (r *renderer) list(name string, values []string) {
	if len(values) == 0 {
		return
	}
	r.header(name, "")
	for _, v := range values {
		r.p.Printf(indent+"%s\n", v)
	}
}

// show prints the status and log of a bug. With merged, the bugs it is
// merged with follow, without recursing further.
func (r *renderer) show(ctx context.Context, id int, merged bool) error {
	r.header("Location", ui.Cyan+ui.Bold+"%s"+ui.Off, r.bugURL(id))
	if err := r.p.Err(); err != nil {
		return err
	}

	page, err := r.tracker.FetchReportPage(ctx, id)
	if err != nil {
		return err
	}
	bugs, err := r.tracker.GetStatus(ctx, id)
	if err != nil {
		return err
	}
	if len(bugs) == 0 {
		return apperrors.ErrBugNotFound.WithContext("bug", id)
	}
	bug := bugs[0]

	if err := r.status(ctx, bug, page); err != nil {
		return err
	}
	r.p.HR()
	if err := r.p.Err(); err != nil {
		return err
	}

	log, err := r.tracker.GetBugLog(ctx, id)
	if err != nil {
		return err
	}
	attachments := page.Attachments()
	for _, m := range page.Messages() {
		r.header("Location", ui.Cyan+"%s"+ui.Off, fmt.Sprintf("%s#%d", r.bugURL(id), m.Number))
		if msg, ok := log[m.Number]; ok {
			r.message(msg, attachments[m.Number])
		} else {
			r.controlMessage(debian.ParseControlMessage(m.Text))
		}
		r.p.HR()
		if err := r.p.Err(); err != nil {
			return err
		}
	}
	r.p.Raw("\n")
	if err := r.p.Err(); err != nil {
		return err
	}

	if merged {
		for _, mid := range bug.MergedWith {
			logger.Debug(ctx, "showing merged bug", "merged", mid)
			if err := r.show(ctx, mid, false); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *renderer) status(ctx context.Context, bug models.Bug, page ports.ReportPage) error {
	r.header("Subject", ui.Bold+"%s"+ui.Off, bug.Subject)

	if bug.IsSource() {
		r.header("Source", ui.Bold+"%s"+ui.Off, strings.TrimPrefix(bug.Package, "src:"))
	} else {
		packages := bug.Packages()
		quoted := make([]string, len(packages))
		for i, pkg := range packages {
			quoted[i] = ui.Bold + r.p.Quote(pkg) + ui.Off
		}
		r.p.Raw(ui.Yellow + "Package:" + ui.Off + " " + strings.Join(quoted, ", ") + "\n")
		if bug.Source != "" {
			r.header("Source", "%s", bug.Source)
		}
	}

	r.header("Maintainer", "%s", strings.Join(page.Maintainers(), ", "))
	r.list("Affects", bug.Affects)
	if bug.Owner != "" {
		r.header("Owner", "%s", bug.Owner)
	}
	if bug.Package != "wnpp" || bug.Owner != bug.Submitter {
		r.header("Submitter", "%s", bug.Submitter)
	}
	r.header("Date", "%s-00:00", bug.Date.UTC().Format("2006-01-02 15:04:05"))

	severityColor := ""
	if debian.IsRCSeverity(bug.Severity) {
		severityColor = ui.Bold + ui.Red
	}
	r.header("Severity", severityColor+"%s"+ui.Off, bug.Severity)

	var graph *dot.Graph
	if graphURL := page.VersionGraphURL(); graphURL != "" {
		var err error
		if graph, err = r.tracker.FetchVersionGraph(ctx, graphURL); err != nil {
			return err
		}
	}

	if len(bug.Tags) > 0 {
		r.header("Tags", "%s", strings.Join(bug.Tags, " "))
	}
	r.urlList("Merged-with", bug.MergedWith)
	r.list("Found", bug.FoundVersions)
	r.list("Fixed", bug.FixedVersions)
	if graph != nil && len(graph.Nodes) > 0 {
		r.header("Version-Graph", "")
		r.p.Raw(r.versionGraph(graph) + "\n")
	}
	r.urlList("Blocked-by", bug.BlockedBy)
	r.urlList("Blocks", bug.Blocks)
	if bug.Done != "" {
		r.header("Done", "%s", bug.Done)
	}
	if bug.Archived {
		r.header("Archived", "yes")
	}
	if bug.Forwarded != "" {
		r.header("Forwarded", "%s", bug.Forwarded)
	}
	return nil
}

// versionGraph renders the graph as an indented tree. Found versions are
// red and fixed versions green.
func (r *renderer) versionGraph(graph *dot.Graph) string {
	render := func(n dot.Node) string {
		label := n.Label()
		if label == "some versions" {
			label = "..."
		}
		lines := strings.Split(label, "\n")
		for i, line := range lines {
			lines[i] = r.p.Quote(line)
		}
		if color, ok := versionColors[n.Get("fillcolor")]; ok {
			lines[0] = color + lines[0] + ui.Off
		}
		return strings.Join(lines, "\n")
	}
	bullet := "∙"
	if r.p.ASCII() {
		bullet = "*"
	}
	s := strings.TrimRight(graph.Format(render, bullet), "\n")
	return ui.Indent(s, 2, "")
}

func (r *renderer) message(msg models.Message, attachments []models.Attachment) {
	h := msg.Header
	for _, field := range []struct{ name, value string }{
		{"From", h.From},
		{"To", h.To},
		{"Cc", h.Cc},
		{"Subject", h.Subject},
	} {
		if field.value != "" {
			r.header(field.name, "%s", field.value)
		}
	}
	if h.Date != nil {
		r.header("Date", "%s", h.Date.Format(dateLayout))
	}
	if len(attachments) > 0 {
		r.header("Attachments", "")
		for _, a := range attachments {
			r.p.Raw(indent)
			if a.Name != "" {
				r.p.Printf("%s ", a.Name)
			}
			r.p.Printf("<"+ui.Cyan+"%s"+ui.Off+"> (%s)\n", a.URL, a.Type)
		}
	}
	r.p.Raw("\n")
	for _, line := range splitLines(msg.Body) {
		r.p.Println(line)
	}
}

func (r *renderer) controlMessage(cm models.ControlMessage) {
	if cm.RequestFrom != "" {
		r.header("Request-From", "%s", cm.RequestFrom)
		r.header("Request-To", "%s", cm.RequestTo)
		if cm.Date != nil {
			r.header("Date", "%s", cm.Date.Format(dateLayout))
		}
	}
	r.p.Raw("\n")
	r.p.Println(cm.Text)
}

// splitLines splits s on line boundaries. A trailing newline does not start
// another line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
