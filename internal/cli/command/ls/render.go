package ls

import (
	"strings"

	"github.com/Tomas-vilte/dbts/internal/debian"
	"github.com/Tomas-vilte/dbts/internal/domain/models"
	"github.com/Tomas-vilte/dbts/internal/ui"
)

const indent = "  "

// RenderBugs prints a short summary of each bug followed by a blank line.
func RenderBugs(p *ui.Printer, bugs []models.Bug) {
	for _, bug := range bugs {
		renderBug(p, bug)
	}
}

func renderBug(p *ui.Printer, bug models.Bug) {
	pkg := bug.Package
	subject := bug.Subject
	defaultSeverity := "normal"

	// Pseudo-package names add nothing to WNPP and RFS subjects.
	switch pkg {
	case "wnpp":
		if tag, ok := debian.WNPPTag(subject); ok {
			if strings.HasSuffix(tag, "P") {
				defaultSeverity = "wishlist"
			}
			pkg = ""
		}
	case "sponsorship-requests":
		if strings.HasPrefix(subject, "RFS:") {
			pkg = ""
		}
	}

	subjectColor := ui.Bold
	if bug.IsDone() {
		subjectColor = ui.Green
	}

	if pkg != "" {
		prefix, name := "", pkg
		if bug.IsSource() {
			prefix, name = "src:", strings.TrimPrefix(pkg, "src:")
		}
		if stripped := debian.StripPackagePrefix(subject, name); stripped != subject {
			subject = stripped
			p.Printf("[%s"+subjectColor+"%s"+ui.Off+"] ", prefix, name)
		} else {
			p.Printf("[%s%s] ", prefix, name)
		}
	}
	if subject != "" {
		p.Printf(subjectColor+"%s"+ui.Off+"\n", subject)
	} else {
		p.Raw(ui.Red + "(no subject)" + ui.Off + "\n")
	}

	p.Printf(indent+ui.Cyan+"%s"+ui.Off, bug.URL)
	if bug.Forwarded != "" {
		p.Printf(" -> "+ui.Cyan+"%s"+ui.Off, bug.Forwarded)
	}
	p.Raw("\n")

	// pkg is cleared above for tagged WNPP bugs, so only untagged ones
	// show their owner.
	user := bug.Submitter
	if pkg == "wnpp" && bug.Owner != "" {
		user = bug.Owner
	}
	p.Printf(indent+"%s; %s-00:00\n", user, bug.Date.UTC().Format("2006-01-02 15:04:05"))

	var details []string
	if bug.Severity != defaultSeverity {
		color := ""
		if debian.IsRCSeverity(bug.Severity) {
			color = ui.Bold + ui.Red
		}
		details = append(details, color+p.Quote(bug.Severity)+ui.Off)
	}
	if len(bug.Tags) > 0 {
		tags := make([]string, len(bug.Tags))
		for i, tag := range bug.Tags {
			tags[i] = "+" + tag
		}
		details = append(details, p.Quote(strings.Join(tags, " ")))
	}
	if len(details) > 0 {
		p.Raw(indent + strings.Join(details, " ") + "\n")
	}

	var versions []string
	if len(bug.FoundVersions) > 0 {
		versions = append(versions, "found in "+p.Quote(strings.Join(bug.FoundVersions, ", ")))
	}
	if len(bug.FixedVersions) > 0 {
		versions = append(versions, "fixed in "+p.Quote(strings.Join(bug.FixedVersions, ", ")))
	}
	if len(versions) > 0 {
		p.Raw(indent + strings.Join(versions, "; ") + "\n")
	}

	p.Raw("\n")
}
