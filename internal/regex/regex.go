package regex

import "regexp"

var (
	// Bug references
	BugNumber    = regexp.MustCompile(`^#?([0-9]+)$`)
	ShortBugPath = regexp.MustCompile(`^/([0-9]+)$`)
	Digits       = regexp.MustCompile(`^[0-9]+$`)
	MessagePart  = regexp.MustCompile(`^Message part [0-9]+$`)

	// Debian policy §5.6.1
	PackageName = regexp.MustCompile(`^[a-z0-9][a-z0-9.+-]+$`)

	// Dependency fields
	VersionConstraint = regexp.MustCompile(`\([^)]+\)`)
	DependSeparator   = regexp.MustCompile(`\s*[,|]\s*`)

	// Version graph (DOT)
	DotDigraph = regexp.MustCompile(`(?s)^digraph\s*\w+\s*\{\s*(.*)\}\s*$`)
	DotNode    = regexp.MustCompile(`^"([^"]+)"\s+\[(.*)\]$`)
	DotAttr    = regexp.MustCompile(`\w+="[^"]*"`)
	DotEdge    = regexp.MustCompile(`^"([^"]+)"->"([^"]+)"\s+\[dir="back"\]$`)

	// Terminal
	ControlChars = regexp.MustCompile(`[\x00-\x1F\x7F-\x9F]+`)

	// Control messages scraped from bug report pages
	ControlMessage = regexp.MustCompile(
		`^(.*) ` +
			`Request was from (.+) to ([\w-]+@bugs[.]debian[.]org)\. ` +
			`(?:\(([A-Z][a-z]{2}, [0-9]{2} [A-Z][a-z]{2} [0-9]{4} [0-9]{2}:[0-9]{2}:[0-9]{2} GMT)\) )?` +
			`Full text and rfc822 format available\.$`)
)
