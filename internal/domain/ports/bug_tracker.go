package ports

import (
	"context"

	"github.com/Tomas-vilte/dbts/internal/domain/models"
	"github.com/Tomas-vilte/dbts/internal/dot"
)

// Query selects bugs: either a single bug number or a key=value filter.
type Query struct {
	Bug   int
	Key   string
	Value string
}

// BugTracker is the read-only view of the BTS used by the commands.
type BugTracker interface {
	// GetBugs returns the status of every bug matching any of the queries
	GetBugs(ctx context.Context, queries ...Query) ([]models.Bug, error)

	// GetStatus returns the status of the given bugs
	GetStatus(ctx context.Context, ids ...int) ([]models.Bug, error)

	// GetBugLog returns the messages of a bug keyed by message number
	GetBugLog(ctx context.Context, id int) (map[int]models.Message, error)

	// FetchReportPage downloads the HTML report of a bug
	FetchReportPage(ctx context.Context, id int) (ReportPage, error)

	// FetchVersionGraph downloads and parses a version graph
	FetchVersionGraph(ctx context.Context, url string) (*dot.Graph, error)
}

// ReportPage exposes what is only available in the HTML bug report.
type ReportPage interface {
	Maintainers() []string
	VersionGraphURL() string
	Messages() []PageMessage
	Attachments() map[int][]models.Attachment
}

// PageMessage is a message anchor on the report page with its flattened text.
type PageMessage struct {
	Number int
	Text   string
}

// BugTrackerProvider builds the tracker once the configuration is loaded.
type BugTrackerProvider func(ctx context.Context) (BugTracker, error)
