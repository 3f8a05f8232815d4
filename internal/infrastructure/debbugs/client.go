// Package debbugs talks to a debbugs instance such as bugs.debian.org
// through its SOAP interface and its HTML bug report pages.
package debbugs

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Tomas-vilte/dbts/internal/domain/models"
	"github.com/Tomas-vilte/dbts/internal/domain/ports"
	"github.com/Tomas-vilte/dbts/internal/infrastructure/soap"
	"github.com/Tomas-vilte/dbts/internal/logger"
	"github.com/antchfx/xmlquery"
)

const (
	soapPath      = "/cgi-bin/soap.cgi"
	soapNamespace = "Debbugs/SOAP"
	reportPath    = "/cgi-bin/bugreport.cgi"

	// statusBatchSize bounds the number of bugs per get_status call.
	statusBatchSize = 500
)

// Getter fetches a URL. httpclient.UserAgent implements it.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Transport is what the client needs from the HTTP layer.
type Transport interface {
	soap.Transport
	Getter
}

type Client struct {
	baseURL string
	soap    *soap.Client
	http    Getter
}

var _ ports.BugTracker = (*Client)(nil)

func NewClient(baseURL string, transport Transport) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	return &Client{
		baseURL: baseURL,
		soap:    soap.NewClient(baseURL+soapPath, soapNamespace, transport),
		http:    transport,
	}
}

// BugURL returns the short URL of a bug.
func (c *Client) BugURL(id int) string {
	return fmt.Sprintf("%s/%d", c.baseURL, id)
}

// GetStatus returns the status of the given bugs sorted by number. Unknown
// bugs are omitted.
func (c *Client) GetStatus(ctx context.Context, ids ...int) ([]models.Bug, error) {
	var bugs []models.Bug
	for start := 0; start < len(ids); start += statusBatchSize {
		end := min(start+statusBatchSize, len(ids))
		batch := ids[start:end]

		logger.Debug(ctx, "fetching bug status", "bugs", len(batch))
		result, err := c.soap.Call(ctx, "get_status", batch)
		if err != nil {
			return nil, fmt.Errorf("get_status: %w", err)
		}

		for key, value := range soap.Map(result) {
			id, err := strconv.Atoi(key)
			if err != nil {
				logger.Warn(ctx, "skipping status with invalid bug number", "bug", key)
				continue
			}
			bugs = append(bugs, c.bugFromStatus(id, value))
		}
	}
	sort.Slice(bugs, func(i, j int) bool { return bugs[i].ID < bugs[j].ID })
	return bugs, nil
}

// GetBugs resolves every query to bug numbers and returns their status.
func (c *Client) GetBugs(ctx context.Context, queries ...ports.Query) ([]models.Bug, error) {
	seen := make(map[int]bool)
	var ids []int
	add := func(id int) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, q := range queries {
		if q.Key == "" {
			add(q.Bug)
			continue
		}
		logger.Debug(ctx, "searching bugs", "key", q.Key, "value", q.Value)
		result, err := c.soap.Call(ctx, "get_bugs", q.Key, q.Value)
		if err != nil {
			return nil, fmt.Errorf("get_bugs %s=%s: %w", q.Key, q.Value, err)
		}
		for _, id := range soap.Ints(result) {
			add(id)
		}
	}

	if len(ids) == 0 {
		return nil, nil
	}
	return c.GetStatus(ctx, ids...)
}

// GetBugLog returns the messages of a bug keyed by message number.
func (c *Client) GetBugLog(ctx context.Context, id int) (map[int]models.Message, error) {
	result, err := c.soap.Call(ctx, "get_bug_log", id)
	if err != nil {
		return nil, fmt.Errorf("get_bug_log %d: %w", id, err)
	}

	messages := make(map[int]models.Message)
	for _, item := range soap.Children(result) {
		num, err := strconv.Atoi(strings.TrimSpace(soap.Text(soap.Child(item, "msg_num"))))
		if err != nil {
			logger.Debug(ctx, "skipping log entry without message number", "bug", id)
			continue
		}
		messages[num] = models.Message{
			Number: num,
			Header: ParseMailHeader(soap.Text(soap.Child(item, "header"))),
			Body:   soap.Text(soap.Child(item, "body")),
		}
	}
	return messages, nil
}

func (c *Client) bugFromStatus(id int, status *xmlquery.Node) models.Bug {
	field := func(name string) string {
		return soap.Text(soap.Child(status, name))
	}

	bug := models.Bug{
		ID:            id,
		Subject:       field("subject"),
		Package:       field("package"),
		Source:        field("source"),
		Affects:       splitList(field("affects")),
		Submitter:     field("originator"),
		Owner:         field("owner"),
		Severity:      field("severity"),
		Tags:          strings.Fields(field("tags")),
		MergedWith:    soap.Ints(soap.Child(status, "mergedwith")),
		FoundVersions: soap.Strings(soap.Child(status, "found_versions")),
		FixedVersions: soap.Strings(soap.Child(status, "fixed_versions")),
		BlockedBy:     soap.Ints(soap.Child(status, "blockedby")),
		Blocks:        soap.Ints(soap.Child(status, "blocks")),
		Done:          field("done"),
		Forwarded:     field("forwarded"),
		URL:           c.BugURL(id),
	}
	if ts, err := strconv.ParseInt(strings.TrimSpace(field("date")), 10, 64); err == nil {
		bug.Date = time.Unix(ts, 0).UTC()
	}
	if archived, err := strconv.Atoi(strings.TrimSpace(field("archived"))); err == nil {
		bug.Archived = archived != 0
	}
	return bug
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
