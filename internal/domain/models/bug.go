package models

import (
	"strings"
	"time"
)

type (
	// Bug is the status of a bug as reported by the BTS.
	Bug struct {
		ID            int       `json:"id" yaml:"id"`
		Subject       string    `json:"subject" yaml:"subject"`
		Package       string    `json:"package" yaml:"package"`
		Source        string    `json:"source,omitempty" yaml:"source,omitempty"`
		Affects       []string  `json:"affects,omitempty" yaml:"affects,omitempty"`
		Submitter     string    `json:"submitter" yaml:"submitter"`
		Owner         string    `json:"owner,omitempty" yaml:"owner,omitempty"`
		Date          time.Time `json:"date" yaml:"date"`
		Severity      string    `json:"severity" yaml:"severity"`
		Tags          []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
		MergedWith    []int     `json:"merged_with,omitempty" yaml:"merged_with,omitempty"`
		FoundVersions []string  `json:"found_versions,omitempty" yaml:"found_versions,omitempty"`
		FixedVersions []string  `json:"fixed_versions,omitempty" yaml:"fixed_versions,omitempty"`
		BlockedBy     []int     `json:"blocked_by,omitempty" yaml:"blocked_by,omitempty"`
		Blocks        []int     `json:"blocks,omitempty" yaml:"blocks,omitempty"`
		Done          string    `json:"done,omitempty" yaml:"done,omitempty"`
		Archived      bool      `json:"archived" yaml:"archived"`
		Forwarded     string    `json:"forwarded,omitempty" yaml:"forwarded,omitempty"`
		URL           string    `json:"url" yaml:"url"`
	}

	// Message is one entry of a bug log.
	Message struct {
		Number      int          `json:"number" yaml:"number"`
		Header      MailHeader   `json:"header" yaml:"header"`
		Body        string       `json:"body" yaml:"body"`
		Attachments []Attachment `json:"attachments,omitempty" yaml:"attachments,omitempty"`
	}

	// MailHeader holds the decoded headers shown for a message.
	MailHeader struct {
		From    string     `json:"from,omitempty" yaml:"from,omitempty"`
		To      string     `json:"to,omitempty" yaml:"to,omitempty"`
		Cc      string     `json:"cc,omitempty" yaml:"cc,omitempty"`
		Subject string     `json:"subject,omitempty" yaml:"subject,omitempty"`
		Date    *time.Time `json:"date,omitempty" yaml:"date,omitempty"`
	}

	// Attachment is a MIME part linked from the bug report page.
	Attachment struct {
		Name string `json:"name,omitempty" yaml:"name,omitempty"`
		URL  string `json:"url" yaml:"url"`
		Type string `json:"type" yaml:"type"`
	}

	// ControlMessage is a log entry the BTS generated from a control request.
	ControlMessage struct {
		Text        string
		RequestFrom string
		RequestTo   string
		Date        *time.Time
	}
)

// IsSource reports whether the bug is filed against a single source package.
func (b *Bug) IsSource() bool {
	return !strings.Contains(b.Package, ",") && strings.HasPrefix(b.Package, "src:")
}

// Packages splits the package field of a bug filed against several packages.
func (b *Bug) Packages() []string {
	return strings.Split(b.Package, ",")
}

// IsDone reports whether the bug has been closed.
func (b *Bug) IsDone() bool {
	return b.Done != ""
}
