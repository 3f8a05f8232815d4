// Package debian holds Debian-specific rules: bug references, package names,
// severities, and queries against the local package database.
package debian

import (
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/Tomas-vilte/dbts/internal/domain/models"
	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/regex"
)

const (
	BTSHost       = "bugs.debian.org"
	bugReportPath = "/cgi-bin/bugreport.cgi"
)

// Severities in decreasing order of importance.
var Severities = []string{
	"critical",
	"grave",
	"serious",
	"important",
	"normal",
	"minor",
	"wishlist",
}

var rcSeverities = map[string]bool{
	"serious":  true,
	"grave":    true,
	"critical": true,
}

// WNPPTags are the subject prefixes used in the wnpp pseudo-package.
var WNPPTags = []string{"O", "RFA", "RFH", "ITP", "RFP"}

// IsRCSeverity reports whether severity is release-critical.
func IsRCSeverity(severity string) bool {
	return rcSeverities[severity]
}

// IsSeverity reports whether s is a severity known to the BTS.
func IsSeverity(s string) bool {
	for _, sev := range Severities {
		if sev == s {
			return true
		}
	}
	return false
}

// ParseBugSpec accepts 123456, #123456, https://bugs.debian.org/123456 and
// https://bugs.debian.org/cgi-bin/bugreport.cgi?bug=123456.
func ParseBugSpec(s string) (int, error) {
	invalid := apperrors.ErrInvalidBugSpec.WithContext("argument", s)

	if m := regex.BugNumber.FindStringSubmatch(s); m != nil {
		return atoi(m[1], invalid)
	}

	u, err := url.Parse(s)
	if err != nil {
		return 0, invalid.WithError(err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return 0, invalid
	}
	if u.Host != BTSHost || u.User != nil {
		return 0, invalid
	}
	if m := regex.ShortBugPath.FindStringSubmatch(u.Path); m != nil {
		return atoi(m[1], invalid)
	}
	if u.Path != bugReportPath {
		return 0, invalid
	}

	values := QueryValues(u.RawQuery, "bug")
	if len(values) != 1 || !regex.Digits.MatchString(values[0]) {
		return 0, invalid
	}
	return atoi(values[0], invalid)
}

// QueryValues returns all values of key, treating both '&' and ';' as
// separators the way the BTS itself does.
func QueryValues(rawQuery, key string) []string {
	var values []string
	for _, field := range strings.FieldsFunc(rawQuery, func(r rune) bool { return r == '&' || r == ';' }) {
		k, v, _ := strings.Cut(field, "=")
		k, err := url.QueryUnescape(k)
		if err != nil || k != key {
			continue
		}
		if v, err = url.QueryUnescape(v); err == nil {
			values = append(values, v)
		}
	}
	return values
}

func atoi(s string, invalid *apperrors.AppError) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, invalid.WithError(err)
	}
	return n, nil
}

// IsPackageName implements Debian policy §5.6.1.
func IsPackageName(s string) bool {
	return regex.PackageName.MatchString(s)
}

// StripPackagePrefix removes a leading "pkg:" or "pkg " from a bug subject.
func StripPackagePrefix(subject, pkg string) string {
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(pkg) + `(?::\s*|\s+)`)
	return re.ReplaceAllString(subject, "")
}

// WNPPTag returns the WNPP tag a subject starts with, if any.
func WNPPTag(subject string) (string, bool) {
	for _, tag := range WNPPTags {
		if strings.HasPrefix(subject, tag+": ") {
			return tag, true
		}
	}
	return "", false
}

// ParseControlMessage splits the text of a control message into the
// message itself and the request details.
func ParseControlMessage(text string) models.ControlMessage {
	m := regex.ControlMessage.FindStringSubmatch(text)
	if m == nil {
		return models.ControlMessage{Text: text}
	}
	cm := models.ControlMessage{
		Text:        m[1],
		RequestFrom: m[2],
		RequestTo:   m[3],
	}
	if m[4] != "" {
		if date, err := mail.ParseDate(m[4]); err == nil {
			cm.Date = &date
		}
	}
	return cm
}
