package debbugs

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Tomas-vilte/dbts/internal/debian"
	"github.com/Tomas-vilte/dbts/internal/domain/models"
	"github.com/Tomas-vilte/dbts/internal/domain/ports"
	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/regex"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Page is a parsed bug report page.
type Page struct {
	URL string
	doc *html.Node
}

var _ ports.ReportPage = (*Page)(nil)

// ReportURL returns the URL of the HTML report of a bug.
func (c *Client) ReportURL(id int) string {
	return fmt.Sprintf("%s%s?bug=%d", c.baseURL, reportPath, id)
}

// FetchReportPage downloads and parses the HTML report of a bug.
func (c *Client) FetchReportPage(ctx context.Context, id int) (ports.ReportPage, error) {
	pageURL := c.ReportURL(id)
	body, err := c.http.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("bug report page %d: %w", id, err)
	}
	return ParsePage(pageURL, body)
}

// ParsePage parses a report page and makes every link absolute.
func ParsePage(pageURL string, body []byte) (*Page, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, apperrors.ErrHTMLParse.WithError(err).WithContext("url", pageURL)
	}
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.ErrHTMLParse.WithError(err).WithContext("url", pageURL)
	}

	for _, a := range htmlquery.Find(doc, "//a[@href]") {
		for i, attr := range a.Attr {
			if attr.Key != "href" {
				continue
			}
			if ref, err := url.Parse(attr.Val); err == nil {
				a.Attr[i].Val = base.ResolveReference(ref).String()
			}
		}
	}
	return &Page{URL: pageURL, doc: doc}, nil
}

// Maintainers returns the maintainers listed in the package info box.
func (p *Page) Maintainers() []string {
	var maintainers []string
	for _, a := range htmlquery.Find(p.doc, `//div[@class="pkginfo"]//a`) {
		if strings.Contains(htmlquery.SelectAttr(a, "href"), "?maint=") {
			maintainers = append(maintainers, htmlquery.InnerText(a))
		}
	}
	return maintainers
}

// VersionGraphURL returns the link to the version graph, or "".
func (p *Page) VersionGraphURL() string {
	a := htmlquery.FindOne(p.doc, `//div[@class="versiongraph"]/a`)
	if a == nil {
		return ""
	}
	return htmlquery.SelectAttr(a, "href")
}

// Messages returns the message anchors of the log in page order.
func (p *Page) Messages() []ports.PageMessage {
	var messages []ports.PageMessage
	for _, n := range htmlquery.Find(p.doc, `//*[@class="msgreceived"]`) {
		anchor := htmlquery.FindOne(n, "./a[@name]")
		if anchor == nil {
			continue
		}
		num, err := strconv.Atoi(htmlquery.SelectAttr(anchor, "name"))
		if err != nil {
			continue
		}
		messages = append(messages, ports.PageMessage{
			Number: num,
			Text:   strings.Join(strings.Fields(htmlquery.InnerText(n)), " "),
		})
	}
	return messages
}

// Attachments returns the MIME parts linked from the page keyed by message
// number. Parts displayed inline are skipped.
func (p *Page) Attachments() map[int][]models.Attachment {
	attachments := make(map[int][]models.Attachment)
	for _, a := range htmlquery.Find(p.doc, `//pre[@class="mime"]/a`) {
		next := htmlquery.FindOne(a, "parent::*/following-sibling::*[1]")
		if next != nil && next.Data == "pre" && htmlquery.SelectAttr(next, "class") == "message" {
			continue
		}

		href := htmlquery.SelectAttr(a, "href")
		u, err := url.Parse(href)
		if err != nil {
			continue
		}
		values := debian.QueryValues(u.RawQuery, "msg")
		if len(values) != 1 {
			continue
		}
		msg, err := strconv.Atoi(values[0])
		if err != nil {
			continue
		}

		name := htmlquery.InnerText(a)
		if regex.MessagePart.MatchString(name) {
			name = ""
		}
		attachments[msg] = append(attachments[msg], models.Attachment{
			Name: name,
			URL:  href,
			Type: strings.Trim(lastText(a.Parent), "() ]"),
		})
	}
	return attachments
}

func lastText(n *html.Node) string {
	var last string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			last = c.Data
		}
	}
	return last
}
