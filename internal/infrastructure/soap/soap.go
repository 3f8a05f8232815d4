// Package soap is a minimal SOAP 1.1 rpc/encoded client. It only knows the
// handful of types used by the debbugs SOAP interface.
package soap

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/infrastructure/httpclient"
	"github.com/antchfx/xmlquery"
)

const envelopeHeader = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope
  soap:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/"
  xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"
  xmlns:senc="http://schemas.xmlsoap.org/soap/encoding/"
  xmlns:xsi="http://www.w3.org/1999/XMLSchema-instance"
  xmlns:xsd="http://www.w3.org/1999/XMLSchema"
>
<soap:Body>
`

const envelopeFooter = `</soap:Body>
</soap:Envelope>
`

// Transport sends a request and returns the whole response.
type Transport interface {
	Do(ctx context.Context, method, url string, header http.Header, body []byte) (*httpclient.Response, error)
}

type Client struct {
	URL       string
	Namespace string
	HTTP      Transport
}

func NewClient(url, namespace string, transport Transport) *Client {
	return &Client{URL: url, Namespace: namespace, HTTP: transport}
}

// Call invokes method with args and returns the result element of the
// response. Supported argument types are int, string and []int.
func (c *Client) Call(ctx context.Context, method string, args ...interface{}) (*xmlquery.Node, error) {
	body, err := c.Envelope(method, args...)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Content-Type", "text/xml; charset=UTF-8")
	header.Set("SOAPAction", fmt.Sprintf("%q", c.Namespace+"#"+method))

	resp, err := c.HTTP.Do(ctx, http.MethodPost, c.URL, header, body)
	if err != nil {
		return nil, err
	}

	doc, parseErr := xmlquery.Parse(bytes.NewReader(resp.Body))
	if parseErr == nil {
		if fault := findFault(doc); fault != nil {
			return nil, fault.WithContext("method", method)
		}
	}
	if !resp.OK() {
		return nil, apperrors.ErrHTTPStatus.
			WithContext("url", c.URL).
			WithContext("status", resp.StatusCode)
	}
	if parseErr != nil {
		return nil, apperrors.ErrSOAPMalformed.WithError(parseErr).WithContext("method", method)
	}

	envBody := soapBody(doc)
	if envBody == nil {
		return nil, apperrors.ErrSOAPMalformed.WithContext("method", method)
	}
	response := Children(envBody)
	if len(response) != 1 {
		return nil, apperrors.ErrSOAPMalformed.WithContext("method", method)
	}
	if results := Children(response[0]); len(results) > 0 {
		return results[0], nil
	}
	return response[0], nil
}

// Envelope builds the request document for method.
func (c *Client) Envelope(method string, args ...interface{}) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(envelopeHeader)
	fmt.Fprintf(&b, "<ns:%s xmlns:ns=%q senc:root=\"1\">\n", method, c.Namespace)
	for i, arg := range args {
		switch v := arg.(type) {
		case int:
			fmt.Fprintf(&b, `<v%d xsi:type="xsd:int">%d</v%d>`, i, v, i)
		case string:
			fmt.Fprintf(&b, `<v%d xsi:type="xsd:string">`, i)
			if err := xml.EscapeText(&b, []byte(v)); err != nil {
				return nil, apperrors.ErrSOAPArgument.WithError(err)
			}
			fmt.Fprintf(&b, `</v%d>`, i)
		case []int:
			fmt.Fprintf(&b, `<v%d xsi:type="senc:Array" senc:arrayType="xsd:int[%d]">`, i, len(v))
			for _, n := range v {
				fmt.Fprintf(&b, `<item xsi:type="xsd:int">%d</item>`, n)
			}
			fmt.Fprintf(&b, `</v%d>`, i)
		default:
			return nil, apperrors.ErrSOAPArgument.WithContext("type", fmt.Sprintf("%T", arg))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "</ns:%s>\n", method)
	b.WriteString(envelopeFooter)
	return b.Bytes(), nil
}

func soapBody(doc *xmlquery.Node) *xmlquery.Node {
	for _, env := range Children(doc) {
		if env.Data != "Envelope" {
			continue
		}
		return Child(env, "Body")
	}
	return nil
}

func findFault(doc *xmlquery.Node) *apperrors.AppError {
	body := soapBody(doc)
	if body == nil {
		return nil
	}
	fault := Child(body, "Fault")
	if fault == nil {
		return nil
	}
	appErr := apperrors.ErrSOAPFault
	if code := Child(fault, "faultcode"); code != nil {
		appErr = appErr.WithContext("faultcode", strings.TrimSpace(code.InnerText()))
	}
	if s := Child(fault, "faultstring"); s != nil {
		appErr = appErr.WithError(errors.New(strings.TrimSpace(s.InnerText())))
	}
	return appErr
}

// Children returns the element children of n.
func Children(n *xmlquery.Node) []*xmlquery.Node {
	if n == nil {
		return nil
	}
	var children []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			children = append(children, c)
		}
	}
	return children
}

// Child returns the first element child of n with the given local name.
func Child(n *xmlquery.Node, name string) *xmlquery.Node {
	for _, c := range Children(n) {
		if c.Data == name {
			return c
		}
	}
	return nil
}

func xsiType(n *xmlquery.Node) string {
	for _, attr := range n.Attr {
		if attr.Name.Local == "type" {
			return attr.Value
		}
	}
	return ""
}

// Text returns the text of n, decoding xsd:base64Binary values. Invalid
// UTF-8 is replaced with U+FFFD.
func Text(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	text := n.InnerText()
	if strings.HasSuffix(xsiType(n), ":base64Binary") {
		decoded, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(text), ""))
		if err == nil {
			text = string(decoded)
		}
	}
	return strings.ToValidUTF8(text, "\uFFFD")
}

// Strings returns the items of an array, or the whitespace-separated words
// of a scalar.
func Strings(n *xmlquery.Node) []string {
	if n == nil {
		return nil
	}
	items := Children(n)
	if len(items) == 0 {
		return strings.Fields(Text(n))
	}
	values := make([]string, 0, len(items))
	for _, item := range items {
		values = append(values, Text(item))
	}
	return values
}

// Ints is Strings for integer lists. Values that are not integers are
// skipped.
func Ints(n *xmlquery.Node) []int {
	var values []int
	for _, s := range Strings(n) {
		for _, field := range strings.Fields(s) {
			v, err := strconv.Atoi(field)
			if err != nil {
				continue
			}
			values = append(values, v)
		}
	}
	return values
}

// Map decodes a SOAP::Lite map (a list of item/key/value) keyed by the
// text of each key.
func Map(n *xmlquery.Node) map[string]*xmlquery.Node {
	m := make(map[string]*xmlquery.Node)
	for _, item := range Children(n) {
		key := Child(item, "key")
		value := Child(item, "value")
		if key == nil || value == nil {
			continue
		}
		m[Text(key)] = value
	}
	return m
}
