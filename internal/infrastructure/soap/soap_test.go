package soap

import (
	"context"
	"net/http"
	"strings"
	"testing"

	apperrors "github.com/Tomas-vilte/dbts/internal/errors"
	"github.com/Tomas-vilte/dbts/internal/infrastructure/httpclient"
	"github.com/antchfx/xmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	status int
	body   string
	err    error

	gotMethod string
	gotURL    string
	gotHeader http.Header
	gotBody   string
}

func (f *fakeTransport) Do(ctx context.Context, method, url string, header http.Header, body []byte) (*httpclient.Response, error) {
	f.gotMethod, f.gotURL, f.gotHeader, f.gotBody = method, url, header, string(body)
	if f.err != nil {
		return nil, f.err
	}
	return &httpclient.Response{StatusCode: f.status, Body: []byte(f.body)}, nil
}

const statusResponse = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:xsi="http://www.w3.org/1999/XMLSchema-instance" xmlns:soapenc="http://schemas.xmlsoap.org/soap/encoding/" xmlns:xsd="http://www.w3.org/1999/XMLSchema" soap:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/" xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
<soap:Body>
<get_statusResponse xmlns="Debbugs/SOAP">
<s-gensym3 xsi:type="apachens:Map" xmlns:apachens="http://xml.apache.org/xml-soap">
<item><key xsi:type="xsd:int">553661</key><value>
<subject xsi:type="xsd:base64Binary">ZGJ0czogc2hvdyBNYWludGFpbmVyIGZyb20gU09BUCDigJQgw6k=</subject>
<package xsi:type="xsd:string">debbugs</package>
<mergedwith xsi:type="xsd:string">553662 553663</mergedwith>
<found_versions soapenc:arrayType="xsd:string[2]" xsi:type="soapenc:Array"><item xsi:type="xsd:string">1.0-1</item><item xsi:type="xsd:string">1.0-2</item></found_versions>
<blocks xsi:type="xsd:string"></blocks>
</value></item>
</s-gensym3>
</get_statusResponse>
</soap:Body>
</soap:Envelope>
`

const faultResponse = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
<soap:Body>
<soap:Fault>
<faultcode>soap:Client</faultcode>
<faultstring>Failed to locate method (get_stat) in class (Debbugs::SOAP)</faultstring>
</soap:Fault>
</soap:Body>
</soap:Envelope>
`

func TestClient_Envelope(t *testing.T) {
	c := NewClient("https://bugs.debian.org/cgi-bin/soap.cgi", "Debbugs/SOAP", nil)

	env, err := c.Envelope("get_bugs", "package", "a<b&c", 7, []int{1, 2})
	require.NoError(t, err)

	s := string(env)
	assert.Contains(t, s, `soap:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/"`)
	assert.Contains(t, s, `xmlns:xsi="http://www.w3.org/1999/XMLSchema-instance"`)
	assert.Contains(t, s, `<ns:get_bugs xmlns:ns="Debbugs/SOAP" senc:root="1">`)
	assert.Contains(t, s, `<v0 xsi:type="xsd:string">package</v0>`)
	assert.Contains(t, s, `<v1 xsi:type="xsd:string">a&lt;b&amp;c</v1>`)
	assert.Contains(t, s, `<v2 xsi:type="xsd:int">7</v2>`)
	assert.Contains(t, s, `<v3 xsi:type="senc:Array" senc:arrayType="xsd:int[2]"><item xsi:type="xsd:int">1</item><item xsi:type="xsd:int">2</item></v3>`)
	assert.Contains(t, s, `</ns:get_bugs>`)

	_, err = xmlquery.Parse(strings.NewReader(s))
	assert.NoError(t, err, "envelope must be well-formed XML")
}

func TestClient_EnvelopeRejectsUnknownTypes(t *testing.T) {
	c := NewClient("", "Debbugs/SOAP", nil)

	_, err := c.Envelope("get_status", 1.5)

	assert.ErrorIs(t, err, apperrors.ErrSOAPArgument)
}

func TestClient_Call(t *testing.T) {
	transport := &fakeTransport{status: http.StatusOK, body: statusResponse}
	c := NewClient("https://bugs.debian.org/cgi-bin/soap.cgi", "Debbugs/SOAP", transport)

	result, err := c.Call(context.Background(), "get_status", []int{553661})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, transport.gotMethod)
	assert.Equal(t, "https://bugs.debian.org/cgi-bin/soap.cgi", transport.gotURL)
	assert.Equal(t, "text/xml; charset=UTF-8", transport.gotHeader.Get("Content-Type"))
	assert.Equal(t, `"Debbugs/SOAP#get_status"`, transport.gotHeader.Get("SOAPAction"))
	assert.Contains(t, transport.gotBody, "<item xsi:type=\"xsd:int\">553661</item>")

	assert.Equal(t, "s-gensym3", result.Data)
	bugs := Map(result)
	require.Contains(t, bugs, "553661")

	status := bugs["553661"]
	assert.Equal(t, "dbts: show Maintainer from SOAP — é", Text(Child(status, "subject")))
	assert.Equal(t, "debbugs", Text(Child(status, "package")))
	assert.Equal(t, []int{553662, 553663}, Ints(Child(status, "mergedwith")))
	assert.Equal(t, []string{"1.0-1", "1.0-2"}, Strings(Child(status, "found_versions")))
	assert.Empty(t, Ints(Child(status, "blocks")))
	assert.Empty(t, Strings(Child(status, "missing")))
	assert.Equal(t, "", Text(Child(status, "missing")))
}

func TestClient_CallErrors(t *testing.T) {
	t.Run("fault", func(t *testing.T) {
		c := NewClient("u", "Debbugs/SOAP", &fakeTransport{status: http.StatusInternalServerError, body: faultResponse})

		_, err := c.Call(context.Background(), "get_stat", 1)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrSOAPFault)
		assert.Contains(t, err.Error(), "Failed to locate method")
	})

	t.Run("http status without fault", func(t *testing.T) {
		c := NewClient("u", "Debbugs/SOAP", &fakeTransport{status: http.StatusBadGateway, body: "<html>bad gateway</html>"})

		_, err := c.Call(context.Background(), "get_status", 1)

		assert.ErrorIs(t, err, apperrors.ErrHTTPStatus)
	})

	t.Run("malformed", func(t *testing.T) {
		c := NewClient("u", "Debbugs/SOAP", &fakeTransport{status: http.StatusOK, body: "not xml <"})

		_, err := c.Call(context.Background(), "get_status", 1)

		assert.ErrorIs(t, err, apperrors.ErrSOAPMalformed)
	})

	t.Run("no body", func(t *testing.T) {
		c := NewClient("u", "Debbugs/SOAP", &fakeTransport{status: http.StatusOK, body: `<a/>`})

		_, err := c.Call(context.Background(), "get_status", 1)

		assert.ErrorIs(t, err, apperrors.ErrSOAPMalformed)
	})

	t.Run("transport", func(t *testing.T) {
		c := NewClient("u", "Debbugs/SOAP", &fakeTransport{err: apperrors.ErrHTTPRequest})

		_, err := c.Call(context.Background(), "get_status", 1)

		assert.ErrorIs(t, err, apperrors.ErrHTTPRequest)
	})
}

func TestText_InvalidUTF8(t *testing.T) {
	doc, err := xmlquery.Parse(strings.NewReader(
		`<v xmlns:xsi="http://www.w3.org/1999/XMLSchema-instance" xsi:type="xsd:base64Binary">/2Fi</v>`))
	require.NoError(t, err)

	assert.Equal(t, "\uFFFDab", Text(Children(doc)[0]))
}
