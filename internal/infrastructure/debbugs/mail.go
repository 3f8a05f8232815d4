package debbugs

import (
	"fmt"
	"io"
	"mime"
	"net/mail"
	"strings"

	"github.com/Tomas-vilte/dbts/internal/domain/models"
	"golang.org/x/text/encoding/htmlindex"
)

var wordDecoder = &mime.WordDecoder{
	CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
		}
		return enc.NewDecoder().Reader(input), nil
	},
}

// ParseMailHeader extracts the displayed fields from a raw RFC 5322 header
// block. Encoded words are decoded and whitespace is collapsed.
func ParseMailHeader(raw string) models.MailHeader {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	// mbox separator
	if strings.HasPrefix(raw, "From ") {
		_, raw, _ = strings.Cut(raw, "\n")
	}
	msg, err := mail.ReadMessage(strings.NewReader(strings.TrimRight(raw, "\n") + "\n\n"))
	if err != nil {
		return models.MailHeader{}
	}

	h := models.MailHeader{
		From:    DecodeHeader(msg.Header.Get("From")),
		To:      DecodeHeader(msg.Header.Get("To")),
		Cc:      DecodeHeader(msg.Header.Get("Cc")),
		Subject: DecodeHeader(msg.Header.Get("Subject")),
	}
	if date, err := msg.Header.Date(); err == nil {
		h.Date = &date
	}
	return h
}

// DecodeHeader decodes RFC 2047 encoded words in s and normalizes
// whitespace. Undecodable words are kept as is.
func DecodeHeader(s string) string {
	if decoded, err := wordDecoder.DecodeHeader(s); err == nil {
		s = decoded
	}
	return strings.Join(strings.Fields(s), " ")
}
