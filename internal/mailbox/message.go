package mailbox

import (
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/acavemancodes/Snistplacements/internal/types"
)

// maxPartBytes caps how much of a single MIME part is read.
const maxPartBytes = 1 << 20

// ParseMessage reads an RFC 5322 message and returns its headers and its
// first text/plain and text/html parts. Attachments are skipped.
func ParseMessage(r io.Reader) (types.Email, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return types.Email{}, fmt.Errorf("read message: %w", err)
	}
	defer mr.Close()

	var email types.Email
	h := mr.Header
	if email.Subject, err = h.Subject(); err != nil && !message.IsUnknownCharset(err) {
		email.Subject = h.Get("Subject")
	}
	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		email.From = from[0].Address
	} else {
		email.From = h.Get("From")
	}
	if date, err := h.Date(); err == nil {
		email.Date = date
	}
	if id, err := h.MessageID(); err == nil {
		email.MessageID = id
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) {
				continue
			}
			return email, fmt.Errorf("read part: %w", err)
		}

		ih, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue // 附件
		}
		ct, _, _ := ih.ContentType()
		if ct != "text/plain" && ct != "text/html" && ct != "" {
			continue
		}
		b, err := io.ReadAll(io.LimitReader(p.Body, maxPartBytes))
		if err != nil {
			return email, fmt.Errorf("read %s part: %w", ct, err)
		}
		switch {
		case ct == "text/html" && email.BodyHTML == "":
			email.BodyHTML = string(b)
		case ct != "text/html" && email.BodyText == "":
			email.BodyText = strings.TrimSpace(string(b))
		}
	}
	return email, nil
}
