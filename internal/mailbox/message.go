package mailbox

import (
	"bytes"
	"io"
	netmail "net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	log "github.com/sirupsen/logrus"
)

// ParsedMessage is the decomposed form of one inbound email.
type ParsedMessage struct {
	Subject     string
	From        string // raw From header value
	SenderAddr  string // bare address, lower-cased
	Date        time.Time
	MessageID   string
	Body        string
	HTML        string
	Attachments []AttachmentData
}

// AttachmentData is one attachment pulled out of the part tree.
type AttachmentData struct {
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
}

var (
	angleAddrRe = regexp.MustCompile(`<([^>]+)>`)
	htmlTagRe   = regexp.MustCompile(`<[^>]*>`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// ExtractAddr pulls the bare address out of a "Display Name <addr>"
// header value. When no angle-bracket form is present the raw value is
// used as-is.
func ExtractAddr(from string) string {
	if m := angleAddrRe.FindStringSubmatch(from); m != nil {
		return strings.ToLower(strings.TrimSpace(m[1]))
	}
	return strings.ToLower(strings.TrimSpace(from))
}

// StripHTML converts markup to plain text by dropping tags and
// collapsing whitespace.
func StripHTML(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(htmlTagRe.ReplaceAllString(s, " "), " "))
}

// Decompose parses a raw RFC 5322 message into headers, body text and
// attachments. Body resolution order: the dedicated text part, then the
// raw message with headers stripped, then tag-stripped HTML when that is
// the only source found.
func Decompose(raw []byte) (*ParsedMessage, error) {
	pm := &ParsedMessage{}

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		// Malformed MIME; salvage what the plain header parser can read.
		return decomposeFallback(raw, err)
	}

	h := mr.Header
	pm.Subject, _ = h.Subject()
	pm.From = h.Get("From")
	pm.SenderAddr = ExtractAddr(pm.From)
	pm.Date, _ = h.Date()
	pm.MessageID, _ = h.MessageID()

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.WithError(err).Warn("failed to read message part, skipping rest")
			break
		}

		switch ph := part.Header.(type) {
		case *mail.InlineHeader:
			ct, _, _ := ph.ContentType()
			data, err := io.ReadAll(part.Body)
			if err != nil {
				log.WithError(err).Warn("failed to read inline part")
				continue
			}
			switch {
			case ct == "text/plain" || ct == "":
				if pm.Body == "" {
					pm.Body = string(data)
				}
			case ct == "text/html":
				if pm.HTML == "" {
					pm.HTML = string(data)
				}
			}
		case *mail.AttachmentHeader:
			filename, _ := ph.Filename()
			if filename == "" {
				filename = "attachment"
			}
			ct, _, _ := ph.ContentType()
			data, err := io.ReadAll(part.Body)
			if err != nil {
				log.WithError(err).WithField("filename", filename).Warn("failed to read attachment")
				continue
			}
			pm.Attachments = append(pm.Attachments, AttachmentData{
				Filename:    filename,
				ContentType: ct,
				Size:        int64(len(data)),
				Content:     data,
			})
		}
	}

	pm.fillBodyFallbacks(raw)
	return pm, nil
}

// decomposeFallback handles messages go-message rejects. Headers come
// from the stdlib parser, the body from splitting on the first blank line.
func decomposeFallback(raw []byte, cause error) (*ParsedMessage, error) {
	msg, err := netmail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, cause
	}

	pm := &ParsedMessage{
		Subject:   msg.Header.Get("Subject"),
		From:      msg.Header.Get("From"),
		MessageID: strings.Trim(msg.Header.Get("Message-Id"), "<>"),
	}
	pm.SenderAddr = ExtractAddr(pm.From)
	pm.Date, _ = msg.Header.Date()

	body, _ := io.ReadAll(msg.Body)
	pm.Body = string(body)
	return pm, nil
}

// fillBodyFallbacks applies the body resolution chain when the part walk
// produced no usable text.
func (pm *ParsedMessage) fillBodyFallbacks(raw []byte) {
	if pm.Body != "" {
		return
	}

	if after := rawBodyAfterHeaders(raw); after != "" {
		pm.Body = after
		return
	}

	if pm.HTML != "" {
		pm.Body = StripHTML(pm.HTML)
	}
}

// rawBodyAfterHeaders returns everything after the first blank line.
func rawBodyAfterHeaders(raw []byte) string {
	s := string(raw)
	for _, sep := range []string{"\r\n\r\n", "\n\n"} {
		if idx := strings.Index(s, sep); idx >= 0 {
			return s[idx+len(sep):]
		}
	}
	return ""
}
