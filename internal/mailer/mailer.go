// Package mailer sends RFPs to vendors over SMTP. Messages carry the RFP
// token in the subject line so vendor replies can be matched back.
package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"io"
	"net/smtp"
	"strings"
	"text/template"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/procurehq/rfpflow/internal/config"
	"github.com/procurehq/rfpflow/internal/models"
)

// SendResult is the per-vendor outcome of one RFP send.
type SendResult struct {
	VendorID    uuid.UUID `json:"vendorId"`
	VendorEmail string    `json:"vendorEmail"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
}

type sendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	cfg  config.SMTP
	send sendFunc
}

func New(cfg config.SMTP) *Mailer {
	return &Mailer{cfg: cfg, send: smtp.SendMail}
}

// SendRFP emails the RFP to every vendor in the list, one message per
// vendor. A failure for one vendor does not stop the rest.
func (m *Mailer) SendRFP(rfp *models.RFP, vendors []models.Vendor) []SendResult {
	subject := fmt.Sprintf("RFP: %s - %s", rfp.Title, rfp.Token)
	textBody := renderText(rfp)
	htmlBody := renderHTML(rfp)

	results := make([]SendResult, 0, len(vendors))
	for _, vendor := range vendors {
		result := SendResult{VendorID: vendor.ID, VendorEmail: vendor.Email}

		msg, err := m.buildMessage(vendor.Email, subject, textBody, htmlBody)
		if err == nil {
			var auth smtp.Auth
			if m.cfg.Username != "" {
				auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
			}
			err = m.send(m.cfg.Addr(), auth, m.cfg.From, []string{vendor.Email}, msg)
		}

		if err != nil {
			log.WithError(err).WithField("vendor", vendor.Email).Error("failed to send RFP email")
			result.Error = err.Error()
		} else {
			log.WithFields(log.Fields{"vendor": vendor.Email, "rfp": rfp.Token}).Info("RFP email sent")
			result.Success = true
		}
		results = append(results, result)
	}
	return results
}

// buildMessage assembles a multipart/alternative message with text and
// HTML renderings.
func (m *Mailer) buildMessage(to, subject, textBody, htmlBody string) ([]byte, error) {
	var buf bytes.Buffer

	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{{Name: m.cfg.FromName, Address: m.cfg.From}})
	h.SetAddressList("To", []*mail.Address{{Address: to}})
	h.SetSubject(subject)

	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, err
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, err
	}

	var textHeader mail.InlineHeader
	textHeader.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	pw, err := tw.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(pw, textBody); err != nil {
		return nil, err
	}
	pw.Close()

	var htmlHeader mail.InlineHeader
	htmlHeader.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	pw, err = tw.CreatePart(htmlHeader)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(pw, htmlBody); err != nil {
		return nil, err
	}
	pw.Close()

	tw.Close()
	mw.Close()
	return buf.Bytes(), nil
}

var textTemplate = template.Must(template.New("rfp_text").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`Dear Vendor,

We are requesting a proposal for the following procurement:

RFP ID: {{.Token}}
Title: {{.Title}}

Description:
{{.Description}}

Requirements:
{{range $i, $item := .Items}}{{inc $i}}. {{$item.Quantity}}x {{$item.Name}}{{if $item.Specifications}} - {{$item.Specifications}}{{end}}
{{end}}
Budget: ${{printf "%.2f" .Budget}}
Timeline: {{.Timeline}}
Payment Terms: {{.PaymentTerms}}
Warranty: {{.Warranty}}

Please reply to this email with your proposal. Include:
- Detailed pricing for each item
- Delivery timeline
- Payment terms
- Warranty information
- Any additional terms or conditions

Please include the RFP ID ({{.Token}}) in your response subject line.

Thank you for your interest.

Best regards,
RFP Management System
`))

var htmlTemplate = htmltemplate.Must(htmltemplate.New("rfp_html").Parse(`<html>
<body>
  <h2>Request for Proposal</h2>
  <p><strong>RFP ID:</strong> {{.Token}}</p>
  <p><strong>Title:</strong> {{.Title}}</p>

  <h3>Description:</h3>
  <p>{{.Description}}</p>

  <h3>Requirements:</h3>
  <ul>
    {{range .Items}}<li>{{.Quantity}}x {{.Name}}{{if .Specifications}} - {{.Specifications}}{{end}}</li>
    {{end}}
  </ul>

  <h3>Terms:</h3>
  <ul>
    <li><strong>Budget:</strong> ${{printf "%.2f" .Budget}}</li>
    <li><strong>Timeline:</strong> {{.Timeline}}</li>
    <li><strong>Payment Terms:</strong> {{.PaymentTerms}}</li>
    <li><strong>Warranty:</strong> {{.Warranty}}</li>
  </ul>

  <p>Please reply to this email with your proposal. Include the RFP ID (<strong>{{.Token}}</strong>) in your response subject line.</p>
</body>
</html>
`))

func renderText(rfp *models.RFP) string {
	var sb strings.Builder
	if err := textTemplate.Execute(&sb, rfp); err != nil {
		log.WithError(err).Error("failed to render RFP text body")
	}
	return sb.String()
}

func renderHTML(rfp *models.RFP) string {
	var sb strings.Builder
	if err := htmlTemplate.Execute(&sb, rfp); err != nil {
		log.WithError(err).Error("failed to render RFP html body")
	}
	return sb.String()
}
