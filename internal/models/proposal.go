package models

import (
	"time"

	"github.com/google/uuid"
)

// Proposal statuses.
const (
	ProposalStatusPending  = "pending"
	ProposalStatusParsed   = "parsed"
	ProposalStatusReviewed = "reviewed"
	ProposalStatusRejected = "rejected"
)

// EmailContent is the raw captured content of a vendor reply.
type EmailContent struct {
	Subject string `json:"subject"`
	From    string `json:"from"`
	Body    string `json:"body"`
	HTML    string `json:"html,omitempty"`
}

// Attachment is a file pulled out of a vendor email. ExtractedText is
// filled in later for PDFs so the extraction call can see their contents.
type Attachment struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Filename      string    `db:"filename" json:"filename"`
	ContentType   string    `db:"content_type" json:"contentType"`
	Size          int64     `db:"size" json:"size"`
	Content       []byte    `db:"content" json:"-"`
	ExtractedText string    `db:"extracted_text" json:"extractedText,omitempty"`
}

// ProposalItem is one priced line item extracted from a vendor response.
type ProposalItem struct {
	Name           string   `json:"name"`
	Quantity       int      `json:"quantity"`
	UnitPrice      *float64 `json:"unitPrice"`
	TotalPrice     *float64 `json:"totalPrice"`
	Specifications string   `json:"specifications,omitempty"`
}

// Compliance flags whether the vendor response meets the RFP constraints.
type Compliance struct {
	MeetsBudget   bool `json:"meetsBudget"`
	MeetsTimeline bool `json:"meetsTimeline"`
	MeetsSpecs    bool `json:"meetsSpecs"`
}

// ExtractedProposal holds the structured fields produced by the extraction
// call. TotalPrice is nil when the email quoted no specific amount.
type ExtractedProposal struct {
	TotalPrice    *float64       `json:"totalPrice"`
	Items         []ProposalItem `json:"items"`
	PaymentTerms  string         `json:"paymentTerms"`
	DeliveryTerms string         `json:"deliveryTerms"`
	Warranty      string         `json:"warranty"`
	Compliance    Compliance     `json:"compliance"`
	Notes         string         `json:"notes,omitempty"`
}

// Proposal is one parsed vendor reply for a given (RFP, vendor) pair.
// A vendor may submit revisions; each gets its own record with the next
// Number, never overwriting earlier ones. EmailMessageID deduplicates
// redelivered mail and is nil when the message carried no Message-ID.
type Proposal struct {
	ID             uuid.UUID          `db:"id" json:"id"`
	RFPID          uuid.UUID          `db:"rfp_id" json:"rfpId"`
	VendorID       uuid.UUID          `db:"vendor_id" json:"vendorId"`
	Number         int                `db:"number" json:"proposalNumber"`
	EmailMessageID *string            `db:"email_message_id" json:"emailMessageId,omitempty"`
	EmailContent   EmailContent       `db:"email_content" json:"emailContent"`
	Extracted      *ExtractedProposal `db:"extracted" json:"extractedData,omitempty"`
	Attachments    []Attachment       `db:"-" json:"attachments,omitempty"`
	ReceivedAt     time.Time          `db:"received_at" json:"receivedAt"`
	Status         string             `db:"status" json:"status"`
	ParsingError   *string            `db:"parsing_error" json:"parsingError,omitempty"`
}
