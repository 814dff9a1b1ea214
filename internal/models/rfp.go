package models

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// RFP statuses.
const (
	RFPStatusDraft     = "draft"
	RFPStatusSent      = "sent"
	RFPStatusClosed    = "closed"
	RFPStatusCancelled = "cancelled"
)

// RFPItem is a single line item requested in an RFP.
type RFPItem struct {
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity"`
	Specifications string  `json:"specifications,omitempty"`
	UnitPrice      float64 `json:"unitPrice,omitempty"`
}

// RFP is a request-for-proposal sent to vendors. Token is the unique
// textual identifier embedded in outbound subject lines; inbound replies
// are matched back to the RFP by grepping for it.
type RFP struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	Token          string          `db:"token" json:"rfpId"`
	Title          string          `db:"title" json:"title"`
	Description    string          `db:"description" json:"description"`
	Items          []RFPItem       `db:"items" json:"items"`
	Budget         float64         `db:"budget" json:"budget"`
	Timeline       string          `db:"timeline" json:"timeline"`
	PaymentTerms   string          `db:"payment_terms" json:"paymentTerms"`
	Warranty       string          `db:"warranty" json:"warranty"`
	Status         string          `db:"status" json:"status"`
	StructuredData json.RawMessage `db:"structured_data" json:"structuredData,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updatedAt"`
}

const tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewRFPToken generates an identifier of the form RFP-<unix-ms>-<suffix>.
// The format is stable: a fixed literal prefix so the token can be found
// in free-text subject lines and bodies.
func NewRFPToken() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(tokenAlphabet))))
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			panic(err)
		}
		suffix[i] = tokenAlphabet[n.Int64()]
	}
	return fmt.Sprintf("RFP-%d-%s", time.Now().UnixMilli(), suffix)
}
