package models

import (
	"time"

	"github.com/google/uuid"
)

// VendorScore holds the per-proposal scores (0-100) from a comparison run.
type VendorScore struct {
	VendorID          uuid.UUID `json:"vendorId"`
	ProposalID        uuid.UUID `json:"proposalId"`
	PriceScore        int       `json:"priceScore"`
	ComplianceScore   int       `json:"complianceScore"`
	TermsScore        int       `json:"termsScore"`
	CompletenessScore int       `json:"completenessScore"`
	OverallScore      int       `json:"overallScore"`
}

// Recommendation names the vendor/proposal the comparison run picked.
type Recommendation struct {
	VendorID   uuid.UUID `json:"vendorId"`
	ProposalID uuid.UUID `json:"proposalId"`
	Reasoning  string    `json:"reasoning"`
	Confidence int       `json:"confidence"`
}

// Comparison is the ranked analysis of all proposals for one RFP.
// Regenerating replaces the previous comparison for the same RFP.
type Comparison struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	RFPID          uuid.UUID       `db:"rfp_id" json:"rfpId"`
	ProposalIDs    []uuid.UUID     `db:"proposal_ids" json:"proposals"`
	Scores         []VendorScore   `db:"scores" json:"scores"`
	Summary        string          `db:"summary" json:"aiSummary"`
	Recommendation *Recommendation `db:"recommendation" json:"aiRecommendation,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updatedAt"`
}
