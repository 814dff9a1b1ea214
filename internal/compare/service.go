// Package compare generates ranked vendor comparisons for an RFP from its
// parsed proposals.
package compare

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/procurehq/rfpflow/internal/extract"
	"github.com/procurehq/rfpflow/internal/models"
)

var (
	ErrRFPNotFound = errors.New("rfp not found")
	ErrNoProposals = errors.New("no proposals to compare")
)

type RequestStore interface {
	ByID(ctx context.Context, id uuid.UUID) (*models.RFP, error)
}

type ResponseStore interface {
	ByRFP(ctx context.Context, rfpID uuid.UUID) ([]models.Proposal, error)
}

type VendorDirectory interface {
	ByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
}

type ComparisonStore interface {
	Upsert(ctx context.Context, c *models.Comparison) error
	ByRFP(ctx context.Context, rfpID uuid.UUID) (*models.Comparison, error)
}

type LLM interface {
	CompareProposals(ctx context.Context, rfp *models.RFP, proposals []extract.ProposalSummary) (*extract.ComparisonResult, error)
}

type Service struct {
	RFPs        RequestStore
	Proposals   ResponseStore
	Vendors     VendorDirectory
	Comparisons ComparisonStore
	LLM         LLM
}

// Generate runs a fresh comparison of all proposals for the RFP and stores
// it, replacing any previous comparison for the same RFP.
func (s *Service) Generate(ctx context.Context, rfpID uuid.UUID) (*models.Comparison, error) {
	rfp, err := s.RFPs.ByID(ctx, rfpID)
	if err != nil {
		return nil, fmt.Errorf("load rfp: %w", err)
	}
	if rfp == nil {
		return nil, ErrRFPNotFound
	}

	proposals, err := s.Proposals.ByRFP(ctx, rfpID)
	if err != nil {
		return nil, fmt.Errorf("load proposals: %w", err)
	}
	if len(proposals) == 0 {
		return nil, ErrNoProposals
	}

	summaries := make([]extract.ProposalSummary, 0, len(proposals))
	for i := range proposals {
		name := s.vendorName(ctx, proposals[i].VendorID)
		summaries = append(summaries, extract.ProposalSummary{
			VendorName: name,
			Extracted:  proposals[i].Extracted,
		})
	}

	result, err := s.LLM.CompareProposals(ctx, rfp, summaries)
	if err != nil {
		return nil, fmt.Errorf("compare proposals: %w", err)
	}

	comparison := &models.Comparison{
		RFPID:       rfpID,
		ProposalIDs: make([]uuid.UUID, 0, len(proposals)),
		Summary:     result.Summary,
	}
	for i := range proposals {
		comparison.ProposalIDs = append(comparison.ProposalIDs, proposals[i].ID)
	}

	for _, score := range result.Scores {
		if score.ProposalIndex < 0 || score.ProposalIndex >= len(proposals) {
			log.WithField("index", score.ProposalIndex).Warn("comparison score references unknown proposal, skipping")
			continue
		}
		p := proposals[score.ProposalIndex]
		comparison.Scores = append(comparison.Scores, models.VendorScore{
			VendorID:          p.VendorID,
			ProposalID:        p.ID,
			PriceScore:        score.PriceScore,
			ComplianceScore:   score.ComplianceScore,
			TermsScore:        score.TermsScore,
			CompletenessScore: score.CompletenessScore,
			OverallScore:      score.OverallScore,
		})
	}

	if idx := result.Recommendation.VendorIndex; idx >= 0 && idx < len(proposals) {
		p := proposals[idx]
		comparison.Recommendation = &models.Recommendation{
			VendorID:   p.VendorID,
			ProposalID: p.ID,
			Reasoning:  result.Recommendation.Reasoning,
			Confidence: result.Recommendation.Confidence,
		}
	} else {
		log.WithField("index", idx).Warn("comparison recommendation references unknown proposal, dropping")
	}

	if err := s.Comparisons.Upsert(ctx, comparison); err != nil {
		return nil, fmt.Errorf("save comparison: %w", err)
	}
	return comparison, nil
}

// Latest returns the stored comparison for the RFP, or nil if none exists.
func (s *Service) Latest(ctx context.Context, rfpID uuid.UUID) (*models.Comparison, error) {
	return s.Comparisons.ByRFP(ctx, rfpID)
}

func (s *Service) vendorName(ctx context.Context, vendorID uuid.UUID) string {
	vendor, err := s.Vendors.ByID(ctx, vendorID)
	if err != nil || vendor == nil {
		return "Unknown vendor"
	}
	return vendor.Name
}
