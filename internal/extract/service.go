package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/procurehq/rfpflow/internal/models"
)

// ProposalStore is the slice of the proposal repository the parsing
// service needs.
type ProposalStore interface {
	ByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	SaveExtraction(ctx context.Context, id uuid.UUID, extracted *models.ExtractedProposal) error
	MarkParseFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	SaveAttachmentText(ctx context.Context, attachmentID uuid.UUID, text string) error
}

// LLM is the proposal-content extraction round trip.
type LLM interface {
	ParseProposalContent(ctx context.Context, email models.EmailContent, attachments []models.Attachment) (*models.ExtractedProposal, error)
}

// PDFExtractor pulls plain text out of PDF bytes.
type PDFExtractor interface {
	Extract(content []byte) (string, error)
}

// Service parses stored proposals: PDF attachments are converted to text,
// the combined content goes through the LLM, and the result lands back on
// the proposal record.
type Service struct {
	Proposals ProposalStore
	LLM       LLM
	PDF       PDFExtractor
}

// ParseProposal runs one extraction attempt. On failure the proposal is
// left in "pending" with the error recorded, and the error is returned so
// the caller can decide how loudly to surface it.
func (s *Service) ParseProposal(ctx context.Context, proposalID uuid.UUID) error {
	proposal, err := s.Proposals.ByID(ctx, proposalID)
	if err != nil {
		return fmt.Errorf("load proposal: %w", err)
	}
	if proposal == nil {
		return fmt.Errorf("proposal %s not found", proposalID)
	}

	s.extractAttachmentText(ctx, proposal)

	extracted, err := s.LLM.ParseProposalContent(ctx, proposal.EmailContent, proposal.Attachments)
	if err != nil {
		if markErr := s.Proposals.MarkParseFailed(ctx, proposalID, err.Error()); markErr != nil {
			log.WithError(markErr).WithField("proposal", proposalID).Warn("failed to record parsing error")
		}
		return err
	}

	if err := s.Proposals.SaveExtraction(ctx, proposalID, extracted); err != nil {
		return fmt.Errorf("save extraction: %w", err)
	}

	log.WithField("proposal", proposalID).Info("proposal parsed")
	return nil
}

// extractAttachmentText fills in ExtractedText for PDF attachments that
// don't have it yet. Best-effort: a bad PDF just rides along unparsed.
func (s *Service) extractAttachmentText(ctx context.Context, proposal *models.Proposal) {
	for i := range proposal.Attachments {
		att := &proposal.Attachments[i]
		if att.ExtractedText != "" || len(att.Content) == 0 {
			continue
		}
		if !strings.EqualFold(att.ContentType, "application/pdf") {
			continue
		}

		text, err := s.PDF.Extract(att.Content)
		if err != nil {
			log.WithError(err).WithField("filename", att.Filename).Warn("pdf text extraction failed")
			continue
		}
		att.ExtractedText = text
		if err := s.Proposals.SaveAttachmentText(ctx, att.ID, text); err != nil {
			log.WithError(err).WithField("filename", att.Filename).Warn("failed to store attachment text")
		}
	}
}
