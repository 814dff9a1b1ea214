package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurehq/rfpflow/internal/models"
)

type fakeProposalStore struct {
	proposal   *models.Proposal
	extraction *models.ExtractedProposal
	parseError string
	attText    map[uuid.UUID]string
}

func (f *fakeProposalStore) ByID(_ context.Context, _ uuid.UUID) (*models.Proposal, error) {
	return f.proposal, nil
}

func (f *fakeProposalStore) SaveExtraction(_ context.Context, _ uuid.UUID, extracted *models.ExtractedProposal) error {
	f.extraction = extracted
	return nil
}

func (f *fakeProposalStore) MarkParseFailed(_ context.Context, _ uuid.UUID, errMsg string) error {
	f.parseError = errMsg
	return nil
}

func (f *fakeProposalStore) SaveAttachmentText(_ context.Context, attachmentID uuid.UUID, text string) error {
	if f.attText == nil {
		f.attText = map[uuid.UUID]string{}
	}
	f.attText[attachmentID] = text
	return nil
}

type fakeParseLLM struct {
	out         *models.ExtractedProposal
	err         error
	attachments []models.Attachment
}

func (f *fakeParseLLM) ParseProposalContent(_ context.Context, _ models.EmailContent, attachments []models.Attachment) (*models.ExtractedProposal, error) {
	f.attachments = attachments
	return f.out, f.err
}

type fakePDF struct {
	text string
	err  error
}

func (f fakePDF) Extract(_ []byte) (string, error) { return f.text, f.err }

func TestParseProposalSavesExtraction(t *testing.T) {
	attID := uuid.New()
	store := &fakeProposalStore{proposal: &models.Proposal{
		ID: uuid.New(),
		Attachments: []models.Attachment{
			{ID: attID, Filename: "quote.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4")},
			{ID: uuid.New(), Filename: "logo.png", ContentType: "image/png", Content: []byte("png")},
		},
	}}
	price := 19500.0
	llm := &fakeParseLLM{out: &models.ExtractedProposal{TotalPrice: &price}}
	svc := &Service{Proposals: store, LLM: llm, PDF: fakePDF{text: "pricing table"}}

	require.NoError(t, svc.ParseProposal(context.Background(), store.proposal.ID))

	assert.Equal(t, "pricing table", store.attText[attID])
	assert.Len(t, store.attText, 1, "only PDFs go through text extraction")
	require.NotNil(t, store.extraction)
	assert.Equal(t, 19500.0, *store.extraction.TotalPrice)
	assert.Empty(t, store.parseError)

	// the extracted text rides along to the LLM
	require.NotEmpty(t, llm.attachments)
	assert.Equal(t, "pricing table", llm.attachments[0].ExtractedText)
}

func TestParseProposalRecordsFailure(t *testing.T) {
	store := &fakeProposalStore{proposal: &models.Proposal{ID: uuid.New()}}
	svc := &Service{
		Proposals: store,
		LLM:       &fakeParseLLM{err: errors.New("model unavailable")},
		PDF:       fakePDF{},
	}

	err := svc.ParseProposal(context.Background(), store.proposal.ID)
	require.Error(t, err)
	assert.Contains(t, store.parseError, "model unavailable")
	assert.Nil(t, store.extraction)
}

func TestParseProposalUnknownID(t *testing.T) {
	svc := &Service{Proposals: &fakeProposalStore{}, LLM: &fakeParseLLM{}, PDF: fakePDF{}}
	err := svc.ParseProposal(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestParseProposalPDFFailureIsBestEffort(t *testing.T) {
	store := &fakeProposalStore{proposal: &models.Proposal{
		ID:          uuid.New(),
		Attachments: []models.Attachment{{ID: uuid.New(), Filename: "quote.pdf", ContentType: "application/pdf", Content: []byte("broken")}},
	}}
	svc := &Service{
		Proposals: store,
		LLM:       &fakeParseLLM{out: &models.ExtractedProposal{}},
		PDF:       fakePDF{err: errors.New("bad xref")},
	}

	require.NoError(t, svc.ParseProposal(context.Background(), store.proposal.ID))
	assert.Empty(t, store.attText)
	assert.NotNil(t, store.extraction)
}
