// Package extract delegates the system's intelligence to the LLM service:
// three round trips cover RFP intake, proposal parsing, and comparison.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/procurehq/rfpflow/internal/config"
	"github.com/procurehq/rfpflow/internal/mailbox"
	"github.com/procurehq/rfpflow/internal/models"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.0-flash"
)

// Client calls the Gemini generateContent endpoint and decodes the JSON
// payload the prompts instruct the model to produce.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

func NewClient(cfg config.Gemini) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 120 * time.Second},
	}
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate sends one prompt and returns the model's raw text response.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
		},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call LLM service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("LLM service returned status %d: %s", resp.StatusCode, string(body))
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decode LLM response: %w", err)
	}

	var text string
	for _, cand := range gr.Candidates {
		for _, p := range cand.Content.Parts {
			text += p.Text
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty response from LLM service")
	}
	return text, nil
}

// stripCodeFences removes the markdown fencing some responses arrive in
// despite the JSON mime type.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func (c *Client) generateJSON(ctx context.Context, prompt string, out interface{}) error {
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(stripCodeFences(text)), out); err != nil {
		return fmt.Errorf("decode extraction payload: %w", err)
	}
	return nil
}

// RFPExtraction is the structured form of a free-text RFP description.
type RFPExtraction struct {
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Items        []models.RFPItem `json:"items"`
	Budget       float64          `json:"budget"`
	Timeline     string           `json:"timeline"`
	PaymentTerms string           `json:"paymentTerms"`
	Warranty     string           `json:"warranty"`
}

// ExtractRFP turns a natural-language procurement description into
// structured RFP fields.
func (c *Client) ExtractRFP(ctx context.Context, naturalLanguage string) (*RFPExtraction, error) {
	var out RFPExtraction
	if err := c.generateJSON(ctx, rfpExtractionPrompt(naturalLanguage), &out); err != nil {
		return nil, fmt.Errorf("extract RFP data: %w", err)
	}
	return &out, nil
}

// ParseProposalContent extracts pricing and terms from a vendor reply.
// Attachment text that has already been extracted rides along with the
// email body.
func (c *Client) ParseProposalContent(ctx context.Context, email models.EmailContent, attachments []models.Attachment) (*models.ExtractedProposal, error) {
	var sb strings.Builder
	sb.WriteString(email.Body)
	if email.HTML != "" {
		sb.WriteString("\n\n")
		sb.WriteString(mailbox.StripHTML(email.HTML))
	}
	for _, att := range attachments {
		if att.ExtractedText != "" {
			sb.WriteString("\n\n")
			sb.WriteString(att.ExtractedText)
		}
	}

	var out models.ExtractedProposal
	if err := c.generateJSON(ctx, proposalParsePrompt(sb.String()), &out); err != nil {
		return nil, fmt.Errorf("parse proposal: %w", err)
	}
	return &out, nil
}

// ComparisonScores holds per-proposal scores keyed by position in the
// proposal list sent to the model.
type ComparisonScore struct {
	ProposalIndex     int `json:"proposalIndex"`
	PriceScore        int `json:"priceScore"`
	ComplianceScore   int `json:"complianceScore"`
	TermsScore        int `json:"termsScore"`
	CompletenessScore int `json:"completenessScore"`
	OverallScore      int `json:"overallScore"`
}

// ComparisonResult is the model's ranked analysis of all proposals.
type ComparisonResult struct {
	Summary        string `json:"summary"`
	Recommendation struct {
		VendorIndex int    `json:"vendorIndex"`
		Reasoning   string `json:"reasoning"`
		Confidence  int    `json:"confidence"`
	} `json:"recommendation"`
	Scores []ComparisonScore `json:"scores"`
}

// ProposalSummary pairs a proposal with its vendor's display name for the
// comparison prompt.
type ProposalSummary struct {
	VendorName string
	Extracted  *models.ExtractedProposal
}

// CompareProposals ranks all proposals for an RFP.
func (c *Client) CompareProposals(ctx context.Context, rfp *models.RFP, proposals []ProposalSummary) (*ComparisonResult, error) {
	var out ComparisonResult
	if err := c.generateJSON(ctx, comparisonPrompt(rfp, proposals), &out); err != nil {
		return nil, fmt.Errorf("generate comparison: %w", err)
	}
	return &out, nil
}
