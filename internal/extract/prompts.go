package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/procurehq/rfpflow/internal/models"
)

func rfpExtractionPrompt(naturalLanguage string) string {
	return fmt.Sprintf(`You are an expert procurement assistant. Extract structured information from the following RFP description.

RFP Description:
%s

Respond with a JSON object containing:
- title: A concise title for the RFP
- description: The full description
- items: Array of items with name, quantity, specifications (if mentioned)
- budget: Total budget amount (number)
- timeline: Delivery timeline (e.g., "30 days", "2 weeks")
- paymentTerms: Payment terms (e.g., "Net 30", "50%% upfront")
- warranty: Warranty requirements (e.g., "1 year", "2 years")

If information is not available, use appropriate defaults (empty strings, 0, empty arrays).`, naturalLanguage)
}

func proposalParsePrompt(fullText string) string {
	return fmt.Sprintf(`You are an expert procurement assistant. Extract structured proposal information from the following vendor response email.

Email Content:
%s

Respond with a JSON object containing:
- totalPrice: Total price quoted (number). IMPORTANT: Only include if a specific price/quote is mentioned. Use null if no price is quoted.
- items: Array of line items with name, quantity, unitPrice, totalPrice, specifications. Use null for prices if not specified.
- paymentTerms: Payment terms offered (e.g., "Net 30", "50%% upfront")
- deliveryTerms: Delivery timeline/terms (e.g., "30 days", "2 weeks")
- warranty: Warranty information (e.g., "1 year", "2 years")
- compliance: Object with boolean flags meetsBudget, meetsTimeline, meetsSpecs
- notes: Any additional notes, conditions, or observations about this response

IMPORTANT:
- If no price/quote is provided in the email, set totalPrice to null (not 0).
- Only set totalPrice to a number if a specific monetary amount is clearly stated.
- If this is a requirements document or inquiry (not a vendor quote), note this in the notes field.`, fullText)
}

func comparisonPrompt(rfp *models.RFP, proposals []ProposalSummary) string {
	var items []string
	for _, item := range rfp.Items {
		items = append(items, fmt.Sprintf("%dx %s (%s)", item.Quantity, item.Name, item.Specifications))
	}

	rfpSummary := fmt.Sprintf(`Title: %s
Budget: $%.2f
Timeline: %s
Payment Terms: %s
Warranty Required: %s
Items: %s`, rfp.Title, rfp.Budget, rfp.Timeline, rfp.PaymentTerms, rfp.Warranty, strings.Join(items, ", "))

	var sb strings.Builder
	for i, p := range proposals {
		ext := p.Extracted
		if ext == nil {
			ext = &models.ExtractedProposal{}
		}
		price := 0.0
		if ext.TotalPrice != nil {
			price = *ext.TotalPrice
		}
		compliance, _ := json.Marshal(ext.Compliance)
		fmt.Fprintf(&sb, `
Proposal %d - %s:
- Total Price: $%.2f
- Payment Terms: %s
- Delivery Terms: %s
- Warranty: %s
- Compliance: %s
- Notes: %s
`, i+1, p.VendorName, price, orNA(ext.PaymentTerms), orNA(ext.DeliveryTerms), orNA(ext.Warranty), compliance, orNA(ext.Notes))
	}

	return fmt.Sprintf(`You are an expert procurement analyst. Compare the following proposals against the RFP requirements and respond with a JSON object containing:
- summary: a comprehensive summary comparing all proposals
- recommendation: object with vendorIndex (0-based index into the proposal list), reasoning, confidence (0-100)
- scores: array with one entry per proposal: proposalIndex (0-based), priceScore, complianceScore, termsScore, completenessScore, overallScore (each 0-100)

Score on: price competitiveness (lower is better, but consider value), compliance with requirements, payment terms favorability, and completeness of response.

RFP Requirements:
%s

Proposals:
%s`, rfpSummary, sb.String())
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
