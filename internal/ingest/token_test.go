package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRFPToken(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		want    string
	}{
		{"in subject", "Re: RFP: Laptops - RFP-1700000000000-abc123def", "", "RFP-1700000000000-abc123def"},
		{"in body", "Re: your request", "referencing RFP-1700000000000-abc123def as requested", "RFP-1700000000000-abc123def"},
		{"subject wins over body", "RFP-111-aaa", "RFP-222-bbb", "RFP-111-aaa"},
		{"no token", "quotation", "please find our prices attached", ""},
		{"token mid-sentence", "", "see (RFP-1700000000000-xyz).", "RFP-1700000000000-xyz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRFPToken(tt.subject, tt.body))
		})
	}
}
