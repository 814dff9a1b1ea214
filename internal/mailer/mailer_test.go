package mailer

import (
	"net/smtp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurehq/rfpflow/internal/config"
	"github.com/procurehq/rfpflow/internal/models"
)

func testRFP() *models.RFP {
	return &models.RFP{
		ID:          uuid.New(),
		Token:       "RFP-1700000000000-abc123def",
		Title:       "Office Laptops",
		Description: "Laptops for the new engineering team",
		Items: []models.RFPItem{
			{Name: "Laptop", Quantity: 10, Specifications: "16GB RAM, 512GB SSD"},
			{Name: "Docking station", Quantity: 10},
		},
		Budget:       25000,
		Timeline:     "4 weeks",
		PaymentTerms: "Net 30",
		Warranty:     "3 years on-site",
	}
}

func TestRenderText(t *testing.T) {
	body := renderText(testRFP())

	assert.Contains(t, body, "RFP ID: RFP-1700000000000-abc123def")
	assert.Contains(t, body, "Title: Office Laptops")
	assert.Contains(t, body, "1. 10x Laptop - 16GB RAM, 512GB SSD")
	assert.Contains(t, body, "2. 10x Docking station")
	assert.Contains(t, body, "Budget: $25000.00")
	assert.Contains(t, body, "Payment Terms: Net 30")
}

func TestRenderHTML(t *testing.T) {
	body := renderHTML(testRFP())

	assert.Contains(t, body, "<strong>RFP ID:</strong> RFP-1700000000000-abc123def")
	assert.Contains(t, body, "<li>10x Laptop - 16GB RAM, 512GB SSD</li>")
	assert.Contains(t, body, "<strong>Budget:</strong> $25000.00")
}

func TestSendRFPPerVendorResults(t *testing.T) {
	var sent []string
	m := New(config.SMTP{Host: "smtp.example.com", Port: 587, From: "rfp@example.com"})
	m.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, to[0])
		if to[0] == "bad@vendor.com" {
			return assert.AnError
		}
		raw := string(msg)
		assert.Contains(t, raw, "Subject: RFP: Office Laptops - RFP-1700000000000-abc123def")
		assert.Contains(t, raw, "multipart/alternative")
		return nil
	}

	vendors := []models.Vendor{
		{ID: uuid.New(), Email: "good@vendor.com"},
		{ID: uuid.New(), Email: "bad@vendor.com"},
	}
	results := m.SendRFP(testRFP(), vendors)

	require.Len(t, results, 2)
	assert.Equal(t, []string{"good@vendor.com", "bad@vendor.com"}, sent)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)
}

func TestSendRFPSkipsAuthWithoutUsername(t *testing.T) {
	m := New(config.SMTP{Host: "localhost", Port: 25, From: "rfp@example.com"})
	m.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		assert.Nil(t, auth)
		assert.Equal(t, "localhost:25", addr)
		return nil
	}
	results := m.SendRFP(testRFP(), []models.Vendor{{Email: "v@vendor.com"}})
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
}
