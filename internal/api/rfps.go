package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/procurehq/rfpflow/internal/models"
)

type createRFPRequest struct {
	// Free-form description. When set, the AI extractor fills in the
	// structured fields and the rest of the body is ignored.
	NaturalLanguage string `json:"naturalLanguage"`

	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Items        []models.RFPItem `json:"items"`
	Budget       float64          `json:"budget"`
	Timeline     string           `json:"timeline"`
	PaymentTerms string           `json:"paymentTerms"`
	Warranty     string           `json:"warranty"`
}

func (s *Server) listRFPs(c *gin.Context) {
	rfps, err := s.RFPs.All(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, rfps)
}

func (s *Server) createRFP(c *gin.Context) {
	var req createRFPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	rfp := &models.RFP{
		Title:        req.Title,
		Description:  req.Description,
		Items:        req.Items,
		Budget:       req.Budget,
		Timeline:     req.Timeline,
		PaymentTerms: req.PaymentTerms,
		Warranty:     req.Warranty,
	}

	if nl := strings.TrimSpace(req.NaturalLanguage); nl != "" {
		extracted, err := s.Extractor.ExtractRFP(c.Request.Context(), nl)
		if err != nil {
			log.WithError(err).Error("failed to extract RFP from description")
			respondError(c, http.StatusBadGateway, "failed to extract RFP data: "+err.Error())
			return
		}
		rfp.Title = extracted.Title
		rfp.Description = extracted.Description
		rfp.Items = extracted.Items
		rfp.Budget = extracted.Budget
		rfp.Timeline = extracted.Timeline
		rfp.PaymentTerms = extracted.PaymentTerms
		rfp.Warranty = extracted.Warranty
	}

	if rfp.Title == "" {
		respondError(c, http.StatusBadRequest, "title is required")
		return
	}

	if err := s.RFPs.Create(c.Request.Context(), rfp); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondCreated(c, rfp)
}

func (s *Server) getRFP(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rfp, err := s.RFPs.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if rfp == nil {
		respondError(c, http.StatusNotFound, "RFP not found")
		return
	}
	respondOK(c, rfp)
}

func (s *Server) updateRFP(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	existing, err := s.RFPs.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		respondError(c, http.StatusNotFound, "RFP not found")
		return
	}

	var req createRFPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	existing.Title = req.Title
	existing.Description = req.Description
	existing.Items = req.Items
	existing.Budget = req.Budget
	existing.Timeline = req.Timeline
	existing.PaymentTerms = req.PaymentTerms
	existing.Warranty = req.Warranty

	if err := s.RFPs.Update(c.Request.Context(), existing); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, existing)
}

func (s *Server) deleteRFP(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.RFPs.Delete(c.Request.Context(), id); err != nil {
		respondError(c, http.StatusNotFound, "RFP not found")
		return
	}
	respondOK(c, gin.H{"deleted": id})
}

type sendRFPRequest struct {
	// Restricts sending to these vendors. Empty means every vendor on file.
	VendorIDs []uuid.UUID `json:"vendorIds"`
}

func (s *Server) sendRFP(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	rfp, err := s.RFPs.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if rfp == nil {
		respondError(c, http.StatusNotFound, "RFP not found")
		return
	}

	var req sendRFPRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	var vendors []models.Vendor
	if len(req.VendorIDs) > 0 {
		for _, vendorID := range req.VendorIDs {
			vendor, err := s.Vendors.ByID(c.Request.Context(), vendorID)
			if err != nil {
				respondError(c, http.StatusInternalServerError, err.Error())
				return
			}
			if vendor == nil {
				respondError(c, http.StatusNotFound, "vendor not found: "+vendorID.String())
				return
			}
			vendors = append(vendors, *vendor)
		}
	} else {
		vendors, err = s.Vendors.All(c.Request.Context())
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}
	if len(vendors) == 0 {
		respondError(c, http.StatusBadRequest, "no vendors to send to")
		return
	}

	results := s.Mailer.SendRFP(rfp, vendors)

	sent := 0
	for _, r := range results {
		if r.Success {
			sent++
		}
	}
	if sent > 0 && rfp.Status == models.RFPStatusDraft {
		if err := s.RFPs.UpdateStatus(c.Request.Context(), rfp.ID, models.RFPStatusSent); err != nil {
			log.WithError(err).Error("failed to mark RFP as sent")
		} else {
			rfp.Status = models.RFPStatusSent
		}
	}

	respondOK(c, gin.H{"rfp": rfp, "results": results, "sent": sent})
}
