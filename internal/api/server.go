// Package api exposes the HTTP interface: RFP and vendor management,
// proposal review, comparison generation, and manual email-check triggers.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/procurehq/rfpflow/internal/extract"
	"github.com/procurehq/rfpflow/internal/mailer"
	"github.com/procurehq/rfpflow/internal/models"
)

type RFPStore interface {
	Create(ctx context.Context, r *models.RFP) error
	All(ctx context.Context, status string) ([]models.RFP, error)
	ByID(ctx context.Context, id uuid.UUID) (*models.RFP, error)
	Update(ctx context.Context, r *models.RFP) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type VendorStore interface {
	All(ctx context.Context) ([]models.Vendor, error)
	ByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	Create(ctx context.Context, v *models.Vendor) error
	Update(ctx context.Context, v *models.Vendor) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProposalStore interface {
	All(ctx context.Context, status string) ([]models.Proposal, error)
	ByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	ByRFP(ctx context.Context, rfpID uuid.UUID) ([]models.Proposal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// Parser re-runs AI extraction for a stored proposal.
type Parser interface {
	ParseProposal(ctx context.Context, proposalID uuid.UUID) error
}

// Comparer generates and fetches vendor comparisons.
type Comparer interface {
	Generate(ctx context.Context, rfpID uuid.UUID) (*models.Comparison, error)
	Latest(ctx context.Context, rfpID uuid.UUID) (*models.Comparison, error)
}

// EmailChecker runs the inbound email check under the single-flight guard.
type EmailChecker interface {
	Run(ctx context.Context, trigger string) (*models.CheckResult, error)
}

type JobHistory interface {
	Recent(ctx context.Context, jobName string, limit int) ([]models.JobRun, error)
}

// RFPExtractor builds structured RFP fields from free-form text.
type RFPExtractor interface {
	ExtractRFP(ctx context.Context, naturalLanguage string) (*extract.RFPExtraction, error)
}

// Sender delivers an RFP to vendors by email.
type Sender interface {
	SendRFP(rfp *models.RFP, vendors []models.Vendor) []mailer.SendResult
}

type Server struct {
	RFPs      RFPStore
	Vendors   VendorStore
	Proposals ProposalStore
	Parser    Parser
	Comparer  Comparer
	Checker   EmailChecker
	History   JobHistory
	Extractor RFPExtractor
	Mailer    Sender
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		rfps := api.Group("/rfps")
		{
			rfps.GET("", s.listRFPs)
			rfps.POST("", s.createRFP)
			rfps.GET("/:id", s.getRFP)
			rfps.PUT("/:id", s.updateRFP)
			rfps.DELETE("/:id", s.deleteRFP)
			rfps.POST("/:id/send", s.sendRFP)
		}

		vendors := api.Group("/vendors")
		{
			vendors.GET("", s.listVendors)
			vendors.POST("", s.createVendor)
			vendors.GET("/:id", s.getVendor)
			vendors.PUT("/:id", s.updateVendor)
			vendors.DELETE("/:id", s.deleteVendor)
		}

		proposals := api.Group("/proposals")
		{
			proposals.GET("", s.listProposals)
			proposals.GET("/:id", s.getProposal)
			proposals.POST("/:id/parse", s.parseProposal)
			proposals.PATCH("/:id/status", s.updateProposalStatus)
		}

		comparisons := api.Group("/comparisons")
		{
			comparisons.GET("/:rfpId", s.getComparison)
			comparisons.POST("/:rfpId/generate", s.generateComparison)
		}

		email := api.Group("/email")
		{
			email.POST("/check", s.checkEmail)
			email.GET("/history", s.emailHistory)
		}
	}

	return r
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
