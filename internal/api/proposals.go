package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/procurehq/rfpflow/internal/models"
)

func (s *Server) listProposals(c *gin.Context) {
	ctx := c.Request.Context()

	if rfpIDStr := c.Query("rfpId"); rfpIDStr != "" {
		rfpID, err := uuid.Parse(rfpIDStr)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid rfpId")
			return
		}
		proposals, err := s.Proposals.ByRFP(ctx, rfpID)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		respondOK(c, proposals)
		return
	}

	proposals, err := s.Proposals.All(ctx, c.Query("status"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, proposals)
}

func (s *Server) getProposal(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	proposal, err := s.Proposals.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if proposal == nil {
		respondError(c, http.StatusNotFound, "proposal not found")
		return
	}
	respondOK(c, proposal)
}

// parseProposal re-runs AI extraction, for proposals whose automatic parse
// failed during ingestion.
func (s *Server) parseProposal(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.Parser.ParseProposal(c.Request.Context(), id); err != nil {
		respondError(c, http.StatusBadGateway, err.Error())
		return
	}
	proposal, err := s.Proposals.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, proposal)
}

type proposalStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) updateProposalStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req proposalStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Status {
	case models.ProposalStatusPending, models.ProposalStatusParsed,
		models.ProposalStatusReviewed, models.ProposalStatusRejected:
	default:
		respondError(c, http.StatusBadRequest, "invalid status: "+req.Status)
		return
	}
	if err := s.Proposals.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, gin.H{"id": id, "status": req.Status})
}
