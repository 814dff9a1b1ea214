package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/procurehq/rfpflow/internal/compare"
)

func (s *Server) getComparison(c *gin.Context) {
	rfpID, ok := parseID(c, "rfpId")
	if !ok {
		return
	}
	comparison, err := s.Comparer.Latest(c.Request.Context(), rfpID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if comparison == nil {
		respondError(c, http.StatusNotFound, "no comparison for this RFP")
		return
	}
	respondOK(c, comparison)
}

func (s *Server) generateComparison(c *gin.Context) {
	rfpID, ok := parseID(c, "rfpId")
	if !ok {
		return
	}
	comparison, err := s.Comparer.Generate(c.Request.Context(), rfpID)
	if err != nil {
		switch {
		case errors.Is(err, compare.ErrRFPNotFound):
			respondError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, compare.ErrNoProposals):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, err.Error())
		}
		return
	}
	respondOK(c, comparison)
}
