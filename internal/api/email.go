package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/procurehq/rfpflow/internal/models"
)

// checkEmail triggers an immediate mailbox check. When a scheduled run is
// already in flight this returns 200 with inProgress set rather than an
// error, so callers can poll without special-casing contention.
func (s *Server) checkEmail(c *gin.Context) {
	result, err := s.Checker.Run(c.Request.Context(), models.TriggerManual)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, result)
}

func (s *Server) emailHistory(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	runs, err := s.History.Recent(c.Request.Context(), models.EmailCheckJobName, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, runs)
}
