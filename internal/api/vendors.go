package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/procurehq/rfpflow/internal/models"
)

type vendorRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Address  string  `json:"address"`
	Website  string  `json:"website"`
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
	Notes    string  `json:"notes"`
}

func (s *Server) listVendors(c *gin.Context) {
	vendors, err := s.Vendors.All(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, vendors)
}

func (s *Server) createVendor(c *gin.Context) {
	var req vendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		respondError(c, http.StatusBadRequest, "name and email are required")
		return
	}

	vendor := &models.Vendor{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Website:  req.Website,
		Category: req.Category,
		Rating:   req.Rating,
		Notes:    req.Notes,
	}
	if err := s.Vendors.Create(c.Request.Context(), vendor); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondCreated(c, vendor)
}

func (s *Server) getVendor(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	vendor, err := s.Vendors.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if vendor == nil {
		respondError(c, http.StatusNotFound, "vendor not found")
		return
	}
	respondOK(c, vendor)
}

func (s *Server) updateVendor(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	existing, err := s.Vendors.ByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if existing == nil {
		respondError(c, http.StatusNotFound, "vendor not found")
		return
	}

	var req vendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	existing.Name = req.Name
	existing.Email = req.Email
	existing.Phone = req.Phone
	existing.Address = req.Address
	existing.Website = req.Website
	existing.Category = req.Category
	existing.Rating = req.Rating
	existing.Notes = req.Notes

	if err := s.Vendors.Update(c.Request.Context(), existing); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, existing)
}

func (s *Server) deleteVendor(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.Vendors.Delete(c.Request.Context(), id); err != nil {
		respondError(c, http.StatusNotFound, "vendor not found")
		return
	}
	respondOK(c, gin.H{"deleted": id})
}
