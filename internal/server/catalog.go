package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/viralzap/viralzap/internal/catalog/domain"
)

// SyncCatalog runs a full provider import inline and returns the report.
// The scheduler runs the same sync on its own cadence; this endpoint exists
// so an admin can force one after editing credentials or pricing.
func (s *Server) SyncCatalog(c *gin.Context) {
	report, err := s.catalogSvc.SyncAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) ListServices(c *gin.Context) {
	req := catalogListRequest(c)

	resp, err := s.catalogSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ListStorefrontServices is the public view: only active entries.
func (s *Server) ListStorefrontServices(c *gin.Context) {
	req := catalogListRequest(c)
	req.Status = catalogdomain.StatusActive

	resp, err := s.catalogSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetService(c *gin.Context) {
	resp, err := s.catalogSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateService(c *gin.Context) {
	var req catalogdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	resp, err := s.catalogSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) BulkMarkup(c *gin.Context) {
	var req catalogdomain.BulkMarkupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.catalogSvc.BulkMarkup(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"updated": updated}})
}

func catalogListRequest(c *gin.Context) catalogdomain.ListRequest {
	return catalogdomain.ListRequest{
		Provider: strings.TrimSpace(c.Query("provider")),
		Platform: strings.TrimSpace(c.Query("platform")),
		Kind:     strings.TrimSpace(c.Query("kind")),
		Status:   strings.TrimSpace(c.Query("status")),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 25),
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return parsed
}
