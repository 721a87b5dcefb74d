package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	credentialdomain "github.com/viralzap/viralzap/internal/credential/domain"
)

func (s *Server) ListCredentials(c *gin.Context) {
	creds, err := s.credentialSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": creds})
}

func (s *Server) SaveCredential(c *gin.Context) {
	var req credentialdomain.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.credentialSvc.Save(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ToggleCredential(c *gin.Context) {
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.credentialSvc.Toggle(c.Request.Context(), strings.TrimSpace(c.Param("provider")), req.Active)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveCredential(c *gin.Context) {
	if err := s.credentialSvc.Remove(c.Request.Context(), strings.TrimSpace(c.Param("provider"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// TestConnections runs a balance call against every active panel and reports
// which ones answered.
func (s *Server) TestConnections(c *gin.Context) {
	results := s.gateway.TestAllConnections(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"data": results})
}

func (s *Server) ProviderBalances(c *gin.Context) {
	balances := s.gateway.Balances(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"data": balances})
}
