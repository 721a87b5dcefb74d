package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListSettings(c *gin.Context) {
	settings, err := s.settingsRepo.All(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}

func (s *Server) PutSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		AbortWithError(c, newValidationError("key", "invalid_key", "invalid key"))
		return
	}

	var req struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.settingsRepo.Set(c.Request.Context(), key, req.Value); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"key": key, "value": req.Value}})
}

func (s *Server) GetExchangeRate(c *gin.Context) {
	current, err := s.exchangeRateSvc.Current(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"rate":   s.exchangeRateSvc.Rate(c.Request.Context()),
		"stored": current,
	}})
}

func (s *Server) OverrideExchangeRate(c *gin.Context) {
	var req struct {
		Rate float64 `json:"rate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.exchangeRateSvc.Override(c.Request.Context(), req.Rate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
