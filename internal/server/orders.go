package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/viralzap/viralzap/internal/order/domain"
)

func (s *Server) PlaceOrder(c *gin.Context) {
	var req orderdomain.PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.UserID == 0 {
		AbortWithError(c, newValidationError("user_id", "invalid_user_id", "invalid user id"))
		return
	}

	resp, err := s.orderSvc.Place(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.IncOrderPlaced(resp.Provider)
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetOrder(c *gin.Context) {
	resp, err := s.orderSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOrders(c *gin.Context) {
	var userID int64
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			AbortWithError(c, newValidationError("user_id", "invalid_user_id", "invalid user id"))
			return
		}
		userID = parsed
	}

	resp, err := s.orderSvc.List(c.Request.Context(), orderdomain.ListRequest{
		UserID:   userID,
		Status:   strings.TrimSpace(c.Query("status")),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 25),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// ReconcileOrders runs one reconciliation batch outside the scheduler, for
// admins who do not want to wait for the next tick.
func (s *Server) ReconcileOrders(c *gin.Context) {
	updated, err := s.orderSvc.SyncAllStatuses(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.metrics.AddOrdersReconciled(updated)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"updated": updated}})
}

// SyncOrderStatus forces one reconciliation round-trip for a single order.
func (s *Server) SyncOrderStatus(c *gin.Context) {
	resp, err := s.orderSvc.SyncStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RefillOrder(c *gin.Context) {
	resp, err := s.orderSvc.RequestRefill(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelOrder(c *gin.Context) {
	resp, err := s.orderSvc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
