package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetWalletBalance(c *gin.Context) {
	userID, err := walletUserID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	balance, err := s.walletSvc.Balance(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"user_id": userID, "balance": balance}})
}

func (s *Server) DepositWallet(c *gin.Context) {
	userID, err := walletUserID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
		Note   string  `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.walletSvc.Deposit(c.Request.Context(), userID, req.Amount, req.Note); err != nil {
		AbortWithError(c, err)
		return
	}

	balance, err := s.walletSvc.Balance(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"user_id": userID, "balance": balance}})
}

func (s *Server) ListWalletTransactions(c *gin.Context) {
	userID, err := walletUserID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	txns, err := s.walletSvc.Transactions(c.Request.Context(), userID, queryInt(c, "limit", 50))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": txns})
}

func walletUserID(c *gin.Context) (int64, error) {
	raw := strings.TrimSpace(c.Param("userId"))
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, newValidationError("user_id", "invalid_user_id", "invalid user id")
	}
	return userID, nil
}
