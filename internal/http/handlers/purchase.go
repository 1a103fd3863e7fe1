package handlers

import (
	"errors"
	"net/http"
	"strings"

	"presale_webapp/internal/domain"
	"presale_webapp/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Профиль текущего пользователя: баланс, уровень, история покупок
func (h *Handler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.UserRepo.GetByID(ctx, userID)
	if err != nil || user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          user.ID,
		"email":       user.Email,
		"balance":     user.Balance.String(),
		"tier_status": user.TierStatus(),
		"created_at":  user.CreatedAt,
	})
}

// Создание заявки на покупку. Пользователь заявляет, что переведет
// crypto_amount; бонус и итог сервер считает сам и замораживает.
// Баланс не меняется до одобрения админом
func (h *Handler) CreatePurchase(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var req struct {
		CryptoSymbol string `json:"crypto_symbol" binding:"required"`
		Network      string `json:"network"`
		CryptoAmount string `json:"crypto_amount" binding:"required"`
		TokenAmount  string `json:"token_amount" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	cryptoAmount, err := decimal.NewFromString(req.CryptoAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid crypto_amount"})
		return
	}
	tokenAmount, err := decimal.NewFromString(req.TokenAmount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid token_amount"})
		return
	}

	symbol := domain.CryptoSymbol(strings.ToUpper(req.CryptoSymbol))
	network := strings.ToUpper(strings.TrimSpace(req.Network))

	purchase, err := h.Purchases.Create(c.Request.Context(), userID, symbol, network, cryptoAmount, tokenAmount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAmountOutOfRange),
			errors.Is(err, domain.ErrUnknownSymbol),
			errors.Is(err, domain.ErrNetworkRequired),
			errors.Is(err, domain.ErrUnknownNetwork),
			errors.Is(err, domain.ErrNonPositive):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		}
		return
	}

	// адрес для перевода выбранного актива
	addrKey := string(purchase.CryptoSymbol)
	if purchase.Network != "" {
		addrKey += ":" + purchase.Network
	}

	c.JSON(http.StatusOK, gin.H{
		"purchase":        purchase,
		"deposit_address": h.Cfg.DepositAddresses[addrKey],
	})
}

// История покупок текущего пользователя
func (h *Handler) MyPurchases(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	purchases, err := h.Purchases.History(c.Request.Context(), userID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}
