package handlers

import (
	"errors"
	"net/http"

	"presale_webapp/internal/domain"
	"presale_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// Заявка с лендинга: собираем контакты до старта продаж
func (h *Handler) Signup(c *gin.Context) {
	var req struct {
		Email  string `json:"email" binding:"required,email"`
		Name   string `json:"name"`
		Source string `json:"source"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	if req.Source == "" {
		req.Source = "landing"
	}

	created, err := h.SignupRepo.Create(c.Request.Context(), &domain.Signup{
		Email:  req.Email,
		Name:   req.Name,
		Source: req.Source,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "already_subscribed": !created})
}

// Вход по email. Аккаунт создается при первом входе, паролей нет -
// сессия целиком живет в JWT
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	token, user, err := h.Auth.Login(c.Request.Context(), req.Email, c.ClientIP())
	if err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":      user.ID,
			"email":   user.Email,
			"balance": user.Balance.String(),
		},
	})
}
