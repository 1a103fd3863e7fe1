package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"presale_webapp/internal/domain"
	"presale_webapp/internal/http/middleware"
	"presale_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// Сводка для админского дашборда
func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.Admin.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Список пользователей с балансами и уровнями; ?email= ищет одного
func (h *Handler) AdminUsers(c *gin.Context) {
	if email := c.Query("email"); email != "" {
		user, err := h.Admin.GetUserByEmail(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": []service.UserListItem{*user}, "total": 1})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	users, total, err := h.Admin.ListUsers(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}

// Покупки для админки, фильтр по статусу
func (h *Handler) AdminPurchases(c *gin.Context) {
	status := domain.PurchaseStatus(c.Query("status"))
	switch status {
	case "", domain.PurchaseStatusPending, domain.PurchaseStatusApproved, domain.PurchaseStatusRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	purchases, err := h.Purchases.List(c.Request.Context(), status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

// Решение по покупке: approve начисляет токены, reject просто закрывает.
// Повторное решение по той же записи вернет 409
func (h *Handler) ResolvePurchase(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Decision string `json:"decision" binding:"required"`
		Notes    string `json:"notes"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	purchase, err := h.Purchases.Resolve(c.Request.Context(), id, service.Decision(req.Decision), req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownDecision):
			c.JSON(http.StatusBadRequest, gin.H{"error": "decision must be approve or reject"})
		case errors.Is(err, service.ErrPurchaseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "purchase not found"})
		case errors.Is(err, service.ErrAlreadyResolved):
			c.JSON(http.StatusConflict, gin.H{"error": "already processed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"purchase": purchase})
}

// Прямая правка баланса пользователя (абсолютное значение)
func (h *Handler) SetBalance(c *gin.Context) {
	adminID, _ := middleware.GetUserID(c)

	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		NewBalance string `json:"new_balance" binding:"required"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	balance, err := decimal.NewFromString(req.NewBalance)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid new_balance"})
		return
	}

	updated, err := h.Admin.SetUserBalance(c.Request.Context(), adminID, userID, balance)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNegativeBalance):
			c.JSON(http.StatusBadRequest, gin.H{"error": "balance must be non-negative"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": updated.String()})
}

// Удаление одной записи покупки. Начисленный баланс не откатывается
func (h *Handler) DeletePurchase(c *gin.Context) {
	adminID, _ := middleware.GetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.Purchases.Delete(c.Request.Context(), adminID, id); err != nil {
		if errors.Is(err, service.ErrPurchaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "purchase not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Массовое удаление истории: вся таблица или один пользователь
func (h *Handler) DeletePurchases(c *gin.Context) {
	adminID, _ := middleware.GetUserID(c)

	var userID int64
	if raw := c.Query("user_id"); raw != "" {
		var err error
		userID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
	}

	deleted, err := h.Purchases.DeleteAll(c.Request.Context(), adminID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// Последние записи аудита; ?user_id= сужает до одного пользователя
func (h *Handler) AdminAudit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var (
		logs []*domain.AuditLog
		err  error
	)
	if raw := c.Query("user_id"); raw != "" {
		userID, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		logs, err = h.Admin.AuditForUser(c.Request.Context(), userID, limit)
	} else {
		logs, err = h.Admin.RecentAudit(c.Request.Context(), limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"audit": logs})
}
