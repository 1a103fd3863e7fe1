package http

import (
	"time"

	"presale_webapp/internal/config"
	"presale_webapp/internal/http/handlers"
	"presale_webapp/internal/http/middleware"
	"presale_webapp/internal/service"
	"presale_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes собирает все маршруты приложения
func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, prices *service.PriceWatcher, purchases *service.PurchaseService, hub *ws.Hub) {
	h := handlers.New(db, cfg, prices, purchases, hub)

	r.Use(middleware.Metrics())

	api := r.Group("/api")
	{
		// публичные: лендинг, формы, страница статуса
		api.POST("/signup", middleware.RateLimit(10, time.Minute), h.Signup)
		api.POST("/auth/login", middleware.RateLimit(20, time.Minute), h.Login)
		api.GET("/tiers", h.Tiers)
		api.GET("/assets", h.Assets)
		api.GET("/prices", h.Prices)
		api.POST("/convert", h.Convert)
		api.GET("/orders/:order_id", h.OrderStatus)

		// под сессией
		authed := api.Group("", middleware.Auth())
		{
			authed.GET("/me", h.Me)
			authed.GET("/purchases", h.MyPurchases)
			authed.POST("/purchases", middleware.RateLimit(30, time.Minute), h.CreatePurchase)
		}

		// админка
		admin := api.Group("/admin", middleware.Auth(), middleware.AdminOnly())
		{
			admin.GET("/stats", h.AdminStats)
			admin.GET("/users", h.AdminUsers)
			admin.PATCH("/users/:id/balance", h.SetBalance)
			admin.GET("/purchases", h.AdminPurchases)
			admin.POST("/purchases/:id/resolve", h.ResolvePurchase)
			admin.DELETE("/purchases/:id", h.DeletePurchase)
			admin.DELETE("/purchases", h.DeletePurchases)
			admin.GET("/audit", h.AdminAudit)
		}
	}

	r.GET("/ws/prices", h.PricesWS)
}
