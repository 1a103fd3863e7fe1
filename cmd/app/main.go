package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"presale_webapp/internal/bot"
	"presale_webapp/internal/config"
	"presale_webapp/internal/db"
	httpServer "presale_webapp/internal/http"
	"presale_webapp/internal/http/middleware"
	"presale_webapp/internal/logger"
	"presale_webapp/internal/pricefeed"
	"presale_webapp/internal/service"
	"presale_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version устанавливается при сборке
var Version = "dev"

func main() {
	cfg := config.Load()

	// Инициализация структурированного логгера
	jsonLogs := os.Getenv("LOG_FORMAT") == "json"
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init(logLevel, jsonLogs)
	log := logger.Get()

	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	r := gin.Default()

	// CORS для прода и связи фронта с бэкендом(разные домены)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisURL)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Наблюдатель цен: redis клиент рейт-лимитера переиспользуется под кэш котировок
	feed := pricefeed.NewClient(cfg.PriceFeedURL, cfg.PriceFeedTimeout)
	priceWatcher := service.NewPriceWatcher(feed, middleware.Client(), cfg.PriceRefreshInterval)

	hub := ws.NewHub()
	priceWatcher.SetBroadcastCallback(hub.BroadcastQuotes)

	purchases := service.NewPurchaseService(dbPool)

	httpServer.RegisterRoutes(r, dbPool, cfg, priceWatcher, purchases, hub)

	// Запуск админ бота ПЕРЕД HTTP сервером чтобы callback был установлен
	var adminBot *bot.AdminBot
	if cfg.AdminBotEnabled && len(cfg.AdminTelegramIDs) > 0 {
		adminService := service.NewAdminService(dbPool)

		var err error
		adminBot, err = bot.NewAdminBot(cfg.BotToken, adminService, purchases, cfg.AdminTelegramIDs)
		if err != nil {
			log.Error("failed to start admin bot", "error", err)
		} else {
			go adminBot.Start()
			log.Info("admin bot started", "admin_ids", cfg.AdminTelegramIDs)

			// Уведомление админам о каждой новой заявке на покупку
			purchases.SetNotifyCallback(adminBot.NotifyAdminsNewPurchase)
		}
	}

	go priceWatcher.Start()
	log.Info("price watcher запущен", "interval", cfg.PriceRefreshInterval)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort, "version", Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Плавная остановка бота
	if adminBot != nil {
		adminBot.Stop()
	}

	priceWatcher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
