package handlers

import (
	"errors"
	"net/http"
	"strings"

	"presale_webapp/internal/domain"
	"presale_webapp/internal/service"
	"presale_webapp/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// Таблица уровней для лендинга и дашборда
func (h *Handler) Tiers(c *gin.Context) {
	tiers := domain.Tiers()
	out := make([]gin.H, 0, len(tiers))
	for _, t := range tiers {
		item := gin.H{
			"name":          t.Name,
			"min_balance":   t.MinBalance.String(),
			"bonus_percent": t.BonusPercent,
		}
		if !t.Unbounded {
			item["max_balance"] = t.MaxBalance.String()
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, gin.H{
		"tiers":           out,
		"token_price_usd": domain.TokenPriceUSD.String(),
		"min_purchase":    domain.MinPurchase.String(),
		"max_purchase":    domain.MaxPurchase.String(),
	})
}

// Принимаемые активы вместе с адресами для перевода
func (h *Handler) Assets(c *gin.Context) {
	assets := domain.Assets()
	out := make([]gin.H, 0, len(assets))
	for _, a := range assets {
		item := gin.H{
			"symbol":         a.Symbol,
			"stablecoin":     a.Stablecoin,
			"display_places": a.DisplayPlaces,
		}
		if a.RequiresNetwork() {
			item["networks"] = a.Networks
			addrs := gin.H{}
			for _, n := range a.Networks {
				if addr, ok := h.Cfg.DepositAddresses[string(a.Symbol)+":"+strings.ToUpper(n)]; ok {
					addrs[n] = addr
				}
			}
			item["deposit_addresses"] = addrs
		} else if addr, ok := h.Cfg.DepositAddresses[string(a.Symbol)]; ok {
			item["deposit_address"] = addr
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, gin.H{"assets": out})
}

// Текущие котировки всех активов (кэш watcher'а, фид не дергается)
func (h *Handler) Prices(c *gin.Context) {
	quotes := h.Watcher.Quotes(c.Request.Context())
	out := make([]gin.H, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, gin.H{
			"symbol":     q.Symbol,
			"price_usd":  q.PriceUSD.String(),
			"source":     q.Source,
			"updated_at": q.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"quotes":          out,
		"token_price_usd": domain.TokenPriceUSD.String(),
	})
}

// Конвертация для формы покупки: сколько токенов за сумму в крипте
// и обратно. Вся арифметика на сервере, фронт только показывает
func (h *Handler) Convert(c *gin.Context) {
	var req struct {
		Symbol       string `json:"symbol" binding:"required"`
		CryptoAmount string `json:"crypto_amount"`
		TokenAmount  string `json:"token_amount"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	symbol := domain.CryptoSymbol(strings.ToUpper(req.Symbol))
	asset, ok := domain.AssetBySymbol(symbol)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown symbol"})
		return
	}

	quote, err := h.Watcher.QuoteFor(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "price unavailable"})
		return
	}

	var cryptoAmount, tokenAmount decimal.Decimal
	switch {
	case req.CryptoAmount != "":
		cryptoAmount, err = decimal.NewFromString(req.CryptoAmount)
		if err != nil || !cryptoAmount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}
		tokenAmount = domain.TokensForCrypto(cryptoAmount, quote.PriceUSD, domain.TokenPriceUSD)
	case req.TokenAmount != "":
		tokenAmount, err = decimal.NewFromString(req.TokenAmount)
		if err != nil || !tokenAmount.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
			return
		}
		cryptoAmount = domain.CryptoForTokens(tokenAmount, quote.PriceUSD, domain.TokenPriceUSD)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "crypto_amount or token_amount required"})
		return
	}

	bonus := domain.BonusFor(tokenAmount)

	c.JSON(http.StatusOK, gin.H{
		"symbol":                 symbol,
		"price_usd":              quote.PriceUSD.String(),
		"price_source":           quote.Source,
		"crypto_amount":          cryptoAmount.String(),
		"crypto_amount_display":  asset.DisplayCrypto(cryptoAmount),
		"token_amount":           tokenAmount.String(),
		"bonus_amount":           bonus.String(),
		"total_amount":           tokenAmount.Add(bonus).String(),
		"total_display":          domain.DisplayTokens(tokenAmount.Add(bonus)),
		"usd_value":              domain.USDValue(cryptoAmount, quote.PriceUSD).StringFixed(2),
	})
}

// Страница статуса заказа: доступна по номеру без авторизации
func (h *Handler) OrderStatus(c *gin.Context) {
	orderID := c.Param("order_id")

	purchase, err := h.Purchases.GetByOrderID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrPurchaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":     purchase.OrderID,
		"status":       purchase.Status,
		"token_amount": purchase.TokenAmount.String(),
		"bonus_amount": purchase.BonusAmount.String(),
		"total_amount": purchase.TotalAmount.String(),
		"created_at":   purchase.CreatedAt,
		"resolved_at":  purchase.ResolvedAt,
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// фронт живет на другом домене
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Подписка на живые котировки вместо поллинга
func (h *Handler) PricesWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	client := ws.NewClient(h.Hub, conn)
	go client.Run()
}
