package service

import (
	"context"
	"sync"
	"time"

	"presale_webapp/internal/domain"
	"presale_webapp/internal/logger"
	"presale_webapp/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// источник цен; боевая реализация - pricefeed.Client
type PriceFeed interface {
	PricesFor(ctx context.Context, assets []domain.Asset) (map[domain.CryptoSymbol]decimal.Decimal, error)
}

// Котировка актива вместе с происхождением значения
type Quote struct {
	Symbol    domain.CryptoSymbol `json:"symbol"`
	PriceUSD  decimal.Decimal     `json:"price_usd"`
	Source    string              `json:"source"` // feed | cache | fallback
	UpdatedAt time.Time           `json:"updated_at"`
}

// PriceWatcher опрашивает внешний фид по тикеру и держит котировки
// в памяти и в redis. Чтение цены никогда не падает: живой фид ->
// redis -> память -> зашитый резерв актива
type PriceWatcher struct {
	feed     PriceFeed
	rdb      *redis.Client // может быть nil - тогда только память
	interval time.Duration

	mu     sync.RWMutex
	quotes map[domain.CryptoSymbol]Quote

	stop    chan struct{}
	running bool

	// callback на каждое успешное обновление (websocket hub)
	broadcastCallback func([]Quote)
}

// NewPriceWatcher создает новый watcher цен
func NewPriceWatcher(feed PriceFeed, rdb *redis.Client, interval time.Duration) *PriceWatcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PriceWatcher{
		feed:     feed,
		rdb:      rdb,
		interval: interval,
		quotes:   make(map[domain.CryptoSymbol]Quote),
		stop:     make(chan struct{}),
	}
}

// SetBroadcastCallback подключает рассылку свежих котировок
func (w *PriceWatcher) SetBroadcastCallback(cb func([]Quote)) {
	w.broadcastCallback = cb
}

// Start запускает watcher в фоновом режиме
func (w *PriceWatcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	log := logger.Get()
	log.Info("запуск price watcher", "interval", w.interval)

	// первоначальное обновление
	w.refresh()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.refresh()
		case <-w.stop:
			log.Info("остановка price watcher")
			return
		}
	}
}

// Stop останавливает watcher
func (w *PriceWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	w.running = false
	close(w.stop)
}

// refresh опрашивает фид и обновляет кэши
func (w *PriceWatcher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	prices, err := w.feed.PricesFor(ctx, domain.Assets())
	if err != nil {
		// недоступность фида не ошибка для вызывающих - работаем с кэшем
		metrics.PriceFeedErrors.Inc()
		logger.Warn("фид цен недоступен, работаем по кэшу", "error", err)
		return
	}

	now := time.Now()
	fresh := make([]Quote, 0, len(prices))

	w.mu.Lock()
	for symbol, price := range prices {
		q := Quote{Symbol: symbol, PriceUSD: price, Source: "feed", UpdatedAt: now}
		w.quotes[symbol] = q
		fresh = append(fresh, q)
	}
	w.mu.Unlock()

	if w.rdb != nil {
		for _, q := range fresh {
			// кэш живет долго: протухшая цена лучше резервной константы
			if err := w.rdb.Set(ctx, redisPriceKey(q.Symbol), q.PriceUSD.String(), 24*time.Hour).Err(); err != nil {
				logger.Debug("не удалось записать цену в redis", "symbol", q.Symbol, "error", err)
			}
		}
	}

	metrics.PriceFeedRefreshes.Inc()
	logger.Debug("цены обновлены", "count", len(fresh))

	if w.broadcastCallback != nil && len(fresh) > 0 {
		w.broadcastCallback(fresh)
	}
}

// QuoteFor возвращает котировку актива. Всегда успешна:
// память -> redis -> зашитый резерв
func (w *PriceWatcher) QuoteFor(ctx context.Context, symbol domain.CryptoSymbol) (Quote, error) {
	asset, ok := domain.AssetBySymbol(symbol)
	if !ok {
		return Quote{}, domain.ErrUnknownSymbol
	}

	w.mu.RLock()
	q, found := w.quotes[symbol]
	w.mu.RUnlock()
	if found {
		return q, nil
	}

	if w.rdb != nil {
		if raw, err := w.rdb.Get(ctx, redisPriceKey(symbol)).Result(); err == nil {
			if price, perr := decimal.NewFromString(raw); perr == nil && price.IsPositive() {
				q = Quote{Symbol: symbol, PriceUSD: price, Source: "cache", UpdatedAt: time.Now()}
				w.mu.Lock()
				w.quotes[symbol] = q
				w.mu.Unlock()
				return q, nil
			}
		}
	}

	return Quote{
		Symbol:    symbol,
		PriceUSD:  asset.FallbackUSD,
		Source:    "fallback",
		UpdatedAt: time.Now(),
	}, nil
}

// Quotes возвращает котировки всех поддерживаемых активов
func (w *PriceWatcher) Quotes(ctx context.Context) []Quote {
	assets := domain.Assets()
	out := make([]Quote, 0, len(assets))
	for _, a := range assets {
		q, err := w.QuoteFor(ctx, a.Symbol)
		if err != nil {
			continue
		}
		out = append(out, q)
	}
	return out
}

func redisPriceKey(symbol domain.CryptoSymbol) string {
	return "price:" + string(symbol)
}
