package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"presale_webapp/internal/domain"

	"github.com/shopspring/decimal"
)

// заглушка фида: отдает заданные цены либо ошибку
type stubFeed struct {
	prices map[domain.CryptoSymbol]decimal.Decimal
	err    error
	calls  int
}

func (f *stubFeed) PricesFor(ctx context.Context, assets []domain.Asset) (map[domain.CryptoSymbol]decimal.Decimal, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.prices, nil
}

// фид лежит, кэша нет: отдается зашитый резерв актива, не ошибка
func TestQuoteForFallback(t *testing.T) {
	feed := &stubFeed{err: errors.New("connection refused")}
	w := NewPriceWatcher(feed, nil, time.Minute)

	w.refresh()

	q, err := w.QuoteFor(context.Background(), domain.SymbolBTC)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if q.Source != "fallback" {
		t.Errorf("источник %s, ожидался fallback", q.Source)
	}

	asset, _ := domain.AssetBySymbol(domain.SymbolBTC)
	if !q.PriceUSD.Equal(asset.FallbackUSD) {
		t.Errorf("цена %s, ожидался резерв %s", q.PriceUSD, asset.FallbackUSD)
	}
}

func TestQuoteForAfterRefresh(t *testing.T) {
	feed := &stubFeed{prices: map[domain.CryptoSymbol]decimal.Decimal{
		domain.SymbolBTC: decimal.NewFromInt(70000),
		domain.SymbolETH: decimal.NewFromInt(3500),
	}}
	w := NewPriceWatcher(feed, nil, time.Minute)

	w.refresh()

	q, err := w.QuoteFor(context.Background(), domain.SymbolBTC)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if q.Source != "feed" {
		t.Errorf("источник %s, ожидался feed", q.Source)
	}
	if !q.PriceUSD.Equal(decimal.NewFromInt(70000)) {
		t.Errorf("цена %s, ожидалось 70000", q.PriceUSD)
	}
}

// сбой фида не стирает последние удачные котировки
func TestRefreshKeepsLastKnown(t *testing.T) {
	feed := &stubFeed{prices: map[domain.CryptoSymbol]decimal.Decimal{
		domain.SymbolBTC: decimal.NewFromInt(70000),
	}}
	w := NewPriceWatcher(feed, nil, time.Minute)

	w.refresh()
	feed.err = errors.New("timeout")
	w.refresh()

	q, err := w.QuoteFor(context.Background(), domain.SymbolBTC)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if q.Source != "feed" || !q.PriceUSD.Equal(decimal.NewFromInt(70000)) {
		t.Errorf("после сбоя котировка %s/%s, ожидалась прежняя 70000/feed", q.PriceUSD, q.Source)
	}
}

func TestQuoteForUnknownSymbol(t *testing.T) {
	w := NewPriceWatcher(&stubFeed{}, nil, time.Minute)

	if _, err := w.QuoteFor(context.Background(), "XRP"); !errors.Is(err, domain.ErrUnknownSymbol) {
		t.Errorf("неизвестный актив: err = %v, ожидался ErrUnknownSymbol", err)
	}
}

// Quotes отдает котировку каждого поддерживаемого актива даже без фида
func TestQuotesCoversAllAssets(t *testing.T) {
	feed := &stubFeed{err: errors.New("down")}
	w := NewPriceWatcher(feed, nil, time.Minute)

	quotes := w.Quotes(context.Background())
	if len(quotes) != len(domain.Assets()) {
		t.Fatalf("котировок %d, ожидалось %d", len(quotes), len(domain.Assets()))
	}
	for _, q := range quotes {
		if !q.PriceUSD.IsPositive() {
			t.Errorf("%s: цена %s не положительна", q.Symbol, q.PriceUSD)
		}
	}
}

func TestRefreshBroadcast(t *testing.T) {
	feed := &stubFeed{prices: map[domain.CryptoSymbol]decimal.Decimal{
		domain.SymbolDOGE: decimal.RequireFromString("0.21"),
	}}
	w := NewPriceWatcher(feed, nil, time.Minute)

	var got []Quote
	w.SetBroadcastCallback(func(quotes []Quote) { got = quotes })

	w.refresh()

	if len(got) != 1 || got[0].Symbol != domain.SymbolDOGE {
		t.Fatalf("broadcast получил %v, ожидалась одна котировка DOGE", got)
	}
}
