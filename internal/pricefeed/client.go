package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"presale_webapp/internal/domain"

	"github.com/shopspring/decimal"
)

// клиент внешнего фида цен (coingecko simple/price API)
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создает клиент фида. Таймаут короткий: при молчании фида
// вызывающий уходит на кэш, а не висит
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// PricesFor запрашивает USD цены для списка активов.
// Возвращает карту символ -> цена; отсутствующие в ответе активы пропускаются
func (c *Client) PricesFor(ctx context.Context, assets []domain.Asset) (map[domain.CryptoSymbol]decimal.Decimal, error) {
	ids := make([]string, 0, len(assets))
	bySymbol := make(map[string]domain.CryptoSymbol, len(assets))
	for _, a := range assets {
		ids = append(ids, a.FeedID)
		bySymbol[a.FeedID] = a.Symbol
	}

	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", "usd")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("фид цен недоступен: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("фид цен ответил %d: %s", resp.StatusCode, string(body))
	}

	// ответ вида {"bitcoin":{"usd":67824.12}, ...}
	var raw map[string]map[string]json.Number
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("не удалось разобрать ответ фида: %w", err)
	}

	prices := make(map[domain.CryptoSymbol]decimal.Decimal, len(raw))
	for id, entry := range raw {
		symbol, ok := bySymbol[id]
		if !ok {
			continue
		}
		usd, ok := entry["usd"]
		if !ok {
			continue
		}
		price, err := decimal.NewFromString(usd.String())
		if err != nil || !price.IsPositive() {
			continue
		}
		prices[symbol] = price
	}

	return prices, nil
}
