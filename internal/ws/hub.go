package ws

import (
	"encoding/json"
	"sync"

	"presale_webapp/internal/logger"
	"presale_webapp/internal/metrics"
	"presale_webapp/internal/service"
)

// Hub раздает свежие котировки всем подключенным страницам.
// Вместо поллинга каждые 60 секунд фронт просто слушает сокет
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	last    []byte // последняя рассылка для новых подключений
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
	}
}

// Register добавляет клиента и сразу шлет ему последние котировки
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	last := h.last
	h.mu.Unlock()

	metrics.WSClients.Set(float64(h.ClientCount()))

	if last != nil {
		c.Enqueue(last)
	}
}

// Unregister убирает клиента из рассылки
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	metrics.WSClients.Set(float64(h.ClientCount()))
}

// BroadcastQuotes рассылает котировки всем клиентам
func (h *Hub) BroadcastQuotes(quotes []service.Quote) {
	payload, err := json.Marshal(map[string]interface{}{
		"type":   "prices",
		"quotes": quotes,
	})
	if err != nil {
		logger.Error("не удалось сериализовать котировки", "error", err)
		return
	}

	h.mu.Lock()
	h.last = payload
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Enqueue(payload)
	}
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
