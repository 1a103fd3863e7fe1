package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Границы одной покупки в токенах. 80 - минималка покупки,
// НЕ порог уровня Bronze (тот равен 100), не путать
var (
	MinPurchase = decimal.NewFromInt(80)
	MaxPurchase = decimal.NewFromInt(100000)
)

var (
	ErrAmountOutOfRange = errors.New("сумма покупки вне допустимых границ")
	ErrUnknownSymbol    = errors.New("неизвестный актив")
	ErrNetworkRequired  = errors.New("для этого актива нужно указать сеть")
	ErrUnknownNetwork   = errors.New("неизвестная сеть для актива")
	ErrNonPositive      = errors.New("сумма должна быть положительной")
)

// Статус покупки. Переходы только pending -> approved | rejected
type PurchaseStatus string

const (
	PurchaseStatusPending  PurchaseStatus = "pending"
	PurchaseStatusApproved PurchaseStatus = "approved"
	PurchaseStatusRejected PurchaseStatus = "rejected"
)

// Заявленное намерение обменять крипту на токены. Ждет решения админа
type Purchase struct {
	ID           int64           `db:"id" json:"id"`
	OrderID      string          `db:"order_id" json:"order_id"`
	UserID       int64           `db:"user_id" json:"user_id"`
	CryptoSymbol CryptoSymbol    `db:"crypto_symbol" json:"crypto_symbol"`
	Network      string          `db:"network" json:"network,omitempty"`
	CryptoAmount decimal.Decimal `db:"crypto_amount" json:"crypto_amount"`
	TokenAmount  decimal.Decimal `db:"token_amount" json:"token_amount"`   // базовые токены, до бонуса
	BonusAmount  decimal.Decimal `db:"bonus_amount" json:"bonus_amount"`   // зафиксирован при создании
	TotalAmount  decimal.Decimal `db:"total_amount" json:"total_amount"`   // token + bonus
	Status       PurchaseStatus  `db:"status" json:"status"`
	AdminNotes   string          `db:"admin_notes" json:"admin_notes,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ResolvedAt   *time.Time      `db:"resolved_at" json:"resolved_at,omitempty"`
}

// NewPurchase валидирует заявку и собирает запись в статусе pending.
// Бонус считается от размера самой покупки и замораживается
func NewPurchase(userID int64, symbol CryptoSymbol, network string, cryptoAmount, tokenAmount decimal.Decimal) (*Purchase, error) {
	asset, ok := AssetBySymbol(symbol)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}

	if !cryptoAmount.IsPositive() || !tokenAmount.IsPositive() {
		return nil, ErrNonPositive
	}

	if tokenAmount.LessThan(MinPurchase) || tokenAmount.GreaterThan(MaxPurchase) {
		return nil, fmt.Errorf("%w: %s токенов (допустимо %s - %s)",
			ErrAmountOutOfRange, tokenAmount.String(), MinPurchase.String(), MaxPurchase.String())
	}

	if asset.RequiresNetwork() {
		if network == "" {
			return nil, fmt.Errorf("%w: %s", ErrNetworkRequired, symbol)
		}
		if !asset.HasNetwork(network) {
			return nil, fmt.Errorf("%w: %s/%s", ErrUnknownNetwork, symbol, network)
		}
	} else {
		network = ""
	}

	bonus := BonusFor(tokenAmount)

	return &Purchase{
		OrderID:      NewOrderID(),
		UserID:       userID,
		CryptoSymbol: symbol,
		Network:      network,
		CryptoAmount: cryptoAmount,
		TokenAmount:  tokenAmount,
		BonusAmount:  bonus,
		TotalAmount:  tokenAmount.Add(bonus),
		Status:       PurchaseStatusPending,
	}, nil
}

// Resolved сообщает, принято ли уже решение по покупке
func (p *Purchase) Resolved() bool {
	return p.Status != PurchaseStatusPending
}

// NewOrderID генерирует человекочитаемый номер заказа:
// префикс + миллисекунды + случайный хвост. Коллизии практически исключены
func NewOrderID() string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("PSL-%d-%s", time.Now().UnixMilli(), strings.ToUpper(suffix))
}
