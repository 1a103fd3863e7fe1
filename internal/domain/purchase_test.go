package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewPurchaseBounds(t *testing.T) {
	crypto := decimal.RequireFromString("0.01")

	// 79 токенов ниже минималки
	if _, err := NewPurchase(1, SymbolBTC, "", crypto, decimal.NewFromInt(79)); !errors.Is(err, ErrAmountOutOfRange) {
		t.Errorf("79 токенов: err = %v, ожидался ErrAmountOutOfRange", err)
	}

	// ровно минималка проходит
	if _, err := NewPurchase(1, SymbolBTC, "", crypto, decimal.NewFromInt(80)); err != nil {
		t.Errorf("80 токенов: неожиданная ошибка %v", err)
	}

	// ровно максимум проходит
	if _, err := NewPurchase(1, SymbolBTC, "", crypto, decimal.NewFromInt(100000)); err != nil {
		t.Errorf("100000 токенов: неожиданная ошибка %v", err)
	}

	if _, err := NewPurchase(1, SymbolBTC, "", crypto, decimal.NewFromInt(100001)); !errors.Is(err, ErrAmountOutOfRange) {
		t.Errorf("100001 токенов: err = %v, ожидался ErrAmountOutOfRange", err)
	}

	if _, err := NewPurchase(1, SymbolBTC, "", decimal.Zero, decimal.NewFromInt(100)); !errors.Is(err, ErrNonPositive) {
		t.Errorf("нулевая сумма крипты: err = %v, ожидался ErrNonPositive", err)
	}

	if _, err := NewPurchase(1, "XRP", "", crypto, decimal.NewFromInt(100)); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("неизвестный актив: err = %v, ожидался ErrUnknownSymbol", err)
	}
}

// бонус считается от размера покупки и замораживается в записи
func TestNewPurchaseBonusFrozen(t *testing.T) {
	p, err := NewPurchase(42, SymbolETH, "", decimal.RequireFromString("0.15"), decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if !p.BonusAmount.Equal(decimal.NewFromInt(5)) {
		t.Errorf("бонус %s, ожидалось 5 (Bronze 5%% от 100)", p.BonusAmount)
	}
	if !p.TotalAmount.Equal(decimal.NewFromInt(105)) {
		t.Errorf("итого %s, ожидалось 105", p.TotalAmount)
	}
	if p.Status != PurchaseStatusPending {
		t.Errorf("статус %s, ожидался pending", p.Status)
	}
	if p.Resolved() {
		t.Error("свежая покупка не должна считаться решенной")
	}
}

func TestNewPurchaseNetworks(t *testing.T) {
	crypto := decimal.NewFromInt(500)
	tokens := decimal.NewFromInt(100)

	// USDT без сети не принимается
	if _, err := NewPurchase(1, SymbolUSDT, "", crypto, tokens); !errors.Is(err, ErrNetworkRequired) {
		t.Errorf("USDT без сети: err = %v, ожидался ErrNetworkRequired", err)
	}

	if _, err := NewPurchase(1, SymbolUSDT, "SOLANA", crypto, tokens); !errors.Is(err, ErrUnknownNetwork) {
		t.Errorf("USDT/SOLANA: err = %v, ожидался ErrUnknownNetwork", err)
	}

	p, err := NewPurchase(1, SymbolUSDT, "TRC20", crypto, tokens)
	if err != nil {
		t.Fatalf("USDT/TRC20: неожиданная ошибка %v", err)
	}
	if p.Network != "TRC20" {
		t.Errorf("сеть %s, ожидалась TRC20", p.Network)
	}

	// для односетевых активов переданная сеть игнорируется
	p, err = NewPurchase(1, SymbolBTC, "TRC20", decimal.RequireFromString("0.01"), tokens)
	if err != nil {
		t.Fatalf("BTC: неожиданная ошибка %v", err)
	}
	if p.Network != "" {
		t.Errorf("у BTC сеть должна быть пустой, получено %s", p.Network)
	}
}

func TestNewOrderID(t *testing.T) {
	id := NewOrderID()
	if !strings.HasPrefix(id, "PSL-") {
		t.Errorf("номер заказа %s без префикса PSL-", id)
	}
	if parts := strings.Split(id, "-"); len(parts) != 3 {
		t.Errorf("номер заказа %s: ожидалось 3 части", id)
	}

	// подряд сгенерированные номера не совпадают
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		next := NewOrderID()
		if seen[next] {
			t.Fatalf("повтор номера заказа: %s", next)
		}
		seen[next] = true
	}
}
