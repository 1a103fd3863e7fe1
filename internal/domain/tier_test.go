package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

// проверяет, что таблица уровней покрывает всю ось балансов без дыр
// и пересечений: MinBalance каждой полосы равен MaxBalance предыдущей
func TestTierTableContiguous(t *testing.T) {
	tiers := Tiers()
	if len(tiers) == 0 {
		t.Fatal("таблица уровней пуста")
	}

	if !tiers[0].MinBalance.IsZero() {
		t.Errorf("первая полоса начинается с %s, ожидался 0", tiers[0].MinBalance)
	}

	for i := 1; i < len(tiers); i++ {
		prev, cur := tiers[i-1], tiers[i]
		if prev.Unbounded {
			t.Fatalf("безграничная полоса %s не последняя", prev.Name)
		}
		if !cur.MinBalance.Equal(prev.MaxBalance) {
			t.Errorf("разрыв между %s и %s: %s != %s",
				prev.Name, cur.Name, prev.MaxBalance, cur.MinBalance)
		}
	}

	last := tiers[len(tiers)-1]
	if !last.Unbounded {
		t.Errorf("последняя полоса %s должна быть без верхней границы", last.Name)
	}
}

func TestResolveTier(t *testing.T) {
	cases := []struct {
		balance      string
		wantTier     TierName
		wantBonus    int64
		wantNextTier TierName
	}{
		{"0", TierBasic, 0, TierBronze},
		{"99.999", TierBasic, 0, TierBronze},
		// порог включается в верхнюю полосу: 100 это уже Bronze
		{"100", TierBronze, 5, TierSilver},
		{"249.99", TierBronze, 5, TierSilver},
		{"250", TierSilver, 10, TierGold},
		{"1000", TierGold, 15, TierPlatinum},
		{"5000", TierPlatinum, 20, TierDiamond},
		{"25000", TierDiamond, 25, TierLegend},
		{"49999.99", TierDiamond, 25, TierLegend},
		{"50000", TierLegend, 30, ""},
		{"1000000", TierLegend, 30, ""},
	}

	for _, tc := range cases {
		got := ResolveTier(decimal.RequireFromString(tc.balance))
		if got.CurrentTier != tc.wantTier {
			t.Errorf("баланс %s: уровень %s, ожидался %s", tc.balance, got.CurrentTier, tc.wantTier)
		}
		if got.BonusPercent != tc.wantBonus {
			t.Errorf("баланс %s: бонус %d%%, ожидался %d%%", tc.balance, got.BonusPercent, tc.wantBonus)
		}
		if got.NextTier != tc.wantNextTier {
			t.Errorf("баланс %s: следующий уровень %q, ожидался %q", tc.balance, got.NextTier, tc.wantNextTier)
		}
	}
}

// отрицательный баланс трактуется как нулевой, не как ошибка
func TestResolveTierNegativeBalance(t *testing.T) {
	got := ResolveTier(decimal.NewFromInt(-500))
	if got.CurrentTier != TierBasic {
		t.Errorf("отрицательный баланс дал уровень %s, ожидался %s", got.CurrentTier, TierBasic)
	}
	if !got.ProgressPercent.IsZero() {
		t.Errorf("прогресс %s, ожидался 0", got.ProgressPercent)
	}
	if !got.AmountToNext.Equal(decimal.NewFromInt(100)) {
		t.Errorf("до следующего уровня %s, ожидалось 100", got.AmountToNext)
	}
}

func TestResolveTierProgress(t *testing.T) {
	// середина полосы Bronze: (175-100)/(250-100) = 50%
	got := ResolveTier(decimal.NewFromInt(175))
	if !got.ProgressPercent.Equal(decimal.NewFromInt(50)) {
		t.Errorf("прогресс %s, ожидалось 50", got.ProgressPercent)
	}
	if !got.AmountToNext.Equal(decimal.NewFromInt(75)) {
		t.Errorf("до следующего уровня %s, ожидалось 75", got.AmountToNext)
	}

	// верхний уровень: прогресс всегда 100, идти некуда
	top := ResolveTier(decimal.NewFromInt(80000))
	if !top.ProgressPercent.Equal(decimal.NewFromInt(100)) {
		t.Errorf("прогресс верхнего уровня %s, ожидалось 100", top.ProgressPercent)
	}
	if !top.AmountToNext.IsZero() {
		t.Errorf("до следующего уровня %s, ожидался 0", top.AmountToNext)
	}
}

func TestBonusFor(t *testing.T) {
	cases := []struct {
		amount string
		want   string
	}{
		{"80", "0"},        // Basic, бонуса нет
		{"100", "5"},       // Bronze 5%
		{"250", "25"},      // Silver 10%
		{"1000", "150"},    // Gold 15%
		{"50000", "15000"}, // Legend 30%
	}

	for _, tc := range cases {
		got := BonusFor(decimal.RequireFromString(tc.amount))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("бонус за %s токенов: %s, ожидалось %s", tc.amount, got, tc.want)
		}
	}
}
