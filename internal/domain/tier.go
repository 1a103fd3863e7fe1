package domain

import "github.com/shopspring/decimal"

// Уровень участника пресейла. Определяется балансом токенов
type TierName string

const (
	TierBasic    TierName = "Basic"
	TierBronze   TierName = "Bronze"
	TierSilver   TierName = "Silver"
	TierGold     TierName = "Gold"
	TierPlatinum TierName = "Platinum"
	TierDiamond  TierName = "Diamond"
	TierLegend   TierName = "Legend"
)

// Одна полоса таблицы уровней: [MinBalance, MaxBalance), бонус в процентах.
// У последнего уровня верхней границы нет (Unbounded)
type Tier struct {
	Name         TierName
	MinBalance   decimal.Decimal
	MaxBalance   decimal.Decimal
	Unbounded    bool
	BonusPercent int64
}

// Таблица уровней. Полосы смежные и не пересекаются:
// MinBalance следующего равен MaxBalance предыдущего
var tierTable = []Tier{
	{Name: TierBasic, MinBalance: decimal.NewFromInt(0), MaxBalance: decimal.NewFromInt(100), BonusPercent: 0},
	{Name: TierBronze, MinBalance: decimal.NewFromInt(100), MaxBalance: decimal.NewFromInt(250), BonusPercent: 5},
	{Name: TierSilver, MinBalance: decimal.NewFromInt(250), MaxBalance: decimal.NewFromInt(1000), BonusPercent: 10},
	{Name: TierGold, MinBalance: decimal.NewFromInt(1000), MaxBalance: decimal.NewFromInt(5000), BonusPercent: 15},
	{Name: TierPlatinum, MinBalance: decimal.NewFromInt(5000), MaxBalance: decimal.NewFromInt(25000), BonusPercent: 20},
	{Name: TierDiamond, MinBalance: decimal.NewFromInt(25000), MaxBalance: decimal.NewFromInt(50000), BonusPercent: 25},
	{Name: TierLegend, MinBalance: decimal.NewFromInt(50000), Unbounded: true, BonusPercent: 30},
}

// Tiers возвращает копию таблицы уровней (для выдачи наружу)
func Tiers() []Tier {
	out := make([]Tier, len(tierTable))
	copy(out, tierTable)
	return out
}

// Вычисленное положение баланса в таблице уровней
type TierStatus struct {
	CurrentTier     TierName        `json:"current_tier"`
	BonusPercent    int64           `json:"bonus_percent"`
	ProgressPercent decimal.Decimal `json:"progress_percent"` // 0-100 внутри текущей полосы
	NextTier        TierName        `json:"next_tier,omitempty"`
	AmountToNext    decimal.Decimal `json:"amount_to_next"`
}

var hundred = decimal.NewFromInt(100)

// ResolveTier возвращает уровень для баланса. Чистая функция.
// Отрицательный баланс прижимается к нулю
func ResolveTier(balance decimal.Decimal) TierStatus {
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	for i, tier := range tierTable {
		if !tier.Unbounded && balance.GreaterThanOrEqual(tier.MaxBalance) {
			continue
		}

		if tier.Unbounded {
			// верхний уровень: прогресс зафиксирован, следующего нет
			return TierStatus{
				CurrentTier:     tier.Name,
				BonusPercent:    tier.BonusPercent,
				ProgressPercent: hundred,
				AmountToNext:    decimal.Zero,
			}
		}

		width := tier.MaxBalance.Sub(tier.MinBalance)
		progress := balance.Sub(tier.MinBalance).Div(width).Mul(hundred)
		if progress.IsNegative() {
			progress = decimal.Zero
		}
		if progress.GreaterThan(hundred) {
			progress = hundred
		}

		return TierStatus{
			CurrentTier:     tier.Name,
			BonusPercent:    tier.BonusPercent,
			ProgressPercent: progress,
			NextTier:        tierTable[i+1].Name,
			AmountToNext:    tier.MaxBalance.Sub(balance),
		}
	}

	// недостижимо: последняя полоса безгранична
	last := tierTable[len(tierTable)-1]
	return TierStatus{
		CurrentTier:     last.Name,
		BonusPercent:    last.BonusPercent,
		ProgressPercent: hundred,
		AmountToNext:    decimal.Zero,
	}
}

// BonusFor возвращает бонус в токенах для покупки размером amount.
// Уровень берется от суммы самой покупки, а не от баланса пользователя
func BonusFor(amount decimal.Decimal) decimal.Decimal {
	status := ResolveTier(amount)
	return amount.Mul(decimal.NewFromInt(status.BonusPercent)).Div(hundred)
}
