package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Аккаунт участника пресейла. Баланс в токенах, меняется только
// одобрением покупки или прямой правкой админа
type User struct {
	ID        int64           `db:"id" json:"id"`
	Email     string          `db:"email" json:"email"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	IsAdmin   bool            `db:"is_admin" json:"is_admin"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// TierStatus возвращает положение пользователя в таблице уровней
func (u *User) TierStatus() TierStatus {
	return ResolveTier(u.Balance)
}
