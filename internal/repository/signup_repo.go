package repository

import (
	"context"

	"presale_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SignupRepository struct {
	db *pgxpool.Pool
}

func NewSignupRepository(db *pgxpool.Pool) *SignupRepository {
	return &SignupRepository{db: db}
}

// сохраняет заявку с лендинга; повторная подписка того же email не ошибка
func (r *SignupRepository) Create(ctx context.Context, s *domain.Signup) (bool, error) {
	result, err := r.db.Exec(ctx, `
		INSERT INTO signups (email, name, source)
		VALUES (LOWER($1), $2, $3)
		ON CONFLICT (email) DO NOTHING
	`, s.Email, s.Name, s.Source)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// количество собранных заявок
func (r *SignupRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM signups`).Scan(&count)
	return count, err
}
