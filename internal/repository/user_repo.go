package repository

import (
	"context"

	"presale_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// получает пользователя по id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, balance, is_admin, created_at
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

// получает пользователя по email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, balance, is_admin, created_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email)
	return scanUser(row)
}

// создает пользователя, если его нет; возвращает существующего при повторе
func (r *UserRepository) GetOrCreate(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (email)
		VALUES (LOWER($1))
		ON CONFLICT (email) DO UPDATE SET email = users.email
		RETURNING id, email, balance, is_admin, created_at
	`, email)
	return scanUser(row)
}

// CreditWithTx начисляет токены на баланс внутри транзакции.
// Используется при одобрении покупки - ровно один раз на запись
func (r *UserRepository) CreditWithTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var newBalance decimal.Decimal
	err := tx.QueryRow(ctx, `
		UPDATE users SET balance = balance + $1 WHERE id = $2 RETURNING balance
	`, amount, userID).Scan(&newBalance)
	return newBalance, err
}

// SetBalance перезаписывает баланс абсолютным значением (админская правка)
func (r *UserRepository) SetBalance(ctx context.Context, userID int64, balance decimal.Decimal) (decimal.Decimal, error) {
	var newBalance decimal.Decimal
	err := r.db.QueryRow(ctx, `
		UPDATE users SET balance = $1 WHERE id = $2 RETURNING balance
	`, balance, userID).Scan(&newBalance)
	return newBalance, err
}

// возвращает пользователей с пагинацией для админки
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	var total int
	_ = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)

	rows, err := r.db.Query(ctx, `
		SELECT id, email, balance, is_admin, created_at
		FROM users
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Balance, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Email, &u.Balance, &u.IsAdmin, &u.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}
