package repository

import (
	"context"
	"time"

	"presale_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const purchaseColumns = `id, order_id, user_id, crypto_symbol, network, crypto_amount,
	       token_amount, bonus_amount, total_amount, status, admin_notes, created_at, resolved_at`

type PurchaseRepository struct {
	db *pgxpool.Pool
}

func NewPurchaseRepository(db *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// создает запись покупки в статусе pending
func (r *PurchaseRepository) Create(ctx context.Context, p *domain.Purchase) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO purchases (order_id, user_id, crypto_symbol, network, crypto_amount,
		                       token_amount, bonus_amount, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`, p.OrderID, p.UserID, p.CryptoSymbol, p.Network, p.CryptoAmount,
		p.TokenAmount, p.BonusAmount, p.TotalAmount, p.Status).Scan(&p.ID, &p.CreatedAt)
}

// получает покупку по id
func (r *PurchaseRepository) GetByID(ctx context.Context, id int64) (*domain.Purchase, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+purchaseColumns+`
		FROM purchases
		WHERE id = $1
	`, id)
	return scanPurchase(row)
}

// получает покупку по человекочитаемому номеру заказа (страница статуса)
func (r *PurchaseRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Purchase, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+purchaseColumns+`
		FROM purchases
		WHERE order_id = $1
	`, orderID)
	return scanPurchase(row)
}

// получает покупки пользователя, новые первыми
func (r *PurchaseRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.Purchase, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+purchaseColumns+`
		FROM purchases
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPurchases(rows)
}

// получает покупки по статусу для админки; пустой статус = все
func (r *PurchaseRepository) List(ctx context.Context, status domain.PurchaseStatus, limit int) ([]domain.Purchase, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if status == "" {
		rows, err = r.db.Query(ctx, `
			SELECT `+purchaseColumns+`
			FROM purchases
			ORDER BY created_at DESC
			LIMIT $1
		`, limit)
	} else {
		rows, err = r.db.Query(ctx, `
			SELECT `+purchaseColumns+`
			FROM purchases
			WHERE status = $1
			ORDER BY created_at ASC
			LIMIT $2
		`, status, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPurchases(rows)
}

// ResolveWithTx атомарно переводит pending покупку в терминальный статус.
// Условный UPDATE гарантирует, что из двух одновременных решений
// пройдет ровно одно: проигравший получит pgx.ErrNoRows
func (r *PurchaseRepository) ResolveWithTx(ctx context.Context, tx pgx.Tx, id int64, status domain.PurchaseStatus, notes string) (*domain.Purchase, error) {
	row := tx.QueryRow(ctx, `
		UPDATE purchases
		SET status = $2, admin_notes = $3, resolved_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+purchaseColumns+`
	`, id, status, notes)
	return scanPurchase(row)
}

// удаляет одну покупку; решенные записи тоже удаляются, баланс не трогается
func (r *PurchaseRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// удаляет все покупки пользователя; userID = 0 чистит всю историю
func (r *PurchaseRepository) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	if userID == 0 {
		result, err := r.db.Exec(ctx, `DELETE FROM purchases`)
		if err != nil {
			return 0, err
		}
		return result.RowsAffected(), nil
	}
	result, err := r.db.Exec(ctx, `DELETE FROM purchases WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// количество ожидающих решения покупок
func (r *PurchaseRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM purchases WHERE status = 'pending'
	`).Scan(&count)
	return count, err
}

// сканирует строку из базы данных в структуру Purchase
func scanPurchase(row pgx.Row) (*domain.Purchase, error) {
	var p domain.Purchase
	var resolvedAt *time.Time

	if err := row.Scan(
		&p.ID, &p.OrderID, &p.UserID, &p.CryptoSymbol, &p.Network, &p.CryptoAmount,
		&p.TokenAmount, &p.BonusAmount, &p.TotalAmount, &p.Status, &p.AdminNotes,
		&p.CreatedAt, &resolvedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	p.ResolvedAt = resolvedAt
	return &p, nil
}

func scanPurchases(rows pgx.Rows) ([]domain.Purchase, error) {
	var purchases []domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		var resolvedAt *time.Time
		if err := rows.Scan(
			&p.ID, &p.OrderID, &p.UserID, &p.CryptoSymbol, &p.Network, &p.CryptoAmount,
			&p.TokenAmount, &p.BonusAmount, &p.TotalAmount, &p.Status, &p.AdminNotes,
			&p.CreatedAt, &resolvedAt,
		); err != nil {
			return nil, err
		}
		p.ResolvedAt = resolvedAt
		purchases = append(purchases, p)
	}
	return purchases, rows.Err()
}
