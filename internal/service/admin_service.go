package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"presale_webapp/internal/domain"
	"presale_webapp/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNegativeBalance = errors.New("баланс не может быть отрицательным")

// предоставляет административную статистику и операции
type AdminService struct {
	db           *pgxpool.Pool
	userRepo     *repository.UserRepository
	auditRepo    *repository.AuditRepository
	signupRepo   *repository.SignupRepository
	purchaseRepo *repository.PurchaseRepository
}

// создает новый административный сервис
func NewAdminService(db *pgxpool.Pool) *AdminService {
	return &AdminService{
		db:           db,
		userRepo:     repository.NewUserRepository(db),
		auditRepo:    repository.NewAuditRepository(db),
		signupRepo:   repository.NewSignupRepository(db),
		purchaseRepo: repository.NewPurchaseRepository(db),
	}
}

// представляет статистику платформы
type Stats struct {
	TotalUsers       int64  `json:"total_users"`
	TotalSignups     int64  `json:"total_signups"`
	PendingPurchases int    `json:"pending_purchases"`
	PurchasesToday   int64  `json:"purchases_today"`
	PurchasesTotal   int64  `json:"purchases_total"`
	TokensSoldTotal  string `json:"tokens_sold_total"`  // сумма total_amount одобренных
	TokensSoldToday  string `json:"tokens_sold_today"`
	TokensInBalances string `json:"tokens_in_balances"` // токенов на балансах
}

// возвращает статистику платформы
func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	today := time.Now().Truncate(24 * time.Hour)

	// общее количество пользователей
	_ = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers)

	// собранные заявки с лендинга
	stats.TotalSignups, _ = s.signupRepo.Count(ctx)

	// очередь на решение
	stats.PendingPurchases, _ = s.purchaseRepo.CountPending(ctx)

	// покупки за сегодня и за все время
	_ = s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM purchases WHERE created_at >= $1
	`, today).Scan(&stats.PurchasesToday)
	_ = s.db.QueryRow(ctx, `SELECT COUNT(*) FROM purchases`).Scan(&stats.PurchasesTotal)

	// проданные токены (только одобренные покупки, с бонусами)
	var soldTotal, soldToday, inBalances decimal.Decimal
	_ = s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0) FROM purchases WHERE status = 'approved'
	`).Scan(&soldTotal)
	_ = s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount), 0) FROM purchases WHERE status = 'approved' AND resolved_at >= $1
	`, today).Scan(&soldToday)
	_ = s.db.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0) FROM users`).Scan(&inBalances)

	stats.TokensSoldTotal = soldTotal.String()
	stats.TokensSoldToday = soldToday.String()
	stats.TokensInBalances = inBalances.String()

	return stats, nil
}

// SetUserBalance перезаписывает баланс пользователя абсолютным значением.
// Правка логируется в аудит вместе со старым значением
func (s *AdminService) SetUserBalance(ctx context.Context, adminID, userID int64, newBalance decimal.Decimal) (decimal.Decimal, error) {
	if newBalance.IsNegative() {
		return decimal.Zero, ErrNegativeBalance
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if user == nil {
		return decimal.Zero, ErrUserNotFound
	}

	updated, err := s.userRepo.SetBalance(ctx, userID, newBalance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ошибка обновления баланса: %w", err)
	}

	_ = s.auditRepo.Create(ctx, &domain.AuditLog{
		UserID:   adminID,
		Action:   domain.AuditActionAdminSetBalance,
		Category: domain.AuditCategoryBalance,
		Details: map[string]interface{}{
			"target_user_id": userID,
			"old_balance":    user.Balance.String(),
			"new_balance":    updated.String(),
		},
	})

	return updated, nil
}

// представляет пользователя в списке админки вместе с его уровнем
type UserListItem struct {
	ID         int64             `json:"id"`
	Email      string            `json:"email"`
	Balance    string            `json:"balance"`
	TierStatus domain.TierStatus `json:"tier_status"`
	CreatedAt  time.Time         `json:"created_at"`
}

// возвращает всех пользователей с пагинацией
func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]UserListItem, int, error) {
	users, total, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	items := make([]UserListItem, 0, len(users))
	for _, u := range users {
		items = append(items, UserListItem{
			ID:         u.ID,
			Email:      u.Email,
			Balance:    u.Balance.String(),
			TierStatus: u.TierStatus(),
			CreatedAt:  u.CreatedAt,
		})
	}
	return items, total, nil
}

// возвращает последние записи аудита
func (s *AdminService) RecentAudit(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	return s.auditRepo.GetRecent(ctx, limit)
}

// возвращает аудит действий одного пользователя
func (s *AdminService) AuditForUser(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	return s.auditRepo.GetByUserID(ctx, userID, limit)
}

// GetUserByEmail находит пользователя для поиска в админке
func (s *AdminService) GetUserByEmail(ctx context.Context, email string) (*UserListItem, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return &UserListItem{
		ID:         user.ID,
		Email:      user.Email,
		Balance:    user.Balance.String(),
		TierStatus: user.TierStatus(),
		CreatedAt:  user.CreatedAt,
	}, nil
}
