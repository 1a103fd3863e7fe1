package service

import (
	"context"
	"errors"
	"fmt"

	"presale_webapp/internal/domain"
	"presale_webapp/internal/logger"
	"presale_webapp/internal/metrics"
	"presale_webapp/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrPurchaseNotFound = errors.New("покупка не найдена")
	ErrAlreadyResolved  = errors.New("покупка уже обработана")
	ErrUnknownDecision  = errors.New("неизвестное решение")
)

// Решение админа по покупке
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Слой хранения, от которого зависит сервис. За интерфейсами стоят
// репозитории на pgx; в тестах жизненного цикла база подменяется
type purchaseStore interface {
	Create(ctx context.Context, p *domain.Purchase) error
	GetByID(ctx context.Context, id int64) (*domain.Purchase, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Purchase, error)
	GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.Purchase, error)
	List(ctx context.Context, status domain.PurchaseStatus, limit int) ([]domain.Purchase, error)
	ResolveWithTx(ctx context.Context, tx pgx.Tx, id int64, status domain.PurchaseStatus, notes string) (*domain.Purchase, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteAll(ctx context.Context, userID int64) (int64, error)
}

type balanceStore interface {
	CreditWithTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
}

type auditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateWithTx(ctx context.Context, tx pgx.Tx, log *domain.AuditLog) error
}

type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// обрабатывает жизненный цикл покупки: создание, решение, удаление
type PurchaseService struct {
	db           txBeginner
	purchaseRepo purchaseStore
	userRepo     balanceStore
	auditRepo    auditStore

	// callback для уведомления админов о новой покупке (телеграм бот)
	notifyCallback func(domain.Purchase)
}

// создает новый сервис покупок
func NewPurchaseService(db *pgxpool.Pool) *PurchaseService {
	return &PurchaseService{
		db:           db,
		purchaseRepo: repository.NewPurchaseRepository(db),
		userRepo:     repository.NewUserRepository(db),
		auditRepo:    repository.NewAuditRepository(db),
	}
}

// SetNotifyCallback подключает уведомление о новых pending покупках
func (s *PurchaseService) SetNotifyCallback(cb func(domain.Purchase)) {
	s.notifyCallback = cb
}

// Create валидирует заявку, фиксирует бонус и сохраняет запись pending.
// Баланс пользователя на этом шаге не меняется
func (s *PurchaseService) Create(ctx context.Context, userID int64, symbol domain.CryptoSymbol, network string, cryptoAmount, tokenAmount decimal.Decimal) (*domain.Purchase, error) {
	purchase, err := domain.NewPurchase(userID, symbol, network, cryptoAmount, tokenAmount)
	if err != nil {
		return nil, err
	}

	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("ошибка сохранения покупки: %w", err)
	}

	_ = s.auditRepo.Create(ctx, &domain.AuditLog{
		UserID:   userID,
		Action:   domain.AuditActionPurchaseCreate,
		Category: domain.AuditCategoryPurchase,
		Details: map[string]interface{}{
			"order_id":      purchase.OrderID,
			"crypto_symbol": purchase.CryptoSymbol,
			"token_amount":  purchase.TokenAmount.String(),
			"bonus_amount":  purchase.BonusAmount.String(),
		},
	})

	metrics.PurchasesCreated.Inc()
	logger.Info("purchase created",
		"order_id", purchase.OrderID,
		"user_id", userID,
		"symbol", purchase.CryptoSymbol,
		"total", purchase.TotalAmount.String())

	if s.notifyCallback != nil {
		s.notifyCallback(*purchase)
	}

	return purchase, nil
}

// Resolve принимает решение по pending покупке. Условный UPDATE внутри
// транзакции: при гонке двух решений пройдет ровно одно, второе получит
// ErrAlreadyResolved. Начисление баланса при approve происходит в той же
// транзакции, поэтому двойное зачисление невозможно
func (s *PurchaseService) Resolve(ctx context.Context, purchaseID int64, decision Decision, notes string) (*domain.Purchase, error) {
	var status domain.PurchaseStatus
	switch decision {
	case DecisionApprove:
		status = domain.PurchaseStatusApproved
	case DecisionReject:
		status = domain.PurchaseStatusRejected
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDecision, decision)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	purchase, err := s.purchaseRepo.ResolveWithTx(ctx, tx, purchaseID, status, notes)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления статуса: %w", err)
	}
	if purchase == nil {
		// либо записи нет, либо она уже решена - различаем для вызывающего
		existing, lookupErr := s.purchaseRepo.GetByID(ctx, purchaseID)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing == nil {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("%w (статус: %s)", ErrAlreadyResolved, existing.Status)
	}

	action := domain.AuditActionPurchaseReject
	if decision == DecisionApprove {
		action = domain.AuditActionPurchaseApprove

		newBalance, err := s.userRepo.CreditWithTx(ctx, tx, purchase.UserID, purchase.TotalAmount)
		if err != nil {
			return nil, fmt.Errorf("ошибка начисления токенов: %w", err)
		}
		logger.Info("purchase approved",
			"order_id", purchase.OrderID,
			"user_id", purchase.UserID,
			"credited", purchase.TotalAmount.String(),
			"new_balance", newBalance.String())
	}

	_ = s.auditRepo.CreateWithTx(ctx, tx, &domain.AuditLog{
		UserID:   purchase.UserID,
		Action:   action,
		Category: domain.AuditCategoryPurchase,
		Details: map[string]interface{}{
			"order_id": purchase.OrderID,
			"decision": string(decision),
			"notes":    notes,
		},
	})

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	metrics.PurchasesResolved.WithLabelValues(string(decision)).Inc()
	return purchase, nil
}

// Delete удаляет одну запись покупки. Уже начисленный баланс не
// откатывается - история чистится, зачисление остается
func (s *PurchaseService) Delete(ctx context.Context, adminID, purchaseID int64) error {
	purchase, err := s.purchaseRepo.GetByID(ctx, purchaseID)
	if err != nil {
		return err
	}
	if purchase == nil {
		return ErrPurchaseNotFound
	}

	deleted, err := s.purchaseRepo.Delete(ctx, purchaseID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPurchaseNotFound
	}

	_ = s.auditRepo.Create(ctx, &domain.AuditLog{
		UserID:   adminID,
		Action:   domain.AuditActionPurchaseDelete,
		Category: domain.AuditCategoryAdmin,
		Details: map[string]interface{}{
			"order_id":       purchase.OrderID,
			"purchase_id":    purchaseID,
			"owner_user_id":  purchase.UserID,
			"status_at_time": string(purchase.Status),
		},
	})

	return nil
}

// DeleteAll удаляет историю покупок: всю или одного пользователя
func (s *PurchaseService) DeleteAll(ctx context.Context, adminID, userID int64) (int64, error) {
	deleted, err := s.purchaseRepo.DeleteAll(ctx, userID)
	if err != nil {
		return 0, err
	}

	_ = s.auditRepo.Create(ctx, &domain.AuditLog{
		UserID:   adminID,
		Action:   domain.AuditActionPurchaseDelete,
		Category: domain.AuditCategoryAdmin,
		Details: map[string]interface{}{
			"bulk":          true,
			"owner_user_id": userID,
			"deleted":       deleted,
		},
	})

	return deleted, nil
}

// GetByOrderID возвращает покупку для страницы статуса
func (s *PurchaseService) GetByOrderID(ctx context.Context, orderID string) (*domain.Purchase, error) {
	purchase, err := s.purchaseRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if purchase == nil {
		return nil, ErrPurchaseNotFound
	}
	return purchase, nil
}

// History возвращает покупки пользователя
func (s *PurchaseService) History(ctx context.Context, userID int64, limit int) ([]domain.Purchase, error) {
	return s.purchaseRepo.GetByUserID(ctx, userID, limit)
}

// Pending возвращает очередь покупок, ожидающих решения
func (s *PurchaseService) Pending(ctx context.Context, limit int) ([]domain.Purchase, error) {
	return s.purchaseRepo.List(ctx, domain.PurchaseStatusPending, limit)
}

// List возвращает покупки по статусу для админки
func (s *PurchaseService) List(ctx context.Context, status domain.PurchaseStatus, limit int) ([]domain.Purchase, error) {
	return s.purchaseRepo.List(ctx, status, limit)
}
