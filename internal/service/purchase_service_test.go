package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"presale_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// транзакция-заглушка: фиксирует только commit/rollback
type stubTx struct {
	committed  bool
	rolledBack bool
}

func (t *stubTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *stubTx) Commit(ctx context.Context) error          { t.committed = true; return nil }
func (t *stubTx) Rollback(ctx context.Context) error        { t.rolledBack = true; return nil }
func (t *stubTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *stubTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *stubTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *stubTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *stubTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *stubTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *stubTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *stubTx) Conn() *pgx.Conn                                               { return nil }

type stubDB struct{ tx *stubTx }

func (d *stubDB) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	return d.tx, nil
}

// хранилище покупок в памяти. Условный перевод статуса срабатывает
// только пока запись pending - как UPDATE ... WHERE status = 'pending'
// в настоящей базе при гонке двух решений
type stubPurchases struct {
	record       *domain.Purchase
	resolveCalls int
}

func (s *stubPurchases) Create(ctx context.Context, p *domain.Purchase) error { return nil }

func (s *stubPurchases) GetByID(ctx context.Context, id int64) (*domain.Purchase, error) {
	if s.record == nil || s.record.ID != id {
		return nil, nil
	}
	return s.record, nil
}

func (s *stubPurchases) GetByOrderID(ctx context.Context, orderID string) (*domain.Purchase, error) {
	if s.record == nil || s.record.OrderID != orderID {
		return nil, nil
	}
	return s.record, nil
}

func (s *stubPurchases) GetByUserID(ctx context.Context, userID int64, limit int) ([]domain.Purchase, error) {
	return nil, nil
}

func (s *stubPurchases) List(ctx context.Context, status domain.PurchaseStatus, limit int) ([]domain.Purchase, error) {
	return nil, nil
}

func (s *stubPurchases) ResolveWithTx(ctx context.Context, tx pgx.Tx, id int64, status domain.PurchaseStatus, notes string) (*domain.Purchase, error) {
	s.resolveCalls++
	if s.record == nil || s.record.ID != id || s.record.Status != domain.PurchaseStatusPending {
		return nil, nil
	}
	now := time.Now()
	s.record.Status = status
	s.record.AdminNotes = notes
	s.record.ResolvedAt = &now
	return s.record, nil
}

func (s *stubPurchases) Delete(ctx context.Context, id int64) (bool, error) {
	if s.record == nil || s.record.ID != id {
		return false, nil
	}
	s.record = nil
	return true, nil
}

func (s *stubPurchases) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	if s.record == nil {
		return 0, nil
	}
	s.record = nil
	return 1, nil
}

type stubBalances struct {
	credits []decimal.Decimal
	balance decimal.Decimal
}

func (s *stubBalances) CreditWithTx(ctx context.Context, tx pgx.Tx, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	s.credits = append(s.credits, amount)
	s.balance = s.balance.Add(amount)
	return s.balance, nil
}

type stubAudit struct{ entries int }

func (s *stubAudit) Create(ctx context.Context, log *domain.AuditLog) error { s.entries++; return nil }
func (s *stubAudit) CreateWithTx(ctx context.Context, tx pgx.Tx, log *domain.AuditLog) error {
	s.entries++
	return nil
}

func newTestPurchaseService(record *domain.Purchase) (*PurchaseService, *stubPurchases, *stubBalances, *stubTx) {
	tx := &stubTx{}
	purchases := &stubPurchases{record: record}
	balances := &stubBalances{}
	svc := &PurchaseService{
		db:           &stubDB{tx: tx},
		purchaseRepo: purchases,
		userRepo:     balances,
		auditRepo:    &stubAudit{},
	}
	return svc, purchases, balances, tx
}

func pendingPurchase(t *testing.T) *domain.Purchase {
	t.Helper()
	p, err := domain.NewPurchase(7, domain.SymbolBTC, "", decimal.RequireFromString("0.01"), decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("не удалось собрать покупку: %v", err)
	}
	p.ID = 1
	return p
}

// approve переводит pending в approved и начисляет итог с бонусом
// ровно один раз, в той же транзакции
func TestResolveApproveCreditsOnce(t *testing.T) {
	svc, _, balances, tx := newTestPurchaseService(pendingPurchase(t))

	resolved, err := svc.Resolve(context.Background(), 1, DecisionApprove, "перевод получен")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if resolved.Status != domain.PurchaseStatusApproved {
		t.Errorf("статус %s, ожидался approved", resolved.Status)
	}
	if resolved.ResolvedAt == nil {
		t.Error("не проставлено время решения")
	}
	if len(balances.credits) != 1 {
		t.Fatalf("начислений %d, ожидалось ровно одно", len(balances.credits))
	}
	// 100 токенов + 5 бонус (Bronze)
	if !balances.credits[0].Equal(decimal.NewFromInt(105)) {
		t.Errorf("начислено %s, ожидалось 105", balances.credits[0])
	}
	if !tx.committed {
		t.Error("транзакция не зафиксирована")
	}
}

// решение одностороннее: второе решение по той же записи проигрывает
// условному UPDATE и получает ErrAlreadyResolved, второго начисления нет
func TestResolveTwiceSecondLoses(t *testing.T) {
	svc, purchases, balances, _ := newTestPurchaseService(pendingPurchase(t))
	ctx := context.Background()

	if _, err := svc.Resolve(ctx, 1, DecisionApprove, ""); err != nil {
		t.Fatalf("первое решение упало: %v", err)
	}

	_, err := svc.Resolve(ctx, 1, DecisionReject, "передумал")
	if !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("повторное решение: err = %v, ожидался ErrAlreadyResolved", err)
	}

	if purchases.record.Status != domain.PurchaseStatusApproved {
		t.Errorf("статус %s, повторное решение не должно менять approved", purchases.record.Status)
	}
	if len(balances.credits) != 1 {
		t.Errorf("начислений %d после гонки, ожидалось одно", len(balances.credits))
	}
	if purchases.resolveCalls != 2 {
		t.Errorf("условный UPDATE вызывался %d раз, ожидалось 2", purchases.resolveCalls)
	}
}

// reject закрывает заявку без начисления баланса
func TestResolveRejectNoCredit(t *testing.T) {
	svc, purchases, balances, _ := newTestPurchaseService(pendingPurchase(t))

	resolved, err := svc.Resolve(context.Background(), 1, DecisionReject, "перевод не пришел")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if resolved.Status != domain.PurchaseStatusRejected {
		t.Errorf("статус %s, ожидался rejected", resolved.Status)
	}
	if len(balances.credits) != 0 {
		t.Errorf("начислений %d, при reject их быть не должно", len(balances.credits))
	}
	if purchases.record.AdminNotes != "перевод не пришел" {
		t.Errorf("заметка %q не сохранилась", purchases.record.AdminNotes)
	}
}

func TestResolveUnknownDecision(t *testing.T) {
	svc, purchases, _, _ := newTestPurchaseService(pendingPurchase(t))

	if _, err := svc.Resolve(context.Background(), 1, Decision("maybe"), ""); !errors.Is(err, ErrUnknownDecision) {
		t.Errorf("err = %v, ожидался ErrUnknownDecision", err)
	}
	if purchases.resolveCalls != 0 {
		t.Error("до базы дошло решение, которое должно было отсечься раньше")
	}
}

func TestResolveNotFound(t *testing.T) {
	svc, _, _, _ := newTestPurchaseService(nil)

	if _, err := svc.Resolve(context.Background(), 99, DecisionApprove, ""); !errors.Is(err, ErrPurchaseNotFound) {
		t.Errorf("err = %v, ожидался ErrPurchaseNotFound", err)
	}
}
