package repository

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var errBadRow = errors.New("битая строка")

// pgx.Rows с единственной строкой, которая не сканируется
type badRows struct{ calls int }

func (r *badRows) Close()                                       {}
func (r *badRows) Err() error                                   { return nil }
func (r *badRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *badRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *badRows) Next() bool                                   { r.calls++; return r.calls == 1 }
func (r *badRows) Scan(dest ...any) error                       { return errBadRow }
func (r *badRows) Values() ([]any, error)                       { return nil, nil }
func (r *badRows) RawValues() [][]byte                          { return nil }
func (r *badRows) Conn() *pgx.Conn                              { return nil }

// ошибка скана должна всплывать, а не молча выкидывать строку
func TestScanPurchasesPropagatesError(t *testing.T) {
	if _, err := scanPurchases(&badRows{}); !errors.Is(err, errBadRow) {
		t.Errorf("err = %v, ожидалась ошибка скана", err)
	}
}

func TestScanAuditLogsPropagatesError(t *testing.T) {
	if _, err := scanAuditLogs(&badRows{}); !errors.Is(err, errBadRow) {
		t.Errorf("err = %v, ожидалась ошибка скана", err)
	}
}
