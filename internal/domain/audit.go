package domain

import "time"

// Логирование мастхев важных действий
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Категории совершенных действий
const (
	AuditCategoryAuth     = "auth"
	AuditCategoryPurchase = "purchase"
	AuditCategoryBalance  = "balance"
	AuditCategoryAdmin    = "admin"
)

const (
	// Авторизация
	AuditActionLogin = "login"

	// Жизненный цикл покупки
	AuditActionPurchaseCreate  = "purchase_create"
	AuditActionPurchaseApprove = "purchase_approve"
	AuditActionPurchaseReject  = "purchase_reject"
	AuditActionPurchaseDelete  = "purchase_delete"

	// Действия админов с балансами
	AuditActionAdminSetBalance = "admin_set_balance"
)
