package db

import (
	"context"
	"time"

	"presale_webapp/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect открывает пул соединений и накатывает схему
func Connect(databaseURL string) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("не удалось создать пул соединений", "error", err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("база данных недоступна", "error", err)
	}

	if err := migrate(ctx, pool); err != nil {
		logger.Fatal("не удалось применить схему", "error", err)
	}

	logger.Info("database connected")
	return pool
}

// migrate применяет идемпотентную схему при старте
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		balance NUMERIC(30, 8) NOT NULL DEFAULT 0 CHECK (balance >= 0),
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS signups (
		id BIGSERIAL PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT 'landing',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS purchases (
		id BIGSERIAL PRIMARY KEY,
		order_id TEXT NOT NULL UNIQUE,
		user_id BIGINT NOT NULL REFERENCES users(id),
		crypto_symbol TEXT NOT NULL,
		network TEXT NOT NULL DEFAULT '',
		crypto_amount NUMERIC(30, 12) NOT NULL,
		token_amount NUMERIC(30, 8) NOT NULL,
		bonus_amount NUMERIC(30, 8) NOT NULL,
		total_amount NUMERIC(30, 8) NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		admin_notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		resolved_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_purchases_user ON purchases(user_id);
	CREATE INDEX IF NOT EXISTS idx_purchases_status ON purchases(status);
	CREATE INDEX IF NOT EXISTS idx_purchases_created ON purchases(created_at);

	CREATE TABLE IF NOT EXISTS audit_log (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL DEFAULT 0,
		action TEXT NOT NULL,
		category TEXT NOT NULL,
		details JSONB NOT NULL DEFAULT '{}',
		ip TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_audit_user ON audit_log(user_id);
	CREATE INDEX IF NOT EXISTS idx_audit_created ON audit_log(created_at);
	`

	_, err := pool.Exec(ctx, schema)
	return err
}
