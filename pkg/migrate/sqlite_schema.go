package migrate

import (
	"fmt"

	"gorm.io/gorm"
)

// sqliteSchema mirrors the goose migrations for SQLite, which backs tests and
// the USE_SQLITE dev mode. The partial unique indexes are the slot and
// plan-session guards and must stay identical to the Postgres ones.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		phone TEXT,
		role TEXT NOT NULL DEFAULT 'client',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS services (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 60,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS service_prices (
		id TEXT PRIMARY KEY,
		service_id TEXT NOT NULL,
		plan_name TEXT NOT NULL,
		sessions INTEGER NOT NULL CHECK (sessions >= 1),
		price_per_session_cents INTEGER NOT NULL,
		total_cents INTEGER NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (service_id, plan_name)
	)`,
	`CREATE TABLE IF NOT EXISTS partners (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		name TEXT NOT NULL,
		phone TEXT,
		email TEXT,
		commission_pct NUMERIC NOT NULL DEFAULT 0 CHECK (commission_pct >= 0 AND commission_pct <= 100),
		avatar_url TEXT,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS plans (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		service_id TEXT NOT NULL,
		plan_name TEXT NOT NULL,
		total_sessions INTEGER NOT NULL CHECK (total_sessions >= 1),
		completed_sessions INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		created_by TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME,
		updated_at DATETIME,
		CONSTRAINT plans_completed_bounds CHECK (completed_sessions BETWEEN 0 AND total_sessions)
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		service_id TEXT NOT NULL,
		slot_date TEXT NOT NULL,
		slot_time TEXT NOT NULL,
		status TEXT NOT NULL,
		partner_id TEXT,
		plan_id TEXT,
		session_number INTEGER,
		source TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		extras TEXT NOT NULL DEFAULT '{}',
		reminder_sent_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME,
		CHECK (session_number IS NULL OR (plan_id IS NOT NULL AND session_number >= 1))
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_appointments_active_slot
		ON appointments (slot_date, slot_time) WHERE status <> 'cancelled'`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_appointments_active_plan_session
		ON appointments (plan_id, session_number) WHERE status <> 'cancelled' AND plan_id IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		plan_id TEXT,
		appointment_id TEXT,
		partner_id TEXT,
		amount_cents INTEGER NOT NULL CHECK (amount_cents > 0),
		method TEXT NOT NULL,
		paid_at DATETIME NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		recorded_by TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS notification_deliveries (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL,
		appointment_id TEXT,
		channel TEXT NOT NULL,
		recipient TEXT NOT NULL,
		template TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		sent_at DATETIME,
		created_at DATETIME,
		UNIQUE (event_id, channel)
	)`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME,
		published_at DATETIME,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		next_attempt_at DATETIME,
		last_error TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS outbox_dlq (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL UNIQUE,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		error_reason TEXT NOT NULL,
		error_message TEXT,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		failed_at DATETIME,
		created_at DATETIME
	)`,
}

// ApplySQLiteSchema creates every table and index on a SQLite connection.
func ApplySQLiteSchema(conn *gorm.DB) error {
	for _, stmt := range sqliteSchema {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("sqlite schema: %w", err)
		}
	}
	return nil
}
