// Package dbtest opens throwaway SQLite databases that mirror the Postgres
// schema closely enough for repository and service tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var schema = []string{
	`CREATE TABLE customers (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL,
		secondary_email TEXT,
		secondary_phone TEXT,
		address TEXT,
		city TEXT,
		state TEXT,
		postal_code TEXT,
		sms_opt_in BOOLEAN NOT NULL DEFAULT 0,
		email_opt_in BOOLEAN NOT NULL DEFAULT 1,
		tags TEXT NOT NULL DEFAULT '{}',
		total_jobs INTEGER NOT NULL DEFAULT 0,
		lifetime_value NUMERIC NOT NULL DEFAULT 0,
		notes TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE technicians (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'available',
		rating INTEGER NOT NULL DEFAULT 0,
		zip_codes TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE quote_submissions (
		id TEXT PRIMARY KEY,
		customer_id TEXT REFERENCES customers(id) ON DELETE SET NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		mobile_phone TEXT NOT NULL,
		email TEXT NOT NULL,
		location TEXT NOT NULL,
		zip_code TEXT NOT NULL,
		division TEXT NOT NULL,
		service_type TEXT NOT NULL,
		vin TEXT,
		vehicle_year TEXT,
		vehicle_make TEXT,
		vehicle_model TEXT,
		selected_windows TEXT NOT NULL DEFAULT '{}',
		selected_wheels TEXT NOT NULL DEFAULT '{}',
		damage_description TEXT,
		uploaded_files TEXT,
		status TEXT NOT NULL DEFAULT 'submitted',
		submitted_at DATETIME NOT NULL,
		processed_at DATETIME,
		created_at DATETIME
	)`,
	`CREATE TABLE jobs (
		id TEXT PRIMARY KEY,
		quote_id TEXT UNIQUE REFERENCES quote_submissions(id) ON DELETE SET NULL,
		customer_id TEXT REFERENCES customers(id) ON DELETE SET NULL,
		customer_name TEXT NOT NULL,
		customer_email TEXT NOT NULL,
		customer_phone TEXT NOT NULL,
		vehicle_year TEXT,
		vehicle_make TEXT,
		vehicle_model TEXT,
		vin TEXT,
		division TEXT NOT NULL,
		service_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		amount NUMERIC NOT NULL DEFAULT 0,
		form_data TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE activity_logs (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		description TEXT NOT NULL,
		customer_id TEXT REFERENCES customers(id) ON DELETE SET NULL,
		entity_type TEXT,
		entity_id TEXT,
		details TEXT,
		created_at DATETIME
	)`,
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'staff',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
}

// Open returns an in-memory database private to the calling test with every
// table created. The pool is pinned to one connection so shared-cache locking
// never surfaces; callers inside a transaction must use the tx handle.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return conn
}
