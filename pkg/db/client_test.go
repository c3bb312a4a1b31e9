package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Slot string `gorm:"uniqueIndex"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := NewFromDB(db)

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Slot: "2026-03-10 10:00"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Slot: "2026-03-10 11:00"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestPing(t *testing.T) {
	client := NewFromDB(newTestDB(t))
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestIsUniqueViolation_SQLite(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&testModel{Slot: "a"}).Error)
	err := db.Create(&testModel{Slot: "a"}).Error
	require.Error(t, err)

	require.True(t, IsUniqueViolation(err, "", "test_models.slot"))
	require.False(t, IsUniqueViolation(err, "", "test_models.other"))
	require.False(t, IsUniqueViolation(nil, ""))
}

func TestIsUniqueViolation_PostgresDrivers(t *testing.T) {
	pgxErr := &pgconn.PgError{Code: "23505", ConstraintName: "ux_appointments_active_slot"}
	require.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", pgxErr), "ux_appointments_active_slot"))
	require.False(t, IsUniqueViolation(pgxErr, "ux_appointments_active_plan_session"))

	pqErr := &pq.Error{Code: "23505", Constraint: "users_email_key"}
	require.True(t, IsUniqueViolation(pqErr, "users_email_key"))

	checkErr := &pgconn.PgError{Code: "23514", ConstraintName: "plans_completed_bounds"}
	require.True(t, IsCheckViolation(checkErr, "plans_completed_bounds"))
	require.False(t, IsUniqueViolation(checkErr, ""))
}
