package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/procurehub/portal/pkg/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string `gorm:"uniqueIndex"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
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
	client := NewFromGorm(db)

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
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
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
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
	client := NewFromGorm(newTestDB(t))
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	if client.Dialect() != "sqlite" {
		t.Fatalf("expected sqlite dialect, got %q", client.Dialect())
	}
}

func TestNewRequiresDSNForPostgres(t *testing.T) {
	if _, err := New(context.Background(), config.DBConfig{}, Options{}, nil); err == nil {
		t.Fatal("expected missing dsn error")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	db := newTestDB(t)
	if err := db.Create(&testModel{Name: "dup"}).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	err := db.Create(&testModel{Name: "dup"}).Error
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected sqlite unique violation, got %v", err)
	}

	pgErr := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})
	if !IsUniqueViolation(pgErr, "users_username_key") {
		t.Fatalf("expected pg unique violation")
	}
	if IsUniqueViolation(pgErr, "users_email_key") {
		t.Fatalf("constraint mismatch should not match")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatalf("nil is not a violation")
	}
}

func TestIsNotFound(t *testing.T) {
	db := newTestDB(t)
	var m testModel
	err := db.First(&m, "name = ?", "missing").Error
	if !IsNotFound(err) {
		t.Fatalf("expected record not found, got %v", err)
	}
}
