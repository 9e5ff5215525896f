package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moodlog/internal/db"
	"gorm.io/gorm"
)

func TestUserServiceRegisterAndAuthenticate(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewUserService(gdb)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Email: " Alex@Example.com ", Password: "secret123", DisplayName: "Alex"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "alex@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.Password == "secret123" {
		t.Fatal("expected hashed password")
	}

	var profile db.Profile
	if err := gdb.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		t.Fatalf("expected profile for new user: %v", err)
	}
	if profile.DisplayName != "Alex" {
		t.Fatalf("unexpected display name: %q", profile.DisplayName)
	}
	var coins db.UserCoins
	if err := gdb.Where("user_id = ?", user.ID).First(&coins).Error; err != nil {
		t.Fatalf("expected ledger for new user: %v", err)
	}
	if coins.CurrentBalance != 0 {
		t.Fatalf("expected empty ledger, got %+v", coins)
	}

	authed, err := svc.Authenticate(ctx, "ALEX@example.com", "secret123")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, authed.ID)
	}

	if _, err := svc.Authenticate(ctx, "alex@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestUserServiceRegisterValidation(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewUserService(gdb)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "not-an-email", Password: "secret123"}); !errors.Is(err, ErrInvalidSubmission) {
		t.Fatalf("expected ErrInvalidSubmission for bad email, got %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "123"}); !errors.Is(err, ErrInvalidSubmission) {
		t.Fatalf("expected ErrInvalidSubmission for short password, got %v", err)
	}

	if _, err := svc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "secret123"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Email: "A@B.co", Password: "secret123"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if _, err := svc.Get(ctx, 999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserServiceRegisterConcurrentEmailConflict(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewUserService(gdb)

	// 在存在性检查之后、插入之前写入同邮箱记录，模拟另一请求抢先注册
	injected := false
	err := gdb.Callback().Create().Before("gorm:create").Register("test:concurrent_register", func(tx *gorm.DB) {
		if injected || tx.Statement.Table != "users" {
			return
		}
		injected = true
		now := time.Now()
		if err := tx.Session(&gorm.Session{NewDB: true}).
			Exec("INSERT INTO users (created_at, updated_at, email, password) VALUES (?, ?, ?, ?)", now, now, "race@example.com", "x").
			Error; err != nil {
			t.Errorf("inject conflicting user: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, err = svc.Register(context.Background(), RegisterInput{Email: "race@example.com", Password: "secret123"})
	if !injected {
		t.Fatal("expected conflicting insert to run")
	}
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}
