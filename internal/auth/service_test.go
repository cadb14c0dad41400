package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tcommerce/tcommerce-backend/internal/users"
	pkgAuth "github.com/tcommerce/tcommerce-backend/pkg/auth"
	"github.com/tcommerce/tcommerce-backend/pkg/config"
	pkgerrors "github.com/tcommerce/tcommerce-backend/pkg/errors"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "tcommerce",
	ExpirationMinutes: 30,
}

func TestServiceRegisterIssuesToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "Shopper@Example.com",
		Password:  "super-secret-1",
		FirstName: "Shopper",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User == nil || resp.User.Email != "shopper@example.com" {
		t.Fatalf("expected normalized email, got %+v", resp.User)
	}
	if resp.TokenType != "Bearer" || resp.ExpiresIn != 30*60 {
		t.Fatalf("unexpected token envelope: %+v", resp)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Fatalf("expected user id claim %s, got %s", resp.User.ID, claims.UserID)
	}
}

func TestServiceRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	req := RegisterRequest{
		Email:     "dup@example.com",
		Password:  "super-secret-1",
		FirstName: "First",
	}

	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(context.Background(), req)
	if err == nil {
		t.Fatal("expected conflict on duplicate email")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestServiceLogin(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	password := "super-secret-1"
	reg, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "login@example.com",
		Password:  password,
		FirstName: "Login",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "login@example.com",
		Password: password,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.User.ID != reg.User.ID {
		t.Fatalf("expected same user id")
	}
	if resp.User.LastLoginAt == nil {
		t.Fatal("expected last_login_at to be recorded")
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "login@example.com",
		Password: "wrong-password",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for bad password, got %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "missing@example.com",
		Password: password,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for unknown email, got %v", err)
	}
}

func TestServiceProfile(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	reg, err := svc.Register(context.Background(), RegisterRequest{
		Email:     "profile@example.com",
		Password:  "super-secret-1",
		FirstName: "Profile",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.Profile(context.Background(), reg.User.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if resp.User.Email != "profile@example.com" {
		t.Fatalf("unexpected profile user: %+v", resp.User)
	}

	_, err = svc.Profile(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for unknown user, got %v", err)
	}
}

func newTestService(t *testing.T) Service {
	t.Helper()
	db := newTestDB(t)
	svc, err := NewService(ServiceParams{
		UserRepo:       users.NewRepository(db),
		TxRunner:       gormTxRunner{db: db},
		PasswordConfig: config.PasswordConfig{},
		JWTConfig:      testJWTConfig,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:auth_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	ddl := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT,
  phone TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	if err := db.Exec(ddl).Error; err != nil {
		t.Fatalf("create users table: %v", err)
	}
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
