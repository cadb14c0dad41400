package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tcommerce/tcommerce-backend/pkg/db/models"
	pkgerrors "github.com/tcommerce/tcommerce-backend/pkg/errors"
)

func TestServiceCreateAndGet(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCategoryRequest{Name: "  Electronics  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Electronics" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if !created.IsActive {
		t.Fatal("expected new category to be active")
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("expected matching id")
	}

	_, err = svc.Create(ctx, CreateCategoryRequest{Name: "Electronics"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict on duplicate name, got %v", err)
	}
}

func TestServiceUpdate(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCategoryRequest{Name: "Books"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Books & Media"
	inactive := false
	updated, err := svc.Update(ctx, created.ID, UpdateCategoryRequest{Name: &name, IsActive: &inactive})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != name || updated.IsActive {
		t.Fatalf("unexpected updated state: %+v", updated)
	}

	_, err = svc.Update(ctx, uuid.New(), UpdateCategoryRequest{Name: &name})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceListFiltersInactive(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateCategoryRequest{Name: "Active"}); err != nil {
		t.Fatalf("create active: %v", err)
	}
	hidden, err := svc.Create(ctx, CreateCategoryRequest{Name: "Hidden"})
	if err != nil {
		t.Fatalf("create hidden: %v", err)
	}
	off := false
	if _, err := svc.Update(ctx, hidden.ID, UpdateCategoryRequest{IsActive: &off}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	visible, err := svc.List(ctx, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 1 || visible[0].Name != "Active" {
		t.Fatalf("expected only active category, got %+v", visible)
	}

	all, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected both categories, got %d", len(all))
	}
}

func TestServiceDeleteBlockedByProducts(t *testing.T) {
	t.Parallel()

	svc, db := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCategoryRequest{Name: "Garden"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	product := models.Product{
		ID:         uuid.New(),
		Name:       "Shovel",
		SKU:        "SKU-" + uuid.NewString(),
		CategoryID: &created.ID,
		IsActive:   true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	err = svc.Delete(ctx, created.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict while products remain, got %v", err)
	}

	if err := db.Delete(&models.Product{}, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("remove product: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err = svc.Get(ctx, created.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc, err := NewService(ServiceParams{Repo: NewRepository(db)})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, db
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:categories_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  description TEXT,
  image_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL DEFAULT 0,
  original_price NUMERIC,
  category_id TEXT,
  sku TEXT NOT NULL UNIQUE,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  image_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  is_featured INTEGER NOT NULL DEFAULT 0,
  brand TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	} {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}
