package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	categorysvc "github.com/tcommerce/tcommerce-backend/internal/categories"
)

type stubCategoryService struct {
	category   *categorysvc.CategoryDTO
	categories []categorysvc.CategoryDTO
	err        error
	lastUpdate categorysvc.UpdateCategoryRequest
}

func (s *stubCategoryService) Create(ctx context.Context, req categorysvc.CreateCategoryRequest) (*categorysvc.CategoryDTO, error) {
	return s.category, s.err
}

func (s *stubCategoryService) Update(ctx context.Context, id uuid.UUID, req categorysvc.UpdateCategoryRequest) (*categorysvc.CategoryDTO, error) {
	s.lastUpdate = req
	return s.category, s.err
}

func (s *stubCategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func (s *stubCategoryService) Get(ctx context.Context, id uuid.UUID) (*categorysvc.CategoryDTO, error) {
	return s.category, s.err
}

func (s *stubCategoryService) List(ctx context.Context, includeInactive bool) ([]categorysvc.CategoryDTO, error) {
	return s.categories, s.err
}

func TestDeactivateCategorySetsInactive(t *testing.T) {
	svc := &stubCategoryService{category: &categorysvc.CategoryDTO{ID: uuid.New()}}
	handler := DeactivateCategory(svc, nil)

	id := uuid.NewString()
	req := newRequestWithPathParam(http.MethodPatch, "/api/v1/categories/"+id+"/deactivate", "categoryId", id)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastUpdate.IsActive == nil || *svc.lastUpdate.IsActive {
		t.Fatalf("expected is_active=false update, got %+v", svc.lastUpdate.IsActive)
	}
}

func TestDeactivateCategoryRejectsBadID(t *testing.T) {
	handler := DeactivateCategory(&stubCategoryService{}, nil)

	req := newRequestWithPathParam(http.MethodPatch, "/api/v1/categories/bogus/deactivate", "categoryId", "bogus")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
