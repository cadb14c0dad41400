package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tcommerce/tcommerce-backend/api/middleware"
	cartsvc "github.com/tcommerce/tcommerce-backend/internal/cart"
	pkgerrors "github.com/tcommerce/tcommerce-backend/pkg/errors"
)

type stubCartService struct {
	line  *cartsvc.CartLineDTO
	view  *cartsvc.CartViewDTO
	count int
	err   error
}

func (s stubCartService) AddItem(ctx context.Context, owner uuid.UUID, req cartsvc.AddItemRequest) (*cartsvc.CartLineDTO, error) {
	return s.line, s.err
}

func (s stubCartService) GetCart(ctx context.Context, owner uuid.UUID) (*cartsvc.CartViewDTO, error) {
	return s.view, s.err
}

func (s stubCartService) UpdateQuantity(ctx context.Context, owner, productID uuid.UUID, quantity int) (*cartsvc.CartLineDTO, error) {
	return s.line, s.err
}

func (s stubCartService) RemoveItem(ctx context.Context, owner, productID uuid.UUID) (*cartsvc.CartLineDTO, error) {
	return s.line, s.err
}

func (s stubCartService) ClearCart(ctx context.Context, owner uuid.UUID) (int64, error) {
	return 0, s.err
}

func (s stubCartService) ItemCount(ctx context.Context, owner uuid.UUID) (int, error) {
	return s.count, s.err
}

func TestCartAddItemSuccess(t *testing.T) {
	line := &cartsvc.CartLineDTO{
		ID:        uuid.New(),
		ProductID: uuid.New(),
		Quantity:  2,
		UnitPrice: decimal.RequireFromString("9.99"),
		LineTotal: decimal.RequireFromString("19.98"),
	}
	handler := CartAddItem(stubCartService{line: line}, nil, nil)

	body := `{"product_id":"` + line.ProductID.String() + `","quantity":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), uuid.New(), "shopper@example.com"))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data cartsvc.CartLineDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != line.ID {
		t.Fatalf("unexpected line id: %s", envelope.Data.ID)
	}
	if envelope.Data.Quantity != 2 {
		t.Fatalf("unexpected quantity: %d", envelope.Data.Quantity)
	}
}

func TestCartAddItemInsufficientStock(t *testing.T) {
	svc := stubCartService{err: pkgerrors.New(pkgerrors.CodeInsufficientStock, "requested quantity exceeds available stock")}
	handler := CartAddItem(svc, nil, nil)

	body := `{"product_id":"` + uuid.NewString() + `","quantity":50}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), uuid.New(), "shopper@example.com"))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeInsufficientStock) {
		t.Fatalf("unexpected code: %s", envelope.Error.Code)
	}
}

func TestCartAddItemRejectsBadPayload(t *testing.T) {
	handler := CartAddItem(stubCartService{}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"quantity":0}`))
	req = req.WithContext(middleware.WithUser(req.Context(), uuid.New(), "shopper@example.com"))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartViewMissingUserContext(t *testing.T) {
	handler := CartView(stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartItemCountSuccess(t *testing.T) {
	handler := CartItemCount(stubCartService{count: 7}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/count", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), uuid.New(), "shopper@example.com"))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartsvc.ItemCountResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Count != 7 {
		t.Fatalf("unexpected count: %d", envelope.Data.Count)
	}
}
