package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tcommerce/tcommerce-backend/pkg/db"
	"github.com/tcommerce/tcommerce-backend/pkg/db/models"
	pkgerrors "github.com/tcommerce/tcommerce-backend/pkg/errors"
	"github.com/tcommerce/tcommerce-backend/pkg/pagination"
)

const featuredLimit = 12

// Service defines the behavior needed by the products controller.
type Service interface {
	List(ctx context.Context, input ListProductsInput) (*ProductListResponse, error)
	Featured(ctx context.Context) ([]ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Create(ctx context.Context, req CreateProductRequest) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error)
	UpdateStock(ctx context.Context, id uuid.UUID, req UpdateStockRequest) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	UpdateStock(ctx context.Context, id uuid.UUID, quantity int) error
	List(ctx context.Context, input ListProductsInput) ([]models.Product, int64, error)
	ListFeatured(ctx context.Context, limit int) ([]models.Product, error)
}

type service struct {
	repo repository
}

// ServiceParams bundles the dependencies required to build a products service.
type ServiceParams struct {
	Repo repository
}

// NewService constructs a products service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("products repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) List(ctx context.Context, input ListProductsInput) (*ProductListResponse, error) {
	page := input.Pagination.Normalize()
	input.Pagination = page

	rows, total, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	return &ProductListResponse{
		Products: FromModels(rows),
		Total:    total,
		Page:     page.Page,
		Limit:    page.Limit,
		Pages:    pagination.Pages(total, page.Limit),
	}, nil
}

func (s *service) Featured(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.ListFeatured(ctx, featuredLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list featured products")
	}
	return FromModels(rows), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(product), nil
}

func (s *service) Create(ctx context.Context, req CreateProductRequest) (*ProductDTO, error) {
	name := strings.TrimSpace(req.Name)
	sku := strings.TrimSpace(req.SKU)
	if name == "" || sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and sku are required")
	}
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if req.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity cannot be negative")
	}

	if _, err := s.repo.FindBySKU(ctx, sku); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check sku")
	}

	created, err := s.repo.Create(ctx, &models.Product{
		ID:            uuid.New(),
		Name:          name,
		Description:   req.Description,
		Price:         req.Price.Round(2),
		OriginalPrice: roundPtr(req.OriginalPrice),
		CategoryID:    req.CategoryID,
		SKU:           sku,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
		IsActive:      true,
		IsFeatured:    req.IsFeatured,
		Brand:         req.Brand,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		product.Price = req.Price.Round(2)
	}
	if req.OriginalPrice != nil {
		product.OriginalPrice = roundPtr(req.OriginalPrice)
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity cannot be negative")
		}
		product.StockQuantity = *req.StockQuantity
	}
	if req.ImageURL != nil {
		product.ImageURL = req.ImageURL
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}
	if req.Brand != nil {
		product.Brand = req.Brand
	}

	product.Category = nil
	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	return s.Get(ctx, updated.ID)
}

func (s *service) UpdateStock(ctx context.Context, id uuid.UUID, req UpdateStockRequest) (*ProductDTO, error) {
	if req.StockQuantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity cannot be negative")
	}

	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStock(ctx, id, req.StockQuantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update stock")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

func (s *service) find(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

func roundPtr(value *decimal.Decimal) *decimal.Decimal {
	if value == nil {
		return nil
	}
	rounded := value.Round(2)
	return &rounded
}
