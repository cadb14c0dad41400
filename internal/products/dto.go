package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tcommerce/tcommerce-backend/pkg/db/models"
	"github.com/tcommerce/tcommerce-backend/pkg/pagination"
)

// ProductDTO is the transport shape for catalog products.
type ProductDTO struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	Description   *string          `json:"description,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	CategoryID    *uuid.UUID       `json:"category_id,omitempty"`
	CategoryName  *string          `json:"category_name,omitempty"`
	SKU           string           `json:"sku"`
	StockQuantity int              `json:"stock_quantity"`
	InStock       bool             `json:"in_stock"`
	ImageURL      *string          `json:"image_url,omitempty"`
	IsActive      bool             `json:"is_active"`
	IsFeatured    bool             `json:"is_featured"`
	Brand         *string          `json:"brand,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// CreateProductRequest carries the payload for creating a product.
type CreateProductRequest struct {
	Name          string           `json:"name" validate:"required,max=200"`
	Description   *string          `json:"description,omitempty"`
	Price         decimal.Decimal  `json:"price" validate:"required"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	CategoryID    *uuid.UUID       `json:"category_id,omitempty"`
	SKU           string           `json:"sku" validate:"required,max=64"`
	StockQuantity int              `json:"stock_quantity" validate:"gte=0"`
	ImageURL      *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	IsFeatured    bool             `json:"is_featured"`
	Brand         *string          `json:"brand,omitempty"`
}

// UpdateProductRequest carries a partial product update.
type UpdateProductRequest struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	CategoryID    *uuid.UUID       `json:"category_id,omitempty"`
	StockQuantity *int             `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	ImageURL      *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	IsActive      *bool            `json:"is_active,omitempty"`
	IsFeatured    *bool            `json:"is_featured,omitempty"`
	Brand         *string          `json:"brand,omitempty"`
}

// UpdateStockRequest replaces the absolute stock level.
type UpdateStockRequest struct {
	StockQuantity int `json:"stock_quantity" validate:"gte=0"`
}

// ListFilters describe the supported filter knobs for the browse endpoint.
type ListFilters struct {
	CategoryID   *uuid.UUID
	FeaturedOnly bool
	ActiveOnly   bool
	Query        string
	Sort         string
}

// ListProductsInput captures the inputs needed to paginate/filter products.
type ListProductsInput struct {
	Filters    ListFilters
	Pagination pagination.Params
}

// ProductListResponse is the paginated browse envelope.
type ProductListResponse struct {
	Products []ProductDTO `json:"products"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	Limit    int          `json:"limit"`
	Pages    int          `json:"pages"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}

	dto := &ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		CategoryID:    p.CategoryID,
		SKU:           p.SKU,
		StockQuantity: p.StockQuantity,
		InStock:       p.StockQuantity > 0,
		ImageURL:      p.ImageURL,
		IsActive:      p.IsActive,
		IsFeatured:    p.IsFeatured,
		Brand:         p.Brand,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.Category != nil {
		name := p.Category.Name
		dto.CategoryName = &name
	}
	return dto
}

func FromModels(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
