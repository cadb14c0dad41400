package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tcommerce/tcommerce-backend/pkg/db/models"
)

// AddItemRequest carries the payload for adding stock to the cart.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
}

// UpdateQuantityRequest replaces the absolute quantity of an existing line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// CartLineDTO is the transport shape of a single cart line.
type CartLineDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CartViewDTO is the joined cart read model. Lines referencing inactive
// products are filtered out; the summary is computed from what remains.
type CartViewDTO struct {
	Items       []CartLineDTO `json:"items"`
	TotalItems  int           `json:"total_items"`
	TotalAmount string        `json:"total_amount"`
}

// ClearCartResponse reports how many lines were removed.
type ClearCartResponse struct {
	Deleted int64 `json:"deleted"`
}

// ItemCountResponse carries the raw line quantity total.
type ItemCountResponse struct {
	Count int `json:"count"`
}

func lineDTO(line *models.CartItem, product *models.Product) *CartLineDTO {
	dto := &CartLineDTO{
		ID:        line.ID,
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
		UnitPrice: line.UnitPrice,
		LineTotal: line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))),
		CreatedAt: line.CreatedAt,
		UpdatedAt: line.UpdatedAt,
	}
	if product != nil {
		dto.ProductName = product.Name
		dto.ImageURL = product.ImageURL
	}
	return dto
}
