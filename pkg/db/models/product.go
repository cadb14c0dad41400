package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents the canonical catalog listing.
type Product struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string           `gorm:"column:name;not null"`
	Description   *string          `gorm:"column:description"`
	Price         decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null"`
	OriginalPrice *decimal.Decimal `gorm:"column:original_price;type:numeric(10,2)"`
	CategoryID    *uuid.UUID       `gorm:"column:category_id;type:uuid"`
	Category      *Category        `gorm:"foreignKey:CategoryID"`
	SKU           string           `gorm:"column:sku;not null;uniqueIndex"`
	StockQuantity int              `gorm:"column:stock_quantity;not null;default:0"`
	ImageURL      *string          `gorm:"column:image_url"`
	IsActive      bool             `gorm:"column:is_active;not null;default:true"`
	IsFeatured    bool             `gorm:"column:is_featured;not null;default:false"`
	Brand         *string          `gorm:"column:brand"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
