package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/tcommerce/tcommerce-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes cart line persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindLineForUpdate loads the (user, product) line and locks it for the
// duration of the enclosing transaction. Row locking only applies on
// postgres; sqlite serializes writers on its own.
func (r *Repository) FindLineForUpdate(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var line models.CartItem
	if err := query.
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// FindLine loads the (user, product) line without locking.
func (r *Repository) FindLine(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	var line models.CartItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// FindProduct reads the current product row. Inside a transaction this is
// the freshest committed snapshot.
func (r *Repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// InsertLine persists a new cart line.
func (r *Repository) InsertLine(ctx context.Context, line *models.CartItem) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// UpdateLineQuantity replaces the quantity for the given line.
func (r *Repository) UpdateLineQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

// DeleteLine removes the (user, product) line and reports whether a row
// was deleted.
func (r *Repository) DeleteLine(ctx context.Context, userID, productID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

// DeleteAll removes every line for the user and returns the deleted count.
func (r *Repository) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{})
	return result.RowsAffected, result.Error
}

// ListLines returns the user's lines, newest first.
func (r *Repository) ListLines(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var lines []models.CartItem
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// FindProducts loads the referenced products keyed by id.
func (r *Repository) FindProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// SumQuantities totals the user's line quantities with no product filtering.
func (r *Repository) SumQuantities(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	if err := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
