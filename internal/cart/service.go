package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tcommerce/tcommerce-backend/pkg/db"
	"github.com/tcommerce/tcommerce-backend/pkg/db/models"
	pkgerrors "github.com/tcommerce/tcommerce-backend/pkg/errors"
)

// Service is the transactional engine reconciling cart mutations against
// live stock levels. Stock is checked, never reserved or decremented.
type Service interface {
	AddItem(ctx context.Context, owner uuid.UUID, req AddItemRequest) (*CartLineDTO, error)
	GetCart(ctx context.Context, owner uuid.UUID) (*CartViewDTO, error)
	UpdateQuantity(ctx context.Context, owner, productID uuid.UUID, quantity int) (*CartLineDTO, error)
	RemoveItem(ctx context.Context, owner, productID uuid.UUID) (*CartLineDTO, error)
	ClearCart(ctx context.Context, owner uuid.UUID) (int64, error)
	ItemCount(ctx context.Context, owner uuid.UUID) (int, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	Repo     *Repository
	TxRunner txRunner
}

// NewService constructs a cart service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: params.Repo, tx: params.TxRunner}, nil
}

// AddItem accumulates quantity onto the (owner, product) line, creating it
// with the product's current price when absent. The whole mutation runs in
// one transaction so a failed stock check leaves the cart untouched.
func (s *service) AddItem(ctx context.Context, owner uuid.UUID, req AddItemRequest) (*CartLineDTO, error) {
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var result *CartLineDTO
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		line, err := repo.FindLineForUpdate(ctx, owner, req.ProductID)
		lineAbsent := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !lineAbsent {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
		}

		product, err := s.availableProduct(ctx, repo, req.ProductID)
		if err != nil {
			return err
		}

		if lineAbsent {
			if req.Quantity > product.StockQuantity {
				return insufficientStock(req.Quantity, product.StockQuantity)
			}
			line = &models.CartItem{
				ID:        uuid.New(),
				UserID:    owner,
				ProductID: req.ProductID,
				Quantity:  req.Quantity,
				UnitPrice: product.Price,
			}
			if err := repo.InsertLine(ctx, line); err != nil {
				if db.IsUniqueViolation(err, "cart_items_user_product_key") || db.IsUniqueViolation(err, "") {
					return pkgerrors.New(pkgerrors.CodeConflict, "cart line was created concurrently")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert cart line")
			}
		} else {
			newQuantity := line.Quantity + req.Quantity
			if newQuantity > product.StockQuantity {
				return insufficientStock(newQuantity, product.StockQuantity)
			}
			if err := repo.UpdateLineQuantity(ctx, line.ID, newQuantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
			}
			line.Quantity = newQuantity
		}

		result = lineDTO(line, product)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return result, nil
}

// GetCart returns the joined cart view. Lines whose product is missing or
// inactive are filtered from the view but stay in storage.
func (s *service) GetCart(ctx context.Context, owner uuid.UUID) (*CartViewDTO, error) {
	lines, err := s.repo.ListLines(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart lines")
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	productsByID, err := s.repo.FindProducts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart products")
	}

	view := &CartViewDTO{Items: make([]CartLineDTO, 0, len(lines))}
	total := decimal.Zero
	for i := range lines {
		line := &lines[i]
		product, ok := productsByID[line.ProductID]
		if !ok || !product.IsActive {
			continue
		}
		dto := lineDTO(line, &product)
		view.Items = append(view.Items, *dto)
		view.TotalItems += line.Quantity
		total = total.Add(dto.LineTotal)
	}
	view.TotalAmount = total.StringFixed(2)
	return view, nil
}

// UpdateQuantity replaces the line's quantity. It never creates a line.
func (s *service) UpdateQuantity(ctx context.Context, owner, productID uuid.UUID, quantity int) (*CartLineDTO, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var result *CartLineDTO
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		line, err := repo.FindLineForUpdate(ctx, owner, productID)
		lineAbsent := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !lineAbsent {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
		}

		product, err := s.availableProduct(ctx, repo, productID)
		if err != nil {
			return err
		}
		if quantity > product.StockQuantity {
			return insufficientStock(quantity, product.StockQuantity)
		}
		if lineAbsent {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}

		if err := repo.UpdateLineQuantity(ctx, line.ID, quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
		}
		line.Quantity = quantity
		result = lineDTO(line, product)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return result, nil
}

// RemoveItem deletes the line and returns its prior state.
func (s *service) RemoveItem(ctx context.Context, owner, productID uuid.UUID) (*CartLineDTO, error) {
	var result *CartLineDTO
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		line, err := repo.FindLine(ctx, owner, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
		}

		// Removal works even when the product has since been retired.
		var product *models.Product
		if p, err := repo.FindProduct(ctx, productID); err == nil {
			product = p
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}

		deleted, err := repo.DeleteLine(ctx, owner, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart line")
		}
		if deleted == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		result = lineDTO(line, product)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return result, nil
}

// ClearCart removes every line for the owner. Clearing an empty cart
// succeeds with a zero count.
func (s *service) ClearCart(ctx context.Context, owner uuid.UUID) (int64, error) {
	deleted, err := s.repo.DeleteAll(ctx, owner)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return deleted, nil
}

// ItemCount totals line quantities with no product availability filtering,
// so it can exceed what GetCart shows when products go inactive.
func (s *service) ItemCount(ctx context.Context, owner uuid.UUID) (int, error) {
	count, err := s.repo.SumQuantities(ctx, owner)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count cart items")
	}
	return count, nil
}

func (s *service) availableProduct(ctx context.Context, repo *Repository, productID uuid.UUID) (*models.Product, error) {
	product, err := repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeProductUnavailable, "product not found or inactive")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeProductUnavailable, "product not found or inactive")
	}
	return product, nil
}

func insufficientStock(requested, available int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock available").
		WithDetails(map[string]any{
			"requested": requested,
			"available": available,
		})
}
