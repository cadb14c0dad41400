package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tcommerce/tcommerce-backend/api/middleware"
	"github.com/tcommerce/tcommerce-backend/api/responses"
	"github.com/tcommerce/tcommerce-backend/api/validators"
	cartsvc "github.com/tcommerce/tcommerce-backend/internal/cart"
	pkgerrors "github.com/tcommerce/tcommerce-backend/pkg/errors"
	"github.com/tcommerce/tcommerce-backend/pkg/logger"
	"github.com/tcommerce/tcommerce-backend/pkg/metrics"
)

// CartAddItem adds stock-bounded quantity of a product to the caller's cart.
func CartAddItem(svc cartsvc.Service, m *metrics.HTTPMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := cartOwner(r, svc, logg, w)
		if !ok {
			return
		}

		var payload cartsvc.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.AddItem(r.Context(), owner, payload)
		recordCartOutcome(m, "add_item", err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, line)
	}
}

// CartView returns the joined cart read model for the caller.
func CartView(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := cartOwner(r, svc, logg, w)
		if !ok {
			return
		}

		view, err := svc.GetCart(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// CartUpdateQuantity replaces the absolute quantity of an existing cart line.
func CartUpdateQuantity(svc cartsvc.Service, m *metrics.HTTPMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := cartOwner(r, svc, logg, w)
		if !ok {
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartsvc.UpdateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.UpdateQuantity(r.Context(), owner, productID, payload.Quantity)
		recordCartOutcome(m, "update_quantity", err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, line)
	}
}

// CartRemoveItem removes a cart line and reports its prior state.
func CartRemoveItem(svc cartsvc.Service, m *metrics.HTTPMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := cartOwner(r, svc, logg, w)
		if !ok {
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.RemoveItem(r.Context(), owner, productID)
		recordCartOutcome(m, "remove_item", err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, line)
	}
}

// CartClear deletes every line in the caller's cart.
func CartClear(svc cartsvc.Service, m *metrics.HTTPMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := cartOwner(r, svc, logg, w)
		if !ok {
			return
		}

		deleted, err := svc.ClearCart(r.Context(), owner)
		recordCartOutcome(m, "clear", err)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cartsvc.ClearCartResponse{Deleted: deleted})
	}
}

// CartItemCount returns the summed line quantities for badge rendering.
func CartItemCount(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := cartOwner(r, svc, logg, w)
		if !ok {
			return
		}

		count, err := svc.ItemCount(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cartsvc.ItemCountResponse{Count: count})
	}
}

func cartOwner(r *http.Request, svc cartsvc.Service, logg *logger.Logger, w http.ResponseWriter) (uuid.UUID, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
		return uuid.Nil, false
	}
	owner := middleware.UserIDFromContext(r.Context())
	if owner == uuid.Nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return uuid.Nil, false
	}
	return owner, true
}

func recordCartOutcome(m *metrics.HTTPMetrics, operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
		if typed := pkgerrors.As(err); typed != nil {
			outcome = strings.ToLower(string(typed.Code()))
		}
	}
	m.IncCartOperation(operation, outcome)
}
