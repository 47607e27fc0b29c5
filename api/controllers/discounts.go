package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-backend/api/responses"
	"github.com/angelmondragon/catalog-backend/api/validators"
	"github.com/angelmondragon/catalog-backend/internal/discounts"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type submitDiscountRequest struct {
	Name         string                   `json:"name" validate:"required,max=200"`
	Description  string                   `json:"description" validate:"max=2000"`
	DiscountType string                   `json:"discount_type" validate:"required"`
	Value        decimal.Decimal          `json:"value"`
	StartsAt     time.Time                `json:"starts_at"`
	EndsAt       *time.Time               `json:"ends_at"`
	ProductID    *uuid.UUID               `json:"product_id"`
	CategoryID   *uuid.UUID               `json:"category_id"`
	StoreID      *uuid.UUID               `json:"store_id"`
	NewProduct   *submitNewProductRequest `json:"new_product"`
}

type submitNewProductRequest struct {
	Name         string           `json:"name" validate:"required,max=200"`
	Description  string           `json:"description"`
	BrandName    string           `json:"brand_name" validate:"required"`
	CategoryName string           `json:"category_name" validate:"required"`
	Price        *decimal.Decimal `json:"price"`
	PriceUnit    string           `json:"price_unit"`
	Weight       decimal.Decimal  `json:"weight"`
	ExternalID   *string          `json:"external_id"`
}

// ReadOnlyFields lists keys clients may echo back; submissions always start in
// review.
func (submitDiscountRequest) ReadOnlyFields() []string {
	return []string{"id", "status", "effective_status", "created_at", "updated_at"}
}

func (r submitDiscountRequest) toInput() (discounts.SubmitInput, error) {
	input := discounts.SubmitInput{
		Name:         r.Name,
		Description:  r.Description,
		DiscountType: enums.DiscountType(strings.TrimSpace(r.DiscountType)),
		Value:        r.Value,
		StartsAt:     r.StartsAt,
		EndsAt:       r.EndsAt,
		ProductID:    r.ProductID,
		CategoryID:   r.CategoryID,
		StoreID:      r.StoreID,
	}
	if r.NewProduct != nil {
		unit, err := enums.ParsePriceUnit(strings.TrimSpace(r.NewProduct.PriceUnit))
		if err != nil {
			return discounts.SubmitInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price_unit").
				WithDetails(map[string]any{"field": "new_product.price_unit"})
		}
		input.NewProduct = &discounts.NewProductInput{
			Name:         r.NewProduct.Name,
			Description:  r.NewProduct.Description,
			BrandName:    r.NewProduct.BrandName,
			CategoryName: r.NewProduct.CategoryName,
			Price:        r.NewProduct.Price,
			PriceUnit:    unit,
			Weight:       r.NewProduct.Weight,
			ExternalID:   r.NewProduct.ExternalID,
		}
	}
	return input, nil
}

type transitionDiscountRequest struct {
	Status string `json:"status" validate:"required"`
}

// SubmitDiscount creates a discount in review for the caller.
func SubmitDiscount(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		principal, err := principalFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body submitDiscountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.SubmitDiscount(ctx, principal, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// UserDiscounts lists the caller's own submissions, newest first.
func UserDiscounts(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		principal, err := principalFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params, err := validators.ParseCursorParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListUserDiscounts(ctx, principal, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ModerationQueue lists discounts for moderators, optionally by status.
func ModerationQueue(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		principal, err := principalFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		params, err := validators.ParseCursorParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status, err := validators.ParseQueryEnum(r, "status", enums.ParseDiscountStatus)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListModerationQueue(ctx, principal, status, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ModerationGetDiscount returns one discount with its effective status.
func ModerationGetDiscount(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		principal, err := principalFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		discountID, err := validators.ParseUUIDParam(r, "discountId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.GetDiscount(ctx, principal, discountID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// ModerationTransitionDiscount approves or denies a discount.
func ModerationTransitionDiscount(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		principal, err := principalFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		discountID, err := validators.ParseUUIDParam(r, "discountId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var body transitionDiscountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		status, err := enums.ParseDiscountStatus(strings.TrimSpace(body.Status))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
				WithDetails(map[string]any{"field": "status"}))
			return
		}

		if logg != nil {
			ctx = logg.WithDiscountID(ctx, discountID.String())
		}
		dto, err := svc.TransitionDiscountStatus(ctx, principal, discountID, status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// ProductPrice explains what a product costs right now.
func ProductPrice(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		price, err := svc.ProductPrice(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, price)
	}
}

// ProductDiscountHistory pages through the discounts ever applied to a product.
func ProductDiscountHistory(svc discounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", defaultHistoryLimit, 1, maxHistoryLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		history, err := svc.ProductHistory(ctx, productID, page, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, history)
	}
}
