package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-backend/api/responses"
	"github.com/angelmondragon/catalog-backend/api/validators"
	product "github.com/angelmondragon/catalog-backend/internal/products"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

const maxProductQueryLength = 120

type createProductRequest struct {
	StoreID     *uuid.UUID       `json:"store_id"`
	BrandID     *uuid.UUID       `json:"brand_id"`
	CategoryID  uuid.UUID        `json:"category_id" validate:"required"`
	Name        string           `json:"name" validate:"required,max=200"`
	Description string           `json:"description" validate:"max=2000"`
	Price       *decimal.Decimal `json:"price"`
	PriceUnit   string           `json:"price_unit"`
	Weight      decimal.Decimal  `json:"weight"`
	ExternalID  *string          `json:"external_id"`
}

type updateProductRequest struct {
	StoreID     *uuid.UUID       `json:"store_id"`
	BrandID     *uuid.UUID       `json:"brand_id"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price"`
	ClearPrice  bool             `json:"clear_price"`
	PriceUnit   *string          `json:"price_unit"`
	Weight      *decimal.Decimal `json:"weight"`
	ExternalID  *string          `json:"external_id"`
}

// ProductList browses products with their resolved prices.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		params, err := validators.ParseCursorParams(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var filters product.ProductListFilters
		for key, dest := range map[string]**uuid.UUID{
			"store_id":    &filters.StoreID,
			"brand_id":    &filters.BrandID,
			"category_id": &filters.CategoryID,
		} {
			id, err := validators.ParseOptionalUUIDQuery(r, key)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			*dest = id
		}
		filters.Query = validators.SanitizeString(r.URL.Query().Get("q"), maxProductQueryLength)

		result, err := svc.ListProducts(ctx, product.ListProductsInput{Filters: filters, Pagination: params})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ProductGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		dto, err := svc.GetProduct(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		principal, err := principalFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		unit, err := parsePriceUnit(body.PriceUnit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		dto, err := svc.CreateProduct(ctx, principal.Role, product.CreateProductInput{
			StoreID:     body.StoreID,
			BrandID:     body.BrandID,
			CategoryID:  body.CategoryID,
			Name:        body.Name,
			Description: body.Description,
			Price:       body.Price,
			PriceUnit:   unit,
			Weight:      body.Weight,
			ExternalID:  body.ExternalID,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

func ProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		principal, err := principalFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if body.ClearPrice && body.Price != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "price and clear_price are mutually exclusive").
				WithDetails(map[string]any{"field": "clear_price"}))
			return
		}

		input := product.UpdateProductInput{
			StoreID:     body.StoreID,
			BrandID:     body.BrandID,
			CategoryID:  body.CategoryID,
			Name:        body.Name,
			Description: body.Description,
			Price:       body.Price,
			ClearPrice:  body.ClearPrice,
			Weight:      body.Weight,
			ExternalID:  body.ExternalID,
		}
		if body.PriceUnit != nil {
			unit, err := parsePriceUnit(*body.PriceUnit)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			input.PriceUnit = &unit
		}

		dto, err := svc.UpdateProduct(ctx, principal.Role, id, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func ProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		principal, err := principalFromRequest(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		id, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.DeleteProduct(ctx, principal.Role, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}

func parsePriceUnit(raw string) (enums.PriceUnit, error) {
	unit, err := enums.ParsePriceUnit(strings.TrimSpace(raw))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price_unit").
			WithDetails(map[string]any{"field": "price_unit"})
	}
	return unit, nil
}
