package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/api/middleware"
	"github.com/angelmondragon/catalog-backend/internal/brands"
	"github.com/angelmondragon/catalog-backend/internal/cart"
	"github.com/angelmondragon/catalog-backend/internal/discounts"
	product "github.com/angelmondragon/catalog-backend/internal/products"
	"github.com/angelmondragon/catalog-backend/internal/reports"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
	"github.com/angelmondragon/catalog-backend/pkg/types"
)

type testRequest struct {
	method string
	path   string
	body   string
	params map[string]string
	userID uuid.UUID
	role   enums.UserRole
}

func (tr testRequest) build() *http.Request {
	var body io.Reader
	if tr.body != "" {
		body = bytes.NewBufferString(tr.body)
	}
	req := httptest.NewRequest(tr.method, tr.path, body)
	req.Header.Set("Content-Type", "application/json")

	rc := chi.NewRouteContext()
	for k, v := range tr.params {
		rc.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rc)
	if tr.userID != uuid.Nil {
		ctx = middleware.WithUserID(ctx, tr.userID.String())
		role := tr.role
		if role == "" {
			role = enums.UserRoleUser
		}
		ctx = middleware.WithRole(ctx, string(role))
	}
	return req.WithContext(ctx)
}

func serve(t *testing.T, h http.HandlerFunc, tr testRequest) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, tr.build())
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) types.APIError {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope.Error
}

type stubDiscountService struct {
	principal  discounts.Principal
	submitted  discounts.SubmitInput
	transition enums.DiscountStatus
	status     *enums.DiscountStatus
	page       int
	limit      int
	dto        *discounts.DiscountDTO
	err        error
}

func (s *stubDiscountService) SubmitDiscount(_ context.Context, principal discounts.Principal, input discounts.SubmitInput) (*discounts.DiscountDTO, error) {
	s.principal = principal
	s.submitted = input
	return s.dto, s.err
}

func (s *stubDiscountService) TransitionDiscountStatus(_ context.Context, principal discounts.Principal, _ uuid.UUID, status enums.DiscountStatus) (*discounts.DiscountDTO, error) {
	s.principal = principal
	s.transition = status
	return s.dto, s.err
}

func (s *stubDiscountService) ListUserDiscounts(_ context.Context, principal discounts.Principal, _ pagination.Params) (*discounts.DiscountList, error) {
	s.principal = principal
	return &discounts.DiscountList{}, s.err
}

func (s *stubDiscountService) ListModerationQueue(_ context.Context, principal discounts.Principal, status *enums.DiscountStatus, _ pagination.Params) (*discounts.DiscountList, error) {
	s.principal = principal
	s.status = status
	return &discounts.DiscountList{}, s.err
}

func (s *stubDiscountService) GetDiscount(_ context.Context, principal discounts.Principal, _ uuid.UUID) (*discounts.DiscountDTO, error) {
	s.principal = principal
	return s.dto, s.err
}

func (s *stubDiscountService) ProductHistory(_ context.Context, productID uuid.UUID, page, limit int) (*discounts.HistoryPage, error) {
	s.page = page
	s.limit = limit
	return &discounts.HistoryPage{Page: page, Limit: limit}, s.err
}

func (s *stubDiscountService) ProductPrice(_ context.Context, productID uuid.UUID) (*discounts.PriceDTO, error) {
	return &discounts.PriceDTO{ProductID: productID, Source: discounts.SourceNone}, s.err
}

type stubBrandService struct {
	role    enums.UserRole
	created brands.CreateInput
	deleted uuid.UUID
	err     error
}

func (s *stubBrandService) List(context.Context, pagination.Params) (*brands.BrandList, error) {
	return &brands.BrandList{}, s.err
}

func (s *stubBrandService) Get(_ context.Context, id uuid.UUID) (*brands.BrandDTO, error) {
	return &brands.BrandDTO{ID: id}, s.err
}

func (s *stubBrandService) Create(_ context.Context, role enums.UserRole, input brands.CreateInput) (*brands.BrandDTO, error) {
	s.role = role
	s.created = input
	if s.err != nil {
		return nil, s.err
	}
	return &brands.BrandDTO{ID: uuid.New(), Name: input.Name}, nil
}

func (s *stubBrandService) Update(_ context.Context, role enums.UserRole, id uuid.UUID, _ brands.UpdateInput) (*brands.BrandDTO, error) {
	s.role = role
	return &brands.BrandDTO{ID: id}, s.err
}

func (s *stubBrandService) Delete(_ context.Context, role enums.UserRole, id uuid.UUID) error {
	s.role = role
	s.deleted = id
	return s.err
}

type stubProductService struct {
	listInput   product.ListProductsInput
	updateInput product.UpdateProductInput
	err         error
}

func (s *stubProductService) CreateProduct(_ context.Context, _ enums.UserRole, input product.CreateProductInput) (*product.ProductDTO, error) {
	return &product.ProductDTO{}, s.err
}

func (s *stubProductService) UpdateProduct(_ context.Context, _ enums.UserRole, _ uuid.UUID, input product.UpdateProductInput) (*product.ProductDTO, error) {
	s.updateInput = input
	return &product.ProductDTO{}, s.err
}

func (s *stubProductService) DeleteProduct(context.Context, enums.UserRole, uuid.UUID) error {
	return s.err
}

func (s *stubProductService) GetProduct(context.Context, uuid.UUID) (*product.ProductDTO, error) {
	return &product.ProductDTO{}, s.err
}

func (s *stubProductService) ListProducts(_ context.Context, input product.ListProductsInput) (*product.ProductListResult, error) {
	s.listInput = input
	return &product.ProductListResult{}, s.err
}

type stubCartService struct {
	userID   uuid.UUID
	quantity int
	err      error
}

func (s *stubCartService) GetCart(_ context.Context, userID uuid.UUID) (*cart.CartDTO, error) {
	s.userID = userID
	return &cart.CartDTO{Total: "0.00"}, s.err
}

func (s *stubCartService) SetItem(_ context.Context, userID, _ uuid.UUID, quantity int) (*cart.CartDTO, error) {
	s.userID = userID
	s.quantity = quantity
	return &cart.CartDTO{}, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, userID, _ uuid.UUID) (*cart.CartDTO, error) {
	s.userID = userID
	return &cart.CartDTO{}, s.err
}

func (s *stubCartService) Checkout(_ context.Context, userID uuid.UUID) (*cart.CartDTO, error) {
	s.userID = userID
	if s.err != nil {
		return nil, s.err
	}
	return &cart.CartDTO{}, nil
}

type stubReportService struct {
	input    reports.CreateInput
	role     enums.UserRole
	status   *enums.ReportStatus
	decision enums.ReportStatus
	err      error
}

func (s *stubReportService) Create(_ context.Context, _ uuid.UUID, input reports.CreateInput) (*reports.ReportDTO, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return &reports.ReportDTO{ID: uuid.New(), Status: enums.ReportStatusReported}, nil
}

func (s *stubReportService) List(_ context.Context, role enums.UserRole, status *enums.ReportStatus, _ pagination.Params) (*reports.ReportList, error) {
	s.role = role
	s.status = status
	return &reports.ReportList{}, s.err
}

func (s *stubReportService) Get(_ context.Context, role enums.UserRole, id uuid.UUID) (*reports.ReportDTO, error) {
	s.role = role
	return &reports.ReportDTO{ID: id}, s.err
}

func (s *stubReportService) Decide(_ context.Context, _ uuid.UUID, role enums.UserRole, id uuid.UUID, status enums.ReportStatus) (*reports.ReportDTO, error) {
	s.role = role
	s.decision = status
	return &reports.ReportDTO{ID: id, Status: status}, s.err
}
