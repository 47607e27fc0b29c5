package controllers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

func TestProductListParsesFilters(t *testing.T) {
	svc := &stubProductService{}
	storeID := uuid.New()
	categoryID := uuid.New()

	rec := serve(t, ProductList(svc, nil), testRequest{
		method: http.MethodGet,
		path:   "/api/v1/products?store_id=" + storeID.String() + "&category_id=" + categoryID.String() + "&q=%20oat%20&limit=5",
		userID: uuid.New(),
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, svc.listInput.Filters.StoreID)
	require.Equal(t, storeID, *svc.listInput.Filters.StoreID)
	require.NotNil(t, svc.listInput.Filters.CategoryID)
	require.Equal(t, categoryID, *svc.listInput.Filters.CategoryID)
	require.Nil(t, svc.listInput.Filters.BrandID)
	require.Equal(t, "oat", svc.listInput.Filters.Query)
	require.Equal(t, 5, svc.listInput.Pagination.Limit)
}

func TestProductListRejectsBadFilter(t *testing.T) {
	rec := serve(t, ProductList(&stubProductService{}, nil), testRequest{
		method: http.MethodGet,
		path:   "/api/v1/products?brand_id=not-a-uuid",
		userID: uuid.New(),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductUpdateClearPrice(t *testing.T) {
	svc := &stubProductService{}
	productID := uuid.New()
	rec := serve(t, ProductUpdate(svc, nil), testRequest{
		method: http.MethodPatch,
		path:   "/api/v1/products/" + productID.String(),
		body:   `{"clear_price":true}`,
		params: map[string]string{"productId": productID.String()},
		userID: uuid.New(),
		role:   enums.UserRoleModerator,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.True(t, svc.updateInput.ClearPrice)
	require.Nil(t, svc.updateInput.Price)
}

func TestProductUpdatePriceAndClearConflict(t *testing.T) {
	svc := &stubProductService{}
	productID := uuid.New()
	rec := serve(t, ProductUpdate(svc, nil), testRequest{
		method: http.MethodPatch,
		path:   "/api/v1/products/" + productID.String(),
		body:   `{"clear_price":true,"price":"3.50"}`,
		params: map[string]string{"productId": productID.String()},
		userID: uuid.New(),
		role:   enums.UserRoleModerator,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, svc.updateInput.ClearPrice)
}
