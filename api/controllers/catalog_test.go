package controllers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

func TestBrandCreatePassesRole(t *testing.T) {
	svc := &stubBrandService{}
	rec := serve(t, BrandCreate(svc, nil), testRequest{
		method: http.MethodPost,
		path:   "/api/v1/brands",
		body:   `{"name":"Oatly","description":"oat drinks"}`,
		userID: uuid.New(),
		role:   enums.UserRoleModerator,
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, enums.UserRoleModerator, svc.role)
	require.Equal(t, "Oatly", svc.created.Name)
	require.Equal(t, "oat drinks", svc.created.Description)
}

func TestBrandCreateRequiresName(t *testing.T) {
	svc := &stubBrandService{}
	rec := serve(t, BrandCreate(svc, nil), testRequest{
		method: http.MethodPost,
		path:   "/api/v1/brands",
		body:   `{"description":"nameless"}`,
		userID: uuid.New(),
		role:   enums.UserRoleAdmin,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, svc.created.Name)
}

func TestBrandCreateDuplicateConflict(t *testing.T) {
	svc := &stubBrandService{err: pkgerrors.New(pkgerrors.CodeConflict, "brand already exists")}
	rec := serve(t, BrandCreate(svc, nil), testRequest{
		method: http.MethodPost,
		path:   "/api/v1/brands",
		body:   `{"name":"Oatly"}`,
		userID: uuid.New(),
		role:   enums.UserRoleAdmin,
	})

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, string(pkgerrors.CodeConflict), decodeError(t, rec).Code)
}

func TestBrandDeleteNoContent(t *testing.T) {
	svc := &stubBrandService{}
	brandID := uuid.New()
	rec := serve(t, BrandDelete(svc, nil), testRequest{
		method: http.MethodDelete,
		path:   "/api/v1/brands/" + brandID.String(),
		params: map[string]string{"brandId": brandID.String()},
		userID: uuid.New(),
		role:   enums.UserRoleAdmin,
	})

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, brandID, svc.deleted)
}

func TestBrandGetInvalidID(t *testing.T) {
	rec := serve(t, BrandGet(&stubBrandService{}, nil), testRequest{
		method: http.MethodGet,
		path:   "/api/v1/brands/abc",
		params: map[string]string{"brandId": "abc"},
		userID: uuid.New(),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoryListWithoutService(t *testing.T) {
	rec := serve(t, CategoryList(nil, nil), testRequest{method: http.MethodGet, path: "/api/v1/categories", userID: uuid.New()})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
