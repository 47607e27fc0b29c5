package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-backend/internal/wishlist"
)

type stubWishlistService struct {
	userID    uuid.UUID
	productID uuid.UUID
	cursor    string
	limit     int
}

func (s *stubWishlistService) GetWishlist(_ context.Context, userID uuid.UUID, cursor string, limit int) (wishlist.WishlistItemsPageDTO, error) {
	s.userID, s.cursor, s.limit = userID, cursor, limit
	return wishlist.WishlistItemsPageDTO{}, nil
}

func (s *stubWishlistService) GetWishlistIDs(_ context.Context, userID uuid.UUID, cursor string, limit int) (wishlist.WishlistIDsDTO, error) {
	s.userID, s.cursor, s.limit = userID, cursor, limit
	return wishlist.WishlistIDsDTO{}, nil
}

func (s *stubWishlistService) AddItem(_ context.Context, userID, productID uuid.UUID) error {
	s.userID, s.productID = userID, productID
	return nil
}

func (s *stubWishlistService) RemoveItem(_ context.Context, userID, productID uuid.UUID) error {
	s.userID, s.productID = userID, productID
	return nil
}

func TestWishlistAddItem(t *testing.T) {
	svc := &stubWishlistService{}
	userID := uuid.New()
	productID := uuid.New()
	rec := serve(t, WishlistAddItem(svc, nil), testRequest{
		method: http.MethodPost,
		path:   "/api/v1/wishlist",
		body:   `{"product_id":"` + productID.String() + `"}`,
		userID: userID,
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, userID, svc.userID)
	require.Equal(t, productID, svc.productID)
}

func TestWishlistAddItemRequiresProduct(t *testing.T) {
	svc := &stubWishlistService{}
	rec := serve(t, WishlistAddItem(svc, nil), testRequest{method: http.MethodPost, path: "/api/v1/wishlist", body: `{}`, userID: uuid.New()})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, uuid.Nil, svc.productID)
}

func TestWishlistListDefaultLimit(t *testing.T) {
	svc := &stubWishlistService{}
	rec := serve(t, WishlistList(svc, nil), testRequest{method: http.MethodGet, path: "/api/v1/wishlist", userID: uuid.New()})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 25, svc.limit)
	require.Empty(t, svc.cursor)
}

func TestWishlistRemoveItem(t *testing.T) {
	svc := &stubWishlistService{}
	productID := uuid.New()
	rec := serve(t, WishlistRemoveItem(svc, nil), testRequest{
		method: http.MethodDelete,
		path:   "/api/v1/wishlist/" + productID.String(),
		params: map[string]string{"productId": productID.String()},
		userID: uuid.New(),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, productID, svc.productID)
}
