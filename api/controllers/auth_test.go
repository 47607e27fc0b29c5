package controllers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-backend/internal/auth"
	"github.com/angelmondragon/catalog-backend/internal/users"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
)

type stubAuthService struct {
	login      auth.LoginRequest
	changedFor uuid.UUID
	err        error
}

func (s *stubAuthService) Login(_ context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.login = req
	if s.err != nil {
		return nil, s.err
	}
	return &auth.LoginResponse{AccessToken: "access", RefreshToken: "refresh"}, nil
}

func (s *stubAuthService) ChangePassword(_ context.Context, userID uuid.UUID, _ auth.ChangePasswordRequest) error {
	s.changedFor = userID
	return s.err
}

type stubRegisterService struct {
	req auth.RegisterRequest
	err error
}

func (s *stubRegisterService) Register(_ context.Context, req auth.RegisterRequest) (*users.UserDTO, error) {
	s.req = req
	if s.err != nil {
		return nil, s.err
	}
	return &users.UserDTO{ID: uuid.New(), Email: req.Email}, nil
}

type stubUserService struct {
	role enums.UserRole
	err  error
}

func (s *stubUserService) Me(_ context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, s.err
}

func (s *stubUserService) List(_ context.Context, role enums.UserRole, _ pagination.Params) (*users.UserList, error) {
	s.role = role
	return &users.UserList{}, s.err
}

func TestAuthRegisterLogsIn(t *testing.T) {
	reg := &stubRegisterService{}
	svc := &stubAuthService{}
	rec := serve(t, AuthRegister(reg, svc, nil), testRequest{
		method: http.MethodPost,
		path:   "/api/v1/auth/register",
		body:   `{"name":"Ana","email":"ana@example.com","password":"s3cret-pass"}`,
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, "ana@example.com", reg.req.Email)
	require.Equal(t, "ana@example.com", svc.login.Email)
	require.Equal(t, "s3cret-pass", svc.login.Password)
}

func TestAuthRegisterConflictSkipsLogin(t *testing.T) {
	reg := &stubRegisterService{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	svc := &stubAuthService{}
	rec := serve(t, AuthRegister(reg, svc, nil), testRequest{
		method: http.MethodPost,
		path:   "/api/v1/auth/register",
		body:   `{"name":"Ana","email":"ana@example.com","password":"s3cret-pass"}`,
	})

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Empty(t, svc.login.Email)
}

func TestAuthLoginValidatesEmail(t *testing.T) {
	svc := &stubAuthService{}
	rec := serve(t, AuthLogin(svc, nil), testRequest{
		method: http.MethodPost,
		path:   "/api/v1/auth/login",
		body:   `{"email":"not-an-email","password":"x"}`,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, svc.login.Email)
}

func TestAuthLoginUnauthorized(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	rec := serve(t, AuthLogin(svc, nil), testRequest{
		method: http.MethodPost,
		path:   "/api/v1/auth/login",
		body:   `{"email":"ana@example.com","password":"wrong"}`,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthChangePasswordUsesCaller(t *testing.T) {
	svc := &stubAuthService{}
	userID := uuid.New()
	rec := serve(t, AuthChangePassword(svc, nil), testRequest{
		method: http.MethodPut,
		path:   "/api/v1/user/password",
		body:   `{"current_password":"old","new_password":"new-password-1"}`,
		userID: userID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, userID, svc.changedFor)
}

func TestAdminListUsersPassesRole(t *testing.T) {
	svc := &stubUserService{}
	rec := serve(t, AdminListUsers(svc, nil), testRequest{
		method: http.MethodGet,
		path:   "/api/v1/admin/users",
		userID: uuid.New(),
		role:   enums.UserRoleAdmin,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, enums.UserRoleAdmin, svc.role)
}
