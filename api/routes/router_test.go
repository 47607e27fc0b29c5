package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/catalog-backend/internal/brands"
	"github.com/angelmondragon/catalog-backend/internal/users"
	pkgAuth "github.com/angelmondragon/catalog-backend/pkg/auth"
	"github.com/angelmondragon/catalog-backend/pkg/auth/session"
	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
	"github.com/angelmondragon/catalog-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubBrandService struct{}

func (stubBrandService) List(context.Context, pagination.Params) (*brands.BrandList, error) {
	return &brands.BrandList{}, nil
}

func (stubBrandService) Get(_ context.Context, id uuid.UUID) (*brands.BrandDTO, error) {
	return &brands.BrandDTO{ID: id}, nil
}

func (stubBrandService) Create(_ context.Context, _ enums.UserRole, input brands.CreateInput) (*brands.BrandDTO, error) {
	return &brands.BrandDTO{ID: uuid.New(), Name: input.Name}, nil
}

func (stubBrandService) Update(_ context.Context, _ enums.UserRole, id uuid.UUID, _ brands.UpdateInput) (*brands.BrandDTO, error) {
	return &brands.BrandDTO{ID: id}, nil
}

func (stubBrandService) Delete(context.Context, enums.UserRole, uuid.UUID) error {
	return nil
}

type stubUserService struct{}

func (stubUserService) Me(_ context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	return &users.UserDTO{ID: userID}, nil
}

func (stubUserService) List(context.Context, enums.UserRole, pagination.Params) (*users.UserList, error) {
	return &users.UserList{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:                 "router-test-secret",
			Issuer:                 "catalog-backend",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()
	cfg := testConfig()
	// Nothing listens here. Only readiness, rate limited and idempotent
	// routes touch Redis.
	redisClient := redis.NewWithCmdable(goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"}))
	router := NewRouter(cfg, nil, stubPinger{}, redisClient, stubSessionManager{}, nil, Services{
		Users:  stubUserService{},
		Brands: stubBrandService{},
	})
	return router, cfg
}

func bearer(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func do(router http.Handler, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	require.Equal(t, http.StatusOK, do(router, http.MethodGet, "/health/live", "").Code)
	// the test Redis address refuses connections
	require.Equal(t, http.StatusServiceUnavailable, do(router, http.MethodGet, "/health/ready", "").Code)
}

func TestMetricsRoute(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCatalogRequiresAuth(t *testing.T) {
	router, cfg := newTestRouter(t)

	require.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/api/v1/brands", "").Code)
	require.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/v1/brands", bearer(t, cfg, enums.UserRoleUser)).Code)
}

func TestCatalogWritesRequireModerator(t *testing.T) {
	router, cfg := newTestRouter(t)
	path := "/api/v1/brands/" + uuid.NewString()

	rec := do(router, http.MethodDelete, path, bearer(t, cfg, enums.UserRoleUser))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(router, http.MethodDelete, path, bearer(t, cfg, enums.UserRoleModerator))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	router, cfg := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/admin/users", bearer(t, cfg, enums.UserRoleModerator))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/admin/users", bearer(t, cfg, enums.UserRoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUserProfileRoute(t *testing.T) {
	router, cfg := newTestRouter(t)
	rec := do(router, http.MethodGet, "/api/v1/user", bearer(t, cfg, enums.UserRoleUser))
	require.Equal(t, http.StatusOK, rec.Code)
}
