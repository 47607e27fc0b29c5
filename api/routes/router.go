package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/catalog-backend/api/controllers"
	"github.com/angelmondragon/catalog-backend/api/middleware"
	"github.com/angelmondragon/catalog-backend/internal/auth"
	"github.com/angelmondragon/catalog-backend/internal/brands"
	"github.com/angelmondragon/catalog-backend/internal/cart"
	"github.com/angelmondragon/catalog-backend/internal/categories"
	"github.com/angelmondragon/catalog-backend/internal/discounts"
	product "github.com/angelmondragon/catalog-backend/internal/products"
	"github.com/angelmondragon/catalog-backend/internal/reports"
	"github.com/angelmondragon/catalog-backend/internal/stores"
	"github.com/angelmondragon/catalog-backend/internal/users"
	"github.com/angelmondragon/catalog-backend/internal/wishlist"
	"github.com/angelmondragon/catalog-backend/pkg/auth/session"
	"github.com/angelmondragon/catalog-backend/pkg/config"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/metrics"
	"github.com/angelmondragon/catalog-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services bundles the domain services mounted by the router.
type Services struct {
	Auth       auth.Service
	Register   auth.RegisterService
	Users      users.Service
	Discounts  discounts.Service
	Brands     brands.Service
	Categories categories.Service
	Stores     stores.Service
	Products   product.Service
	Wishlist   wishlist.Service
	Cart       cart.Service
	Reports    reports.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	sessionManager sessionManager,
	httpMetrics *metrics.HTTPMetrics,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.LoginRateLimitPolicy(cfg.AuthRateLimit)
	registerPolicy := middleware.RegisterRateLimitPolicy(cfg.AuthRateLimit)

	readiness := map[string]controllers.Pinger{"db": dbP}
	if redisClient != nil {
		readiness["redis"] = redisClient
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svc.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svc.Register, svc.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(sessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessionManager, svc.Users, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/user", func(r chi.Router) {
			r.Get("/", controllers.AuthMe(svc.Users, logg))
			r.Put("/password", controllers.AuthChangePassword(svc.Auth, logg))
			r.Get("/discounts", controllers.UserDiscounts(svc.Discounts, logg))
		})

		r.Post("/discounts", controllers.SubmitDiscount(svc.Discounts, logg))

		r.Get("/brands", controllers.BrandList(svc.Brands, logg))
		r.Get("/brands/{brandId}", controllers.BrandGet(svc.Brands, logg))
		r.Get("/categories", controllers.CategoryList(svc.Categories, logg))
		r.Get("/categories/{categoryId}", controllers.CategoryGet(svc.Categories, logg))
		r.Get("/stores", controllers.StoreList(svc.Stores, logg))
		r.Get("/stores/{storeId}", controllers.StoreGet(svc.Stores, logg))
		r.Get("/products", controllers.ProductList(svc.Products, logg))
		r.Get("/products/{productId}", controllers.ProductGet(svc.Products, logg))
		r.Get("/products/{productId}/price", controllers.ProductPrice(svc.Discounts, logg))
		r.Get("/products/{productId}/discount-history", controllers.ProductDiscountHistory(svc.Discounts, logg))

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistList(svc.Wishlist, logg))
			r.Get("/ids", controllers.WishlistIDs(svc.Wishlist, logg))
			r.Post("/", controllers.WishlistAddItem(svc.Wishlist, logg))
			r.Delete("/{productId}", controllers.WishlistRemoveItem(svc.Wishlist, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(svc.Cart, logg))
			r.Put("/items", controllers.CartSetItem(svc.Cart, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(svc.Cart, logg))
			r.Post("/checkout", controllers.CartCheckout(svc.Cart, logg))
		})

		r.Post("/reports", controllers.ReportCreate(svc.Reports, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAnyRole(logg, enums.UserRoleModerator, enums.UserRoleAdmin))

			r.Post("/brands", controllers.BrandCreate(svc.Brands, logg))
			r.Patch("/brands/{brandId}", controllers.BrandUpdate(svc.Brands, logg))
			r.Delete("/brands/{brandId}", controllers.BrandDelete(svc.Brands, logg))
			r.Post("/categories", controllers.CategoryCreate(svc.Categories, logg))
			r.Patch("/categories/{categoryId}", controllers.CategoryUpdate(svc.Categories, logg))
			r.Delete("/categories/{categoryId}", controllers.CategoryDelete(svc.Categories, logg))
			r.Post("/stores", controllers.StoreCreate(svc.Stores, logg))
			r.Patch("/stores/{storeId}", controllers.StoreUpdate(svc.Stores, logg))
			r.Delete("/stores/{storeId}", controllers.StoreDelete(svc.Stores, logg))
			r.Post("/products", controllers.ProductCreate(svc.Products, logg))
			r.Patch("/products/{productId}", controllers.ProductUpdate(svc.Products, logg))
			r.Delete("/products/{productId}", controllers.ProductDelete(svc.Products, logg))

			r.Route("/moderation", func(r chi.Router) {
				r.Get("/discounts", controllers.ModerationQueue(svc.Discounts, logg))
				r.Get("/discounts/{discountId}", controllers.ModerationGetDiscount(svc.Discounts, logg))
				r.Patch("/discounts/{discountId}", controllers.ModerationTransitionDiscount(svc.Discounts, logg))
				r.Get("/reports", controllers.ModerationReports(svc.Reports, logg))
				r.Get("/reports/{reportId}", controllers.ModerationGetReport(svc.Reports, logg))
				r.Patch("/reports/{reportId}", controllers.ModerationDecideReport(svc.Reports, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
			r.Get("/users", controllers.AdminListUsers(svc.Users, logg))
		})
	})

	return r
}
