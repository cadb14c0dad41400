package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tcommerce/tcommerce-backend/api/controllers"
	"github.com/tcommerce/tcommerce-backend/api/middleware"
	authsvc "github.com/tcommerce/tcommerce-backend/internal/auth"
	cartsvc "github.com/tcommerce/tcommerce-backend/internal/cart"
	categorysvc "github.com/tcommerce/tcommerce-backend/internal/categories"
	productsvc "github.com/tcommerce/tcommerce-backend/internal/products"
	"github.com/tcommerce/tcommerce-backend/pkg/config"
	"github.com/tcommerce/tcommerce-backend/pkg/db"
	"github.com/tcommerce/tcommerce-backend/pkg/logger"
	"github.com/tcommerce/tcommerce-backend/pkg/metrics"
	"github.com/tcommerce/tcommerce-backend/pkg/redis"
)

// NewRouter wires middleware, controllers, and services into the HTTP surface.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	users middleware.UserChecker,
	authService authsvc.Service,
	categoryService categorysvc.Service,
	productService productsvc.Service,
	cartService cartsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
		middleware.Metrics(httpMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.Register(authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.Login(authService, logg))
		r.With(middleware.Auth(cfg.JWT, users, logg)).Get("/profile", controllers.Profile(authService, logg))
	})

	r.Route("/api/v1/categories", func(r chi.Router) {
		r.Get("/", controllers.ListCategories(categoryService, logg))
		r.Get("/{categoryId}", controllers.GetCategory(categoryService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, users, logg))
			r.Post("/", controllers.CreateCategory(categoryService, logg))
			r.Put("/{categoryId}", controllers.UpdateCategory(categoryService, logg))
			r.Patch("/{categoryId}/deactivate", controllers.DeactivateCategory(categoryService, logg))
			r.Delete("/{categoryId}", controllers.DeleteCategory(categoryService, logg))
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(productService, logg))
		r.Get("/featured", controllers.FeaturedProducts(productService, logg))
		r.Get("/search", controllers.SearchProducts(productService, logg))
		r.Get("/category/{categoryId}", controllers.ProductsByCategory(productService, logg))
		r.Get("/{productId}", controllers.GetProduct(productService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, users, logg))
			r.Post("/", controllers.CreateProduct(productService, logg))
			r.Put("/{productId}", controllers.UpdateProduct(productService, logg))
			r.Patch("/{productId}/stock", controllers.UpdateProductStock(productService, logg))
			r.Patch("/{productId}/deactivate", controllers.DeactivateProduct(productService, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(productService, logg))
		})
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, users, logg))

		r.Get("/", controllers.CartView(cartService, logg))
		r.Get("/count", controllers.CartItemCount(cartService, logg))
		r.Post("/items", controllers.CartAddItem(cartService, httpMetrics, logg))
		r.Put("/items/{productId}", controllers.CartUpdateQuantity(cartService, httpMetrics, logg))
		r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, httpMetrics, logg))
		r.Delete("/", controllers.CartClear(cartService, httpMetrics, logg))
	})

	return r
}
