package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/linemk/storefront/internal/app/handlers"
	"github.com/linemk/storefront/internal/cache"
	"github.com/linemk/storefront/internal/config"
	"github.com/linemk/storefront/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/storefront/internal/lib/logger/handlers/urllog"
	"github.com/linemk/storefront/internal/service"
	"github.com/linemk/storefront/internal/storage"
	"github.com/pkg/errors"
)

type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *sql.DB
	Cache    cache.FragmentCache
	Services Services

	closeCache func() error
}

// Services — все сервисы, которые обслуживает http-роутер
type Services struct {
	Auth     service.AuthServiceInterface
	Catalog  service.CatalogService
	Cart     service.CartService
	Checkout service.CheckoutService
}

// NewApp создаёт новый экземпляр App: подключается к БД и redis, собирает сервисы
func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	// реализуем подключение к БД через DSN
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	fragments, closeCache, err := newFragmentCache(ctx, log, cfg.Redis)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{
		Config:     cfg,
		Logger:     log,
		DB:         db,
		Cache:      fragments,
		Services:   NewServices(log, db, fragments, cfg),
		closeCache: closeCache,
	}

	return app, nil
}

// newFragmentCache подключает redis; без адреса возвращает кэш-заглушку
func newFragmentCache(ctx context.Context, log *slog.Logger, cfg config.RedisConfig) (cache.FragmentCache, func() error, error) {
	if cfg.Address == "" {
		log.Info("redis address is not set, fragment cache disabled")
		return cache.Nop{}, func() error { return nil }, nil
	}

	fragments, closeFn, err := cache.NewRedisCache(ctx, cfg.Address, cfg.Password, cfg.DB)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to connect to redis")
	}
	log.Info("fragment cache connected", slog.String("address", cfg.Address))
	return fragments, closeFn, nil
}

// NewServices собирает репозитории и сервисы поверх одного подключения к БД
func NewServices(log *slog.Logger, db *sql.DB, fragments cache.FragmentCache, cfg *config.Config) Services {
	userRepo := storage.NewUserRepository(db)
	catalogRepo := storage.NewCatalogRepository(db)
	orderRepo := storage.NewOrderRepository(db)
	checkoutRepo := storage.NewCheckoutRepository(db)

	return Services{
		Auth:    service.NewAuthService(log, userRepo, time.Duration(cfg.JWT.TokenTTL)*time.Minute, cfg.JWT.Secret),
		Catalog: service.NewCatalogService(log, catalogRepo, fragments, cfg.Redis.FragmentTTL),
		Cart:    service.NewCartService(log, db, catalogRepo, orderRepo),
		Checkout: service.NewCheckoutService(log, db, orderRepo, checkoutRepo, service.PaymentRedirects{
			Stripe: cfg.Payment.StripeURL,
			PayPal: cfg.Payment.PayPalURL,
		}),
	}
}

// NewRouter настраивает middleware и маршруты.
// Витрина и корзина на чтение доступны анонимно, изменения корзины и оформление — только с токеном.
func NewRouter(log *slog.Logger, jwtSecret string, s Services) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	// эндпоинт для аутентификации
	router.Post("/api/auth", handlers.AuthHandler(log, s.Auth))

	router.Group(func(r chi.Router) {
		r.Use(jwtmiddleware.NewOptionalJWTMiddleware(jwtSecret))

		r.Get("/api/items", handlers.ItemsHandler(log, s.Catalog))
		r.Get("/api/items/{slug}", handlers.ItemHandler(log, s.Catalog))
		r.Get("/api/categories/{slug}", handlers.CategoryHandler(log, s.Catalog))
		r.Get("/api/cart", handlers.CartSummaryHandler(log, s.Cart))

		r.Get("/fragments/slides", handlers.SlidesFragmentHandler(log, s.Catalog))
		r.Get("/fragments/categories", handlers.CategoriesFragmentHandler(log, s.Catalog))
		r.Get("/fragments/cart", handlers.CartFragmentHandler(log, s.Cart))
	})

	router.Group(func(r chi.Router) {
		r.Use(jwtmiddleware.NewJWTMiddleware(jwtSecret))

		r.Post("/api/cart/{slug}", handlers.AddToCartHandler(log, s.Cart))
		r.Delete("/api/cart/{slug}", handlers.RemoveFromCartHandler(log, s.Cart))
		r.Delete("/api/cart/{slug}/single", handlers.RemoveSingleItemHandler(log, s.Cart))
		r.Get("/api/order-summary", handlers.OrderSummaryHandler(log, s.Cart))
		r.Post("/api/checkout", handlers.CheckoutHandler(log, s.Checkout))
		r.Post("/api/payment/{method}", handlers.PaymentHandler(log, s.Checkout))
	})

	return router
}

// Close закрывает подключения к БД и redis
func (a *App) Close() error {
	var errs []error
	if a.closeCache != nil {
		if err := a.closeCache(); err != nil {
			errs = append(errs, errors.Wrap(err, "failed to close redis"))
		}
	}
	if err := a.DB.Close(); err != nil {
		errs = append(errs, errors.Wrap(err, "failed to close database"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close app: %v", errs)
	}
	return nil
}
