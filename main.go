package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tupperstock/internal/config"
	"tupperstock/internal/handlers"
	"tupperstock/internal/middleware"
	"tupperstock/internal/models"
	"tupperstock/internal/repositories"
	"tupperstock/internal/services"
	"tupperstock/pkg/cache"
	"tupperstock/pkg/mailer"
	"tupperstock/pkg/rabbitmq"
	"tupperstock/pkg/shopify"
)

// App is the wired HTTP application and the resources it holds.
type App struct {
	Fiber       *fiber.App
	AuthService *services.AuthService

	closers []func() error
}

// Close releases the broker, cache and database connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.Cart{}, &models.CartItem{}, &models.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// NewApp wires repositories, services and handlers from cfg. Redis and
// RabbitMQ are optional; without them the catalog is not cached and the
// confirmation email is sent in-process.
func NewApp(cfg *config.Config) (*App, error) {
	a := &App{}
	fail := func(err error) (*App, error) {
		if cerr := a.Close(); cerr != nil {
			log.Printf("Error releasing resources: %v", cerr)
		}
		return nil, err
	}

	// --- Storage ---
	db, err := openDatabase(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return fail(err)
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	// --- Platform ---
	shop, err := shopify.NewClient(shopify.Config{
		StoreDomain:           cfg.Shopify.StoreDomain,
		AdminAccessToken:      cfg.Shopify.AccessToken,
		StorefrontAccessToken: cfg.Shopify.StorefrontAccessToken,
		APIVersion:            cfg.Shopify.APIVersion,
		StorefrontAPIVersion:  cfg.Shopify.StorefrontAPIVersion,
		BaseURL:               cfg.Shopify.BaseURL,
		Timeout:               cfg.Shopify.Timeout,
	})
	if err != nil {
		return fail(fmt.Errorf("failed to create shopify client: %w", err))
	}

	// --- Catalog cache ---
	var catalogCache services.Cache
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(context.Background(), cfg.RedisURL, "tupperstock:catalog:")
		if err != nil {
			log.Printf("Catalog cache disabled: %v", err)
		} else {
			a.closers = append(a.closers, rc.Close)
			catalogCache = rc
		}
	}

	// --- Email ---
	var m services.Mailer = mailer.LogMailer{}
	if cfg.ResendAPIKey != "" {
		rm, err := mailer.NewResendMailer(cfg.ResendAPIKey)
		if err != nil {
			return fail(err)
		}
		m = rm
	} else {
		log.Println("RESEND_API_KEY is not set. Emails will only be logged.")
	}
	notificationService := services.NewNotificationService(m, cfg.EmailFrom)

	// --- Order events ---
	var events services.OrderEventPublisher = services.NewDirectPublisher(notificationService)
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("RabbitMQ unavailable, sending emails in-process: %v", err)
		} else {
			a.closers = append(a.closers, mqClient.Close)
			if err := mqClient.ConsumeOrderEvents(services.HandleOrderEvent(notificationService)); err != nil {
				return fail(fmt.Errorf("failed to start order event consumer: %w", err))
			}
			events = services.NewQueuePublisher(mqClient)
		}
	}

	// --- Repositories ---
	productRepo := repositories.NewShopifyProductRepository(shop)
	collectionRepo := repositories.NewShopifyCollectionRepository(shop)
	variantRepo := repositories.NewShopifyVariantRepository(shop, cfg.Checkout.LocationID)
	customerRepo := repositories.NewShopifyCustomerRepository(shop)
	orderRepo := repositories.NewShopifyOrderRepository(shop)
	cartRepo := repositories.NewGORMCartRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	// --- Services ---
	catalogService := services.NewCatalogService(productRepo, collectionRepo, catalogCache, cfg.CatalogCacheTTL, cfg.Checkout.DeliveryFeeProductID)
	cartService := services.NewCartService(cartRepo)
	inventoryService := services.NewInventoryService(variantRepo, cfg.Checkout.DeliveryFeeProductID)
	orderService := services.NewOrderService(variantRepo, customerRepo, orderRepo, inventoryService, events, cartService, services.CheckoutConfig{
		DeliveryFeeProductID: cfg.Checkout.DeliveryFeeProductID,
		PickupAddress1:       cfg.Checkout.PickupAddress1,
		PickupCity:           cfg.Checkout.PickupCity,
		PickupZip:            cfg.Checkout.PickupZip,
	})
	authService := services.NewAuthService(userRepo, cfg.JWTSecret)
	a.AuthService = authService

	if cfg.AdminPassword != "" {
		if err := authService.EnsureAdmin(cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fail(err)
		}
	} else {
		log.Println("ADMIN_PASSWORD is not set. No admin account was seeded.")
	}

	// --- HTTP ---
	app := fiber.New(fiber.Config{AppName: "TupperStock"})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSAllowOrigins}))

	handlers.NewHealthHandler(shop).RegisterRoutes(app)

	apiV1 := app.Group("/api/v1")
	auth := middleware.AuthRequired(authService)
	handlers.NewCatalogHandler(catalogService).RegisterRoutes(apiV1)
	handlers.NewCartHandler(cartService).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(orderService).RegisterRoutes(apiV1)
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewInventoryHandler(inventoryService).RegisterRoutes(apiV1, auth)
	handlers.NewNotificationHandler(notificationService).RegisterRoutes(apiV1, auth)

	a.Fiber = app
	return a, nil
}

func main() {
	cfg, err := config.Load(config.New())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.AppPort)
		if err := app.Fiber.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Fiber.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	if err := app.Close(); err != nil {
		log.Printf("Error closing resources: %v", err)
	}
	log.Println("Server gracefully stopped")
}
