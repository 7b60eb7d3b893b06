package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/karantec/EcommerceMern/internal/api"
	"github.com/karantec/EcommerceMern/internal/config"
	"github.com/karantec/EcommerceMern/internal/events"
	"github.com/karantec/EcommerceMern/internal/payment"
	"github.com/karantec/EcommerceMern/internal/repository"
	"github.com/karantec/EcommerceMern/internal/service"
	"github.com/karantec/EcommerceMern/migrations"
)

func connectDB(cfg config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Printf("Connected to DB %s", cfg.DBName)
				return db, nil
			}
		}
		log.Printf("Retry %d: Failed to connect to DB %s (%s:%s): %v", i+1, cfg.DBName, cfg.DBHost, cfg.DBPort, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to DB %s at %s:%s after retries: %v", cfg.DBName, cfg.DBHost, cfg.DBPort, err)
}

func main() {
	cfg := config.Load()

	db, err := connectDB(cfg)
	if err != nil {
		panic(err)
	}

	if err := migrations.AutoMigrate(3, db); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	kafkaWriter := config.NewKafkaWriter(cfg.KafkaBrokers, "order-topic")
	publisher := events.NewKafkaPublisher(kafkaWriter)

	productRepo := repository.NewMySQLProductRepository(db)
	cachedProductRepo := repository.NewCachedProductRepository(productRepo, rdb, cfg.ProductCacheTTL)
	orderRepo := repository.NewMySQLOrderRepository(db)
	userRepo := repository.NewMySQLUserRepository(db)
	idempotencyStore := repository.NewRedisIdempotencyStore(rdb)

	gateway := payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)

	pricingEngine := service.NewPricingEngine(productRepo, service.PricingPolicy{
		ShippingFee:     cfg.ShippingFee,
		FreeShippingMin: cfg.FreeShippingMin,
		TaxRate:         cfg.TaxRate,
	})
	orderService := service.NewOrderService(orderRepo, productRepo, pricingEngine, idempotencyStore, publisher, cfg.CheckoutTTL)
	paymentService := service.NewPaymentService(orderService, orderRepo, userRepo, gateway, cfg.Currency)
	productService := service.NewProductService(cachedProductRepo)
	userService := service.NewUserService(userRepo, cfg.JWTSecret)

	orderHandler := api.NewOrderHandler(orderService)
	paymentHandler := api.NewPaymentHandler(paymentService)
	productHandler := api.NewProductHandler(productService)
	userHandler := api.NewUserHandler(userService)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(20),
				Burst:     50,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	jwtMiddleware := echojwt.WithConfig(echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.JwtCustomClaims)
		},
		SigningKey: []byte(cfg.JWTSecret),
	})

	v1 := e.Group("/api/v1")

	v1.POST("/users", userHandler.Register)
	v1.POST("/users/login", userHandler.Login)

	v1.GET("/products", productHandler.GetProducts)
	v1.GET("/products/:id", productHandler.GetProduct)
	v1.POST("/products", productHandler.CreateProduct, jwtMiddleware, api.AdminOnly)
	v1.PUT("/products/:id", productHandler.UpdateProduct, jwtMiddleware, api.AdminOnly)

	v1.POST("/orders", orderHandler.CreateOrder, jwtMiddleware)
	v1.GET("/orders/mine", orderHandler.GetMyOrders, jwtMiddleware)
	v1.GET("/orders/:id", orderHandler.GetOrder, jwtMiddleware)
	v1.PUT("/orders/:id/deliver", orderHandler.DeliverOrder, jwtMiddleware, api.AdminOnly)

	v1.GET("/payment/razorpay/key", paymentHandler.GetKey)
	v1.POST("/payment/razorpay/order", paymentHandler.CreatePaymentOrder, jwtMiddleware)
	v1.POST("/payment/razorpay/order/validate", paymentHandler.ValidatePayment)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "shop-api",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// Expiry sweep: abandoned checkouts release their reserved stock.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			released, err := orderService.ReleaseExpired(context.Background())
			if err != nil {
				log.Printf("Expiry sweep failed: %v", err)
				continue
			}
			if released > 0 {
				log.Printf("Expiry sweep cancelled %d abandoned orders", released)
			}
		}
	}()

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
