package main

import (
	"database/sql"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/nattawut-k/storefront-backend/internal/config"
	"github.com/nattawut-k/storefront-backend/internal/order"
	"github.com/nattawut-k/storefront-backend/internal/payment"
	"github.com/nattawut-k/storefront-backend/internal/product"
	"github.com/nattawut-k/storefront-backend/internal/storage"
	"github.com/nattawut-k/storefront-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	app := fiber.New()
	setupCORS(app)
	app.Use(requestLogger)

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()

	mustBootstrapSchema(db)

	store, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("storage init failed: %v", err)
	}
	gateway := payment.NewStripeGateway(cfg.StripeSecretKey)

	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService, []byte(cfg.JWTSecret))

	productRepo := product.NewPostgresRepository(db)
	productService := product.NewService(productRepo)
	productHandler := product.NewHandler(productService, store)

	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, productService, gateway, cfg.PaymentTimeout)
	orderHandler := order.NewHandler(orderService, userService)

	// public surface: signup/login and uploaded images
	userHandler.RegisterPublicRoutes(app)
	app.Static("/uploads", cfg.UploadDir)

	// everything registered past this point requires a valid bearer token
	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
		},
	}))

	userHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)

	log.Printf("starting server on %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	log.Printf("%s %s -> %d (%v)", c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
	return err
}

func mustOpenDB(dbURL string) *sql.DB {
	if dbURL == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	return db
}

func mustBootstrapSchema(db *sql.DB) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id SERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL,
			password TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'customer',
			order_ids integer[] NOT NULL DEFAULT ARRAY[]::integer[],
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			product_id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			price numeric NOT NULL,
			categories text[] NOT NULL DEFAULT ARRAY[]::text[],
			image_urls text[] NOT NULL DEFAULT ARRAY[]::text[],
			is_featured BOOLEAN NOT NULL DEFAULT false,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id SERIAL PRIMARY KEY,
			user_id INT NOT NULL,
			product_id INT NOT NULL,
			total_amount numeric NOT NULL,
			status TEXT NOT NULL,
			payment_intent_id TEXT,
			created_at TEXT,
			updated_at TEXT
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			panic(err)
		}
	}
}
