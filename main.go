package main

import (
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"handyman-backend/activity"
	"handyman-backend/billing"
	"handyman-backend/controllers"
	"handyman-backend/database"
	"handyman-backend/logger"
	"handyman-backend/middlewares"
	"handyman-backend/routes"
)

// envInt reads an int env var with a default fallback.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	// ---- Config & logging
	if err := godotenv.Load(); err != nil {
		// .env is optional; plain env vars work fine in containers.
		log.Debug().Msg("no .env file loaded")
	}
	logger.Setup()

	// ---- Database
	database.Connect()
	database.AutoMigrate()

	// ---- Billing services (stores and directories injected, no globals)
	dir := &billing.GormDirectory{DB: database.DB}
	recorder := &activity.GormRecorder{DB: database.DB}
	strict := os.Getenv("STRICT_TRANSITIONS") == "true"

	h := &controllers.Handlers{
		DB: database.DB,
		Estimates: &billing.EstimateService{
			Store:    &billing.GormEstimateStore{DB: database.DB},
			Clients:  dir,
			Services: dir,
			Activity: recorder,
			Strict:   strict,
		},
		Invoices: &billing.InvoiceService{
			Store:    &billing.GormInvoiceStore{DB: database.DB},
			Clients:  dir,
			Bookings: dir,
			Activity: recorder,
			Strict:   strict,
		},
		Activity: recorder,
	}

	// ---- Limits (configurable via env)
	// Fiber default BodyLimit is 4 * 1024 * 1024 bytes if unset (per docs).
	// We allow overriding with BODY_LIMIT_BYTES or BODY_LIMIT_MB.
	bodyLimitBytes := envInt("BODY_LIMIT_BYTES", 0)
	if bodyLimitBytes <= 0 {
		bodyLimitBytes = envInt("BODY_LIMIT_MB", 4) * 1024 * 1024
	}

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    bodyLimitBytes,
	})

	// ---- CORS
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: false, // using Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Idempotency-Key",
	}))

	// ---- Global rate limiter (applies to all routes; tune via env)
	rlMax := envInt("RATE_LIMIT_MAX", 60)                                            // default 60 reqs
	rlWindow := time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second // default 60s window
	app.Use(limiter.New(limiter.Config{
		Max:        rlMax,
		Expiration: rlWindow,
		// Default KeyGenerator = client IP; default 429 handler is fine.
	}))

	// ---- Routes
	routes.Register(app, h)

	// ---- Start
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Info().Str("port", port).Msg("API server starting")
	if err := app.Listen(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
