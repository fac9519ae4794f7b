package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/time/rate"

	_ "github.com/cardfolio/cardfolio-api/docs"
	"github.com/cardfolio/cardfolio-api/internal/api/handler"
	"github.com/cardfolio/cardfolio-api/internal/api/middleware"
	"github.com/cardfolio/cardfolio-api/internal/core/service"
	mongodb "github.com/cardfolio/cardfolio-api/internal/infrastructure/db/mongo"
	redisdb "github.com/cardfolio/cardfolio-api/internal/infrastructure/db/redis"
	"github.com/cardfolio/cardfolio-api/internal/infrastructure/storage"
)

// Dependencies carries everything the router needs to wire the handlers.
type Dependencies struct {
	DB        *mongo.Database
	Redis     *redis.Client
	Images    *storage.ImageStore
	JWTSecret string
	TokenTTL  time.Duration
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("cardfolio"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(deps.DB)
	profileCache := redisdb.NewProfileCache(deps.Redis)

	authService := service.NewAuthService(userRepo, deps.JWTSecret, deps.TokenTTL, deps.Logger)
	cardService := service.NewCardService(userRepo, deps.Images, profileCache, deps.Logger)
	profileService := service.NewProfileService(userRepo, profileCache, deps.Logger)

	authHandler := handler.NewAuthHandler(authService)
	cardHandler := handler.NewCardHandler(cardService, deps.Images)
	profileHandler := handler.NewProfileHandler(profileService)
	authRequired := middleware.Auth(deps.JWTSecret)

	// --- Auth routes (rate limited per client IP) ---
	auth := e.Group("/auth", echomiddleware.RateLimiter(
		echomiddleware.NewRateLimiterMemoryStore(rate.Limit(5)),
	))
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// --- Card routes (bearer token required) ---
	cards := e.Group("/api/cards", authRequired)
	cards.GET("", cardHandler.List)
	cards.POST("", cardHandler.Create)
	cards.PUT("/:cardId", cardHandler.Update)
	cards.DELETE("/:cardId", cardHandler.Delete)

	// --- Public profiles ---
	e.GET("/api/users/:username", profileHandler.Get)

	// --- Uploaded images ---
	e.Static("/uploads", deps.Images.Root())

	// --- Operational surface ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.DB, deps.Redis)

	e.GET("/", healthHandler.Root)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
