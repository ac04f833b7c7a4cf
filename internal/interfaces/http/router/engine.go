package router

import (
	"net/http"
	"strings"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/wayfarer/backend/docs"
	"github.com/wayfarer/backend/internal/infrastructure/config"
	"github.com/wayfarer/backend/internal/infrastructure/logger"
	"github.com/wayfarer/backend/internal/infrastructure/telemetry"
	"github.com/wayfarer/backend/internal/interfaces/http/handler"
	"github.com/wayfarer/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by New
type Handlers struct {
	Auth    *handler.AuthHandler
	Profile *handler.ProfileHandler
	Follow  *handler.FollowHandler
	Place   *handler.PlaceHandler
	Review  *handler.ReviewHandler
	System  *handler.SystemHandler
}

// Options configures the middleware stack
type Options struct {
	Logger      *zap.Logger
	HTTP        config.HTTPConfig
	Swagger     config.SwaggerConfig
	Auth        middleware.JWTMiddlewareConfig
	ServiceName string
	Production  bool

	// Meter enables HTTP metrics when non-nil
	Meter *telemetry.MeterProvider
	// Tracing enables request spans
	Tracing bool
	// Profiling tags requests with pyroscope labels
	Profiling bool
	// Sentry reports panics to the configured sentry hub
	Sentry bool
}

// untracedPrefixes are operational paths kept out of traces and profiles
var untracedPrefixes = []string{"/health", "/swagger", "/api-docs"}

// New builds the gin engine with the full middleware stack and every route.
func New(opts Options, h Handlers) (*gin.Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Auth.Logger == nil {
		opts.Auth.Logger = log
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(opts.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID(), logger.Recovery(log))
	if opts.Sentry {
		engine.Use(sentrygin.New(sentrygin.Options{Repanic: true, Timeout: 2 * time.Second}))
	}
	engine.Use(logger.GinMiddleware(log))

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = opts.Production
	engine.Use(middleware.SecureWithConfig(security))

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = opts.HTTP.CORSAllowOrigins
	if len(opts.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = opts.HTTP.CORSAllowMethods
	}
	if len(opts.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = opts.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(cors))

	if opts.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(opts.HTTP.MaxBodySize))
	}
	if opts.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(opts.HTTP.RateLimitRequests, opts.HTTP.RateLimitWindow)))
	}
	if opts.HTTP.GzipEnabled {
		engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/swagger"})))
	}

	tracing := middleware.DefaultTracingConfig()
	tracing.Enabled = opts.Tracing
	if opts.ServiceName != "" {
		tracing.ServiceName = opts.ServiceName
	}
	tracing.Filter = func(r *http.Request) bool {
		return !hasAnyPrefix(r.URL.Path, untracedPrefixes)
	}
	engine.Use(middleware.TracingWithConfig(tracing), middleware.SpanEnricher())
	engine.Use(middleware.HTTPMetrics(opts.Meter))

	profiling := middleware.DefaultProfilingConfig()
	profiling.Enabled = opts.Profiling
	profiling.SkipPathPrefixes = untracedPrefixes
	engine.Use(middleware.ProfilingWithConfig(profiling))

	registerOperational(engine, opts, h)

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Register(apiGroups(opts, h)...)
	r.Setup()

	log.Info("HTTP routes registered", zap.Int("routes", len(engine.Routes())))
	return engine, nil
}

func registerOperational(engine *gin.Engine, opts Options, h Handlers) {
	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}

	protect := middleware.SwaggerProtection(middleware.SwaggerConfig{
		Enabled:    opts.Swagger.Enabled,
		AllowedIPs: opts.Swagger.AllowedIPs,
	})
	engine.GET("/swagger/*any", protect, ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.GET("/api-docs/openapi.json", protect, func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(docs.SwaggerInfo.ReadDoc()))
	})
}

// apiGroups declares the /api/v1 surface. Each domain splits into a public
// subgroup, where a bearer token is optional, and an authenticated one.
func apiGroups(opts Options, h Handlers) []RouteRegistrar {
	optional := middleware.OptionalJWTAuthMiddleware(opts.Auth)
	required := middleware.JWTAuthMiddleware(opts.Auth)

	authGroup := NewDomainGroup("auth", "/auth")
	if opts.HTTP.RateLimitEnabled && opts.HTTP.AuthRateLimit > 0 {
		authLimiter := middleware.NewRateLimiter(opts.HTTP.AuthRateLimit, opts.HTTP.RateLimitWindow)
		authGroup.Use(middleware.RateLimit(authLimiter))
	}
	authGroup.Group("auth-public", "").Use(optional).
		POST("/register", h.Auth.Register).
		POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.RefreshToken)
	authGroup.Group("auth-session", "").Use(required).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.GetCurrentUser)

	profile := NewDomainGroup("profile", "/profile")
	profile.Group("profile-public", "").Use(optional).
		GET("/check-username", h.Profile.CheckUsername).
		GET("/:id", h.Profile.GetProfile).
		GET("/:id/places", h.Profile.ListProfilePlaces)
	profile.Group("profile-owner", "").Use(required).
		POST("/update-name", h.Profile.UpdateName).
		POST("/avatar", h.Profile.UploadAvatar)

	onboarding := NewDomainGroup("onboarding", "/onboarding")
	onboarding.Group("onboarding-public", "").Use(optional).
		GET("/interests", h.Profile.ListInterests)
	onboarding.Group("onboarding-owner", "").Use(required).
		POST("", h.Profile.CompleteOnboarding)

	users := NewDomainGroup("users", "/users")
	users.Group("users-public", "").Use(optional).
		GET("/:id/followers", h.Follow.ListFollowers).
		GET("/:id/following", h.Follow.ListFollowing)
	users.Group("users-social", "").Use(required).
		GET("/suggestions", h.Profile.SuggestUsers).
		POST("/:id/follow", h.Follow.Follow).
		DELETE("/:id/follow", h.Follow.Unfollow).
		GET("/:id/follow-status", h.Follow.FollowStatus)

	places := NewDomainGroup("places", "/places")
	places.Group("places-public", "").Use(optional).
		GET("/nearby", h.Place.SearchNearby).
		GET("/:placeId/details", h.Place.GetPlaceDetails).
		GET("/:placeId/reviews", h.Review.PlaceReviews)
	places.Group("places-saved", "").Use(required).
		POST("", h.Place.SavePlace).
		GET("", h.Place.ListPlaces).
		GET("/saved", h.Place.IsPlaceSaved).
		DELETE("/:placeId/saved/:id", h.Place.DeleteSavedPlace).
		GET("/:placeId/review", h.Review.GetMyReview).
		POST("/:placeId/review", h.Review.SubmitReview)

	reviews := NewDomainGroup("reviews", "/reviews")
	reviews.Group("reviews-public", "").Use(optional).
		GET("/:id", h.Review.GetReview)
	reviews.Group("reviews-member", "").Use(required).
		GET("/user", h.Review.ListMyReviews).
		GET("/following", h.Review.FollowingFeed).
		DELETE("/:id", h.Review.DeleteReview).
		POST("/:id/like", h.Review.LikeReview).
		DELETE("/:id/like", h.Review.UnlikeReview)

	groups := []RouteRegistrar{authGroup, profile, onboarding, users, places, reviews}
	if h.System != nil {
		system := NewDomainGroup("system", "/system").
			GET("/info", h.System.GetSystemInfo).
			GET("/ping", h.System.Ping)
		groups = append(groups, system)
	}
	return groups
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
