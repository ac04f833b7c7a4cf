package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	appfeed "github.com/wayfarer/backend/internal/application/feed"
	appidentity "github.com/wayfarer/backend/internal/application/identity"
	appplace "github.com/wayfarer/backend/internal/application/place"
	appreview "github.com/wayfarer/backend/internal/application/review"
	appsocial "github.com/wayfarer/backend/internal/application/social"
	"github.com/wayfarer/backend/internal/infrastructure/auth"
	"github.com/wayfarer/backend/internal/infrastructure/cache"
	"github.com/wayfarer/backend/internal/infrastructure/config"
	"github.com/wayfarer/backend/internal/infrastructure/logger"
	"github.com/wayfarer/backend/internal/infrastructure/persistence"
	"github.com/wayfarer/backend/internal/infrastructure/places"
	"github.com/wayfarer/backend/internal/infrastructure/storage"
	"github.com/wayfarer/backend/internal/infrastructure/telemetry"
	"github.com/wayfarer/backend/internal/interfaces/http/handler"
	"github.com/wayfarer/backend/internal/interfaces/http/middleware"
	"github.com/wayfarer/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Wayfarer API
//	@version		1.0
//	@description	Place discovery backend: follows, saved places, reviews, likes and feeds.

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// A missing .env is normal outside local development
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	logCfg := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		log.Warn("Failed to load .env file", zap.Error(envErr))
	}

	ctx := context.Background()
	tel, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	if tel.Logs.IsEnabled() {
		if log, err = logger.New(logCfg, tel.Logs.ZapCore(logger.ParseLevel(cfg.Log.Level))); err != nil {
			panic("failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting wayfarer",
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
	)

	sentryEnabled := initSentry(cfg, log)
	if sentryEnabled {
		defer sentry.Flush(2 * time.Second)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level), cfg.Database.SlowQuery)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database connection", zap.Error(err))
		}
	}()
	if err := tel.DB.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient == nil {
		log.Warn("Redis not configured; using in-memory place cache and token blacklist")
	} else {
		defer func() {
			_ = redisClient.Close()
		}()
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	followRepo := persistence.NewGormFollowRepository(db.DB)
	savedPlaceRepo := persistence.NewGormSavedPlaceRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	likeRepo := persistence.NewGormLikeRepository(db.DB)

	// Place provider behind the details cache
	placesClient := places.NewClient(cfg.Places, places.WithLogger(log))
	if !placesClient.Configured() {
		log.Warn("Place provider API key not set; nearby search and details will answer 502")
	}
	detailsCache, closeCache := cache.NewPlaceDetailsCache(redisClient, cache.WithLogger(log))
	defer func() {
		_ = closeCache()
	}()
	details := places.NewCachedProvider(placesClient, detailsCache, cfg.Places.CacheTTL,
		places.WithCacheLogger(log),
		places.WithFlightTimeout(cfg.Places.LookupTimeout),
		places.WithLookupObserver(tel.Metrics.RecordPlaceLookup),
	)

	avatars, err := newAvatarStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize avatar storage", zap.Error(err))
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	blacklist := newTokenBlacklist(redisClient)

	// Application services
	authService := appidentity.NewAuthService(userRepo, jwtService, blacklist, log)
	profileService := appidentity.NewProfileService(userRepo, followRepo, savedPlaceRepo, avatars, log)
	followService := appsocial.NewFollowService(followRepo, userRepo, tel.Metrics, log)
	placeService := appplace.NewPlaceService(savedPlaceRepo, details, placesClient, tel.Metrics, log)
	feedService := appfeed.NewService(followRepo, reviewRepo, likeRepo, userRepo, details,
		appfeed.Config{LookupTimeout: cfg.Places.LookupTimeout},
		tel.Metrics, log)
	reviewService := appreview.NewReviewService(reviewRepo, likeRepo, feedService, tel.Metrics, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine, err := router.New(router.Options{
		Logger:      log,
		HTTP:        cfg.HTTP,
		Swagger:     cfg.Swagger,
		Auth:        middleware.JWTMiddlewareConfig{JWTService: jwtService, Revocations: authService, Logger: log},
		ServiceName: cfg.Telemetry.ServiceName,
		Production:  cfg.IsProduction(),
		Meter:       tel.Meter,
		Tracing:     tel.Tracer.IsEnabled(),
		Profiling:   tel.Profiler.IsEnabled(),
		Sentry:      sentryEnabled,
	}, router.Handlers{
		Auth:    handler.NewAuthHandler(authService, profileService),
		Profile: handler.NewProfileHandler(profileService, placeService),
		Follow:  handler.NewFollowHandler(followService),
		Place:   handler.NewPlaceHandler(placeService),
		Review:  handler.NewReviewHandler(reviewService),
		System:  handler.NewSystemHandler(cfg.App.Name, version, db),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Warn("Telemetry shutdown incomplete", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// initSentry configures error reporting. It returns false when no DSN is set.
func initSentry(cfg *config.Config, log *zap.Logger) bool {
	if cfg.Sentry.DSN == "" {
		return false
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.App.Env,
		Release:          version,
		EnableTracing:    cfg.Sentry.TracesSampleRate > 0,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		log.Error("Failed to initialize Sentry; error reporting disabled", zap.Error(err))
		return false
	}
	log.Info("Sentry error reporting enabled")
	return true
}

// newAvatarStore returns S3-compatible storage when a bucket is configured
// and the in-process stub otherwise.
func newAvatarStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (appidentity.AvatarStore, error) {
	if cfg.Storage.Bucket == "" {
		log.Warn("Object storage bucket not set; avatars are kept in memory")
		return storage.NewStubObjectStorage(), nil
	}
	s3Store, err := storage.NewS3ObjectStorage(ctx, &cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if err := s3Store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s3Store, nil
}

func newTokenBlacklist(client *redis.Client) auth.TokenBlacklist {
	if client == nil {
		return auth.NewInMemoryTokenBlacklist()
	}
	return auth.NewRedisTokenBlacklist(client)
}
