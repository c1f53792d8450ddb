package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/anonto42/circle/backend/internal/events"
	"github.com/anonto42/circle/backend/internal/handlers"
	"github.com/anonto42/circle/backend/internal/inflight"
	"github.com/anonto42/circle/backend/internal/middleware"
	"github.com/anonto42/circle/backend/internal/repositories"
	"github.com/anonto42/circle/backend/internal/router"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/anonto42/circle/backend/internal/session"
	"github.com/anonto42/circle/backend/pkg/config"
	"github.com/anonto42/circle/backend/pkg/firebase"
	"github.com/anonto42/circle/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

func main() {
	slog.Info("starting circle API")

	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			newConfig,
			config.NewLogger,
			newDB,
			newUserRepository,
			newPostRepository,
			newFollowRepository,
			newLikeRepository,
			newCommentRepository,
			newNotificationRepository,
			newVerificationRepository,
			newGuard,
			newPublisher,
			newSessionStore,
			newTokenIssuer,
			newFirebaseVerifier,
			newPostConfig,
			services.NewNotificationService,
			services.NewGraphService,
			services.NewFeedService,
			services.NewLikeService,
			services.NewPostService,
			newVerificationService,
			newProfileService,
			newHandlers,
			newServer,
		),
		fx.Invoke(registerServerHooks),
	)

	if err := app.Start(context.Background()); err != nil {
		slog.Error("failed to start application", "error", err)
		os.Exit(1)
	}

	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		slog.Error("failed to stop application gracefully", "error", err)
	}
}

func newConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newDB(lc fx.Lifecycle, cfg *config.Config) (*config.DB, error) {
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := router.AutoMigrate(db.Postgres); err != nil {
		db.CloseDB()
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			db.CloseDB()
			return nil
		},
	})
	return db, nil
}

func newUserRepository(db *config.DB) repositories.UserRepository {
	return repositories.NewPostgresUserRepository(db.Postgres)
}

func newPostRepository(db *config.DB, logger *slog.Logger) repositories.PostRepository {
	repo := repositories.NewMongoPostRepository(db.MongoDB)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure post indexes", "error", err)
	}
	return repo
}

func newFollowRepository(db *config.DB) repositories.FollowRepository {
	return repositories.NewPostgresFollowRepository(db.Postgres)
}

func newLikeRepository(db *config.DB) repositories.LikeRepository {
	return repositories.NewPostgresLikeRepository(db.Postgres)
}

func newCommentRepository(db *config.DB) repositories.CommentRepository {
	return repositories.NewPostgresCommentRepository(db.Postgres)
}

func newNotificationRepository(db *config.DB) repositories.NotificationRepository {
	return repositories.NewPostgresNotificationRepository(db.Postgres)
}

func newVerificationRepository(db *config.DB) repositories.VerificationRepository {
	return repositories.NewPostgresVerificationRepository(db.Postgres)
}

// newGuard shares the like guard through Redis when configured, else keeps it in process
func newGuard(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) inflight.Guard {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, using in-process like guard")
		return inflight.NewMemoryGuard(cfg.InflightTTL)
	}

	client := inflight.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return inflight.NewRedisGuard(client, cfg.InflightTTL)
}

func newPublisher(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, domain events are dropped")
		return events.NopPublisher{Logger: logger}, nil
	}

	producer, err := events.NewKafkaProducer(strings.Join(cfg.KafkaBrokers, ","))
	if err != nil {
		return nil, err
	}
	publisher := events.NewKafkaPublisher(logger, producer, cfg.KafkaTopic)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return publisher.Close()
		},
	})
	return publisher, nil
}

func newSessionStore(cfg *config.Config, users repositories.UserRepository, logger *slog.Logger) *session.Store {
	store := session.NewStore(users, session.WithTTL(cfg.SessionTTL))
	store.Subscribe(func(change session.Change) {
		logger.Debug("session changed", "user_id", change.UserID, "kind", string(change.Kind))
	})
	return store
}

func newTokenIssuer(cfg *config.Config, logger *slog.Logger) (*middleware.TokenIssuer, error) {
	if cfg.UsesDefaultSecret() {
		if cfg.IsProduction() {
			return nil, errors.New("JWT_SECRET must be set in production")
		}
		logger.Warn("JWT_SECRET not set, using the development secret")
	}
	return middleware.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL), nil
}

// newFirebaseVerifier returns a nil verifier when Firebase is not configured
func newFirebaseVerifier(cfg *config.Config, logger *slog.Logger) (middleware.IDTokenVerifier, error) {
	app, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath)
	if errors.Is(err, firebase.ErrNotConfigured) {
		logger.Info("FIREBASE_CREDENTIALS_PATH not set, Firebase sign-in disabled")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return app.AuthClient, nil
}

func newPostConfig(cfg *config.Config) services.PostConfig {
	return services.PostConfig{RateWindow: cfg.PostRateWindow}
}

func newVerificationService(
	requests repositories.VerificationRepository,
	users repositories.UserRepository,
	sessions *session.Store,
	publisher events.Publisher,
	logger *slog.Logger,
) *services.VerificationService {
	return services.NewVerificationService(requests, users, sessions, publisher, logger)
}

func newProfileService(users repositories.UserRepository, sessions *session.Store) *services.ProfileService {
	return services.NewProfileService(users, sessions)
}

func newHandlers(
	db *config.DB,
	guard inflight.Guard,
	users repositories.UserRepository,
	tokens *middleware.TokenIssuer,
	verifier middleware.IDTokenVerifier,
	sessions *session.Store,
	feed *services.FeedService,
	posts *services.PostService,
	likes *services.LikeService,
	graph *services.GraphService,
	profiles *services.ProfileService,
	notifications *services.NotificationService,
	verification *services.VerificationService,
	logger *slog.Logger,
) router.Handlers {
	stores := map[string]handlers.Pinger{"databases": db}
	if redisGuard, ok := guard.(*inflight.RedisGuard); ok {
		stores["redis"] = handlers.PingFunc(redisGuard.HealthCheck)
	}

	return router.Handlers{
		Health:        handlers.NewHealthHandler(stores),
		Auth:          handlers.NewAuthHandler(users, tokens, sessions, logger),
		Feed:          handlers.NewFeedHandler(feed),
		Post:          handlers.NewPostHandler(posts),
		Like:          handlers.NewLikeHandler(likes),
		Comment:       handlers.NewCommentHandler(posts),
		Follow:        handlers.NewFollowHandler(graph, profiles),
		User:          handlers.NewUserHandler(profiles, graph, posts),
		Notification:  handlers.NewNotificationHandler(notifications),
		Verification:  handlers.NewVerificationHandler(verification),
		Authenticator: middleware.NewAuthenticator(tokens, verifier, users, sessions, logger),
		FirebaseAuth:  middleware.FirebaseAuthMiddleware(verifier),
	}
}

func newServer(cfg *config.Config, logger *slog.Logger, h router.Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()

	config.SetupMiddleware(e, cfg, logger)
	router.SetupRoutes(e, h, logger)
	return e
}

// registerServerHooks registers lifecycle hooks for the HTTP server
func registerServerHooks(lc fx.Lifecycle, shutdowner fx.Shutdowner, e *echo.Echo, cfg *config.Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info("http server listening", "port", cfg.Port)
				if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server failed", "error", err)
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			logger.Info("shutting down http server")
			return e.Shutdown(shutdownCtx)
		},
	})
}
