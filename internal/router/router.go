package router

import (
	"log/slog"

	"github.com/anonto42/circle/backend/internal/handlers"
	"github.com/anonto42/circle/backend/internal/middleware"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Handlers groups every HTTP handler the API mounts
type Handlers struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Feed          *handlers.FeedHandler
	Post          *handlers.PostHandler
	Like          *handlers.LikeHandler
	Comment       *handlers.CommentHandler
	Follow        *handlers.FollowHandler
	User          *handlers.UserHandler
	Notification  *handlers.NotificationHandler
	Verification  *handlers.VerificationHandler
	Authenticator *middleware.Authenticator
	FirebaseAuth  echo.MiddlewareFunc
}

// AutoMigrate creates or updates the PostgreSQL tables
func AutoMigrate(pgdb *gorm.DB) error {
	return pgdb.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Like{},
		&models.Comment{},
		&models.Notification{},
		&models.VerificationRequest{},
	)
}

// SetupRoutes configures all application routes
func SetupRoutes(e *echo.Echo, h Handlers, logger *slog.Logger) {
	// Health check - always accessible
	e.GET("/health", h.Health.HealthCheck)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	h.Auth.RegisterAuthRoutes(authGroup, h.FirebaseAuth)

	// --- Protected routes ---
	api := e.Group("/api/v1")
	api.Use(h.Authenticator.Middleware())

	h.Auth.RegisterSessionRoutes(api)
	h.Feed.RegisterFeedRoutes(api)
	h.Post.RegisterPostRoutes(api)
	h.Like.RegisterLikeRoutes(api)
	h.Comment.RegisterCommentRoutes(api)
	h.Follow.RegisterFollowRoutes(api)
	h.User.RegisterProfileRoutes(api)
	h.Notification.RegisterNotificationRoutes(api)
	h.Verification.RegisterVerificationRoutes(api)

	admin := api.Group("/admin", middleware.RequireAdmin())
	h.Verification.RegisterAdminRoutes(admin)

	logger.Info("routes configured", "routes", len(e.Routes()))
}
