package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const userKey = "user"

// IdentityLoader resolves a user id to its current identity record
type IdentityLoader interface {
	Load(ctx context.Context, id uint) (*models.User, error)
}

// FirebaseUserLookup finds the local account linked to a Firebase UID
type FirebaseUserLookup interface {
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
}

// Authenticator accepts local JWTs, and Firebase ID tokens when a verifier is configured
type Authenticator struct {
	tokens   *TokenIssuer
	firebase IDTokenVerifier
	users    FirebaseUserLookup
	sessions IdentityLoader
	logger   *slog.Logger
}

func NewAuthenticator(tokens *TokenIssuer, firebase IDTokenVerifier, users FirebaseUserLookup, sessions IdentityLoader, logger *slog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, firebase: firebase, users: users, sessions: sessions, logger: logger}
}

// Middleware resolves the bearer token to an identity and stores it in the context
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			userID, err := a.resolve(ctx, tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			user, err := a.sessions.Load(ctx, userID)
			if errors.Is(err, repositories.ErrNotFound) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Account no longer exists")
			}
			if err != nil {
				a.logger.Error("failed to load identity", "user_id", userID, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load identity")
			}

			c.Set(userKey, user)
			return next(c)
		}
	}
}

func (a *Authenticator) resolve(ctx context.Context, tokenString string) (uint, error) {
	claims, jwtErr := a.tokens.Parse(tokenString)
	if jwtErr == nil {
		return claims.UserID, nil
	}
	if a.firebase == nil {
		return 0, jwtErr
	}

	token, err := a.firebase.VerifyIDToken(ctx, tokenString)
	if err != nil {
		return 0, err
	}
	user, err := a.users.GetUserByFirebaseUID(ctx, token.UID)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// RequireAdmin rejects identities without the admin flag. It must run after Authenticator.Middleware.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}
			if !user.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}
			return next(c)
		}
	}
}

// CurrentUser returns the identity stored by Authenticator.Middleware
func CurrentUser(c echo.Context) (*models.User, bool) {
	user, ok := c.Get(userKey).(*models.User)
	return user, ok && user != nil
}

// SetCurrentUser stores user as the request identity
func SetCurrentUser(c echo.Context, user *models.User) {
	c.Set(userKey, user)
}
