package middleware

import (
	"context"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

const (
	firebaseUIDKey   = "firebaseUID"
	firebaseTokenKey = "firebaseToken"
)

// IDTokenVerifier is satisfied by *auth.Client
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware verifies a Firebase ID token and stores its UID and claims in the context
func FirebaseAuthMiddleware(verifier IDTokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if verifier == nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Firebase sign-in is not configured")
			}

			idToken, err := bearerToken(c)
			if err != nil {
				return err
			}

			token, err := verifier.VerifyIDToken(c.Request().Context(), idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}

			c.Set(firebaseUIDKey, token.UID)
			c.Set(firebaseTokenKey, token)
			return next(c)
		}
	}
}

// FirebaseToken returns the verified token stored by FirebaseAuthMiddleware
func FirebaseToken(c echo.Context) (*auth.Token, bool) {
	token, ok := c.Get(firebaseTokenKey).(*auth.Token)
	return token, ok
}
