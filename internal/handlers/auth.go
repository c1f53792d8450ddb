package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/anonto42/circle/backend/internal/middleware"
	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// SessionEnder tears down cached session state on sign-out
type SessionEnder interface {
	End(id uint)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	tokens         *middleware.TokenIssuer
	sessions       SessionEnder
	logger         *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, tokens *middleware.TokenIssuer, sessions SessionEnder, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		tokens:         tokens,
		sessions:       sessions,
		logger:         logger,
	}
}

// RegisterAuthRoutes registers the unauthenticated routes. firebaseAuth verifies the ID token for firebase-login.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, firebaseAuth echo.MiddlewareFunc) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin, firebaseAuth)
}

// RegisterSessionRoutes registers routes that need an authenticated identity
func (h *AuthHandler) RegisterSessionRoutes(g *echo.Group) {
	g.POST("/auth/signout", h.SignOut)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.CreateLocalUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Handle:      req.Handle,
		DisplayName: req.DisplayName,
		Email:       strings.ToLower(req.Email),
		Password:    string(hashedPassword),
		Theme:       models.ThemeSystem,
	}

	err = h.userRepository.CreateUser(c.Request().Context(), user)
	if errors.Is(err, repositories.ErrDuplicate) {
		return echo.NewHTTPError(http.StatusConflict, "Handle or email already registered")
	}
	if err != nil {
		h.logger.Error("failed to create user", "handle", req.Handle, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	return h.respondWithToken(c, http.StatusCreated, user)
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), strings.ToLower(req.Email))
	if errors.Is(err, repositories.ErrNotFound) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	if err != nil {
		return toHTTPError(err)
	}

	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	return h.respondWithToken(c, http.StatusOK, user)
}

// FirebaseLogin exchanges a verified Firebase ID token for a local JWT, linking or creating the account
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	token, ok := middleware.FirebaseToken(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing Firebase token")
	}
	ctx := c.Request().Context()

	email, _ := token.Claims["email"].(string)
	email = strings.ToLower(email)
	name, _ := token.Claims["name"].(string)

	user, err := h.userRepository.GetUserByFirebaseUID(ctx, token.UID)
	if err == nil {
		return h.respondWithToken(c, http.StatusOK, user)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return toHTTPError(err)
	}

	if email != "" {
		user, err = h.userRepository.GetUserByEmail(ctx, email)
		if err == nil {
			if err := h.userRepository.UpdateFields(ctx, user.ID, map[string]interface{}{"firebase_uid": token.UID}); err != nil {
				h.logger.Error("failed to link firebase account", "user_id", user.ID, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to link account")
			}
			return h.respondWithToken(c, http.StatusOK, user)
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return toHTTPError(err)
		}
	}

	user, err = h.createFirebaseUser(ctx, token.UID, email, name)
	if err != nil {
		h.logger.Error("failed to create firebase user", "firebase_uid", token.UID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}
	return h.respondWithToken(c, http.StatusCreated, user)
}

// createFirebaseUser derives a handle from the email, retrying with a random suffix on collision
func (h *AuthHandler) createFirebaseUser(ctx context.Context, uid, email, name string) (*models.User, error) {
	base := handleFrom(email, uid)
	if name == "" {
		name = base
	}

	var err error
	for attempt := 0; attempt < 3; attempt++ {
		handle := base
		if attempt > 0 {
			handle = base + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
		}
		firebaseUID := uid
		user := &models.User{
			FirebaseUID: &firebaseUID,
			Email:       email,
			Handle:      handle,
			DisplayName: name,
			Theme:       models.ThemeSystem,
		}
		err = h.userRepository.CreateUser(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return nil, err
		}
	}
	return nil, err
}

// handleFrom builds a valid handle base (3..23 chars) from an email local part or uid
func handleFrom(email, uid string) string {
	source := uid
	if at := strings.IndexByte(email, '@'); at > 0 {
		source = email[:at]
	}

	var b strings.Builder
	for _, r := range strings.ToLower(source) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '+':
			b.WriteByte('_')
		}
		if b.Len() == 23 {
			break
		}
	}
	handle := b.String()
	for len(handle) < 3 {
		handle += "_"
	}
	return handle
}

// SignOut ends the caller's cached session state. The token itself stays valid until it expires.
func (h *AuthHandler) SignOut(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	h.sessions.End(user.ID)
	return success(c, http.StatusOK, echo.Map{"signed_out": true})
}

func (h *AuthHandler) respondWithToken(c echo.Context, status int, user *models.User) error {
	token, expires, err := h.tokens.Issue(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return success(c, status, echo.Map{
		"token":      token,
		"expires_at": expires,
		"user":       user,
	})
}
