package handlers

import (
	"net/http"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to profiles and settings
type UserHandler struct {
	profiles *services.ProfileService
	graph    *services.GraphService
	posts    *services.PostService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(profiles *services.ProfileService, graph *services.GraphService, posts *services.PostService) *UserHandler {
	return &UserHandler{profiles: profiles, graph: graph, posts: posts}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.UpdateSettings)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:handle", h.GetUser)
	g.GET("/users/:handle/posts", h.GetUserPosts)
}

// GetProfile returns the caller's own record, including private fields.
// It reads the stored row because counters move without touching the cached identity.
func (h *UserHandler) GetProfile(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	user, err := h.profiles.GetByID(c.Request().Context(), caller.ID)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, echo.Map{"user": user})
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.profiles.UpdateProfile(c.Request().Context(), user.ID, req)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, echo.Map{"user": updated})
}

func (h *UserHandler) GetSettings(c echo.Context) error {
	caller, err := currentUser(c)
	if err != nil {
		return err
	}
	user, err := h.profiles.GetByID(c.Request().Context(), caller.ID)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, echo.Map{
		"is_private": user.IsPrivate,
		"theme":      user.Theme,
	})
}

// UpdateSettings changes privacy and theme. Going private does not hide earlier posts.
func (h *UserHandler) UpdateSettings(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.UpdateSettingsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.profiles.UpdateSettings(c.Request().Context(), user.ID, req)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, echo.Map{
		"is_private": updated.IsPrivate,
		"theme":      updated.Theme,
	})
}

// GetUser returns another user's public profile and whether the caller follows them
func (h *UserHandler) GetUser(c echo.Context) error {
	viewer, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	user, err := h.profiles.GetByHandle(ctx, c.Param("handle"))
	if err != nil {
		return toHTTPError(err)
	}
	following, err := h.graph.IsFollowing(ctx, viewer.ID, user.ID)
	if err != nil {
		return toHTTPError(err)
	}

	return success(c, http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":              user.ID,
			"handle":          user.Handle,
			"display_name":    user.DisplayName,
			"bio":             user.Bio,
			"avatar_url":      user.AvatarURL,
			"website":         user.Website,
			"twitter_handle":  user.TwitterHandle,
			"github_handle":   user.GithubHandle,
			"is_private":      user.IsPrivate,
			"is_verified":     user.IsVerified,
			"followers_count": user.FollowersCount,
			"following_count": user.FollowingCount,
			"posts_count":     user.PostsCount,
			"likes_count":     user.LikesCount,
			"created_at":      user.CreatedAt,
		},
		"is_following": following,
		"is_self":      viewer.ID == user.ID,
	})
}

// GetUserPosts lists a user's posts; private accounts only show them to followers
func (h *UserHandler) GetUserPosts(c echo.Context) error {
	viewer, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	author, err := h.profiles.GetByHandle(ctx, c.Param("handle"))
	if err != nil {
		return toHTTPError(err)
	}

	page, limit := pagination(c, 20)
	posts, err := h.posts.AuthorPosts(ctx, viewer, author, page, limit)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"posts": posts},
		"meta":    paginationMeta(page, limit, author.PostsCount),
	})
}

func (h *UserHandler) SearchUsers(c echo.Context) error {
	if _, err := currentUser(c); err != nil {
		return err
	}
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Query parameter q is required")
	}

	users, err := h.profiles.Search(c.Request().Context(), q)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, echo.Map{"users": users})
}
