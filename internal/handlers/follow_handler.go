package handlers

import (
	"net/http"

	"github.com/anonto42/circle/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler exposes the follow graph keyed by handle
type FollowHandler struct {
	graph    *services.GraphService
	profiles *services.ProfileService
}

func NewFollowHandler(graph *services.GraphService, profiles *services.ProfileService) *FollowHandler {
	return &FollowHandler{graph: graph, profiles: profiles}
}

func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.GET("/users/:handle/follow", h.IsFollowing)
	g.POST("/users/:handle/follow", h.Follow)
	g.DELETE("/users/:handle/follow", h.Unfollow)
	g.GET("/users/:handle/followers", h.GetFollowers)
	g.GET("/users/:handle/following", h.GetFollowing)
}

func (h *FollowHandler) IsFollowing(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	target, err := h.profiles.GetByHandle(ctx, c.Param("handle"))
	if err != nil {
		return toHTTPError(err)
	}
	following, err := h.graph.IsFollowing(ctx, user.ID, target.ID)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, echo.Map{"following": following})
}

func (h *FollowHandler) Follow(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	target, err := h.profiles.GetByHandle(ctx, c.Param("handle"))
	if err != nil {
		return toHTTPError(err)
	}
	if err := h.graph.Follow(ctx, user, target.ID); err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, echo.Map{"following": true})
}

func (h *FollowHandler) Unfollow(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	target, err := h.profiles.GetByHandle(ctx, c.Param("handle"))
	if err != nil {
		return toHTTPError(err)
	}
	if err := h.graph.Unfollow(ctx, user.ID, target.ID); err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, echo.Map{"following": false})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	ctx := c.Request().Context()
	target, err := h.profiles.GetByHandle(ctx, c.Param("handle"))
	if err != nil {
		return toHTTPError(err)
	}
	users, err := h.graph.Followers(ctx, target.ID)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, echo.Map{"users": users})
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	ctx := c.Request().Context()
	target, err := h.profiles.GetByHandle(ctx, c.Param("handle"))
	if err != nil {
		return toHTTPError(err)
	}
	users, err := h.graph.Following(ctx, target.ID)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, echo.Map{"users": users})
}
