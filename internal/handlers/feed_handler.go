package handlers

import (
	"net/http"

	"github.com/anonto42/circle/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the home feed and explore search
type FeedHandler struct {
	feed *services.FeedService
}

func NewFeedHandler(feed *services.FeedService) *FeedHandler {
	return &FeedHandler{feed: feed}
}

func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
	g.GET("/explore", h.Explore)
}

// GetFeed returns the viewer's home feed with like state attached
func (h *FeedHandler) GetFeed(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	result, err := h.feed.HomeFeed(ctx, user.ID)
	if err != nil {
		return toHTTPError(err)
	}
	posts, err := h.feed.Enrich(ctx, user.ID, result.Posts)
	if err != nil {
		return toHTTPError(err)
	}

	return success(c, http.StatusOK, echo.Map{
		"strategy":  result.Strategy,
		"truncated": result.Truncated,
		"posts":     posts,
	})
}

// Explore filters recent public posts by the q query parameter
func (h *FeedHandler) Explore(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	matched, err := h.feed.Explore(ctx, c.QueryParam("q"))
	if err != nil {
		return toHTTPError(err)
	}
	posts, err := h.feed.Enrich(ctx, user.ID, matched)
	if err != nil {
		return toHTTPError(err)
	}

	return success(c, http.StatusOK, echo.Map{"posts": posts})
}
