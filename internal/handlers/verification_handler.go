package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/circle/backend/internal/models"
	"github.com/anonto42/circle/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// VerificationHandler serves badge requests and the admin review queue
type VerificationHandler struct {
	verification *services.VerificationService
}

func NewVerificationHandler(verification *services.VerificationService) *VerificationHandler {
	return &VerificationHandler{verification: verification}
}

func (h *VerificationHandler) RegisterVerificationRoutes(g *echo.Group) {
	g.POST("/verification", h.Submit)
}

// RegisterAdminRoutes expects g to be guarded by middleware.RequireAdmin
func (h *VerificationHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/verification", h.ListPending)
	g.POST("/verification/:id/decision", h.Decide)
}

func (h *VerificationHandler) Submit(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req models.SubmitVerificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	created, err := h.verification.Submit(c.Request().Context(), user, req.Reason)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusCreated, echo.Map{"request": created})
}

func (h *VerificationHandler) ListPending(c echo.Context) error {
	requests, err := h.verification.Pending(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, echo.Map{"requests": requests})
}

func (h *VerificationHandler) Decide(c echo.Context) error {
	reviewer, err := currentUser(c)
	if err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request ID")
	}

	var req models.DecideVerificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	decided, err := h.verification.Decide(c.Request().Context(), reviewer, uint(id), req.Outcome)
	if err != nil {
		return toHTTPError(err)
	}
	return success(c, http.StatusOK, echo.Map{"request": decided})
}
