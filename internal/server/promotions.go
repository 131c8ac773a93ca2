package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/goodcasino/livecare/internal/promo"
)

// PromotionHandler serves the promotion catalog CRUD under /api/promotions.
type PromotionHandler struct {
	store  *promo.Store
	logger *slog.Logger
}

// NewPromotionHandler creates the promotion handler.
func NewPromotionHandler(log *slog.Logger, store *promo.Store) *PromotionHandler {
	return &PromotionHandler{
		store:  store,
		logger: log.With(slog.String("handler", "promotions")),
	}
}

// Register mounts the promotion routes.
func (h *PromotionHandler) Register(e *echo.Echo) {
	e.GET("/api/promotions", h.List)
	e.POST("/api/promotions", h.Create)
	e.PUT("/api/promotions/:id", h.Update)
	e.DELETE("/api/promotions/:id", h.Delete)
}

// List returns the full catalog.
func (h *PromotionHandler) List(c echo.Context) error {
	promotions, err := h.store.List()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, promotions)
}

// Create adds a promotion and returns it with its assigned id.
func (h *PromotionHandler) Create(c echo.Context) error {
	var p promo.Promotion
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if p.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title is required")
	}
	created, err := h.store.Add(p)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.logger.Info("promotion created", slog.Int("id", created.ID), slog.String("title", created.Title))
	return c.JSON(http.StatusCreated, created)
}

// Update replaces the promotion with the given id.
func (h *PromotionHandler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid promotion id")
	}
	var p promo.Promotion
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	updated, err := h.store.Update(id, p)
	if errors.Is(err, promo.ErrPromotionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes the promotion with the given id.
func (h *PromotionHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid promotion id")
	}
	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, promo.ErrPromotionNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.logger.Info("promotion deleted", slog.Int("id", id))
	return c.NoContent(http.StatusNoContent)
}
