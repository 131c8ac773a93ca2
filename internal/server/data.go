package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/goodcasino/livecare/internal/gamedata"
)

// DataHandler serves the RTP config and the game catalog under /api.
type DataHandler struct {
	rtp    *gamedata.RTPStore
	games  *gamedata.GameStore
	logger *slog.Logger
}

// NewDataHandler creates the data handler.
func NewDataHandler(log *slog.Logger, rtp *gamedata.RTPStore, games *gamedata.GameStore) *DataHandler {
	return &DataHandler{
		rtp:    rtp,
		games:  games,
		logger: log.With(slog.String("handler", "data")),
	}
}

// Register mounts the data routes.
func (h *DataHandler) Register(e *echo.Echo) {
	e.GET("/api/rtp", h.GetRTP)
	e.POST("/api/rtp", h.SetRTP)
	e.GET("/api/games", h.GetGames)
	e.POST("/api/games", h.SetGames)
}

// GetRTP returns the current RTP config.
func (h *DataHandler) GetRTP(c echo.Context) error {
	cfg, err := h.rtp.Get()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cfg)
}

// SetRTP replaces the RTP config.
func (h *DataHandler) SetRTP(c echo.Context) error {
	var cfg gamedata.RTPConfig
	if err := c.Bind(&cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(cfg.RTPLink) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "rtpLink is required")
	}
	if err := h.rtp.Set(cfg); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.logger.Info("rtp config updated", slog.String("link", cfg.RTPLink))
	return c.JSON(http.StatusOK, cfg)
}

// GetGames returns the game catalog.
func (h *DataHandler) GetGames(c echo.Context) error {
	return c.JSON(http.StatusOK, h.games.Games())
}

// SetGames replaces the game catalog.
func (h *DataHandler) SetGames(c echo.Context) error {
	var games gamedata.Games
	if err := c.Bind(&games); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.games.SetGames(games); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.logger.Info("game catalog updated")
	return c.JSON(http.StatusOK, games)
}
