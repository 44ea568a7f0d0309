package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ekinotomasyon/officepanel/internal/geocode"
	"github.com/ekinotomasyon/officepanel/internal/usecase"
)

// Messages shown under the map search box.
const (
	msgAddressNotFound    = "Adres bulunamadı. Daha detaylı yazmayı dene."
	msgLocationUnresolved = "Konum çözümlenemedi."
)

// fail writes err with the status its kind calls for. Store and storage
// failures keep their original text.
func (s *Server) fail(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, usecase.ErrNoSession):
		return unauthorized(ctx, err)
	case errors.Is(err, geocode.ErrSuperseded):
		// a newer search owns the picker, nothing to show
		return ctx.NoContent(http.StatusConflict)
	case errors.Is(err, geocode.ErrNotFound),
		errors.Is(err, geocode.ErrEmptyQuery):
		return ctx.JSON(422, map[string]string{"error": msgAddressNotFound})
	case errors.Is(err, geocode.ErrBadCoordinate):
		return ctx.JSON(422, map[string]string{"error": msgLocationUnresolved})
	case errors.Is(err, geocode.ErrUpstream):
		return ctx.JSON(502, map[string]string{"error": err.Error()})
	case usecase.IsValidation(err):
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	case errors.Is(err, usecase.ErrNotFound),
		errors.Is(err, usecase.ErrNoContract),
		errors.Is(err, usecase.ErrNoPhoto):
		return ctx.JSON(404, map[string]string{"error": err.Error()})
	case errors.Is(err, usecase.ErrDuplicate):
		return ctx.JSON(409, map[string]string{"error": err.Error()})
	case errors.Is(err, usecase.ErrForbidden):
		return ctx.JSON(403, map[string]string{"error": err.Error()})
	}

	s.logger.ErrorContext(ctx.Request().Context(), "request failed",
		"path", ctx.Path(),
		"err", err)
	return ctx.JSON(500, map[string]string{"error": err.Error()})
}

func (s *Server) healthHandler(ctx echo.Context) error {
	stats := s.server.Health()

	if s.redis != nil {
		rctx, cancel := context.WithTimeout(ctx.Request().Context(), time.Second)
		defer cancel()

		if err := s.redis.Ping(rctx).Err(); err != nil {
			stats["redis"] = "down"
			stats["redis_error"] = err.Error()
		} else {
			stats["redis"] = "up"
		}
	}

	code := http.StatusOK
	if stats["status"] != "up" || stats["redis"] == "down" {
		code = http.StatusServiceUnavailable
	}
	return ctx.JSON(code, stats)
}

type Me struct {
	UserID        string `json:"user_id"`
	Role          string `json:"role"`
	CanDelete     bool   `json:"can_delete"`
	UIDPrefix     string `json:"uid_prefix"`
	DueThresholds []int  `json:"due_thresholds"`
}

// GetMe tells the panel who is signed in and what they may do.
func (s *Server) GetMe(ctx echo.Context) error {
	session, ok := usecase.SessionFromContext(ctx.Request().Context())
	if !ok {
		return unauthorized(ctx, usecase.ErrNoSession)
	}

	return ctx.JSON(200, Res{
		Data: Me{
			UserID:        session.UserID,
			Role:          string(session.Role),
			CanDelete:     session.CanDelete(),
			UIDPrefix:     s.server.UIDPrefix(),
			DueThresholds: usecase.DueThresholds,
		},
	})
}

type GeocodeRequest struct {
	Q string `query:"q"`
}

// Geocode never fails: bad input and upstream trouble both come back as an
// empty list.
func (s *Server) Geocode(ctx echo.Context) error {
	var req GeocodeRequest
	_ = ctx.Bind(&req)

	return ctx.JSON(200, map[string][]geocode.Place{
		"results": s.server.Geocode(ctx.Request().Context(), req.Q),
	})
}
