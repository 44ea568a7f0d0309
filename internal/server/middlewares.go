package server

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ekinotomasyon/officepanel/internal/config"
	"github.com/ekinotomasyon/officepanel/internal/usecase"
)

var errAuthHeaderRequired = errors.New("Authorization header is required")

// getUID trusts X-Uid only from the internal client, everyone else must
// present a Firebase ID token.
func (s *Server) getUID(c echo.Context) (string, error) {
	var (
		reqClientID = c.Request().Header.Get(config.HEADER_KEY_X_CLIENT_ID)
		reqUID      = c.Request().Header.Get(config.HEADER_KEY_X_UID)
	)

	if s.clientID != "" &&
		reqClientID == s.clientID &&
		reqUID != "" {

		s.logger.DebugContext(c.Request().Context(), "internal client request", "uid", reqUID)
		return reqUID, nil
	}

	token, ok := strings.CutPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return "", errAuthHeaderRequired
	}

	return s.server.VerifyIDToken(c.Request().Context(), token)
}

func unauthorized(c echo.Context, err error) error {
	return c.JSON(401, map[string]string{
		"error":    err.Error(),
		"message":  "login required",
		"redirect": "/login",
	})
}

// AuthMiddleware resolves the caller into a usecase.Session and puts it in
// the request context. Requests without a valid session never reach a
// handler.
func (s *Server) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var (
			ctx = c.Request().Context()
		)

		uid, err := s.getUID(c)
		if err != nil {
			return unauthorized(c, err)
		}

		session, err := s.server.Authenticate(ctx, uid)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to resolve session", "uid", uid, "err", err)
			return c.JSON(500, map[string]string{"error": err.Error()})
		}

		ctx = usecase.WithSession(ctx, session)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}

// RequireAdmin guards the destructive routes.
func (s *Server) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, ok := usecase.SessionFromContext(c.Request().Context())
		if !ok {
			return unauthorized(c, usecase.ErrNoSession)
		}
		if !session.CanDelete() {
			return c.JSON(403, map[string]string{"error": usecase.ErrForbidden.Error()})
		}
		return next(c)
	}
}
