package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ekinotomasyon/officepanel/internal/usecase"
)

// formUpload opens the optional file part named field. The returned close
// func is always safe to call.
func formUpload(ctx echo.Context, field string) (*usecase.Upload, func(), error) {
	noop := func() {}

	fh, err := ctx.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}

	return &usecase.Upload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

type GetContractURLRequest struct {
	UID string `param:"uid" validate:"required"`
}

func (s *Server) GetContractURL(ctx echo.Context) error {
	var req GetContractURLRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	url, err := s.server.GetContractURL(ctx.Request().Context(), req.UID)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(200, map[string]string{"url": url})
}

type GetLogPhotoURLRequest struct {
	ID uint `param:"id" validate:"required,gt=0"`
}

func (s *Server) GetLogPhotoURL(ctx echo.Context) error {
	var req GetLogPhotoURLRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	url, err := s.server.GetLogPhotoURL(ctx.Request().Context(), req.ID)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(200, map[string]string{"url": url})
}
