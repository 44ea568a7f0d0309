package server

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ekinotomasyon/officepanel/internal/usecase"
)

type Log struct {
	ID          uint      `json:"id"`
	UID         string    `json:"uid"`
	Action      string    `json:"action"`
	ActionLabel string    `json:"action_label"`
	Note        string    `json:"note"`
	HasPhoto    bool      `json:"has_photo"`
	GPS         *Location `json:"gps,omitempty"`
	CreatedAt   string    `json:"created_at"`
}

type LogGroup struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Logs  []Log  `json:"logs"`
}

type LogList struct {
	Logs   []Log      `json:"logs"`
	Groups []LogGroup `json:"groups"`
}

func toLog(l usecase.Log) Log {
	return Log{
		ID:          l.ID,
		UID:         l.UID,
		Action:      string(l.Action),
		ActionLabel: l.Action.Label(),
		Note:        l.Note,
		HasPhoto:    l.PhotoPath != "",
		GPS:         toLocation(l.GPS),
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
	}
}

func toLogs(list []usecase.Log) []Log {
	logs := make([]Log, 0, len(list))
	for _, l := range list {
		logs = append(logs, toLog(l))
	}
	return logs
}

func toLogGroups(list []usecase.LogGroup) []LogGroup {
	groups := make([]LogGroup, 0, len(list))
	for _, g := range list {
		groups = append(groups, LogGroup{
			Key:   g.Key,
			Label: g.Label,
			Logs:  toLogs(g.Logs),
		})
	}
	return groups
}

type ListLogsRequest struct {
	UID   string `param:"uid" validate:"required"`
	Limit int    `query:"limit" validate:"omitempty,gte=1,lte=200"`
}

func (s *Server) ListLogs(ctx echo.Context) error {
	var req = ListLogsRequest{Limit: usecase.DefaultLogLimit}
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	logs, groups, err := s.server.ListLogs(ctx.Request().Context(), usecase.ListLogsOption{
		UID:   req.UID,
		Limit: req.Limit,
	})
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(200, Res{
		Data: LogList{
			Logs:   toLogs(logs),
			Groups: toLogGroups(groups),
		},
		Meta: &Meta{
			Total: len(logs),
			Limit: req.Limit,
		},
	})
}

type CreateLogRequest struct {
	UID    string `param:"uid" validate:"required"`
	Action string `form:"action"`
	Note   string `form:"note"`
	GPSLat string `form:"gps_lat" validate:"omitempty,latitude"`
	GPSLng string `form:"gps_lng" validate:"omitempty,longitude"`
}

func (s *Server) CreateLog(ctx echo.Context) error {
	var req CreateLogRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	gps, err := parseLocation(req.GPSLat, req.GPSLng)
	if err != nil {
		return s.fail(ctx, err)
	}

	photo, closePhoto, err := formUpload(ctx, "photo")
	if err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	defer closePhoto()

	l, err := s.server.CreateLog(ctx.Request().Context(), usecase.Log{
		UID:    req.UID,
		Action: usecase.JobType(strings.TrimSpace(req.Action)),
		Note:   req.Note,
		GPS:    gps,
	}, photo)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(201, Res{Data: toLog(l)})
}
