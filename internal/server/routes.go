package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(otelecho.Middleware(s.serviceName, otelecho.WithSkipper(skipper)))
	e.Use(NewEchoLogger(s.logger))
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	// contracts and site photos are posted as multipart forms
	e.Use(middleware.BodyLimit("25M"))

	e.GET("/api/health", s.healthHandler)
	e.GET("/api/geocode", s.Geocode)

	var v1 = e.Group("/api/v1", s.AuthMiddleware)
	v1.GET("/me", s.GetMe)

	var assetGroup = v1.Group("/assets")
	assetGroup.GET("", s.ListAssets)
	assetGroup.POST("", s.CreateAsset)
	assetGroup.GET("/:uid", s.GetAssetByUID)
	assetGroup.PUT("/:uid", s.UpdateAsset)
	assetGroup.DELETE("/:uid", s.DeleteAsset, s.RequireAdmin)
	assetGroup.GET("/:uid/contract", s.GetContractURL)
	assetGroup.GET("/:uid/qrcode", s.GetAssetQRCode)

	assetGroup.GET("/:uid/logs", s.ListLogs)
	assetGroup.POST("/:uid/logs", s.CreateLog)

	assetGroup.PUT("/:uid/location", s.PickLocation)
	assetGroup.DELETE("/:uid/location", s.ClearLocation)
	assetGroup.POST("/:uid/location/search", s.SearchLocation)

	var logGroup = v1.Group("/logs")
	logGroup.GET("/:id/photo", s.GetLogPhotoURL)

	return e
}
