// Package router builds the Echo instance and registers every route.
package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/club-booking/internal/handler"
	"github.com/iliyamo/club-booking/internal/middleware"
)

// Deps are the pieces the routes are built from.  Cache, RateLimit and
// Metrics are optional.
type Deps struct {
	Booking   *handler.BookingHandler
	Flash     *middleware.Flasher
	Cache     *middleware.ResponseCache
	RateLimit *middleware.RateLimiter
	Metrics   http.Handler
	Renderer  echo.Renderer
	Logger    *slog.Logger
}

// New returns an Echo instance with recovery, request logging, flash
// cookies and every route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = d.Renderer

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			logger.LogAttrs(context.Background(), level, "request", attrs...)
			return nil
		},
	}))
	if d.Flash != nil {
		e.Use(d.Flash.Middleware())
	}

	RegisterRoutes(e, d)
	return e
}

// RegisterRoutes maps the health check, the metrics endpoint, the booking
// pages and the points listing.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}

	b := d.Booking
	e.GET("/", b.Index)
	e.POST("/showSummary", b.ShowSummary)
	e.GET("/book/:competition/:club", b.Book)
	e.GET("/logout", b.Logout)

	var purchaseMW, pointsMW []echo.MiddlewareFunc
	if d.RateLimit != nil {
		purchaseMW = append(purchaseMW, d.RateLimit.Middleware())
	}
	if d.Cache != nil {
		pointsMW = append(pointsMW, d.Cache.Middleware())
	}
	e.POST("/purchasePlaces", b.PurchasePlaces, purchaseMW...)
	e.GET("/points", b.Points, pointsMW...)
}
