// Package handler exposes the HTTP handlers for the booking pages and the
// public points listing.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-booking/internal/repository"
	"github.com/iliyamo/club-booking/internal/service"
	"github.com/iliyamo/club-booking/internal/view"
)

// Messages shown to clubs outside the validator's own.
const (
	MsgUnknownEmail       = "Unknown email."
	MsgBookingUnavailable = "Booking unavailable."
	MsgBookingComplete    = "Great-booking complete!"
)

// Flasher carries messages across a redirect.
type Flasher interface {
	Add(c echo.Context, msgs ...string) error
	Take(c echo.Context) []string
}

// Purger drops cached responses after the data behind them changed.
type Purger interface {
	Purge(ctx context.Context) error
}

// BookingHandler serves the login, summary, booking and points endpoints.
type BookingHandler struct {
	Service *service.BookingService
	Flash   Flasher
	Cache   Purger // optional
	Logger  *slog.Logger
}

// NewBookingHandler wires a handler; cache may be nil.
func NewBookingHandler(svc *service.BookingService, flash Flasher, cache Purger, logger *slog.Logger) *BookingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingHandler{Service: svc, Flash: flash, Cache: cache, Logger: logger}
}

// Index renders the login page with any pending flash messages.
func (h *BookingHandler) Index(c echo.Context) error {
	return c.Render(http.StatusOK, view.IndexPage, view.IndexData{Flashes: h.Flash.Take(c)})
}

// ShowSummary logs a club in by email.  Unknown emails go back to the login
// page with a flash message.
func (h *BookingHandler) ShowSummary(c echo.Context) error {
	club, err := h.Service.Login(c.FormValue("email"))
	if errors.Is(err, repository.ErrClubNotFound) {
		return h.redirectHome(c, MsgUnknownEmail)
	}
	if err != nil {
		return err
	}
	return h.welcome(c, h.Service.Summary(club))
}

// Book renders the booking form for /book/:competition/:club.  When the
// form is unavailable the club's summary is shown instead, or the login
// page when the club did not resolve.
func (h *BookingHandler) Book(c echo.Context) error {
	page := h.Service.BookingView(pathParam(c, "competition"), pathParam(c, "club"))
	if page.Available {
		return c.Render(http.StatusOK, view.BookingPage, view.BookingData{Page: page, Flashes: h.Flash.Take(c)})
	}
	if page.Club == nil {
		return h.redirectHome(c, MsgBookingUnavailable)
	}
	return h.welcome(c, h.Service.Summary(*page.Club), MsgBookingUnavailable)
}

// PurchasePlaces runs a purchase from the booking form.
func (h *BookingHandler) PurchasePlaces(c echo.Context) error {
	ctx := c.Request().Context()
	res, err := h.Service.Purchase(ctx, service.PurchaseRequest{
		Club:        c.FormValue("club"),
		Competition: c.FormValue("competition"),
		Places:      c.FormValue("places"),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not save booking"})
	}

	if !res.Decision.Accepted() {
		msgs := res.Decision.Messages()
		if res.Club == nil {
			return h.redirectHome(c, msgs...)
		}
		return h.welcome(c, h.Service.Summary(*res.Club), msgs...)
	}

	if h.Cache != nil {
		if err := h.Cache.Purge(ctx); err != nil {
			h.Logger.Warn("purge points cache failed", "error", err)
		}
	}
	return h.welcome(c, h.Service.Summary(*res.Club), MsgBookingComplete)
}

// Points returns every club's name and balance as JSON.
func (h *BookingHandler) Points(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Service.Points())
}

// Logout sends the browser back to the login page.  No session state is
// kept server side.
func (h *BookingHandler) Logout(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/")
}

// welcome renders the summary page with flash messages that arrived with
// the request followed by msgs.
func (h *BookingHandler) welcome(c echo.Context, sum service.Summary, msgs ...string) error {
	flashes := append(h.Flash.Take(c), msgs...)
	return c.Render(http.StatusOK, view.WelcomePage, view.WelcomeData{Summary: sum, Flashes: flashes})
}

func (h *BookingHandler) redirectHome(c echo.Context, msgs ...string) error {
	if err := h.Flash.Add(c, msgs...); err != nil {
		h.Logger.Error("set flash cookie failed", "error", err)
	}
	return c.Redirect(http.StatusFound, "/")
}

// pathParam returns an unescaped route parameter.
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
