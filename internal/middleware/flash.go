package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-booking/internal/utils"
)

// FlashCookie is the cookie carrying pending flash messages.
const FlashCookie = "club_booking_flash"

const (
	flashIncomingKey = "flash.incoming"
	flashPendingKey  = "flash.pending"
)

// Flasher stores one-shot messages in a signed cookie so they survive a
// redirect.  Messages are consumed by the first page that renders them.
type Flasher struct {
	Secret string
	TTL    time.Duration
	Logger *slog.Logger
}

// NewFlasher returns a Flasher with a five minute token lifetime.
func NewFlasher(secret string, logger *slog.Logger) *Flasher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flasher{Secret: secret, TTL: 5 * time.Minute, Logger: logger}
}

// Middleware decodes the flash cookie, if any, into the request context.
// A cookie that fails verification is dropped.
func (f *Flasher) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(FlashCookie)
			if err == nil && ck.Value != "" {
				msgs, err := utils.ParseFlash(f.Secret, ck.Value)
				if err != nil {
					f.Logger.Debug("dropping flash cookie", "error", err)
					f.clear(c)
				} else {
					c.Set(flashIncomingKey, msgs)
				}
			}
			return next(c)
		}
	}
}

// Add queues messages for the next page.  Messages that arrived with this
// request and were not shown yet are carried along in front.
func (f *Flasher) Add(c echo.Context, msgs ...string) error {
	pending, _ := c.Get(flashPendingKey).([]string)
	if pending == nil {
		pending, _ = c.Get(flashIncomingKey).([]string)
		c.Set(flashIncomingKey, nil)
	}
	pending = append(append([]string(nil), pending...), msgs...)
	c.Set(flashPendingKey, pending)

	tok, err := utils.SignFlash(f.Secret, pending, f.TTL)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     FlashCookie,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(f.TTL / time.Second),
	})
	return nil
}

// Take returns the messages that arrived with the request and clears the
// cookie so they are shown only once.
func (f *Flasher) Take(c echo.Context) []string {
	msgs, _ := c.Get(flashIncomingKey).([]string)
	if len(msgs) == 0 {
		return nil
	}
	c.Set(flashIncomingKey, nil)
	if c.Get(flashPendingKey) == nil {
		f.clear(c)
	}
	return msgs
}

func (f *Flasher) clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     FlashCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
