package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// clubID returns the club a request acts for, taken from the submitted
// "club" form field and normalised the way lookups are.  Requests without
// one are "anon".
func clubID(c echo.Context) string {
	if v := strings.ToLower(strings.TrimSpace(c.FormValue("club"))); v != "" {
		return v
	}
	return "anon"
}

// clientIP returns the caller's address or "unknown".
func clientIP(c echo.Context) string {
	if ip := c.RealIP(); ip != "" {
		return ip
	}
	return "unknown"
}
