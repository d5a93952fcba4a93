package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/club-booking/internal/middleware"
	"github.com/iliyamo/club-booking/internal/repository"
	"github.com/iliyamo/club-booking/internal/service"
	"github.com/iliyamo/club-booking/internal/view"
)

const clubsJSON = `{"clubs": [
  {"name": "Simply Lift", "email": "john@simplylift.co", "points": "13"},
  {"name": "Iron Temple", "email": "admin@irontemple.com", "points": "4"}
]}`

const competitionsJSON = `{"competitions": [
  {"name": "Spring Festival", "date": "2099-03-27 10:00:00", "numberOfPlaces": "25"},
  {"name": "Winter Open", "date": "2000-01-01 00:00:00", "numberOfPlaces": "20"}
]}`

type countingPurger struct{ calls int }

func (p *countingPurger) Purge(context.Context) error {
	p.calls++
	return nil
}

type testServer struct {
	e       *echo.Echo
	clubs   string
	purger  *countingPurger
	cookies []*http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	clubs := filepath.Join(dir, "clubs.json")
	comps := filepath.Join(dir, "competitions.json")
	require.NoError(t, os.WriteFile(clubs, []byte(clubsJSON), 0o644))
	require.NoError(t, os.WriteFile(comps, []byte(competitionsJSON), 0o644))

	repo, err := repository.New(context.Background(), repository.NewFileStore(clubs, comps))
	require.NoError(t, err)
	svc := service.NewBookingService(repo, service.DefaultLimits(), nil, nil, nil)
	flash := middleware.NewFlasher("test-secret", nil)
	purger := &countingPurger{}
	h := NewBookingHandler(svc, flash, purger, nil)

	renderer, err := view.New()
	require.NoError(t, err)

	e := echo.New()
	e.Renderer = renderer
	e.Use(flash.Middleware())
	e.GET("/", h.Index)
	e.POST("/showSummary", h.ShowSummary)
	e.GET("/book/:competition/:club", h.Book)
	e.POST("/purchasePlaces", h.PurchasePlaces)
	e.GET("/points", h.Points)
	e.GET("/logout", h.Logout)
	e.GET("/healthz", Health)

	return &testServer{e: e, clubs: clubs, purger: purger}
}

// do sends req with the cookies collected so far and keeps any new ones.
func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	s.cookies = nil
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge >= 0 && c.Value != "" {
			s.cookies = append(s.cookies, c)
		}
	}
	return rec
}

func (s *testServer) get(target string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (s *testServer) post(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return s.do(req)
}

func purchase(club, competition, places string) url.Values {
	return url.Values{"club": {club}, "competition": {competition}, "places": {places}}
}

func TestIndexAndHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "GUDLFT")

	rec = s.get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestShowSummary(t *testing.T) {
	s := newTestServer(t)

	rec := s.post("/showSummary", url.Values{"email": {"john@simplylift.co"}})
	require.Equal(t, http.StatusOK, rec.Code)
	html := rec.Body.String()
	assert.Contains(t, html, "Welcome, john@simplylift.co")
	assert.Contains(t, html, "Points: 13")
	assert.Contains(t, html, "Booked total: 0/12")
	assert.Contains(t, html, "Book Places")
	assert.Contains(t, html, "Booking unavailable")
}

func TestShowSummaryUnknownEmail(t *testing.T) {
	s := newTestServer(t)

	rec := s.post("/showSummary", url.Values{"email": {"unknown@mail.com"}})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	rec = s.get("/")
	assert.Contains(t, rec.Body.String(), "Unknown email.")

	rec = s.get("/")
	assert.NotContains(t, rec.Body.String(), "Unknown email.")
}

func TestBook(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/book/Spring%20Festival/Simply%20Lift")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, strings.ToLower(rec.Body.String()), "spring festival")
	assert.Contains(t, rec.Body.String(), `name="places"`)

	rec = s.get("/book/Winter%20Open/Simply%20Lift")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Booking unavailable.")
	assert.Contains(t, rec.Body.String(), "Welcome, john@simplylift.co")

	rec = s.get("/book/UnknownComp/UnknownClub")
	require.Equal(t, http.StatusFound, rec.Code)
	rec = s.get("/")
	assert.Contains(t, rec.Body.String(), "Booking unavailable.")
}

func TestPurchaseAccepted(t *testing.T) {
	s := newTestServer(t)

	rec := s.post("/purchasePlaces", purchase("Simply Lift", "Spring Festival", "1"))
	require.Equal(t, http.StatusOK, rec.Code)
	html := rec.Body.String()
	assert.Contains(t, html, "Great-booking complete!")
	assert.Contains(t, html, "Points: 12")
	assert.Contains(t, html, "Booked total: 1/12")
	assert.Contains(t, html, "Number of Places: 24")
	assert.Equal(t, 1, s.purger.calls)

	data, err := os.ReadFile(s.clubs)
	require.NoError(t, err)
	clubs, err := repository.DecodeClubs(data)
	require.NoError(t, err)
	assert.Equal(t, 12, clubs[0].Points.Int())
	require.Len(t, clubs[0].Bookings, 1)
	assert.Equal(t, "Spring Festival", clubs[0].Bookings[0].Competition)
	assert.Equal(t, 1, clubs[0].Bookings[0].Places)
}

func TestPurchaseRejected(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want []string
	}{
		{"over per-booking cap", purchase("Simply Lift", "Spring Festival", "13"), []string{"Limit is 12 places per booking."}},
		{"not enough points", purchase("Iron Temple", "Spring Festival", "5"), []string{"Not enough points."}},
		{"past competition", purchase("Simply Lift", "Winter Open", "1"), []string{"Competition is in the past."}},
		{"invalid places", purchase("Simply Lift", "Spring Festival", "x"), []string{"Invalid number of places."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := s.post("/purchasePlaces", tt.form)
			require.Equal(t, http.StatusOK, rec.Code)
			for _, msg := range tt.want {
				assert.Contains(t, rec.Body.String(), msg)
			}
			assert.NotContains(t, rec.Body.String(), "Great-booking complete!")
			assert.Equal(t, 0, s.purger.calls)
		})
	}
}

func TestPurchaseClubTotalCap(t *testing.T) {
	s := newTestServer(t)

	rec := s.post("/purchasePlaces", purchase("Simply Lift", "Spring Festival", "7"))
	require.Contains(t, rec.Body.String(), "Great-booking complete!")
	assert.Contains(t, rec.Body.String(), "7/12")

	rec = s.post("/purchasePlaces", purchase("Simply Lift", "Spring Festival", "6"))
	require.Equal(t, http.StatusOK, rec.Code)
	html := strings.ToLower(rec.Body.String())
	assert.Contains(t, html, "limit of 12 total places per club reached")
	assert.Contains(t, html, "7/12")
}

func TestPurchaseUnknownClubRedirects(t *testing.T) {
	s := newTestServer(t)

	rec := s.post("/purchasePlaces", purchase("Nobody", "Spring Festival", "1"))
	require.Equal(t, http.StatusFound, rec.Code)

	rec = s.get("/")
	assert.Contains(t, rec.Body.String(), "Club or competition not found.")
}

func TestPointsAndLogout(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/points")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON))
	var got []service.ClubPoints
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []service.ClubPoints{
		{Name: "Simply Lift", Points: 13},
		{Name: "Iron Temple", Points: 4},
	}, got)

	rec = s.get("/logout")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
}
