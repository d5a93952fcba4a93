// Package service holds the booking rules: the date gate, the purchase
// validator and the mutation applied when a purchase is accepted.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iliyamo/club-booking/internal/model"
	"github.com/iliyamo/club-booking/internal/queue"
	"github.com/iliyamo/club-booking/internal/repository"
)

// Recorder receives booking outcomes for metrics.
type Recorder interface {
	BookingAccepted(places int)
	BookingRejected(rules []string)
}

type nopRecorder struct{}

func (nopRecorder) BookingAccepted(int)      {}
func (nopRecorder) BookingRejected([]string) {}

// BookingService runs logins, page views and purchases against the
// repository.
type BookingService struct {
	repo      *repository.Repository
	limits    Limits
	publisher Publisher
	metrics   Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewBookingService wires the service.  Nil publisher, metrics and logger
// fall back to no-op implementations and slog.Default.
func NewBookingService(repo *repository.Repository, limits Limits, publisher Publisher, metrics Recorder, logger *slog.Logger) *BookingService {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingService{
		repo:      repo,
		limits:    limits,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock replaces the time source; tests pin it.
func (s *BookingService) SetClock(now func() time.Time) { s.now = now }

// Limits returns the caps the service enforces.
func (s *BookingService) Limits() Limits { return s.limits }

// Login resolves the club for a submitted email (a club name works too).
func (s *BookingService) Login(email string) (model.Club, error) {
	return s.repo.FindClub(email)
}

// CompetitionView is a competition annotated for display.
type CompetitionView struct {
	model.Competition
	IsPast bool
}

// Summary is everything the welcome page shows for a club.
type Summary struct {
	Club         model.Club
	BookedTotal  int
	ClubTotalCap int
	Competitions []CompetitionView
}

// Summary builds the welcome page model for club.
func (s *BookingService) Summary(club model.Club) Summary {
	now := s.now()
	comps := s.repo.Competitions()
	views := make([]CompetitionView, 0, len(comps))
	for _, c := range comps {
		views = append(views, CompetitionView{Competition: c, IsPast: IsPast(c, now)})
	}
	return Summary{
		Club:         club,
		BookedTotal:  club.BookedTotal(),
		ClubTotalCap: s.limits.ClubTotal,
		Competitions: views,
	}
}

// BookingPage is the result of opening the booking form.  Club is set
// whenever the club resolved, even if booking is unavailable.
type BookingPage struct {
	Club        *model.Club
	Competition *model.Competition
	Available   bool
	MaxPlaces   int
}

// BookingView opens the booking form for a competition and club.  The form
// is available only when both resolve and the competition is not past.
func (s *BookingService) BookingView(competitionKey, clubKey string) BookingPage {
	var page BookingPage
	if club, err := s.repo.FindClub(clubKey); err == nil {
		page.Club = &club
	}
	if comp, err := s.repo.FindCompetition(competitionKey); err == nil {
		page.Competition = &comp
	}
	if page.Club == nil || page.Competition == nil || IsPast(*page.Competition, s.now()) {
		return page
	}
	page.Available = true
	page.MaxPlaces = s.maxPlaces(*page.Club, *page.Competition)
	return page
}

// maxPlaces is the largest request that could pass every numeric check.
func (s *BookingService) maxPlaces(club model.Club, comp model.Competition) int {
	n := s.limits.PerBooking
	for _, v := range []int{comp.NumberOfPlaces.Int(), club.Points.Int(), s.limits.ClubTotal - club.BookedTotal()} {
		if v < n {
			n = v
		}
	}
	if n < 0 {
		return 0
	}
	return n
}

// PurchaseRequest carries the raw form fields of a purchase.
type PurchaseRequest struct {
	Club        string
	Competition string
	Places      string
}

// PurchaseResult reports what happened to a purchase.  Club is the club's
// state after the attempt (nil when it did not resolve).  Booking is set
// only for accepted purchases.
type PurchaseResult struct {
	Decision    Decision
	Club        *model.Club
	Competition *model.Competition
	Booking     *model.Booking
}

// Purchase validates the request and, if every check passes, takes the
// places from the competition and the points from the club, records the
// booking and persists both collections.  Validation failures are reported
// in the result; the returned error is reserved for persistence failures,
// after which nothing has changed.
func (s *BookingService) Purchase(ctx context.Context, req PurchaseRequest) (PurchaseResult, error) {
	var res PurchaseResult
	now := s.now()

	err := s.repo.Update(ctx, func(st *repository.Snapshot) (bool, error) {
		var club *model.Club
		var comp *model.Competition
		if i := repository.FindClub(st.Clubs, req.Club); i >= 0 {
			club = &st.Clubs[i]
		}
		if i := repository.FindCompetition(st.Competitions, req.Competition); i >= 0 {
			comp = &st.Competitions[i]
		}

		res.Decision = Validate(club, comp, req.Places, now, s.limits)
		if club != nil {
			c := club.Clone()
			res.Club = &c
		}
		if comp != nil {
			c := *comp
			res.Competition = &c
		}
		if !res.Decision.Accepted() {
			return false, nil
		}

		places := res.Decision.Places
		remaining, err := RemainingPlaces(comp.NumberOfPlaces.Int(), places)
		if err != nil {
			return false, err
		}
		comp.NumberOfPlaces = model.Count(remaining)
		club.Points -= model.Count(places)
		booking := model.Booking{
			Competition: comp.Name,
			Places:      places,
			TS:          now.Format(model.BookingTimeLayout),
		}
		club.Bookings = append(club.Bookings, booking)

		c := club.Clone()
		res.Club = &c
		cp := *comp
		res.Competition = &cp
		res.Booking = &booking
		return true, nil
	})
	if err != nil {
		s.logger.Error("purchase failed", "club", req.Club, "competition", req.Competition, "error", err)
		return PurchaseResult{}, err
	}

	if !res.Decision.Accepted() {
		rules := make([]string, 0, len(res.Decision.Violations))
		for _, r := range res.Decision.Rules() {
			rules = append(rules, string(r))
		}
		s.metrics.BookingRejected(rules)
		s.logger.Info("purchase rejected",
			"club", req.Club, "competition", req.Competition, "places", req.Places, "rules", rules)
		return res, nil
	}

	s.metrics.BookingAccepted(res.Booking.Places)
	s.logger.Info("purchase accepted",
		"club", res.Club.Name, "competition", res.Competition.Name, "places", res.Booking.Places,
		"points_left", res.Club.Points.Int(), "places_left", res.Competition.NumberOfPlaces.Int())
	s.publish(ctx, res, now)
	return res, nil
}

// publish sends the confirmation event.  A broker failure is logged and
// otherwise ignored: the booking is already persisted.
func (s *BookingService) publish(ctx context.Context, res PurchaseResult, now time.Time) {
	ev := queue.BookingConfirmedEvent{
		EventID:         queue.NewEventID(),
		Club:            res.Club.Name,
		ClubEmail:       res.Club.Email,
		Competition:     res.Competition.Name,
		CompetitionDate: res.Competition.Date,
		Places:          res.Booking.Places,
		PointsLeft:      res.Club.Points.Int(),
		PlacesLeft:      res.Competition.NumberOfPlaces.Int(),
		BookedTotal:     res.Club.BookedTotal(),
		ConfirmedAt:     queue.FormatConfirmedAt(now),
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.publisher.PublishBookingConfirmed(ctx, ev); err != nil {
		s.logger.Warn("publish booking event failed", "event_id", ev.EventID, "error", err)
	}
}

// Points returns the public points listing.
func (s *BookingService) Points() []ClubPoints {
	return ListPoints(s.repo.Clubs())
}
