package booking

import (
	"context"
	"time"

	"terminbook/internal/domain"
	"terminbook/internal/pkg/validator"
	"terminbook/internal/repository"
	"terminbook/internal/schedule"
)

type Service struct {
	reservations ReservationRepository
	identities   IdentityVerifier
	cal          schedule.Calendar
	live         SlotBroadcaster
	now          func() time.Time
}

func NewService(
	reservations ReservationRepository,
	identities IdentityVerifier,
	cal schedule.Calendar,
	live SlotBroadcaster,
) *Service {
	return &Service{
		reservations: reservations,
		identities:   identities,
		cal:          cal,
		live:         live,
		now:          time.Now,
	}
}

// BookableDays returns the upcoming dates clients may pick from.
func (s *Service) BookableDays() []string {
	days := s.cal.NextBookableDays(s.cal.DaysShown, s.now())
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format(domain.DateLayout))
	}
	return out
}

// SlotsForDay returns every slot of the date together with its booked flag.
// Availability is derived, never cached: each call re-reads the store so a
// slot taken by another client since the last fetch shows up immediately.
func (s *Service) SlotsForDay(ctx context.Context, date string) (*DaySlots, error) {
	if s.reservations == nil {
		return nil, ErrStoreUnavailable
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, ErrValidation
	}

	slots, err := s.cal.Slots()
	if err != nil {
		return nil, err
	}
	booked, err := s.reservations.BookedTimes(ctx, date)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(booked))
	for _, t := range booked {
		taken[t] = true
	}

	out := &DaySlots{Date: date, Slots: make([]SlotStatus, 0, len(slots))}
	for _, t := range slots {
		out.Slots = append(out.Slots, SlotStatus{Time: t, Booked: taken[t]})
	}
	return out, nil
}

// AttemptBooking runs the two conflict checks and persists the reservation.
//
// The slot-taken and duplicate-phone checks are plain reads; the unique index
// on (date, time) backs them up, so two clients racing past the first check
// still cannot both insert.
func (s *Service) AttemptBooking(ctx context.Context, req AttemptBookingRequest) (*domain.Reservation, error) {
	if s.reservations == nil {
		return nil, ErrStoreUnavailable
	}

	phone, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	taken, err := s.reservations.SlotTaken(ctx, req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotUnavailable
	}

	now := s.now()
	today := now.Format(domain.DateLayout)
	existing, err := s.reservations.FindByPhoneSince(ctx, phone, today)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		// A same-day reservation whose time has already passed does not
		// block a new booking.
		if existing[i].Active(now) {
			return nil, ErrPhoneHasBooking
		}
	}

	res := &domain.Reservation{
		Date:             req.Date,
		Time:             req.Time,
		PhoneNumber:      phone,
		PhoneLastFour:    lastFour(phone),
		VerifiedIdentity: req.VerifiedIdentity,
		Confirmed:        false,
	}
	if err := s.reservations.Create(ctx, res); err != nil {
		if repository.IsSlotConflict(err) {
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}

	if s.live != nil {
		s.live.SlotBooked(res.Date, res.Time)
	}

	return res, nil
}

func lastFour(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return phone[len(phone)-4:]
}

// validate rejects malformed input before any store call and resolves the
// verified-identity token to the phone number it vouches for.
func (s *Service) validate(req AttemptBookingRequest) (string, error) {
	if !validator.IsE164(req.PhoneNumber) {
		return "", ErrValidation
	}

	day, err := time.Parse(domain.DateLayout, req.Date)
	if err != nil {
		return "", ErrValidation
	}
	if s.cal.NextBookableDays(1, day)[0].Format(domain.DateLayout) != req.Date {
		// Requested date falls on a closed weekday.
		return "", ErrValidation
	}

	slots, err := s.cal.Slots()
	if err != nil {
		return "", err
	}
	valid := false
	for _, t := range slots {
		if t == req.Time {
			valid = true
			break
		}
	}
	if !valid {
		return "", ErrValidation
	}

	r := domain.Reservation{Date: req.Date, Time: req.Time}
	if !r.Active(s.now()) {
		return "", ErrValidation
	}

	if req.VerifiedIdentity == "" {
		return "", ErrVerificationRequired
	}
	phone, err := s.identities.VerifyIdentity(req.VerifiedIdentity)
	if err != nil || phone != req.PhoneNumber {
		return "", ErrVerificationRequired
	}

	return phone, nil
}
