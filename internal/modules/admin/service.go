package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"terminbook/internal/domain"
)

type Service struct {
	admins       AdminRepository
	reservations ReservationRepository
	jwt          jwtService
	live         SlotBroadcaster
}

func NewService(
	admins AdminRepository,
	reservations ReservationRepository,
	jwt jwtService,
	live SlotBroadcaster,
) *Service {
	return &Service{
		admins:       admins,
		reservations: reservations,
		jwt:          jwt,
		live:         live,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	admin, err := s.admins.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	return s.jwt.GenerateAdminToken(admin.ID, admin.Email)
}

// ListReservations returns all reservations, optionally filtered by weekday
// name ("monday".."sunday"). Empty filter means all.
func (s *Service) ListReservations(ctx context.Context, weekday string) ([]ReservationView, error) {
	weekday = strings.ToLower(strings.TrimSpace(weekday))
	if weekday != "" && !validWeekday(weekday) {
		return nil, ErrValidation
	}

	all, err := s.reservations.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ReservationView, 0, len(all))
	for i := range all {
		name := weekdayName(all[i].Date)
		if weekday != "" && name != weekday {
			continue
		}
		out = append(out, ReservationView{
			ID:            all[i].ID,
			Date:          all[i].Date,
			Time:          all[i].Time,
			PhoneNumber:   all[i].PhoneNumber,
			PhoneLastFour: all[i].PhoneLastFour,
			Confirmed:     all[i].Confirmed,
			Weekday:       name,
		})
	}
	return out, nil
}

// ConfirmReservation marks the reservation confirmed. The flag only ever goes
// false to true; confirming twice is not an error.
func (s *Service) ConfirmReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	if err := s.reservations.Confirm(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.reservations.GetByID(ctx, id)
}

// CancelReservation deletes the record and announces the freed slot.
func (s *Service) CancelReservation(ctx context.Context, id string) error {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.reservations.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if s.live != nil {
		s.live.SlotFreed(res.Date, res.Time)
	}
	return nil
}

func validWeekday(name string) bool {
	switch name {
	case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday":
		return true
	}
	return false
}

func weekdayName(date string) string {
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return ""
	}
	return strings.ToLower(d.Weekday().String())
}
