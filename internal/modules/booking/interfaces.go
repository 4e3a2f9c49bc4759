package booking

import (
	"context"

	"terminbook/internal/domain"
)

// ReservationRepository defines the store operations the consistency checks need
type ReservationRepository interface {
	SlotTaken(ctx context.Context, date, slotTime string) (bool, error)
	FindByPhoneSince(ctx context.Context, phoneNumber, fromDate string) ([]domain.Reservation, error)
	Create(ctx context.Context, res *domain.Reservation) error
	BookedTimes(ctx context.Context, date string) ([]string, error)
}

// IdentityVerifier checks a verified-identity token and returns the phone
// number it was issued for.
type IdentityVerifier interface {
	VerifyIdentity(token string) (phoneNumber string, err error)
}

// SlotBroadcaster pushes slot-state changes to connected booking clients.
type SlotBroadcaster interface {
	SlotBooked(date, slotTime string)
}
