package admin

import (
	"context"

	"terminbook/internal/domain"
)

type ReservationRepository interface {
	ListAll(ctx context.Context) ([]domain.Reservation, error)
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	Confirm(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
}

type jwtService interface {
	GenerateAdminToken(adminID int64, email string) (string, error)
}

// SlotBroadcaster tells connected booking clients that a slot opened up again.
type SlotBroadcaster interface {
	SlotFreed(date, slotTime string)
}
