package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"terminbook/internal/domain"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) DB() *gorm.DB { return r.db }

// Create inserts the reservation. The unique index on (date, time) makes this
// a conditional insert: a second insert for the same slot fails with a
// uniqueness violation instead of silently double-booking.
func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(res).Error
}

// IsSlotConflict reports whether err is the uniqueness violation raised by a
// concurrent insert for the same (date, time) slot. Covers both backends:
// pgconn error 23505 on postgres, the constraint message on sqlite.
func IsSlotConflict(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "idx_slot_taken")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var res domain.Reservation
	tx := r.db.WithContext(ctx).First(&res, "id = ?", id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &res, nil
}

// SlotTaken reports whether any reservation exists for the exact (date, time).
func (r *ReservationRepository) SlotTaken(ctx context.Context, date, slotTime string) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).
		Model(&domain.Reservation{}).
		Where("date = ? AND time = ?", date, slotTime).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

// BookedTimes returns the time values already reserved on the given date.
func (r *ReservationRepository) BookedTimes(ctx context.Context, date string) ([]string, error) {
	var times []string
	tx := r.db.WithContext(ctx).
		Model(&domain.Reservation{}).
		Where("date = ?", date).
		Order("time").
		Pluck("time", &times)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return times, nil
}

// FindByPhoneSince returns this phone's reservations with date >= fromDate.
// Fixed-width ISO dates make the string comparison chronological.
func (r *ReservationRepository) FindByPhoneSince(ctx context.Context, phoneNumber, fromDate string) ([]domain.Reservation, error) {
	var out []domain.Reservation
	tx := r.db.WithContext(ctx).
		Where("phone_number = ? AND date >= ?", phoneNumber, fromDate).
		Find(&out)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return out, nil
}

func (r *ReservationRepository) ListAll(ctx context.Context) ([]domain.Reservation, error) {
	var out []domain.Reservation
	tx := r.db.WithContext(ctx).Order("date, time").Find(&out)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return out, nil
}

// Confirm flips confirmed to true. The transition is one-way; confirming an
// already-confirmed reservation is a no-op.
func (r *ReservationRepository) Confirm(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.Reservation{}).
		Where("id = ?", id).
		Update("confirmed", true)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the reservation. Cancellation is deletion, not a flag.
func (r *ReservationRepository) Delete(ctx context.Context, id string) error {
	tx := r.db.WithContext(ctx).Delete(&domain.Reservation{}, "id = ?", id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
