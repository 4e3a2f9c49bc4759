package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"terminbook/internal/domain"
)

type ChallengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

func (r *ChallengeRepository) Create(ctx context.Context, ch *domain.OtpChallenge) error {
	if ch.ID == "" {
		ch.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(ch).Error
}

func (r *ChallengeRepository) GetByID(ctx context.Context, id string) (*domain.OtpChallenge, error) {
	var ch domain.OtpChallenge
	tx := r.db.WithContext(ctx).First(&ch, "id = ?", id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &ch, nil
}

// LatestByPhone returns the most recent challenge for the number, used for
// the resend cooldown. gorm.ErrRecordNotFound when the number has none.
func (r *ChallengeRepository) LatestByPhone(ctx context.Context, phoneNumber string) (*domain.OtpChallenge, error) {
	var ch domain.OtpChallenge
	tx := r.db.WithContext(ctx).
		Where("phone_number = ?", phoneNumber).
		Order("last_sent_at DESC").
		First(&ch)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &ch, nil
}

// Reissue replaces the code on an existing challenge for a resend. The
// attempt counter starts over with the new code, so a number that hit the
// confirm limit can still recover by requesting a fresh code.
func (r *ChallengeRepository) Reissue(ctx context.Context, id, codeHash string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.OtpChallenge{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"code_hash":    codeHash,
			"last_sent_at": time.Now(),
			"expires_at":   expiresAt,
			"resend_count": gorm.Expr("resend_count + 1"),
			"attempts":     0,
			"used_at":      nil,
		}).Error
}

func (r *ChallengeRepository) IncrementAttempts(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&domain.OtpChallenge{}).
		Where("id = ?", id).
		Update("attempts", gorm.Expr("attempts + 1")).Error
}

func (r *ChallengeRepository) MarkUsed(ctx context.Context, id string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&domain.OtpChallenge{}).
		Where("id = ?", id).
		Update("used_at", &now).Error
}

// DeleteStale removes expired and consumed challenges. Run from cmd/cleanup.
func (r *ChallengeRepository) DeleteStale(ctx context.Context) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", time.Now()).
		Delete(&domain.OtpChallenge{})
	return tx.RowsAffected, tx.Error
}
