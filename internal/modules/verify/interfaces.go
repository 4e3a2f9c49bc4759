package verify

import (
	"context"
	"time"

	"terminbook/internal/domain"
	jwtsvc "terminbook/internal/pkg/jwt"
)

type ChallengeRepository interface {
	Create(ctx context.Context, ch *domain.OtpChallenge) error
	GetByID(ctx context.Context, id string) (*domain.OtpChallenge, error)
	LatestByPhone(ctx context.Context, phoneNumber string) (*domain.OtpChallenge, error)
	Reissue(ctx context.Context, id, codeHash string, expiresAt time.Time) error
	IncrementAttempts(ctx context.Context, id string) error
	MarkUsed(ctx context.Context, id string) error
}

// Sender delivers the one-time code over the SMS channel.
type Sender interface {
	SendCode(ctx context.Context, phoneNumber, code string) error
}

type identitySigner interface {
	GenerateIdentityToken(phoneNumber string) (string, error)
	Validate(tokenStr, kind string) (*jwtsvc.Claims, error)
}
