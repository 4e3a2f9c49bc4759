package verify

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"math/big"
	"regexp"
	"time"

	"gorm.io/gorm"

	"terminbook/internal/domain"
	jwtsvc "terminbook/internal/pkg/jwt"
	"terminbook/internal/pkg/validator"
)

var codeRegex = regexp.MustCompile(`^\d{6}$`)

const maxConfirmAttempts = 5

// DevConsoleSender logs the code instead of sending an SMS. Local use only.
type DevConsoleSender struct {
	enabled bool
}

func NewDevConsoleSender(enabled bool) *DevConsoleSender {
	return &DevConsoleSender{enabled: enabled}
}

func (s *DevConsoleSender) SendCode(_ context.Context, phoneNumber, code string) error {
	if s.enabled {
		log.Printf("[DEV-SMS] verification code phone=%s code=%s", phoneNumber, code)
	}
	return nil
}

type Service struct {
	challenges     ChallengeRepository
	sender         Sender
	identity       identitySigner
	codePepper     string
	codeTTL        time.Duration
	resendCooldown time.Duration
}

func NewService(
	challenges ChallengeRepository,
	sender Sender,
	identity identitySigner,
	codePepper string,
	codeTTL time.Duration,
	resendCooldown time.Duration,
) *Service {
	return &Service{
		challenges:     challenges,
		sender:         sender,
		identity:       identity,
		codePepper:     codePepper,
		codeTTL:        codeTTL,
		resendCooldown: resendCooldown,
	}
}

type ChallengeHandle struct {
	ID string
}

// RequestCode issues a one-time code for the phone number and returns the
// challenge handle the client confirms against. The E.164 check happens
// before any store or SMS call.
func (s *Service) RequestCode(ctx context.Context, phoneNumber string) (*ChallengeHandle, error) {
	if !validator.IsE164(phoneNumber) {
		return nil, ErrInvalidPhone
	}

	now := time.Now()
	current, err := s.challenges.LatestByPhone(ctx, phoneNumber)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if current != nil {
		cooldownUntil := current.LastSentAt.Add(s.resendCooldown)
		if cooldownUntil.After(now) {
			return nil, ErrRateLimited
		}
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}
	codeHash := hashCode(code, s.codePepper)
	expiresAt := now.Add(s.codeTTL)

	// Deliver before persisting. A failed send must not invalidate a
	// still-valid previous code or start a cooldown for a code that
	// never reached the phone.
	if sendErr := s.sender.SendCode(ctx, phoneNumber, code); sendErr != nil {
		log.Printf("verify/request: sms delivery failed phone_last_four=%s err=%v", lastFour(phoneNumber), sendErr)
		return nil, ErrChallengeSetupFailed
	}

	var id string
	if current == nil {
		ch := &domain.OtpChallenge{
			PhoneNumber: phoneNumber,
			CodeHash:    codeHash,
			ResendCount: 1,
			LastSentAt:  now,
			ExpiresAt:   expiresAt,
		}
		if createErr := s.challenges.Create(ctx, ch); createErr != nil {
			return nil, createErr
		}
		id = ch.ID
	} else {
		if reissueErr := s.challenges.Reissue(ctx, current.ID, codeHash, expiresAt); reissueErr != nil {
			return nil, reissueErr
		}
		id = current.ID
	}

	return &ChallengeHandle{ID: id}, nil
}

// Confirm checks the submitted code and, on success, returns the signed
// verified-identity token the booking endpoint requires.
func (s *Service) Confirm(ctx context.Context, challengeID, code string) (string, error) {
	if !codeRegex.MatchString(code) {
		return "", ErrVerificationFailed
	}

	ch, err := s.challenges.GetByID(ctx, challengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrVerificationFailed
		}
		return "", err
	}

	now := time.Now()
	if ch.UsedAt != nil || !ch.ExpiresAt.After(now) {
		return "", ErrVerificationFailed
	}
	if ch.Attempts >= maxConfirmAttempts {
		return "", ErrTooManyAttempts
	}

	if hashCode(code, s.codePepper) != ch.CodeHash {
		if incErr := s.challenges.IncrementAttempts(ctx, challengeID); incErr != nil {
			return "", incErr
		}
		return "", ErrVerificationFailed
	}

	if usedErr := s.challenges.MarkUsed(ctx, challengeID); usedErr != nil {
		return "", usedErr
	}

	return s.identity.GenerateIdentityToken(ch.PhoneNumber)
}

// VerifyIdentity resolves a verified-identity token back to its phone number.
// Implements the booking module's IdentityVerifier.
func (s *Service) VerifyIdentity(token string) (string, error) {
	claims, err := s.identity.Validate(token, jwtsvc.KindIdentity)
	if err != nil {
		return "", err
	}
	return claims.Phone, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashCode(code, pepper string) string {
	sum := sha256.Sum256([]byte(code + pepper))
	return hex.EncodeToString(sum[:])
}

func lastFour(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return phone[len(phone)-4:]
}
