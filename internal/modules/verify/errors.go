package verify

import "errors"

var (
	ErrInvalidPhone         = errors.New("phone number is not E.164")
	ErrRateLimited          = errors.New("resend cooldown not elapsed")
	ErrChallengeSetupFailed = errors.New("could not deliver verification code")
	ErrVerificationFailed   = errors.New("wrong or expired verification code")
	ErrTooManyAttempts      = errors.New("verification attempt limit reached")
)
