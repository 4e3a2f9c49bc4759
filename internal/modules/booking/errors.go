package booking

import "errors"

var (
	ErrValidation           = errors.New("validation error")
	ErrSlotUnavailable      = errors.New("slot is already booked")
	ErrPhoneHasBooking      = errors.New("phone number has an active booking")
	ErrVerificationRequired = errors.New("verified identity required")
	ErrStoreUnavailable     = errors.New("reservation store unavailable")
)
