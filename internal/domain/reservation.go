package domain

import "time"

// Layouts used for the string-typed slot key. Dates and times are stored as
// fixed-width strings so that lexicographic comparison matches chronological
// order (date >= today works as a plain string filter).
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Reservation struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Date             string    `json:"date" gorm:"uniqueIndex:idx_slot_taken;type:varchar(10)" validate:"required"`
	Time             string    `json:"time" gorm:"uniqueIndex:idx_slot_taken;type:varchar(5)" validate:"required"`
	PhoneNumber      string    `json:"phone_number" gorm:"index" validate:"required,e164"`
	PhoneLastFour    string    `json:"phone_last_four" gorm:"type:varchar(4)"`
	VerifiedIdentity string    `json:"verified_identity,omitempty"`
	Confirmed        bool      `json:"confirmed"`
	CreatedAt        time.Time `json:"created_at"`
}

// SlotDateTime combines the stored date and time strings back into a moment,
// interpreted in the given location.
func (r *Reservation) SlotDateTime(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, r.Date+" "+r.Time, loc)
}

// Active reports whether the reservation's slot has not yet elapsed.
func (r *Reservation) Active(now time.Time) bool {
	dt, err := r.SlotDateTime(now.Location())
	if err != nil {
		return false
	}
	return !dt.Before(now)
}

type Admin struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// OtpChallenge is one outstanding phone-verification attempt. The code itself
// is never stored, only its hash.
type OtpChallenge struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)"`
	PhoneNumber string     `gorm:"index"`
	CodeHash    string     `gorm:"type:varchar(64)"`
	Attempts    int        `gorm:"default:0"`
	ResendCount int        `gorm:"default:0"`
	LastSentAt  time.Time
	ExpiresAt   time.Time
	UsedAt      *time.Time
	CreatedAt   time.Time
}
