package booking

type AttemptBookingRequest struct {
	Date             string `json:"date" binding:"required" validate:"required,isodate"`
	Time             string `json:"time" binding:"required" validate:"required,hhmm"`
	PhoneNumber      string `json:"phone_number" binding:"required" validate:"required,e164"`
	VerifiedIdentity string `json:"verified_identity" validate:"required"`
}

type SlotStatus struct {
	Time   string `json:"time"`
	Booked bool   `json:"booked"`
}

type DaySlots struct {
	Date  string       `json:"date"`
	Slots []SlotStatus `json:"slots"`
}
