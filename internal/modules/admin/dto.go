package admin

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ReservationView struct {
	ID            string `json:"id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	PhoneNumber   string `json:"phone_number"`
	PhoneLastFour string `json:"phone_last_four"`
	Confirmed     bool   `json:"confirmed"`
	Weekday       string `json:"weekday"`
}
