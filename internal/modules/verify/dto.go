package verify

type RequestCodeRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
}

type ConfirmRequest struct {
	ChallengeID string `json:"challenge_id" binding:"required"`
	Code        string `json:"code" binding:"required"`
}
