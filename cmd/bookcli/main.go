// Terminal booking client. Walks the booking flow against a running API
// server: pick a day and a free slot, verify the phone number with the
// one-time code, submit.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"terminbook/internal/flow"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// apiClient implements flow.SlotSource, flow.Verifier and flow.Booker over
// the HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *apiClient) call(ctx context.Context, method, path string, body any) (*envelope, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	return &env, nil
}

func (e *envelope) err() error {
	if e.Error != nil {
		return fmt.Errorf("%s: %s", e.Error.Code, e.Error.Message)
	}
	return errors.New("request failed")
}

func (c *apiClient) BookableDays(ctx context.Context) ([]string, error) {
	env, err := c.call(ctx, http.MethodGet, "/api/v1/days", nil)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, env.err()
	}
	var data struct {
		Days []string `json:"days"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, err
	}
	return data.Days, nil
}

func (c *apiClient) SlotsForDay(ctx context.Context, date string) ([]flow.Slot, error) {
	env, err := c.call(ctx, http.MethodGet, "/api/v1/slots?date="+date, nil)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, env.err()
	}
	var data struct {
		Slots []struct {
			Time   string `json:"time"`
			Booked bool   `json:"booked"`
		} `json:"slots"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, err
	}
	slots := make([]flow.Slot, 0, len(data.Slots))
	for _, s := range data.Slots {
		slots = append(slots, flow.Slot{Time: s.Time, Booked: s.Booked})
	}
	return slots, nil
}

func (c *apiClient) RequestCode(ctx context.Context, phoneNumber string) (string, error) {
	env, err := c.call(ctx, http.MethodPost, "/api/v1/verify/request", map[string]string{
		"phone_number": phoneNumber,
	})
	if err != nil {
		return "", err
	}
	if !env.Success {
		return "", env.err()
	}
	var data struct {
		ChallengeID string `json:"challenge_id"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", err
	}
	return data.ChallengeID, nil
}

func (c *apiClient) Confirm(ctx context.Context, challengeID, code string) (string, error) {
	env, err := c.call(ctx, http.MethodPost, "/api/v1/verify/confirm", map[string]string{
		"challenge_id": challengeID,
		"code":         code,
	})
	if err != nil {
		return "", err
	}
	if !env.Success {
		return "", env.err()
	}
	var data struct {
		Identity string `json:"identity"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", err
	}
	return data.Identity, nil
}

func (c *apiClient) AttemptBooking(ctx context.Context, date, slotTime, phoneNumber, identity string) (*flow.SubmitResult, error) {
	env, err := c.call(ctx, http.MethodPost, "/api/v1/bookings", map[string]string{
		"date":              date,
		"time":              slotTime,
		"phone_number":      phoneNumber,
		"verified_identity": identity,
	})
	if err != nil {
		return nil, err
	}

	if env.Success {
		var data struct {
			BookingID string `json:"booking_id"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, err
		}
		return &flow.SubmitResult{Success: true, BookingID: data.BookingID}, nil
	}

	result := &flow.SubmitResult{Success: false, ErrorCode: "SERVER_ERROR"}
	if env.Error != nil {
		result.ErrorCode = env.Error.Code
		result.Message = env.Error.Message
	}
	return result, nil
}

func main() {
	baseURL := os.Getenv("API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	client := newAPIClient(baseURL)
	machine := flow.NewMachine(client, client, client)
	ctx := context.Background()
	in := bufio.NewScanner(os.Stdin)

	days, err := machine.Days(ctx)
	if err != nil {
		log.Fatalf("load bookable days: %v", err)
	}

	fmt.Println("Available days:")
	for i, d := range days {
		fmt.Printf("  [%d] %s\n", i+1, d)
	}
	date := days[pick(in, "Choose a day", len(days))-1]
	if err := machine.SelectDate(ctx, date); err != nil {
		log.Fatalf("select date: %v", err)
	}

	open := make([]string, 0)
	for _, s := range machine.Available() {
		if !s.Booked {
			open = append(open, s.Time)
		}
	}
	if len(open) == 0 {
		log.Fatal("no free slots on that day")
	}
	fmt.Println("Free slots:")
	for i, t := range open {
		fmt.Printf("  [%d] %s\n", i+1, t)
	}
	if err := machine.SelectTime(open[pick(in, "Choose a slot", len(open))-1]); err != nil {
		log.Fatalf("select time: %v", err)
	}
	if err := machine.Proceed(); err != nil {
		log.Fatalf("proceed: %v", err)
	}

	phone := prompt(in, "Phone number (E.164, e.g. +4915112345678)")
	if err := machine.SetPhone(phone); err != nil {
		log.Fatalf("phone: %v", err)
	}
	if err := machine.RequestCode(ctx); err != nil {
		log.Fatalf("request code: %v", err)
	}
	fmt.Println("A verification code was sent to your phone.")

	code := prompt(in, "Enter the 6-digit code")
	if err := machine.ConfirmCode(ctx, code); err != nil {
		log.Fatalf("confirm code: %v", err)
	}

	selDate, selTime := machine.Selection()
	fmt.Printf("Booking %s at %s for %s, submitting...\n", selDate, selTime, phone)

	result, err := machine.Submit(ctx)
	if err != nil {
		log.Fatalf("submit: %v", err)
	}
	if !result.Success {
		log.Fatalf("booking rejected: %s (%s)", result.ErrorCode, result.Message)
	}
	fmt.Printf("Booked! Reference: %s\n", result.BookingID)
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Printf("%s: ", label)
	if !in.Scan() {
		os.Exit(1)
	}
	return strings.TrimSpace(in.Text())
}

func pick(in *bufio.Scanner, label string, max int) int {
	for {
		n, err := strconv.Atoi(prompt(in, fmt.Sprintf("%s (1-%d)", label, max)))
		if err == nil && n >= 1 && n <= max {
			return n
		}
		fmt.Println("invalid choice")
	}
}
