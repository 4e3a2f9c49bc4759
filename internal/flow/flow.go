// Package flow drives the client-side booking sequence: pick a slot, verify
// the phone number, submit. The machine is single-threaded and cooperative;
// every network call blocks the caller and no second operation may start
// until the previous one returned.
package flow

import (
	"context"
	"errors"

	"terminbook/internal/pkg/validator"
)

type Step int

const (
	StepSelectDateTime Step = iota
	StepVerifyPhone
	StepConfirmation
)

func (s Step) String() string {
	switch s {
	case StepSelectDateTime:
		return "select_date_time"
	case StepVerifyPhone:
		return "verify_phone"
	case StepConfirmation:
		return "confirmation"
	}
	return "unknown"
}

// VerifyPhase is the sub-state within StepVerifyPhone.
type VerifyPhase int

const (
	PhaseCodeNotSent VerifyPhase = iota
	PhaseCodeSent
	PhaseVerified
)

var (
	ErrInvalidTransition = errors.New("transition not allowed in current state")
	ErrNoSelection       = errors.New("date and time must be selected first")
	ErrSlotNotAvailable  = errors.New("selected slot is already booked")
	ErrInvalidPhone      = errors.New("phone number is not E.164")
	ErrNotVerified       = errors.New("phone number is not verified")
)

// transitions is the only legal step graph. Forward moves carry guards on
// top of this; anything absent here is rejected outright.
var transitions = map[Step][]Step{
	StepSelectDateTime: {StepVerifyPhone},
	StepVerifyPhone:    {StepSelectDateTime, StepConfirmation},
	StepConfirmation:   {StepVerifyPhone},
}

func canTransition(from, to Step) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

type Slot struct {
	Time   string
	Booked bool
}

type SlotSource interface {
	BookableDays(ctx context.Context) ([]string, error)
	SlotsForDay(ctx context.Context, date string) ([]Slot, error)
}

type Verifier interface {
	RequestCode(ctx context.Context, phoneNumber string) (challengeID string, err error)
	Confirm(ctx context.Context, challengeID, code string) (identity string, err error)
}

// SubmitResult is the boundary-visible outcome of a booking attempt.
type SubmitResult struct {
	Success   bool
	BookingID string
	ErrorCode string
	Message   string
}

type Booker interface {
	AttemptBooking(ctx context.Context, date, slotTime, phoneNumber, identity string) (*SubmitResult, error)
}

// Machine owns all flow state, including the verification challenge handle;
// nothing lives in ambient globals.
type Machine struct {
	slots    SlotSource
	verifier Verifier
	booker   Booker

	step  Step
	phase VerifyPhase

	selectedDate string
	selectedTime string
	phoneNumber  string
	challengeID  string
	identity     string

	available []Slot
}

func NewMachine(slots SlotSource, verifier Verifier, booker Booker) *Machine {
	return &Machine{
		slots:    slots,
		verifier: verifier,
		booker:   booker,
		step:     StepSelectDateTime,
		phase:    PhaseCodeNotSent,
	}
}

func (m *Machine) Step() Step         { return m.step }
func (m *Machine) Phase() VerifyPhase { return m.phase }

func (m *Machine) Selection() (date, slotTime string) {
	return m.selectedDate, m.selectedTime
}

// Available returns the slot set fetched for the selected date.
func (m *Machine) Available() []Slot { return m.available }

func (m *Machine) Days(ctx context.Context) ([]string, error) {
	return m.slots.BookableDays(ctx)
}

// SelectDate picks a date and fetches its slot set. The set is never cached
// across navigation: re-selecting a date always re-reads the store so slots
// taken by other clients in the meantime show as booked.
func (m *Machine) SelectDate(ctx context.Context, date string) error {
	if m.step != StepSelectDateTime {
		return ErrInvalidTransition
	}

	slots, err := m.slots.SlotsForDay(ctx, date)
	if err != nil {
		return err
	}

	m.selectedDate = date
	m.selectedTime = ""
	m.available = slots
	return nil
}

func (m *Machine) SelectTime(slotTime string) error {
	if m.step != StepSelectDateTime || m.selectedDate == "" {
		return ErrInvalidTransition
	}

	for _, s := range m.available {
		if s.Time == slotTime {
			if s.Booked {
				return ErrSlotNotAvailable
			}
			m.selectedTime = slotTime
			return nil
		}
	}
	return ErrSlotNotAvailable
}

// Proceed advances one step forward: to phone verification once both parts
// of the slot are chosen, or back to confirmation for an already-verified
// phone after backward navigation.
func (m *Machine) Proceed() error {
	switch m.step {
	case StepSelectDateTime:
		if !canTransition(m.step, StepVerifyPhone) {
			return ErrInvalidTransition
		}
		if m.selectedDate == "" || m.selectedTime == "" {
			return ErrNoSelection
		}
		m.step = StepVerifyPhone
		return nil
	case StepVerifyPhone:
		if !canTransition(m.step, StepConfirmation) || m.phase != PhaseVerified {
			return ErrNotVerified
		}
		m.step = StepConfirmation
		return nil
	}
	return ErrInvalidTransition
}

// Back returns one step. Going back to date selection re-fetches the slot
// set for the previously chosen date.
func (m *Machine) Back(ctx context.Context) error {
	switch m.step {
	case StepVerifyPhone:
		if !canTransition(m.step, StepSelectDateTime) {
			return ErrInvalidTransition
		}
		m.step = StepSelectDateTime
		m.phase = PhaseCodeNotSent
		m.challengeID = ""
		if m.selectedDate != "" {
			date := m.selectedDate
			return m.SelectDate(ctx, date)
		}
		return nil
	case StepConfirmation:
		if !canTransition(m.step, StepVerifyPhone) {
			return ErrInvalidTransition
		}
		m.step = StepVerifyPhone
		return nil
	}
	return ErrInvalidTransition
}

func (m *Machine) SetPhone(phoneNumber string) error {
	if m.step != StepVerifyPhone || m.phase != PhaseCodeNotSent {
		return ErrInvalidTransition
	}
	if !validator.IsE164(phoneNumber) {
		return ErrInvalidPhone
	}
	m.phoneNumber = phoneNumber
	return nil
}

// RequestCode sends the one-time code. Allowed exactly once per attempt;
// going back resets the phase and permits a fresh request.
func (m *Machine) RequestCode(ctx context.Context) error {
	if m.step != StepVerifyPhone || m.phase != PhaseCodeNotSent {
		return ErrInvalidTransition
	}
	if m.phoneNumber == "" {
		return ErrInvalidPhone
	}

	challengeID, err := m.verifier.RequestCode(ctx, m.phoneNumber)
	if err != nil {
		return err
	}
	m.challengeID = challengeID
	m.phase = PhaseCodeSent
	return nil
}

// ConfirmCode checks the entered code and, on success, auto-advances to the
// confirmation step.
func (m *Machine) ConfirmCode(ctx context.Context, code string) error {
	if m.step != StepVerifyPhone || m.phase != PhaseCodeSent {
		return ErrInvalidTransition
	}

	identity, err := m.verifier.Confirm(ctx, m.challengeID, code)
	if err != nil {
		return err
	}
	m.identity = identity
	m.phase = PhaseVerified
	m.step = StepConfirmation
	return nil
}

// Submit attempts the booking. On acceptance the machine resets for the next
// client; on rejection it stays in Confirmation so the user can retry or
// navigate back.
func (m *Machine) Submit(ctx context.Context) (*SubmitResult, error) {
	if m.step != StepConfirmation || m.phase != PhaseVerified {
		return nil, ErrNotVerified
	}

	result, err := m.booker.AttemptBooking(ctx, m.selectedDate, m.selectedTime, m.phoneNumber, m.identity)
	if err != nil {
		return nil, err
	}

	if result.Success {
		m.reset()
	}
	return result, nil
}

func (m *Machine) reset() {
	m.step = StepSelectDateTime
	m.phase = PhaseCodeNotSent
	m.selectedDate = ""
	m.selectedTime = ""
	m.phoneNumber = ""
	m.challengeID = ""
	m.identity = ""
	m.available = nil
}
