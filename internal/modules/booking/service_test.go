package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"terminbook/internal/domain"
	"terminbook/internal/schedule"
)

// Mock repositories
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) SlotTaken(ctx context.Context, date, slotTime string) (bool, error) {
	args := m.Called(ctx, date, slotTime)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) FindByPhoneSince(ctx context.Context, phoneNumber, fromDate string) ([]domain.Reservation, error) {
	args := m.Called(ctx, phoneNumber, fromDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	args := m.Called(ctx, res)
	if res != nil && res.ID == "" {
		res.ID = "res-123" // simulate store-assigned id
	}
	return args.Error(0)
}

func (m *MockReservationRepository) BookedTimes(ctx context.Context, date string) ([]string, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockIdentityVerifier struct {
	mock.Mock
}

func (m *MockIdentityVerifier) VerifyIdentity(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

type MockSlotBroadcaster struct {
	mock.Mock
}

func (m *MockSlotBroadcaster) SlotBooked(date, slotTime string) {
	m.Called(date, slotTime)
}

const testPhone = "+491234567890"

// 2025-06-10 is a Tuesday.
func newTestService(repo *MockReservationRepository, ids *MockIdentityVerifier) *Service {
	s := NewService(repo, ids, schedule.Default(), nil)
	s.now = func() time.Time {
		return time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	}
	return s
}

func validRequest() AttemptBookingRequest {
	return AttemptBookingRequest{
		Date:             "2025-06-10",
		Time:             "14:00",
		PhoneNumber:      testPhone,
		VerifiedIdentity: "token-1",
	}
}

func TestAttemptBooking_Success(t *testing.T) {
	repo := new(MockReservationRepository)
	ids := new(MockIdentityVerifier)

	ids.On("VerifyIdentity", "token-1").Return(testPhone, nil)
	repo.On("SlotTaken", mock.Anything, "2025-06-10", "14:00").Return(false, nil)
	repo.On("FindByPhoneSince", mock.Anything, testPhone, "2025-06-02").Return([]domain.Reservation{}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	service := newTestService(repo, ids)
	res, err := service.AttemptBooking(context.Background(), validRequest())

	assert.NoError(t, err)
	assert.NotNil(t, res)
	assert.Equal(t, "res-123", res.ID)
	assert.Equal(t, "7890", res.PhoneLastFour)
	assert.False(t, res.Confirmed)
	repo.AssertExpectations(t)
}

func TestAttemptBooking_SlotUnavailable(t *testing.T) {
	repo := new(MockReservationRepository)
	ids := new(MockIdentityVerifier)

	ids.On("VerifyIdentity", "token-1").Return(testPhone, nil)
	repo.On("SlotTaken", mock.Anything, "2025-06-10", "14:00").Return(true, nil)

	service := newTestService(repo, ids)
	_, err := service.AttemptBooking(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrSlotUnavailable)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAttemptBooking_PhoneHasFutureBooking(t *testing.T) {
	repo := new(MockReservationRepository)
	ids := new(MockIdentityVerifier)

	ids.On("VerifyIdentity", "token-1").Return(testPhone, nil)
	repo.On("SlotTaken", mock.Anything, "2025-06-10", "14:00").Return(false, nil)
	repo.On("FindByPhoneSince", mock.Anything, testPhone, "2025-06-02").Return([]domain.Reservation{
		{Date: "2025-06-05", Time: "13:15", PhoneNumber: testPhone},
	}, nil)

	service := newTestService(repo, ids)
	_, err := service.AttemptBooking(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrPhoneHasBooking)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAttemptBooking_SameDayLaterSlotBlocks(t *testing.T) {
	repo := new(MockReservationRepository)
	ids := new(MockIdentityVerifier)

	ids.On("VerifyIdentity", "token-1").Return(testPhone, nil)
	repo.On("SlotTaken", mock.Anything, "2025-06-10", "14:00").Return(false, nil)
	// Existing booking today at 13:30; "now" in the test service is 09:00.
	repo.On("FindByPhoneSince", mock.Anything, testPhone, "2025-06-02").Return([]domain.Reservation{
		{Date: "2025-06-02", Time: "13:30", PhoneNumber: testPhone},
	}, nil)

	service := newTestService(repo, ids)
	_, err := service.AttemptBooking(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrPhoneHasBooking)
}

func TestAttemptBooking_ElapsedSameDaySlotDoesNotBlock(t *testing.T) {
	repo := new(MockReservationRepository)
	ids := new(MockIdentityVerifier)

	ids.On("VerifyIdentity", "token-1").Return(testPhone, nil)
	repo.On("SlotTaken", mock.Anything, "2025-06-10", "14:00").Return(false, nil)
	repo.On("FindByPhoneSince", mock.Anything, testPhone, "2025-06-02").Return([]domain.Reservation{
		{Date: "2025-06-02", Time: "13:00", PhoneNumber: testPhone},
	}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	service := newTestService(repo, ids)
	service.now = func() time.Time {
		// 15:00 today: the 13:00 reservation has already elapsed.
		return time.Date(2025, 6, 2, 15, 0, 0, 0, time.UTC)
	}

	res, err := service.AttemptBooking(context.Background(), validRequest())

	assert.NoError(t, err)
	assert.NotNil(t, res)
}

func TestAttemptBooking_UniqueIndexBackstop(t *testing.T) {
	repo := new(MockReservationRepository)
	ids := new(MockIdentityVerifier)

	ids.On("VerifyIdentity", "token-1").Return(testPhone, nil)
	repo.On("SlotTaken", mock.Anything, "2025-06-10", "14:00").Return(false, nil)
	repo.On("FindByPhoneSince", mock.Anything, testPhone, "2025-06-02").Return([]domain.Reservation{}, nil)
	// A concurrent client won the race between the read check and the insert.
	repo.On("Create", mock.Anything, mock.Anything).
		Return(errors.New("UNIQUE constraint failed: reservations.date, reservations.time"))

	service := newTestService(repo, ids)
	_, err := service.AttemptBooking(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestAttemptBooking_InvalidPhoneRejectedBeforeStore(t *testing.T) {
	repo := new(MockReservationRepository)
	ids := new(MockIdentityVerifier)
	service := newTestService(repo, ids)

	req := validRequest()
	req.PhoneNumber = "not-a-phone"
	_, err := service.AttemptBooking(context.Background(), req)

	assert.ErrorIs(t, err, ErrValidation)
	repo.AssertNotCalled(t, "SlotTaken", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttemptBooking_WeekendDateRejected(t *testing.T) {
	repo := new(MockReservationRepository)
	ids := new(MockIdentityVerifier)
	service := newTestService(repo, ids)

	req := validRequest()
	req.Date = "2025-06-07" // Saturday
	_, err := service.AttemptBooking(context.Background(), req)

	assert.ErrorIs(t, err, ErrValidation)
}

func TestAttemptBooking_TimeNotASlotValue(t *testing.T) {
	repo := new(MockReservationRepository)
	ids := new(MockIdentityVerifier)
	service := newTestService(repo, ids)

	req := validRequest()
	req.Time = "14:07"
	_, err := service.AttemptBooking(context.Background(), req)

	assert.ErrorIs(t, err, ErrValidation)
}

func TestAttemptBooking_IdentityMismatch(t *testing.T) {
	repo := new(MockReservationRepository)
	ids := new(MockIdentityVerifier)

	// Token was issued for a different phone number.
	ids.On("VerifyIdentity", "token-1").Return("+15550001111", nil)

	service := newTestService(repo, ids)
	_, err := service.AttemptBooking(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrVerificationRequired)
	repo.AssertNotCalled(t, "SlotTaken", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttemptBooking_MissingIdentity(t *testing.T) {
	repo := new(MockReservationRepository)
	ids := new(MockIdentityVerifier)
	service := newTestService(repo, ids)

	req := validRequest()
	req.VerifiedIdentity = ""
	_, err := service.AttemptBooking(context.Background(), req)

	assert.ErrorIs(t, err, ErrVerificationRequired)
}

func TestAttemptBooking_StoreFaultAbortsBeforeInsert(t *testing.T) {
	repo := new(MockReservationRepository)
	ids := new(MockIdentityVerifier)

	ids.On("VerifyIdentity", "token-1").Return(testPhone, nil)
	repo.On("SlotTaken", mock.Anything, "2025-06-10", "14:00").Return(false, errors.New("connection refused"))

	service := newTestService(repo, ids)
	_, err := service.AttemptBooking(context.Background(), validRequest())

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAttemptBooking_NilStoreFailsFast(t *testing.T) {
	ids := new(MockIdentityVerifier)
	service := NewService(nil, ids, schedule.Default(), nil)

	_, err := service.AttemptBooking(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestAttemptBooking_BroadcastsSlotBooked(t *testing.T) {
	repo := new(MockReservationRepository)
	ids := new(MockIdentityVerifier)
	live := new(MockSlotBroadcaster)

	ids.On("VerifyIdentity", "token-1").Return(testPhone, nil)
	repo.On("SlotTaken", mock.Anything, "2025-06-10", "14:00").Return(false, nil)
	repo.On("FindByPhoneSince", mock.Anything, testPhone, "2025-06-02").Return([]domain.Reservation{}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	live.On("SlotBooked", "2025-06-10", "14:00").Return()

	service := NewService(repo, ids, schedule.Default(), live)
	service.now = func() time.Time {
		return time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	}

	_, err := service.AttemptBooking(context.Background(), validRequest())

	assert.NoError(t, err)
	live.AssertExpectations(t)
}

func TestSlotsForDay_MarksBooked(t *testing.T) {
	repo := new(MockReservationRepository)
	ids := new(MockIdentityVerifier)

	repo.On("BookedTimes", mock.Anything, "2025-06-10").Return([]string{"13:15", "15:45"}, nil)

	service := newTestService(repo, ids)
	day, err := service.SlotsForDay(context.Background(), "2025-06-10")

	assert.NoError(t, err)
	assert.Len(t, day.Slots, 12)

	booked := map[string]bool{}
	for _, s := range day.Slots {
		if s.Booked {
			booked[s.Time] = true
		}
	}
	assert.Equal(t, map[string]bool{"13:15": true, "15:45": true}, booked)
}

func TestBookableDays_CountAndWeekdaysOnly(t *testing.T) {
	repo := new(MockReservationRepository)
	ids := new(MockIdentityVerifier)

	service := newTestService(repo, ids)
	days := service.BookableDays()

	assert.Len(t, days, 5)
	assert.Equal(t, "2025-06-02", days[0])
	assert.Equal(t, "2025-06-06", days[4])
}
