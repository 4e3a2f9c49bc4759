package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"terminbook/internal/domain"
)

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) ListAll(ctx context.Context) ([]domain.Reservation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Confirm(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReservationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Admin), args.Error(1)
}

type MockJWT struct {
	mock.Mock
}

func (m *MockJWT) GenerateAdminToken(adminID int64, email string) (string, error) {
	args := m.Called(adminID, email)
	return args.String(0), args.Error(1)
}

type MockSlotBroadcaster struct {
	mock.Mock
}

func (m *MockSlotBroadcaster) SlotFreed(date, slotTime string) {
	m.Called(date, slotTime)
}

func TestLogin_Success(t *testing.T) {
	admins := new(MockAdminRepository)
	jwt := new(MockJWT)

	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.DefaultCost)
	admins.On("GetByEmail", mock.Anything, "admin@example.com").Return(&domain.Admin{
		ID:           1,
		Email:        "admin@example.com",
		PasswordHash: string(hash),
	}, nil)
	jwt.On("GenerateAdminToken", int64(1), "admin@example.com").Return("token-abc", nil)

	service := NewService(admins, nil, jwt, nil)
	token, err := service.Login(context.Background(), " Admin@Example.com ", "s3cret")

	assert.NoError(t, err)
	assert.Equal(t, "token-abc", token)
}

func TestLogin_WrongPassword(t *testing.T) {
	admins := new(MockAdminRepository)
	jwt := new(MockJWT)

	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.DefaultCost)
	admins.On("GetByEmail", mock.Anything, "admin@example.com").Return(&domain.Admin{
		ID:           1,
		Email:        "admin@example.com",
		PasswordHash: string(hash),
	}, nil)

	service := NewService(admins, nil, jwt, nil)
	_, err := service.Login(context.Background(), "admin@example.com", "wrong")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	admins := new(MockAdminRepository)
	jwt := new(MockJWT)

	admins.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

	service := NewService(admins, nil, jwt, nil)
	_, err := service.Login(context.Background(), "nobody@example.com", "whatever")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestListReservations_WeekdayFilter(t *testing.T) {
	repo := new(MockReservationRepository)

	repo.On("ListAll", mock.Anything).Return([]domain.Reservation{
		{ID: "a", Date: "2025-06-09", Time: "13:00"}, // Monday
		{ID: "b", Date: "2025-06-10", Time: "13:15"}, // Tuesday
		{ID: "c", Date: "2025-06-16", Time: "14:00"}, // Monday
	}, nil)

	service := NewService(nil, repo, nil, nil)
	views, err := service.ListReservations(context.Background(), "monday")

	assert.NoError(t, err)
	assert.Len(t, views, 2)
	assert.Equal(t, "a", views[0].ID)
	assert.Equal(t, "c", views[1].ID)
	assert.Equal(t, "monday", views[0].Weekday)
}

func TestListReservations_EmptyFilterReturnsAll(t *testing.T) {
	repo := new(MockReservationRepository)

	repo.On("ListAll", mock.Anything).Return([]domain.Reservation{
		{ID: "a", Date: "2025-06-09", Time: "13:00"},
		{ID: "b", Date: "2025-06-10", Time: "13:15"},
	}, nil)

	service := NewService(nil, repo, nil, nil)
	views, err := service.ListReservations(context.Background(), "")

	assert.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestListReservations_UnknownWeekday(t *testing.T) {
	service := NewService(nil, new(MockReservationRepository), nil, nil)

	_, err := service.ListReservations(context.Background(), "funday")

	assert.ErrorIs(t, err, ErrValidation)
}

func TestConfirmReservation_Success(t *testing.T) {
	repo := new(MockReservationRepository)

	repo.On("Confirm", mock.Anything, "res-1").Return(nil)
	repo.On("GetByID", mock.Anything, "res-1").Return(&domain.Reservation{
		ID:        "res-1",
		Confirmed: true,
	}, nil)

	service := NewService(nil, repo, nil, nil)
	res, err := service.ConfirmReservation(context.Background(), "res-1")

	assert.NoError(t, err)
	assert.True(t, res.Confirmed)
}

func TestConfirmReservation_NotFound(t *testing.T) {
	repo := new(MockReservationRepository)

	repo.On("Confirm", mock.Anything, "missing").Return(gorm.ErrRecordNotFound)

	service := NewService(nil, repo, nil, nil)
	_, err := service.ConfirmReservation(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancelReservation_DeletesAndBroadcasts(t *testing.T) {
	repo := new(MockReservationRepository)
	live := new(MockSlotBroadcaster)

	repo.On("GetByID", mock.Anything, "res-1").Return(&domain.Reservation{
		ID:   "res-1",
		Date: "2025-06-10",
		Time: "14:00",
	}, nil)
	repo.On("Delete", mock.Anything, "res-1").Return(nil)
	live.On("SlotFreed", "2025-06-10", "14:00").Return()

	service := NewService(nil, repo, nil, live)
	err := service.CancelReservation(context.Background(), "res-1")

	assert.NoError(t, err)
	live.AssertExpectations(t)
}

func TestCancelReservation_NotFound(t *testing.T) {
	repo := new(MockReservationRepository)

	repo.On("GetByID", mock.Anything, "missing").Return(nil, gorm.ErrRecordNotFound)

	service := NewService(nil, repo, nil, nil)
	err := service.CancelReservation(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrNotFound)
}
