package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"terminbook/internal/database"
	"terminbook/internal/domain"
)

func newChallengeTestRepo(t *testing.T) *ChallengeRepository {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewChallengeRepository(db)
}

func TestChallengeReissue_ResetsAttempts(t *testing.T) {
	repo := newChallengeTestRepo(t)
	ctx := context.Background()

	ch := &domain.OtpChallenge{
		PhoneNumber: "+491234567890",
		CodeHash:    "old-hash",
		ResendCount: 1,
		LastSentAt:  time.Now().Add(-2 * time.Minute),
		ExpiresAt:   time.Now().Add(3 * time.Minute),
	}
	require.NoError(t, repo.Create(ctx, ch))

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.IncrementAttempts(ctx, ch.ID))
	}
	require.NoError(t, repo.MarkUsed(ctx, ch.ID))

	newExpiry := time.Now().Add(5 * time.Minute)
	require.NoError(t, repo.Reissue(ctx, ch.ID, "new-hash", newExpiry))

	got, err := repo.GetByID(ctx, ch.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.CodeHash)
	assert.Zero(t, got.Attempts, "a reissued code starts with a fresh attempt budget")
	assert.Equal(t, 2, got.ResendCount)
	assert.Nil(t, got.UsedAt)
	assert.WithinDuration(t, newExpiry, got.ExpiresAt, time.Second)
}
