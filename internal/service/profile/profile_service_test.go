package profile

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*ProfileService, string) {
	t.Helper()
	store := memory.New()
	user := &domain.User{Email: "anna@example.com", PasswordHash: "x"}
	require.NoError(t, store.Users().Create(context.Background(), user, nil))

	svc := NewProfileService(store.Profiles(), nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, user.ID
}

func ptr[T any](v T) *T { return &v }

func TestProfile_GetMissingReturnsEmpty(t *testing.T) {
	svc, userID := setup(t)

	p, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, p.ID)
	assert.Nil(t, p.FullName)

	_, err = svc.Get(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestProfile_PartialUpdate(t *testing.T) {
	svc, userID := setup(t)
	ctx := context.Background()

	p, err := svc.Update(ctx, userID, domain.ProfileUpdate{FullName: ptr("  Anna Petrova "), PhoneNumber: ptr("+375 29 123-45-67")})
	require.NoError(t, err)
	assert.Equal(t, "Anna Petrova", *p.FullName)

	birth := time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC)
	p, err = svc.Update(ctx, userID, domain.ProfileUpdate{BirthDate: &birth})
	require.NoError(t, err)
	assert.Equal(t, "Anna Petrova", *p.FullName)
	assert.Equal(t, "+375 29 123-45-67", *p.PhoneNumber)
	assert.Equal(t, birth, *p.BirthDate)

	got, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestProfile_UpdateRejects(t *testing.T) {
	svc, userID := setup(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, userID, domain.ProfileUpdate{})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Update(ctx, userID, domain.ProfileUpdate{PhoneNumber: ptr("call me")})
	assert.True(t, domain.IsValidation(err))

	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = svc.Update(ctx, userID, domain.ProfileUpdate{BirthDate: &future})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Update(ctx, "", domain.ProfileUpdate{FullName: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrAuthRequired)

	_, err = svc.Update(ctx, "ghost", domain.ProfileUpdate{FullName: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
