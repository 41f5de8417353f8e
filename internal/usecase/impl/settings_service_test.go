package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"daysoff/internal/domain/entity"
	domainerrors "daysoff/internal/domain/errors"
	"daysoff/internal/domain/service"
	"daysoff/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSettingsService(t *testing.T) (usecase.SettingsUsecase, *memStore, *fakeBus) {
	t.Helper()

	store := newMemStore()
	bus := &fakeBus{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewSettingsService(&fakeTxManager{store: store}, bus, logger), store, bus
}

func TestSettingsService_GetSettings(t *testing.T) {
	svc, store, _ := createTestSettingsService(t)
	user := seedUser(store)

	got, err := svc.GetSettings(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, 20, got.AllowanceDays)
	assert.Equal(t, "ON", got.Province)
}

func TestSettingsService_GetSettings_UnknownUser(t *testing.T) {
	svc, _, _ := createTestSettingsService(t)

	_, err := svc.GetSettings(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestSettingsService_UpdateSettings(t *testing.T) {
	svc, store, bus := createTestSettingsService(t)
	user := seedUser(store)

	updated, err := svc.UpdateSettings(context.Background(), user.ID, usecase.UpdateSettingsInput{
		AllowanceDays: 25,
		Province:      "BC",
		Employment:    entity.EmploymentFederal,
		WeekStart:     entity.WeekStartMonday,
		CalendarSync:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, 25, updated.AllowanceDays)
	assert.Equal(t, "BC", updated.Province)
	assert.Equal(t, entity.EmploymentFederal, updated.Employment)
	assert.Equal(t, entity.WeekStartMonday, updated.WeekStart)
	assert.True(t, updated.CalendarSync)

	// The change is persisted and announced.
	stored := store.users[user.ID]
	assert.Equal(t, 25, stored.AllowanceDays)

	events := bus.published()
	require.Len(t, events, 1)
	assert.Equal(t, service.AuthEventUserUpdated, events[0].Type)
	assert.Equal(t, user.ID, events[0].UserID)
}

func TestSettingsService_UpdateSettings_UnknownUser(t *testing.T) {
	svc, _, bus := createTestSettingsService(t)

	_, err := svc.UpdateSettings(context.Background(), uuid.New(), usecase.UpdateSettingsInput{AllowanceDays: 10})
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	assert.Empty(t, bus.published())
}
