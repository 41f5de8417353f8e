package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"daysoff/internal/domain/entity"
	domainerrors "daysoff/internal/domain/errors"
	"daysoff/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type calendarServiceFixtures struct {
	service  usecase.CalendarUsecase
	store    *memStore
	provider *fakeCalendarProvider
	events   *fakePublisher
}

func createTestCalendarService(t *testing.T) calendarServiceFixtures {
	t.Helper()

	store := newMemStore()
	provider := newFakeCalendarProvider()
	publisher := &fakePublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewCalendarService(&fakeTxManager{store: store}, provider, fakeQR{}, publisher, logger)

	return calendarServiceFixtures{service: svc, store: store, provider: provider, events: publisher}
}

func seedBooking(store *memStore, userID uuid.UUID) *entity.VacationBooking {
	booking := &entity.VacationBooking{
		ID:         uuid.New(),
		UserID:     userID,
		StartDate:  date(2026, time.July, 6),
		EndDate:    date(2026, time.July, 10),
		SyncStatus: entity.SyncStatusNone,
	}
	store.bookings[booking.ID] = booking

	return booking
}

func TestCalendarService_CompleteAuthorization_StoresToken(t *testing.T) {
	fx := createTestCalendarService(t)
	user := seedUser(fx.store)
	ctx := context.Background()

	require.NoError(t, fx.service.CompleteAuthorization(ctx, user.ID, "code-1"))

	token := fx.store.calTokens[user.ID]
	require.NotNil(t, token)
	assert.Equal(t, "cal-access-code-1", token.AccessToken)
	assert.True(t, token.ExpiresAt.After(time.Now()))

	status, err := fx.service.Status(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, status.Connected)
}

func TestCalendarService_CompleteAuthorization_ReplacesPreviousGrant(t *testing.T) {
	fx := createTestCalendarService(t)
	user := seedUser(fx.store)
	ctx := context.Background()

	require.NoError(t, fx.service.CompleteAuthorization(ctx, user.ID, "code-1"))
	first := *fx.store.calTokens[user.ID]

	require.NoError(t, fx.service.CompleteAuthorization(ctx, user.ID, "code-2"))

	// Still exactly one credential for the user, carrying the second grant.
	require.Len(t, fx.store.calTokens, 1)
	second := fx.store.calTokens[user.ID]
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "cal-access-code-2", second.AccessToken)
	assert.Equal(t, "cal-refresh-code-2", second.RefreshToken)
}

func TestCalendarService_CompleteAuthorization_ExchangeFailure(t *testing.T) {
	fx := createTestCalendarService(t)
	fx.provider.exchangeErr = assert.AnError
	user := seedUser(fx.store)

	err := fx.service.CompleteAuthorization(context.Background(), user.ID, "code-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrCalendarExchangeFailed)
	assert.Empty(t, fx.store.calTokens)
}

func TestCalendarService_CompleteAuthorization_MissingCode(t *testing.T) {
	fx := createTestCalendarService(t)
	user := seedUser(fx.store)

	err := fx.service.CompleteAuthorization(context.Background(), user.ID, "")
	assert.ErrorIs(t, err, domainerrors.ErrOAuthCodeInvalid)
}

func TestCalendarService_SyncBooking_InsertsEventAndRecordsID(t *testing.T) {
	fx := createTestCalendarService(t)
	user := seedUser(fx.store)
	booking := seedBooking(fx.store, user.ID)
	ctx := context.Background()

	require.NoError(t, fx.service.CompleteAuthorization(ctx, user.ID, "code-1"))

	synced, err := fx.service.SyncBooking(ctx, user.ID, booking.ID)
	require.NoError(t, err)

	assert.Equal(t, "evt-1", synced.ExternalEventID)
	assert.Equal(t, entity.SyncStatusSynced, synced.SyncStatus)
	assert.True(t, synced.Synced())

	stored := fx.store.bookings[booking.ID]
	assert.Equal(t, "evt-1", stored.ExternalEventID)

	require.Len(t, fx.provider.inserted, 1)
	assert.Equal(t, booking.StartDate, fx.provider.inserted[0].StartDate)

	events := fx.events.published()
	require.Len(t, events, 1)
	assert.Equal(t, "synced", events[0].Action)
}

func TestCalendarService_SyncBooking_RefreshesExpiredToken(t *testing.T) {
	fx := createTestCalendarService(t)
	user := seedUser(fx.store)
	booking := seedBooking(fx.store, user.ID)
	ctx := context.Background()

	require.NoError(t, fx.service.CompleteAuthorization(ctx, user.ID, "code-1"))

	// Age the stored token past expiry.
	fx.store.calTokens[user.ID].ExpiresAt = time.Now().Add(-time.Minute)

	_, err := fx.service.SyncBooking(ctx, user.ID, booking.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, fx.provider.refreshes)

	// The refreshed token replaced the stored row.
	stored := fx.store.calTokens[user.ID]
	assert.Equal(t, "cal-access-refreshed-1", stored.AccessToken)
	assert.True(t, stored.ExpiresAt.After(time.Now()))
}

func TestCalendarService_SyncBooking_NotConnected(t *testing.T) {
	fx := createTestCalendarService(t)
	user := seedUser(fx.store)
	booking := seedBooking(fx.store, user.ID)

	_, err := fx.service.SyncBooking(context.Background(), user.ID, booking.ID)
	assert.ErrorIs(t, err, domainerrors.ErrCalendarNotConnected)
}

func TestCalendarService_SyncBooking_OwnerOnly(t *testing.T) {
	fx := createTestCalendarService(t)
	owner := seedUser(fx.store)
	other := seedUser(fx.store)
	booking := seedBooking(fx.store, owner.ID)
	ctx := context.Background()

	require.NoError(t, fx.service.CompleteAuthorization(ctx, other.ID, "code-1"))

	_, err := fx.service.SyncBooking(ctx, other.ID, booking.ID)
	assert.ErrorIs(t, err, domainerrors.ErrBookingOwnership)
}

func TestCalendarService_SyncBooking_InsertFailureMarksFailed(t *testing.T) {
	fx := createTestCalendarService(t)
	fx.provider.insertErr = assert.AnError
	user := seedUser(fx.store)
	booking := seedBooking(fx.store, user.ID)
	ctx := context.Background()

	require.NoError(t, fx.service.CompleteAuthorization(ctx, user.ID, "code-1"))

	_, err := fx.service.SyncBooking(ctx, user.ID, booking.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrCalendarSyncFailed)

	stored := fx.store.bookings[booking.ID]
	assert.Equal(t, entity.SyncStatusFailed, stored.SyncStatus)
	assert.Empty(t, stored.ExternalEventID)
}

func TestCalendarService_Disconnect(t *testing.T) {
	fx := createTestCalendarService(t)
	user := seedUser(fx.store)
	ctx := context.Background()

	require.NoError(t, fx.service.CompleteAuthorization(ctx, user.ID, "code-1"))
	require.NoError(t, fx.service.Disconnect(ctx, user.ID))
	assert.Empty(t, fx.store.calTokens)

	// Disconnecting twice is fine.
	require.NoError(t, fx.service.Disconnect(ctx, user.ID))

	status, err := fx.service.Status(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, status.Connected)
}

func TestCalendarService_ConnectQR_EncodesAuthorizationURL(t *testing.T) {
	fx := createTestCalendarService(t)
	user := seedUser(fx.store)
	ctx := context.Background()

	png, err := fx.service.ConnectQR(ctx, user.ID)
	require.NoError(t, err)

	url, err := fx.service.AuthorizationURL(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("qr:"+url), png)
}
