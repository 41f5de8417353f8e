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

func createTestHolidayService(t *testing.T) (usecase.HolidayUsecase, *memStore) {
	t.Helper()

	store := newMemStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewHolidayService(&fakeTxManager{store: store}, logger), store
}

func seedHolidays(store *memStore) {
	store.holidays = []*entity.Holiday{
		{ID: uuid.New(), Date: date(2026, time.July, 1), Name: "Canada Day", Scope: entity.HolidayScopeNational, Category: entity.HolidayCategoryGeneral},
		{ID: uuid.New(), Date: date(2026, time.August, 3), Name: "Civic Holiday", Scope: entity.HolidayScopeProvince, Province: "ON", Category: entity.HolidayCategoryGeneral},
		{ID: uuid.New(), Date: date(2026, time.February, 16), Name: "Family Day", Scope: entity.HolidayScopeProvince, Province: "BC", Category: entity.HolidayCategoryGeneral},
		{ID: uuid.New(), Date: date(2026, time.November, 11), Name: "Remembrance Day", Scope: entity.HolidayScopeNational, Category: entity.HolidayCategoryFederal},
	}
}

func TestHolidayService_ListForUser_FiltersByProvinceAndEmployment(t *testing.T) {
	svc, store := createTestHolidayService(t)
	seedHolidays(store)
	user := seedUser(store) // ON, standard

	holidays, err := svc.ListForUser(context.Background(), user.ID, 2026)
	require.NoError(t, err)

	// National general + ON provincial; no BC, no federal-only.
	names := make([]string, 0, len(holidays))
	for _, h := range holidays {
		names = append(names, h.Name)
	}
	assert.ElementsMatch(t, []string{"Canada Day", "Civic Holiday"}, names)
}

func TestHolidayService_ListForUser_FederalEmploymentSeesFederalHolidays(t *testing.T) {
	svc, store := createTestHolidayService(t)
	seedHolidays(store)
	user := seedUser(store)
	user.Employment = entity.EmploymentFederal

	holidays, err := svc.ListForUser(context.Background(), user.ID, 2026)
	require.NoError(t, err)

	names := make([]string, 0, len(holidays))
	for _, h := range holidays {
		names = append(names, h.Name)
	}
	assert.Contains(t, names, "Remembrance Day")
}

func TestHolidayService_ListForUser_UnknownUser(t *testing.T) {
	svc, _ := createTestHolidayService(t)

	_, err := svc.ListForUser(context.Background(), uuid.New(), 2026)
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestHolidayService_ListForProvince(t *testing.T) {
	svc, store := createTestHolidayService(t)
	seedHolidays(store)

	holidays, err := svc.ListForProvince(context.Background(), 2026, "BC")
	require.NoError(t, err)

	names := make([]string, 0, len(holidays))
	for _, h := range holidays {
		names = append(names, h.Name)
	}
	assert.ElementsMatch(t, []string{"Canada Day", "Family Day", "Remembrance Day"}, names)
}

func TestHolidayService_Create(t *testing.T) {
	svc, store := createTestHolidayService(t)

	holiday, err := svc.Create(context.Background(), usecase.CreateHolidayInput{
		Date:     "2026-09-07",
		Name:     "Labour Day",
		Scope:    entity.HolidayScopeNational,
		Category: entity.HolidayCategoryGeneral,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, holiday.ID)
	assert.Len(t, store.holidays, 1)
	assert.Equal(t, date(2026, time.September, 7), holiday.Date)
}

func TestHolidayService_Create_Validation(t *testing.T) {
	svc, _ := createTestHolidayService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, usecase.CreateHolidayInput{Date: "07/01/2026", Name: "Bad Date"})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	_, err = svc.Create(ctx, usecase.CreateHolidayInput{
		Date:  "2026-08-03",
		Name:  "Civic Holiday",
		Scope: entity.HolidayScopeProvince,
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
}

func TestHolidayService_Create_DefaultsCategory(t *testing.T) {
	svc, _ := createTestHolidayService(t)

	holiday, err := svc.Create(context.Background(), usecase.CreateHolidayInput{
		Date:  "2026-07-01",
		Name:  "Canada Day",
		Scope: entity.HolidayScopeNational,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.HolidayCategoryGeneral, holiday.Category)
}
