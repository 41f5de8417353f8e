package postgres

import (
	"context"
	"time"

	"daysoff/internal/domain/entity"
	domainerrors "daysoff/internal/domain/errors"
	"daysoff/internal/domain/repository"
	"daysoff/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// vacationRepository implements the domain.VacationRepository interface using GORM.
type vacationRepository struct {
	db *gorm.DB
}

// NewVacationRepository is the constructor for vacationRepository.
func NewVacationRepository(db *gorm.DB) repository.VacationRepository {
	return &vacationRepository{db: db}
}

// FindByID retrieves a single booking by its unique ID.
func (repo *vacationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.VacationBooking, error) {
	var bookingM model.VacationBookingModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&bookingM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBookingNotFound
		}

		return nil, errors.Wrap(err, "failed to find booking by id")
	}

	return toBookingDomain(&bookingM), nil
}

// FindByUserID returns the user's bookings ordered by start date. Zero-valued
// bounds leave the corresponding side of the range open; otherwise bookings
// overlapping [from, to] are returned.
func (repo *vacationRepository) FindByUserID(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*entity.VacationBooking, error) {
	query := repo.db.WithContext(ctx).Where("user_id = ?", userID)
	if !from.IsZero() {
		query = query.Where("end_date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("start_date <= ?", to)
	}

	var bookingMs []model.VacationBookingModel
	if err := query.Order("start_date").Find(&bookingMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list bookings")
	}

	bookings := make([]*entity.VacationBooking, 0, len(bookingMs))
	for i := range bookingMs {
		bookings = append(bookings, toBookingDomain(&bookingMs[i]))
	}

	return bookings, nil
}

// Create persists a new booking and backfills the generated ID and timestamps.
func (repo *vacationRepository) Create(ctx context.Context, booking *entity.VacationBooking) error {
	bookingM := fromBookingDomain(booking)

	if err := repo.db.WithContext(ctx).Create(bookingM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create booking")
	}

	booking.ID = bookingM.ID
	booking.CreatedAt = bookingM.CreatedAt
	booking.UpdatedAt = bookingM.UpdatedAt

	return nil
}

// Update persists the mutable state of an existing booking, including its
// calendar sync bookkeeping.
func (repo *vacationRepository) Update(ctx context.Context, booking *entity.VacationBooking) error {
	bookingM := fromBookingDomain(booking)

	result := repo.db.WithContext(ctx).
		Model(&model.VacationBookingModel{}).
		Where("id = ?", booking.ID).
		Updates(map[string]any{
			"start_date":        bookingM.StartDate,
			"end_date":          bookingM.EndDate,
			"note":              bookingM.Note,
			"half_day":          bookingM.HalfDay,
			"half_day_portion":  bookingM.HalfDayPortion,
			"external_event_id": bookingM.ExternalEventID,
			"sync_status":       bookingM.SyncStatus,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update booking")
	}
	if result.RowsAffected == 0 {
		return repository.ErrBookingNotFound
	}

	return nil
}

// Delete removes a booking by ID.
func (repo *vacationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.VacationBookingModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete booking")
	}
	if result.RowsAffected == 0 {
		return repository.ErrBookingNotFound
	}

	return nil
}

// --- Mapper Functions ---

func toBookingDomain(data *model.VacationBookingModel) *entity.VacationBooking {
	if data == nil {
		return nil
	}

	return &entity.VacationBooking{
		ID:              data.ID,
		UserID:          data.UserID,
		StartDate:       data.StartDate,
		EndDate:         data.EndDate,
		Note:            data.Note,
		HalfDay:         data.HalfDay,
		HalfDayPortion:  entity.HalfDayPortion(data.HalfDayPortion),
		ExternalEventID: data.ExternalEventID,
		SyncStatus:      entity.SyncStatus(data.SyncStatus),
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

func fromBookingDomain(data *entity.VacationBooking) *model.VacationBookingModel {
	if data == nil {
		return nil
	}

	return &model.VacationBookingModel{
		ID:              data.ID,
		UserID:          data.UserID,
		StartDate:       data.StartDate,
		EndDate:         data.EndDate,
		Note:            data.Note,
		HalfDay:         data.HalfDay,
		HalfDayPortion:  string(data.HalfDayPortion),
		ExternalEventID: data.ExternalEventID,
		SyncStatus:      string(data.SyncStatus),
	}
}
