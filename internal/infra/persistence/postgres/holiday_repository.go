package postgres

import (
	"context"
	"time"

	"daysoff/internal/domain/entity"
	domainerrors "daysoff/internal/domain/errors"
	"daysoff/internal/domain/repository"
	"daysoff/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// holidayRepository implements the domain.HolidayRepository interface using GORM.
type holidayRepository struct {
	db *gorm.DB
}

// NewHolidayRepository is the constructor for holidayRepository.
func NewHolidayRepository(db *gorm.DB) repository.HolidayRepository {
	return &holidayRepository{db: db}
}

// FindForYear returns national holidays plus the province's holidays for the
// calendar year, ordered by date.
func (repo *holidayRepository) FindForYear(ctx context.Context, year int, province string) ([]*entity.Holiday, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	var holidayMs []model.HolidayModel
	err := repo.db.WithContext(ctx).
		Where("date >= ? AND date < ?", from, to).
		Where("scope = ? OR province = ?", string(entity.HolidayScopeNational), province).
		Order("date").
		Find(&holidayMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list holidays")
	}

	holidays := make([]*entity.Holiday, 0, len(holidayMs))
	for i := range holidayMs {
		holidays = append(holidays, toHolidayDomain(&holidayMs[i]))
	}

	return holidays, nil
}

// Create inserts a holiday reference row.
func (repo *holidayRepository) Create(ctx context.Context, holiday *entity.Holiday) error {
	holidayM := fromHolidayDomain(holiday)

	if err := repo.db.WithContext(ctx).Create(holidayM).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create holiday")
	}

	holiday.ID = holidayM.ID

	return nil
}

// --- Mapper Functions ---

func toHolidayDomain(data *model.HolidayModel) *entity.Holiday {
	if data == nil {
		return nil
	}

	return &entity.Holiday{
		ID:       data.ID,
		Date:     data.Date,
		Name:     data.Name,
		Scope:    entity.HolidayScope(data.Scope),
		Province: data.Province,
		Category: entity.HolidayCategory(data.Category),
	}
}

func fromHolidayDomain(data *entity.Holiday) *model.HolidayModel {
	if data == nil {
		return nil
	}

	return &model.HolidayModel{
		ID:       data.ID,
		Date:     data.Date,
		Name:     data.Name,
		Scope:    string(data.Scope),
		Province: data.Province,
		Category: string(data.Category),
	}
}
