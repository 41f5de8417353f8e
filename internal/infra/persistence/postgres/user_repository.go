package postgres

import (
	"context"

	"daysoff/internal/domain/entity"
	domainerrors "daysoff/internal/domain/errors"
	"daysoff/internal/domain/repository"
	"daysoff/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// userRepository implements the domain.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a domain interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByProviderSubject retrieves a single user by the identity provider's
// stable subject claim.
func (repo *userRepository) FindByProviderSubject(ctx context.Context, subject string) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).Where("provider_subject = ?", subject).First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by provider subject")
	}

	return toUserDomain(&userM), nil
}

// Upsert creates the user on first sign-in and refreshes only the identity
// fields on subsequent ones. Settings chosen by the user survive repeated
// sign-ins, which makes the callback idempotent.
func (repo *userRepository) Upsert(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_subject"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "name", "updated_at"}),
		}).
		Create(userM).Error
	if err != nil {
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrUserCreationFailed.WrapMessage("missing required user information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to upsert user")
	}

	// Re-read so the caller sees the stored settings, not the insert defaults,
	// when the row already existed.
	stored, err := repo.FindByProviderSubject(ctx, user.ProviderSubject)
	if err != nil {
		return err
	}
	*user = *stored

	return nil
}

// Update persists the full mutable state of an existing user.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"email":          userM.Email,
			"name":           userM.Name,
			"allowance_days": userM.AllowanceDays,
			"province":       userM.Province,
			"employment":     userM.Employment,
			"week_start":     userM.WeekStart,
			"calendar_sync":  userM.CalendarSync,
		})
	if result.Error != nil {
		if isNotNullConstraintViolation(result.Error) {
			return domainerrors.ErrUserUpdateFailed.WrapMessage("missing required user information")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update user")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:              data.ID,
		ProviderSubject: data.ProviderSubject,
		Email:           data.Email,
		Name:            data.Name,
		AllowanceDays:   data.AllowanceDays,
		Province:        data.Province,
		Employment:      entity.EmploymentCategory(data.Employment),
		WeekStart:       entity.WeekStart(data.WeekStart),
		CalendarSync:    data.CalendarSync,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:              data.ID,
		ProviderSubject: data.ProviderSubject,
		Email:           data.Email,
		Name:            data.Name,
		AllowanceDays:   data.AllowanceDays,
		Province:        data.Province,
		Employment:      string(data.Employment),
		WeekStart:       string(data.WeekStart),
		CalendarSync:    data.CalendarSync,
	}
}
