package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/yoockh/visaprep/internal/models"
	"github.com/yoockh/visaprep/internal/repositories"
	"github.com/yoockh/visaprep/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserRow is the users table. The profile is kept as one jsonb column.
type UserRow struct {
	ID           string                                `gorm:"column:id;type:uuid;primaryKey"`
	Email        string                                `gorm:"column:email;type:text;uniqueIndex"`
	PasswordHash string                                `gorm:"column:password_hash;type:text"`
	Profile      datatypes.JSONType[models.UserProfile] `gorm:"column:profile;type:jsonb"`
	CreatedAt    time.Time                             `gorm:"column:created_at;type:timestamptz"`
	UpdatedAt    time.Time                             `gorm:"column:updated_at;type:timestamptz"`
}

func (UserRow) TableName() string { return "users" }

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) repositories.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	row := UserRow{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Profile:      datatypes.NewJSONType(u.Profile),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return utils.ErrConflict
	}
	return err
}

func (r *userRepo) Get(ctx context.Context, userID string) (*models.User, error) {
	return r.take(ctx, "id = ?", userID)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.take(ctx, "email = ?", email)
}

func (r *userRepo) UpdateProfile(ctx context.Context, userID string, p models.UserProfile, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&UserRow{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"profile":    datatypes.NewJSONType(p),
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *userRepo) take(ctx context.Context, query string, arg string) (*models.User, error) {
	var row UserRow
	err := r.db.WithContext(ctx).Where(query, arg).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:           row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Profile:      row.Profile.Data(),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}
