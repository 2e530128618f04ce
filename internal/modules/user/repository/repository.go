package repository

import (
	"context"

	"anoa.com/pengaduan/internal/entity"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uint) (*entity.User, error)
	// FindByIdentifier matches identifier against email or username. When
	// both columns match different rows the lowest id wins.
	FindByIdentifier(ctx context.Context, identifier string) (*entity.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindByIdentifier(ctx context.Context, identifier string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", identifier).
		Or("username = ?", identifier).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}
