package repo

import (
	"context"

	"gorm.io/gorm"

	"Elegora/internal/model"
)

// UserRepository — доступ к аккаунтам dev-леджера.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	// GetUserByLogin возвращает gorm.ErrRecordNotFound, если логин свободен.
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("login = ?", login).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
