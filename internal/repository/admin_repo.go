package repository

import (
	"context"

	"gorm.io/gorm"

	"terminbook/internal/domain"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	var a domain.Admin
	tx := r.db.WithContext(ctx).First(&a, "email = ?", email)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &a, nil
}

func (r *AdminRepository) Create(ctx context.Context, a *domain.Admin) error {
	return r.db.WithContext(ctx).Create(a).Error
}
