package repository

import (
	"context"

	"clinic-management/internal/domain/entity"

	"gorm.io/gorm"
)

// RoleRepository reads the seeded staff roles. Roles are created by migrations only.
type RoleRepository interface {
	FindAll(ctx context.Context, db *gorm.DB) ([]entity.Role, error)
	FindByName(ctx context.Context, db *gorm.DB, name string) (*entity.Role, error)
}
