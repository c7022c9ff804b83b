package repository

import (
	"context"

	"clinic-management/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientRepository interface {
	Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Patient, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Patient, error)
	FindAll(ctx context.Context, db *gorm.DB, filter entity.PatientFilter, page entity.Pagination) ([]entity.Patient, int64, error)
	FindWaiting(ctx context.Context, db *gorm.DB) ([]entity.Patient, error)
	Update(ctx context.Context, db *gorm.DB, patient *entity.Patient) error
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error)
}
