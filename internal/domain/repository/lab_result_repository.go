package repository

import (
	"context"

	"clinic-management/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LabResultRepository interface {
	Create(ctx context.Context, db *gorm.DB, result *entity.LabResult) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.LabResult, error)
	FindAll(ctx context.Context, db *gorm.DB, filter entity.LabResultFilter) ([]entity.LabResult, error)
	Update(ctx context.Context, db *gorm.DB, result *entity.LabResult) error
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error)
	DetachAppointment(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (int64, error)
}
