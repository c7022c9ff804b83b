package repository

import (
	"context"

	"clinic-management/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PrescriptionRepository interface {
	Create(ctx context.Context, db *gorm.DB, prescription *entity.Prescription) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Prescription, error)
	FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Prescription, error)
	Update(ctx context.Context, db *gorm.DB, prescription *entity.Prescription) error
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error)
	DetachAppointment(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (int64, error)
}
