package repository

import (
	"context"

	"clinic-management/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	// FindByIDForUpdate row-locks the appointment until db's transaction ends.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindBySerialNumber(ctx context.Context, db *gorm.DB, serial string) (*entity.Appointment, error)
	FindAll(ctx context.Context, db *gorm.DB, filter entity.AppointmentFilter, page entity.Pagination) ([]entity.Appointment, int64, error)
	FindOutstanding(ctx context.Context, db *gorm.DB, limit int) ([]entity.Appointment, error)
	CountByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) (int64, error)
	Update(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error
	UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error)
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error)
}
