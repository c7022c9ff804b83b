package repository

import (
	"context"

	"clinic-management/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, db *gorm.DB, payment *entity.Payment) error
	FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Payment, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Payment, error)
	FindAll(ctx context.Context, db *gorm.DB, filter entity.PaymentFilter, page entity.Pagination) ([]entity.Payment, int64, error)
	Update(ctx context.Context, db *gorm.DB, payment *entity.Payment) error
	Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error)
	// DetachAppointment clears appointment_id on every payment linked to appointmentID.
	DetachAppointment(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (int64, error)
}
