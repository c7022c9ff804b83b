package repository

import (
	"context"
	"errors"

	"clinic-management/internal/domain/entity"
	domainRepo "clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type labResultRepository struct{}

func NewLabResultRepository() domainRepo.LabResultRepository {
	return &labResultRepository{}
}

func (r *labResultRepository) Create(ctx context.Context, db *gorm.DB, result *entity.LabResult) error {
	return db.WithContext(ctx).Create(result).Error
}

func (r *labResultRepository) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.LabResult, error) {
	var result entity.LabResult
	err := db.WithContext(ctx).Where("id = ?", id).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *labResultRepository) FindAll(ctx context.Context, db *gorm.DB, filter entity.LabResultFilter) ([]entity.LabResult, error) {
	query := db.WithContext(ctx).Model(&entity.LabResult{})
	if filter.PatientID != nil {
		query = query.Where("patient_id = ?", *filter.PatientID)
	}
	if filter.AppointmentID != nil {
		query = query.Where("appointment_id = ?", *filter.AppointmentID)
	}

	var results []entity.LabResult
	if err := query.Order("date DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *labResultRepository) Update(ctx context.Context, db *gorm.DB, result *entity.LabResult) error {
	return db.WithContext(ctx).Save(result).Error
}

func (r *labResultRepository) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&entity.LabResult{})
	return result.RowsAffected, result.Error
}

func (r *labResultRepository) DetachAppointment(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).
		Model(&entity.LabResult{}).
		Where("appointment_id = ?", appointmentID).
		Update("appointment_id", nil)
	return result.RowsAffected, result.Error
}
