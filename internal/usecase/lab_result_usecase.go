package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-management/internal/converter"
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
	"clinic-management/internal/domain/repository"
	"clinic-management/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type LabResultUsecase interface {
	Create(ctx context.Context, req *dto.CreateLabResultRequest) (*dto.LabResultResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.LabResultResponse, error)
	List(ctx context.Context, req *dto.LabResultListRequest) ([]dto.LabResultResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateLabResultRequest) (*dto.LabResultResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type labResultUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	labResultRepo   repository.LabResultRepository
	patientRepo     repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	fileService     *service.LabFileService
	ledgerLocker    *service.LedgerLocker
	now             func() time.Time
}

func NewLabResultUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	labResultRepo repository.LabResultRepository,
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
	fileService *service.LabFileService,
	ledgerLocker *service.LedgerLocker,
) LabResultUsecase {
	return &labResultUsecase{
		db:              db,
		log:             log,
		labResultRepo:   labResultRepo,
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		fileService:     fileService,
		ledgerLocker:    ledgerLocker,
		now:             time.Now,
	}
}

// Create stores the lab result, uploading its attachment first, and mirrors
// it onto the linked appointment. The appointment row is locked because the
// mirror rewrites the whole appointment, ledger included.
func (u *labResultUsecase) Create(ctx context.Context, req *dto.CreateLabResultRequest) (*dto.LabResultResponse, error) {
	resultType := entity.LabResultType(req.Type)
	if !resultType.IsValid() {
		return nil, NewValidationError("type", "type must be one of: X-Ray, Blood Test, Scan, Other")
	}
	date, err := parseOptionalDate("date", req.Date, u.now().UTC())
	if err != nil {
		return nil, err
	}

	patient, err := u.patientRepo.FindByID(ctx, u.db, req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", req.PatientID, err)
		return nil, persistenceError("find patient", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	var fileURL string
	if req.File != nil {
		fileURL, err = u.fileService.Upload(ctx, patient.ID, req.File.Filename, req.File.ContentType, req.File.Body)
		if err != nil {
			if errors.Is(err, service.ErrFileStorageDisabled) {
				return nil, NewValidationError("file", "file uploads are not enabled")
			}
			return nil, persistenceError("upload lab file", err)
		}
	}

	var appointmentID uuid.UUID
	if req.AppointmentID != nil {
		appointmentID = *req.AppointmentID
	}
	unlock := u.ledgerLocker.Lock(appointmentID)
	defer unlock()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	var appointment *entity.Appointment
	if req.AppointmentID != nil {
		appointment, err = u.appointmentRepo.FindByIDForUpdate(ctx, tx, *req.AppointmentID)
		if err != nil {
			u.log.Warnf("Failed to lock appointment %s: %+v", *req.AppointmentID, err)
			return nil, persistenceError("lock appointment", err)
		}
		if appointment == nil {
			return nil, ErrAppointmentNotFound
		}
		if appointment.PatientID != patient.ID {
			return nil, NewValidationError("appointment_id", "appointment belongs to a different patient")
		}
	}

	result := &entity.LabResult{
		ID:            uuid.New(),
		PatientID:     patient.ID,
		AppointmentID: req.AppointmentID,
		Type:          resultType,
		Details:       req.Details,
		FileURL:       fileURL,
		Notes:         req.Notes,
		Date:          date,
		CreatedBy:     actorFromContext(ctx),
	}

	if err := u.labResultRepo.Create(ctx, tx, result); err != nil {
		u.log.Warnf("Failed to create lab result: %+v", err)
		return nil, persistenceError("create lab result", err)
	}

	if appointment != nil {
		appointment.AttachLabResult(result)
		if err := u.appointmentRepo.Update(ctx, tx, appointment); err != nil {
			u.log.Warnf("Failed to mirror lab result onto appointment %s: %+v", appointment.ID, err)
			return nil, persistenceError("mirror lab result to appointment", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, persistenceError("commit lab result", err)
	}

	u.log.Infof("Lab result created: id=%s, patient=%s, appointment=%s", result.ID, patient.ID, idString(result.AppointmentID))
	return converter.LabResultToResponse(result), nil
}

func (u *labResultUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.LabResultResponse, error) {
	result, err := u.labResultRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find lab result %s: %+v", id, err)
		return nil, persistenceError("find lab result", err)
	}
	if result == nil {
		return nil, ErrLabResultNotFound
	}

	return converter.LabResultToResponse(result), nil
}

func (u *labResultUsecase) List(ctx context.Context, req *dto.LabResultListRequest) ([]dto.LabResultResponse, error) {
	filter := entity.LabResultFilter{
		PatientID:     req.PatientID,
		AppointmentID: req.AppointmentID,
	}

	results, err := u.labResultRepo.FindAll(ctx, u.db, filter)
	if err != nil {
		u.log.Warnf("Failed to list lab results: %+v", err)
		return nil, persistenceError("list lab results", err)
	}

	return converter.LabResultsToResponses(results), nil
}

// Update edits the authoritative record only; the appointment's embedded
// copy is written at creation time.
func (u *labResultUsecase) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateLabResultRequest) (*dto.LabResultResponse, error) {
	if req.Type != nil && !entity.LabResultType(*req.Type).IsValid() {
		return nil, NewValidationError("type", "type must be one of: X-Ray, Blood Test, Scan, Other")
	}
	var date time.Time
	var err error
	if req.Date != nil {
		if date, err = parseDate("date", *req.Date); err != nil {
			return nil, err
		}
	}

	result, err := u.labResultRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find lab result %s: %+v", id, err)
		return nil, persistenceError("find lab result", err)
	}
	if result == nil {
		return nil, ErrLabResultNotFound
	}

	if req.Type != nil {
		result.Type = entity.LabResultType(*req.Type)
	}
	if req.Details != nil {
		result.Details = *req.Details
	}
	if req.Notes != nil {
		result.Notes = *req.Notes
	}
	if req.Date != nil {
		result.Date = date
	}

	if err := u.labResultRepo.Update(ctx, u.db, result); err != nil {
		u.log.Warnf("Failed to update lab result %s: %+v", id, err)
		return nil, persistenceError("update lab result", err)
	}

	return converter.LabResultToResponse(result), nil
}

func (u *labResultUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := u.labResultRepo.Delete(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to delete lab result %s: %+v", id, err)
		return persistenceError("delete lab result", err)
	}
	if affected == 0 {
		return ErrLabResultNotFound
	}

	u.log.Infof("Lab result deleted: id=%s", id)
	return nil
}
