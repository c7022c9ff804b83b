package usecase

import (
	"context"
	"time"

	"clinic-management/internal/converter"
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
	"clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PrescriptionUsecase interface {
	Create(ctx context.Context, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.PrescriptionResponse, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]dto.PrescriptionResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdatePrescriptionRequest) (*dto.PrescriptionResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type prescriptionUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	prescriptionRepo repository.PrescriptionRepository
	patientRepo      repository.PatientRepository
	appointmentRepo  repository.AppointmentRepository
	now              func() time.Time
}

func NewPrescriptionUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	prescriptionRepo repository.PrescriptionRepository,
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
) PrescriptionUsecase {
	return &prescriptionUsecase{
		db:               db,
		log:              log,
		prescriptionRepo: prescriptionRepo,
		patientRepo:      patientRepo,
		appointmentRepo:  appointmentRepo,
		now:              time.Now,
	}
}

// Create stores the prescription and mirrors it into the patient's history
// in the same transaction. Later edits are not mirrored.
func (u *prescriptionUsecase) Create(ctx context.Context, req *dto.CreatePrescriptionRequest) (*dto.PrescriptionResponse, error) {
	if len(req.Medications) == 0 {
		return nil, NewValidationError("medications", "at least one medication is required")
	}
	date, err := parseOptionalDate("date", req.Date, u.now().UTC())
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient, err := u.patientRepo.FindByIDForUpdate(ctx, tx, req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to lock patient %s: %+v", req.PatientID, err)
		return nil, persistenceError("lock patient", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	if req.AppointmentID != nil {
		appointment, err := u.appointmentRepo.FindByID(ctx, tx, *req.AppointmentID)
		if err != nil {
			u.log.Warnf("Failed to find appointment %s: %+v", *req.AppointmentID, err)
			return nil, persistenceError("find appointment", err)
		}
		if appointment == nil {
			return nil, ErrAppointmentNotFound
		}
		if appointment.PatientID != patient.ID {
			return nil, NewValidationError("appointment_id", "appointment belongs to a different patient")
		}
	}

	prescription := &entity.Prescription{
		ID:            uuid.New(),
		PatientID:     patient.ID,
		AppointmentID: req.AppointmentID,
		Date:          date,
		Medications:   converter.MedicationsFromRequests(req.Medications),
		Notes:         req.Notes,
		PrescribedBy:  actorFromContext(ctx),
	}

	if err := u.prescriptionRepo.Create(ctx, tx, prescription); err != nil {
		u.log.Warnf("Failed to create prescription: %+v", err)
		return nil, persistenceError("create prescription", err)
	}

	patient.MirrorPrescription(prescription)
	if err := u.patientRepo.Update(ctx, tx, patient); err != nil {
		u.log.Warnf("Failed to mirror prescription onto patient %s: %+v", patient.ID, err)
		return nil, persistenceError("mirror prescription to patient", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, persistenceError("commit prescription", err)
	}

	u.log.Infof("Prescription created: id=%s, patient=%s, medications=%d", prescription.ID, patient.ID, len(prescription.Medications))
	return converter.PrescriptionToResponse(prescription), nil
}

func (u *prescriptionUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.PrescriptionResponse, error) {
	prescription, err := u.prescriptionRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find prescription %s: %+v", id, err)
		return nil, persistenceError("find prescription", err)
	}
	if prescription == nil {
		return nil, ErrPrescriptionNotFound
	}

	return converter.PrescriptionToResponse(prescription), nil
}

func (u *prescriptionUsecase) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]dto.PrescriptionResponse, error) {
	patient, err := u.patientRepo.FindByID(ctx, u.db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, persistenceError("find patient", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	prescriptions, err := u.prescriptionRepo.FindByPatientID(ctx, u.db, patientID)
	if err != nil {
		u.log.Warnf("Failed to list prescriptions of patient %s: %+v", patientID, err)
		return nil, persistenceError("list prescriptions", err)
	}

	return converter.PrescriptionsToResponses(prescriptions), nil
}

// Update edits the authoritative record only. The patient's embedded copy
// keeps the values from creation time.
func (u *prescriptionUsecase) Update(ctx context.Context, id uuid.UUID, req *dto.UpdatePrescriptionRequest) (*dto.PrescriptionResponse, error) {
	var date time.Time
	var err error
	if req.Date != nil {
		if date, err = parseDate("date", *req.Date); err != nil {
			return nil, err
		}
	}
	if req.Medications != nil && len(req.Medications) == 0 {
		return nil, NewValidationError("medications", "at least one medication is required")
	}

	prescription, err := u.prescriptionRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find prescription %s: %+v", id, err)
		return nil, persistenceError("find prescription", err)
	}
	if prescription == nil {
		return nil, ErrPrescriptionNotFound
	}

	if req.Date != nil {
		prescription.Date = date
	}
	if req.Medications != nil {
		prescription.Medications = converter.MedicationsFromRequests(req.Medications)
	}
	if req.Notes != nil {
		prescription.Notes = *req.Notes
	}

	if err := u.prescriptionRepo.Update(ctx, u.db, prescription); err != nil {
		u.log.Warnf("Failed to update prescription %s: %+v", id, err)
		return nil, persistenceError("update prescription", err)
	}

	return converter.PrescriptionToResponse(prescription), nil
}

func (u *prescriptionUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := u.prescriptionRepo.Delete(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to delete prescription %s: %+v", id, err)
		return persistenceError("delete prescription", err)
	}
	if affected == 0 {
		return ErrPrescriptionNotFound
	}

	u.log.Infof("Prescription deleted: id=%s", id)
	return nil
}
