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

type PatientUsecase interface {
	Create(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.PatientResponse, error)
	List(ctx context.Context, req *dto.PatientListRequest) ([]dto.PatientResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetWaiting(ctx context.Context, id uuid.UUID, req *dto.SetWaitingRequest) (*dto.PatientResponse, error)
	ListWaiting(ctx context.Context) ([]dto.PatientResponse, error)
}

type patientUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	patientRepo     repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	now             func() time.Time
}

func NewPatientUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
) PatientUsecase {
	return &patientUsecase{
		db:              db,
		log:             log,
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		now:             time.Now,
	}
}

func (u *patientUsecase) Create(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error) {
	gender := entity.Gender(req.Gender)
	if !gender.IsValid() {
		return nil, NewValidationError("gender", "gender must be one of: M, F, Other")
	}

	patient := &entity.Patient{
		ID:             uuid.New(),
		Name:           req.Name,
		Age:            req.Age,
		Gender:         gender,
		Address:        req.Address,
		PhoneNumber:    req.PhoneNumber,
		MedicalHistory: req.MedicalHistory,
		Prescriptions:  []entity.EmbeddedPrescription{},
	}

	if err := u.patientRepo.Create(ctx, u.db, patient); err != nil {
		u.log.Warnf("Failed to create patient: %+v", err)
		return nil, persistenceError("create patient", err)
	}

	u.log.Infof("Patient created: id=%s", patient.ID)
	return converter.PatientToResponse(patient), nil
}

func (u *patientUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.PatientResponse, error) {
	patient, err := u.patientRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", id, err)
		return nil, persistenceError("find patient", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	return converter.PatientToResponse(patient), nil
}

func (u *patientUsecase) List(ctx context.Context, req *dto.PatientListRequest) ([]dto.PatientResponse, int64, error) {
	filter := entity.PatientFilter{Search: req.Search}

	patients, total, err := u.patientRepo.FindAll(ctx, u.db, filter, toPagination(req.PageRequest))
	if err != nil {
		u.log.Warnf("Failed to list patients: %+v", err)
		return nil, 0, persistenceError("list patients", err)
	}

	return converter.PatientsToResponses(patients), total, nil
}

func (u *patientUsecase) Update(ctx context.Context, id uuid.UUID, req *dto.UpdatePatientRequest) (*dto.PatientResponse, error) {
	if req.Gender != nil && !entity.Gender(*req.Gender).IsValid() {
		return nil, NewValidationError("gender", "gender must be one of: M, F, Other")
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient, err := u.patientRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", id, err)
		return nil, persistenceError("find patient", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Age != nil {
		patient.Age = *req.Age
	}
	if req.Gender != nil {
		patient.Gender = entity.Gender(*req.Gender)
	}
	if req.Address != nil {
		patient.Address = *req.Address
	}
	if req.PhoneNumber != nil {
		patient.PhoneNumber = *req.PhoneNumber
	}
	if req.MedicalHistory != nil {
		patient.MedicalHistory = *req.MedicalHistory
	}

	if err := u.patientRepo.Update(ctx, tx, patient); err != nil {
		u.log.Warnf("Failed to update patient %s: %+v", id, err)
		return nil, persistenceError("update patient", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, persistenceError("commit patient update", err)
	}

	return converter.PatientToResponse(patient), nil
}

// Delete removes a patient. Patients with appointments keep their ledger
// history and cannot be deleted.
func (u *patientUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient, err := u.patientRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", id, err)
		return persistenceError("find patient", err)
	}
	if patient == nil {
		return ErrPatientNotFound
	}

	count, err := u.appointmentRepo.CountByPatientID(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to count appointments of patient %s: %+v", id, err)
		return persistenceError("count patient appointments", err)
	}
	if count > 0 {
		return ErrPatientHasAppointments
	}

	if _, err := u.patientRepo.Delete(ctx, tx, id); err != nil {
		u.log.Warnf("Failed to delete patient %s: %+v", id, err)
		return persistenceError("delete patient", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return persistenceError("commit patient delete", err)
	}

	u.log.Infof("Patient deleted: id=%s", id)
	return nil
}

func (u *patientUsecase) SetWaiting(ctx context.Context, id uuid.UUID, req *dto.SetWaitingRequest) (*dto.PatientResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient, err := u.patientRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", id, err)
		return nil, persistenceError("find patient", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	if req.IsWaiting {
		patient.StartWaiting(req.Reason, u.now().UTC())
	} else {
		patient.StopWaiting()
	}

	if err := u.patientRepo.Update(ctx, tx, patient); err != nil {
		u.log.Warnf("Failed to update waiting status of patient %s: %+v", id, err)
		return nil, persistenceError("update waiting status", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, persistenceError("commit waiting status", err)
	}

	return converter.PatientToResponse(patient), nil
}

func (u *patientUsecase) ListWaiting(ctx context.Context) ([]dto.PatientResponse, error) {
	patients, err := u.patientRepo.FindWaiting(ctx, u.db)
	if err != nil {
		u.log.Warnf("Failed to list waiting patients: %+v", err)
		return nil, persistenceError("list waiting patients", err)
	}

	return converter.PatientsToResponses(patients), nil
}
