package usecase

import (
	"context"
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

// maxSerialAttempts bounds retries when a generated serial number collides
const maxSerialAttempts = 3

type AppointmentUsecase interface {
	Create(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	GetBySerialNumber(ctx context.Context, serial string) (*dto.AppointmentResponse, error)
	List(ctx context.Context, req *dto.AppointmentListRequest) ([]dto.AppointmentResponse, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	UpdateDetails(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type appointmentUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	patientRepo      repository.PatientRepository
	appointmentRepo  repository.AppointmentRepository
	paymentRepo      repository.PaymentRepository
	prescriptionRepo repository.PrescriptionRepository
	labResultRepo    repository.LabResultRepository
	serialService    *service.SerialNumberService
	ledgerLocker     *service.LedgerLocker
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
	paymentRepo repository.PaymentRepository,
	prescriptionRepo repository.PrescriptionRepository,
	labResultRepo repository.LabResultRepository,
	serialService *service.SerialNumberService,
	ledgerLocker *service.LedgerLocker,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:               db,
		log:              log,
		patientRepo:      patientRepo,
		appointmentRepo:  appointmentRepo,
		paymentRepo:      paymentRepo,
		prescriptionRepo: prescriptionRepo,
		labResultRepo:    labResultRepo,
		serialService:    serialService,
		ledgerLocker:     ledgerLocker,
	}
}

// Create books an appointment with an empty ledger.
//
// Flow:
// 1. Resolve patient and snapshot its demographics
// 2. Generate a serial number
// 3. Insert; on a serial number collision, regenerate and retry
func (u *appointmentUsecase) Create(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return nil, NewValidationError("time", "time must use format HH:MM")
	}

	patient, err := u.patientRepo.FindByID(ctx, u.db, req.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", req.PatientID, err)
		return nil, persistenceError("find patient", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	for attempt := 1; attempt <= maxSerialAttempts; attempt++ {
		appointment := entity.NewAppointment(patient, u.serialService.Next(ctx), date, req.Time, req.Reason, req.Notes)
		appointment.ID = uuid.New()

		err := u.appointmentRepo.Create(ctx, u.db, appointment)
		if err == nil {
			u.log.Infof("Appointment created: id=%s, serial=%s, patient=%s", appointment.ID, appointment.SerialNumber, patient.ID)
			return converter.AppointmentToResponse(appointment), nil
		}
		if !isDuplicateKeyError(err, "serial_number") {
			u.log.Warnf("Failed to create appointment: %+v", err)
			return nil, persistenceError("create appointment", err)
		}
		u.log.Warnf("Serial number %s already taken (attempt %d/%d)", appointment.SerialNumber, attempt, maxSerialAttempts)
	}

	return nil, ErrSerialNumberExhausted
}

func (u *appointmentUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, persistenceError("find appointment", err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) GetBySerialNumber(ctx context.Context, serial string) (*dto.AppointmentResponse, error) {
	appointment, err := u.appointmentRepo.FindBySerialNumber(ctx, u.db, serial)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", serial, err)
		return nil, persistenceError("find appointment", err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) List(ctx context.Context, req *dto.AppointmentListRequest) ([]dto.AppointmentResponse, int64, error) {
	dateRange, err := parseDateRange(req.DateRangeRequest)
	if err != nil {
		return nil, 0, err
	}

	status := entity.AppointmentStatus(req.Status)
	if status != "" && !status.IsValid() {
		return nil, 0, NewValidationError("status", "unknown appointment status")
	}

	filter := entity.AppointmentFilter{
		Range:     dateRange,
		Status:    status,
		PatientID: req.PatientID,
		Search:    req.Search,
	}

	appointments, total, err := u.appointmentRepo.FindAll(ctx, u.db, filter, toPagination(req.PageRequest))
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, 0, persistenceError("list appointments", err)
	}

	return converter.AppointmentsToResponses(appointments), total, nil
}

// UpdateStatus moves the appointment to any known status. Only the status
// column is written so the ledger is never touched.
func (u *appointmentUsecase) UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	status := entity.AppointmentStatus(req.Status)
	if !status.IsValid() {
		return nil, NewValidationError("status", "unknown appointment status")
	}

	affected, err := u.appointmentRepo.UpdateStatus(ctx, u.db, id, status)
	if err != nil {
		u.log.Warnf("Failed to update status of appointment %s: %+v", id, err)
		return nil, persistenceError("update appointment status", err)
	}
	if affected == 0 {
		return nil, ErrAppointmentNotFound
	}

	u.log.Infof("Appointment status updated: id=%s, status=%s", id, status)
	return u.GetByID(ctx, id)
}

// UpdateDetails merges the present fields onto the appointment. Day,
// paidAmount and balance are re-derived before the write.
func (u *appointmentUsecase) UpdateDetails(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	// Parse everything first so a bad field aborts before any write.
	var date, followUp time.Time
	var err error
	if req.Date != nil {
		if date, err = parseDate("date", *req.Date); err != nil {
			return nil, err
		}
	}
	if req.FollowUpDate != nil && *req.FollowUpDate != "" {
		if followUp, err = parseDate("follow_up_date", *req.FollowUpDate); err != nil {
			return nil, err
		}
	}
	if req.Time != nil {
		if _, err := time.Parse("15:04", *req.Time); err != nil {
			return nil, NewValidationError("time", "time must use format HH:MM")
		}
	}
	if req.TotalAmount != nil && req.TotalAmount.IsNegative() {
		return nil, NewValidationError("total_amount", entity.ErrNegativeTotal.Error())
	}
	if req.TotalAmount != nil && !entity.IsMoneyScale(*req.TotalAmount) {
		return nil, NewValidationError("total_amount", entity.ErrAmountPrecision.Error())
	}

	unlock := u.ledgerLocker.Lock(id)
	defer unlock()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to lock appointment %s: %+v", id, err)
		return nil, persistenceError("lock appointment", err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	if req.Date != nil {
		appointment.SetDate(date)
	}
	if req.Time != nil {
		appointment.Time = *req.Time
	}
	if req.Reason != nil {
		appointment.Reason = *req.Reason
	}
	if req.Diagnosis != nil {
		appointment.Diagnosis = *req.Diagnosis
	}
	if req.Treatment != nil {
		appointment.Treatment = *req.Treatment
	}
	if req.FollowUpDate != nil {
		if *req.FollowUpDate == "" {
			appointment.FollowUpDate = nil
		} else {
			appointment.FollowUpDate = &followUp
		}
	}
	if req.HandledBy != nil {
		appointment.HandledBy = *req.HandledBy
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}
	if req.TotalAmount != nil {
		if err := appointment.SetTotalAmount(*req.TotalAmount); err != nil {
			return nil, NewValidationError("total_amount", err.Error())
		}
	}
	appointment.Recalculate()

	if err := u.appointmentRepo.Update(ctx, tx, appointment); err != nil {
		u.log.Warnf("Failed to update appointment %s: %+v", id, err)
		return nil, persistenceError("update appointment", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, persistenceError("commit appointment update", err)
	}

	return converter.AppointmentToResponse(appointment), nil
}

// Delete removes the appointment. Linked payments, prescriptions and lab
// results survive with their appointment reference cleared.
func (u *appointmentUsecase) Delete(ctx context.Context, id uuid.UUID) error {
	unlock := u.ledgerLocker.Lock(id)
	defer unlock()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to lock appointment %s: %+v", id, err)
		return persistenceError("lock appointment", err)
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}

	payments, err := u.paymentRepo.DetachAppointment(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to detach payments from appointment %s: %+v", id, err)
		return persistenceError("detach payments", err)
	}
	if _, err := u.prescriptionRepo.DetachAppointment(ctx, tx, id); err != nil {
		u.log.Warnf("Failed to detach prescriptions from appointment %s: %+v", id, err)
		return persistenceError("detach prescriptions", err)
	}
	if _, err := u.labResultRepo.DetachAppointment(ctx, tx, id); err != nil {
		u.log.Warnf("Failed to detach lab results from appointment %s: %+v", id, err)
		return persistenceError("detach lab results", err)
	}

	if _, err := u.appointmentRepo.Delete(ctx, tx, id); err != nil {
		u.log.Warnf("Failed to delete appointment %s: %+v", id, err)
		return persistenceError("delete appointment", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return persistenceError("commit appointment delete", err)
	}

	u.log.Infof("Appointment deleted: id=%s, serial=%s, detached_payments=%d", id, appointment.SerialNumber, payments)
	return nil
}
