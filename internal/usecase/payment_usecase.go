package usecase

import (
	"context"
	"errors"
	"time"

	"clinic-management/internal/converter"
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
	"clinic-management/internal/domain/repository"
	"clinic-management/internal/observability/metrics"
	"clinic-management/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Ledger steps reported in PersistenceError.Op and the sync failure metric
const (
	stepCreatePayment  = "create payment record"
	stepUpdatePayment  = "update payment record"
	stepDeletePayment  = "delete payment record"
	stepApplyPayment   = "apply payment to appointment"
	stepReversePayment = "reverse payment on appointment"
	stepLockLedger     = "lock appointment ledger"
	stepCommitPayment  = "commit payment"
)

type PaymentUsecase interface {
	Create(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.PaymentResultResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.PaymentResponse, error)
	List(ctx context.Context, req *dto.PaymentListRequest) ([]dto.PaymentResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdatePaymentRequest) (*dto.PaymentResultResponse, error)
	Delete(ctx context.Context, id uuid.UUID) (*dto.PaymentResultResponse, error)
}

type paymentUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	paymentRepo   repository.PaymentRepository
	patientRepo   repository.PatientRepository
	ledgerService *service.LedgerService
	ledgerLocker  *service.LedgerLocker
	metrics       *metrics.LedgerMetrics
	now           func() time.Time
}

func NewPaymentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	paymentRepo repository.PaymentRepository,
	patientRepo repository.PatientRepository,
	ledgerService *service.LedgerService,
	ledgerLocker *service.LedgerLocker,
	ledgerMetrics *metrics.LedgerMetrics,
) PaymentUsecase {
	return &paymentUsecase{
		db:            db,
		log:           log,
		paymentRepo:   paymentRepo,
		patientRepo:   patientRepo,
		ledgerService: ledgerService,
		ledgerLocker:  ledgerLocker,
		metrics:       ledgerMetrics,
		now:           time.Now,
	}
}

// Create records a payment and, when it is linked, applies it to the
// appointment ledger.
//
// Flow (one transaction):
// 1. Validate input (no writes on failure)
// 2. Lock the linked appointment and resolve the patient
// 3. Insert the standalone payment
// 4. Append the embedded entry and recompute paidAmount/balance
// 5. Commit; a failure in 3 or 4 rolls both back
func (u *paymentUsecase) Create(ctx context.Context, req *dto.CreatePaymentRequest) (result *dto.PaymentResultResponse, err error) {
	method := entity.PaymentMethod(req.Method)
	defer func() { u.metrics.ObservePayment("create", string(method), req.Amount, err) }()

	if !req.Amount.IsPositive() {
		return nil, NewValidationError("amount", entity.ErrNonPositiveAmount.Error())
	}
	if !entity.IsMoneyScale(req.Amount) {
		return nil, NewValidationError("amount", entity.ErrAmountPrecision.Error())
	}
	if !method.IsValid() {
		return nil, NewValidationError("method", "method must be one of: Cash, G-Pay, Card, Other")
	}
	if req.PatientID == nil && req.AppointmentID == nil {
		return nil, NewValidationError("patient_id", "patient_id is required")
	}
	date, err := parseOptionalDate("date", req.Date, u.now().UTC())
	if err != nil {
		return nil, err
	}

	var appointmentID uuid.UUID
	if req.AppointmentID != nil {
		appointmentID = *req.AppointmentID
	}
	unlock := u.ledgerLocker.Lock(appointmentID)
	defer unlock()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patientID, err := u.resolvePatient(ctx, tx, req.PatientID, req.AppointmentID)
	if err != nil {
		return nil, err
	}

	payment := &entity.Payment{
		ID:            uuid.New(),
		Amount:        req.Amount,
		Date:          date,
		Method:        method,
		Notes:         req.Notes,
		AppointmentID: req.AppointmentID,
		PatientID:     patientID,
		CreatedBy:     actorFromContext(ctx),
	}

	if err := u.paymentRepo.Create(ctx, tx, payment); err != nil {
		u.log.Warnf("Failed to create payment: %+v", err)
		return nil, persistenceError(stepCreatePayment, err)
	}

	var appointment *entity.Appointment
	if payment.AppointmentID != nil {
		appointment, err = u.ledgerService.ApplyPayment(ctx, tx, *payment.AppointmentID, payment.EmbeddedEntry())
		if err != nil {
			return nil, u.ledgerFailure(stepApplyPayment, payment.ID, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, persistenceError(stepCommitPayment, err)
	}

	u.log.Infof("Payment created: id=%s, appointment=%s, amount=%s, method=%s",
		payment.ID, idString(payment.AppointmentID), payment.Amount, payment.Method)
	return converter.PaymentResultToResponse(payment, appointment), nil
}

func (u *paymentUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.PaymentResponse, error) {
	payment, err := u.paymentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find payment %s: %+v", id, err)
		return nil, persistenceError("find payment", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	return converter.PaymentToResponse(payment), nil
}

func (u *paymentUsecase) List(ctx context.Context, req *dto.PaymentListRequest) ([]dto.PaymentResponse, int64, error) {
	dateRange, err := parseDateRange(req.DateRangeRequest)
	if err != nil {
		return nil, 0, err
	}

	method := entity.PaymentMethod(req.Method)
	if method != "" && !method.IsValid() {
		return nil, 0, NewValidationError("method", "method must be one of: Cash, G-Pay, Card, Other")
	}

	filter := entity.PaymentFilter{
		Range:         dateRange,
		Method:        method,
		AppointmentID: req.AppointmentID,
		PatientID:     req.PatientID,
	}

	payments, total, err := u.paymentRepo.FindAll(ctx, u.db, filter, toPagination(req.PageRequest))
	if err != nil {
		u.log.Warnf("Failed to list payments: %+v", err)
		return nil, 0, persistenceError("list payments", err)
	}

	return converter.PaymentsToResponses(payments), total, nil
}

// Update changes a payment and reconciles the old and the new appointment.
//
// Flow (one transaction):
// 1. Lock the old and new appointment in id order
// 2. Update the standalone payment
// 3. Reverse the old embedded entry on the old appointment
// 4. Apply the payment as a fresh entry on the new appointment
//
// Steps 3 and 4 also run when the appointment is unchanged, so an amount
// edit is a full reverse-then-reapply rather than a delta.
func (u *paymentUsecase) Update(ctx context.Context, id uuid.UUID, req *dto.UpdatePaymentRequest) (result *dto.PaymentResultResponse, err error) {
	method := ""
	amount := decimal.Zero
	defer func() { u.metrics.ObservePayment("update", method, amount, err) }()

	if req.Amount != nil && !req.Amount.IsPositive() {
		return nil, NewValidationError("amount", entity.ErrNonPositiveAmount.Error())
	}
	if req.Amount != nil && !entity.IsMoneyScale(*req.Amount) {
		return nil, NewValidationError("amount", entity.ErrAmountPrecision.Error())
	}
	if req.Method != nil && !entity.PaymentMethod(*req.Method).IsValid() {
		return nil, NewValidationError("method", "method must be one of: Cash, G-Pay, Card, Other")
	}
	if req.ClearAppointment && req.AppointmentID != nil {
		return nil, NewValidationError("appointment_id", "appointment_id cannot be set together with clear_appointment")
	}
	var date time.Time
	if req.Date != nil {
		if date, err = parseDate("date", *req.Date); err != nil {
			return nil, err
		}
	}

	// The in-process lock set comes from an unlocked read. If the payment is
	// re-linked concurrently the row locks below still serialize the ledgers.
	current, err := u.paymentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find payment %s: %+v", id, err)
		return nil, persistenceError("find payment", err)
	}
	if current == nil {
		return nil, ErrPaymentNotFound
	}
	unlock := u.ledgerLocker.Lock(lockIDs(current.AppointmentID, req.AppointmentID)...)
	defer unlock()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	payment, err := u.paymentRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to lock payment %s: %+v", id, err)
		return nil, persistenceError("lock payment", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	oldAppointmentID := payment.AppointmentID
	newAppointmentID := oldAppointmentID
	if req.ClearAppointment {
		newAppointmentID = nil
	} else if req.AppointmentID != nil {
		newAppointmentID = req.AppointmentID
	}

	ledgers, err := u.ledgerService.LockLedgers(ctx, tx, lockIDs(oldAppointmentID, newAppointmentID)...)
	if err != nil {
		return nil, u.ledgerFailure(stepLockLedger, payment.ID, err)
	}
	if newAppointmentID != nil {
		target, ok := ledgers[*newAppointmentID]
		if !ok {
			return nil, ErrAppointmentNotFound
		}
		if payment.PatientID != nil && *payment.PatientID != target.PatientID {
			return nil, NewValidationError("appointment_id", "appointment belongs to a different patient")
		}
		if payment.PatientID == nil {
			pid := target.PatientID
			payment.PatientID = &pid
		}
	}

	if req.Amount != nil {
		payment.Amount = *req.Amount
	}
	if req.Method != nil {
		payment.Method = entity.PaymentMethod(*req.Method)
	}
	if req.Date != nil {
		payment.Date = date
	}
	if req.Notes != nil {
		payment.Notes = *req.Notes
	}
	payment.AppointmentID = newAppointmentID
	method, amount = string(payment.Method), payment.Amount

	if err := u.paymentRepo.Update(ctx, tx, payment); err != nil {
		u.log.Warnf("Failed to update payment %s: %+v", id, err)
		return nil, persistenceError(stepUpdatePayment, err)
	}

	var oldAppointment, newAppointment *entity.Appointment
	if oldAppointmentID != nil {
		oldAppointment, err = u.ledgerService.ReversePayment(ctx, tx, *oldAppointmentID, payment.ID)
		if err != nil {
			return nil, u.ledgerFailure(stepReversePayment, payment.ID, err)
		}
	}
	if newAppointmentID != nil {
		newAppointment, err = u.ledgerService.ApplyPayment(ctx, tx, *newAppointmentID, payment.EmbeddedEntry())
		if err != nil {
			return nil, u.ledgerFailure(stepApplyPayment, payment.ID, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, persistenceError(stepCommitPayment, err)
	}

	if sameID(oldAppointmentID, newAppointmentID) {
		oldAppointment = nil
	}

	u.log.Infof("Payment updated: id=%s, appointment=%s->%s, amount=%s",
		payment.ID, idString(oldAppointmentID), idString(newAppointmentID), payment.Amount)
	return converter.PaymentResultToResponse(payment, oldAppointment, newAppointment), nil
}

// Delete reverses the payment on its appointment, then removes the
// standalone record, in one transaction.
func (u *paymentUsecase) Delete(ctx context.Context, id uuid.UUID) (result *dto.PaymentResultResponse, err error) {
	method := ""
	amount := decimal.Zero
	defer func() { u.metrics.ObservePayment("delete", method, amount, err) }()

	current, err := u.paymentRepo.FindByID(ctx, u.db, id)
	if err != nil {
		u.log.Warnf("Failed to find payment %s: %+v", id, err)
		return nil, persistenceError("find payment", err)
	}
	if current == nil {
		return nil, ErrPaymentNotFound
	}
	unlock := u.ledgerLocker.Lock(lockIDs(current.AppointmentID)...)
	defer unlock()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	payment, err := u.paymentRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		u.log.Warnf("Failed to lock payment %s: %+v", id, err)
		return nil, persistenceError("lock payment", err)
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	method, amount = string(payment.Method), payment.Amount

	var appointment *entity.Appointment
	if payment.AppointmentID != nil {
		appointment, err = u.ledgerService.ReversePayment(ctx, tx, *payment.AppointmentID, payment.ID)
		if err != nil {
			return nil, u.ledgerFailure(stepReversePayment, payment.ID, err)
		}
	}

	if _, err := u.paymentRepo.Delete(ctx, tx, id); err != nil {
		u.log.Warnf("Failed to delete payment %s: %+v", id, err)
		return nil, persistenceError(stepDeletePayment, err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, persistenceError(stepCommitPayment, err)
	}

	u.log.Infof("Payment deleted: id=%s, appointment=%s, amount=%s", payment.ID, idString(payment.AppointmentID), payment.Amount)
	return converter.PaymentResultToResponse(payment, appointment), nil
}

// resolvePatient returns the patient a new payment belongs to. With an
// appointment the patient is taken from it and must agree with patientID.
func (u *paymentUsecase) resolvePatient(ctx context.Context, tx *gorm.DB, patientID, appointmentID *uuid.UUID) (*uuid.UUID, error) {
	if appointmentID != nil {
		ledgers, err := u.ledgerService.LockLedgers(ctx, tx, *appointmentID)
		if err != nil {
			u.log.Warnf("Failed to lock appointment %s: %+v", *appointmentID, err)
			return nil, persistenceError(stepLockLedger, err)
		}
		appointment, ok := ledgers[*appointmentID]
		if !ok {
			return nil, ErrAppointmentNotFound
		}
		if patientID != nil && *patientID != appointment.PatientID {
			return nil, NewValidationError("patient_id", "patient_id does not match the appointment's patient")
		}
		pid := appointment.PatientID
		return &pid, nil
	}

	patient, err := u.patientRepo.FindByID(ctx, tx, *patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", *patientID, err)
		return nil, persistenceError("find patient", err)
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	return patientID, nil
}

// ledgerFailure classifies an error from a ledger step. The caller's deferred
// rollback undoes every write made so far.
func (u *paymentUsecase) ledgerFailure(step string, paymentID uuid.UUID, err error) error {
	switch {
	case errors.Is(err, service.ErrLedgerNotFound):
		return ErrAppointmentNotFound
	case errors.Is(err, entity.ErrNonPositiveAmount), errors.Is(err, entity.ErrAmountPrecision):
		return NewValidationError("amount", err.Error())
	}

	u.metrics.ObserveSyncFailure(step)
	u.log.Errorf("Ledger step %q failed for payment %s, rolled back: %+v", step, paymentID, err)
	return persistenceError(step, err)
}

func lockIDs(ids ...*uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != nil {
			out = append(out, *id)
		}
	}
	return out
}

func idString(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}
