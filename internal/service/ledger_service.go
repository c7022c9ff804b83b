package service

import (
	"context"
	"errors"
	"fmt"

	"clinic-management/internal/domain/entity"
	"clinic-management/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrLedgerNotFound is returned when the appointment owning a ledger does not exist
var ErrLedgerNotFound = errors.New("ledger appointment not found")

// LedgerService applies and reverses payments on an appointment ledger.
//
// Every method expects tx to be an open transaction: the appointment row is
// locked with SELECT ... FOR UPDATE before it is read, so the read-modify-write
// of payments[]/paidAmount/balance cannot interleave with another writer.
// Callers hold the LedgerLocker for the appointment before beginning tx.
type LedgerService struct {
	appointmentRepo repository.AppointmentRepository
	log             *logrus.Logger
}

func NewLedgerService(appointmentRepo repository.AppointmentRepository, log *logrus.Logger) *LedgerService {
	return &LedgerService{
		appointmentRepo: appointmentRepo,
		log:             log,
	}
}

// LockLedgers row-locks the given appointments in OrderLedgerIDs order so two
// transactions touching the same pair cannot deadlock. Missing appointments
// are absent from the returned map.
func (s *LedgerService) LockLedgers(ctx context.Context, tx *gorm.DB, ids ...uuid.UUID) (map[uuid.UUID]*entity.Appointment, error) {
	locked := make(map[uuid.UUID]*entity.Appointment, len(ids))
	for _, id := range OrderLedgerIDs(ids...) {
		appointment, err := s.appointmentRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("lock appointment %s: %w", id, err)
		}
		if appointment != nil {
			locked[id] = appointment
		}
	}
	return locked, nil
}

// ApplyPayment appends entry to the appointment's ledger and persists the
// recomputed paidAmount and balance.
func (s *LedgerService) ApplyPayment(ctx context.Context, tx *gorm.DB, appointmentID uuid.UUID, entry entity.EmbeddedPayment) (*entity.Appointment, error) {
	appointment, err := s.appointmentRepo.FindByIDForUpdate(ctx, tx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("lock appointment %s: %w", appointmentID, err)
	}
	if appointment == nil {
		return nil, ErrLedgerNotFound
	}

	if err := appointment.ApplyPayment(entry); err != nil {
		return nil, err
	}

	if err := s.appointmentRepo.Update(ctx, tx, appointment); err != nil {
		return nil, fmt.Errorf("save appointment %s: %w", appointmentID, err)
	}

	s.log.Debugf("Ledger %s applied payment %s: paid=%s balance=%s",
		appointmentID, entry.PaymentID, appointment.PaidAmount, appointment.Balance)
	return appointment, nil
}

// ReversePayment removes the entry recorded for paymentID and persists the
// recomputed totals. A missing appointment or entry is logged and tolerated
// so the standalone payment can still be corrected; the returned appointment
// is nil when the appointment no longer exists.
func (s *LedgerService) ReversePayment(ctx context.Context, tx *gorm.DB, appointmentID, paymentID uuid.UUID) (*entity.Appointment, error) {
	appointment, err := s.appointmentRepo.FindByIDForUpdate(ctx, tx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("lock appointment %s: %w", appointmentID, err)
	}
	if appointment == nil {
		s.log.Warnf("Ledger %s not found while reversing payment %s, skipping", appointmentID, paymentID)
		return nil, nil
	}

	if !appointment.RemovePayment(paymentID) {
		s.log.Warnf("Ledger %s has no entry for payment %s, totals recomputed only", appointmentID, paymentID)
	}

	if err := s.appointmentRepo.Update(ctx, tx, appointment); err != nil {
		return nil, fmt.Errorf("save appointment %s: %w", appointmentID, err)
	}

	s.log.Debugf("Ledger %s reversed payment %s: paid=%s balance=%s",
		appointmentID, paymentID, appointment.PaidAmount, appointment.Balance)
	return appointment, nil
}
