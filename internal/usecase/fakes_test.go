package usecase

import (
	"context"
	"database/sql"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"clinic-management/internal/domain/entity"
	"clinic-management/internal/observability/metrics"
	"clinic-management/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB opens gorm on top of sqlmock. Repositories are faked, so the
// mock only sees BEGIN, COMMIT and ROLLBACK.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestLocker(t *testing.T) *service.LedgerLocker {
	t.Helper()
	locker := service.NewLedgerLocker(newTestLogger(), time.Minute)
	t.Cleanup(locker.Stop)
	return locker
}

func newTestLedgerMetrics() (*metrics.LedgerMetrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return metrics.NewLedgerMetrics(reg), reg
}

func duplicateSerialError() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "idx_appointments_serial_number"}
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func ptr[T any](v T) *T {
	return &v
}

// =============================================================================
// Patients
// =============================================================================

type fakePatientRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]entity.Patient
	updateErr error
}

func newFakePatientRepo(patients ...*entity.Patient) *fakePatientRepo {
	r := &fakePatientRepo{items: map[uuid.UUID]entity.Patient{}}
	for _, p := range patients {
		r.items[p.ID] = clonePatient(*p)
	}
	return r
}

func clonePatient(p entity.Patient) entity.Patient {
	p.Prescriptions = append([]entity.EmbeddedPrescription{}, p.Prescriptions...)
	return p
}

func (r *fakePatientRepo) get(id uuid.UUID) *entity.Patient {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil
	}
	c := clonePatient(p)
	return &c
}

func (r *fakePatientRepo) Create(ctx context.Context, db *gorm.DB, patient *entity.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[patient.ID] = clonePatient(*patient)
	return nil
}

func (r *fakePatientRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Patient, error) {
	return r.get(id), nil
}

func (r *fakePatientRepo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Patient, error) {
	return r.get(id), nil
}

func (r *fakePatientRepo) FindAll(ctx context.Context, db *gorm.DB, filter entity.PatientFilter, page entity.Pagination) ([]entity.Patient, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Patient, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, clonePatient(p))
	}
	return out, int64(len(out)), nil
}

func (r *fakePatientRepo) FindWaiting(ctx context.Context, db *gorm.DB) ([]entity.Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Patient
	for _, p := range r.items {
		if p.WaitingStatus.IsWaiting {
			out = append(out, clonePatient(p))
		}
	}
	return out, nil
}

func (r *fakePatientRepo) Update(ctx context.Context, db *gorm.DB, patient *entity.Patient) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[patient.ID] = clonePatient(*patient)
	return nil
}

func (r *fakePatientRepo) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return 0, nil
	}
	delete(r.items, id)
	return 1, nil
}

// =============================================================================
// Appointments
// =============================================================================

type fakeAppointmentRepo struct {
	mu         sync.Mutex
	items      map[uuid.UUID]entity.Appointment
	createErrs []error
	creates    int
	updateErr  error
	deleted    []uuid.UUID
}

func newFakeAppointmentRepo(appointments ...*entity.Appointment) *fakeAppointmentRepo {
	r := &fakeAppointmentRepo{items: map[uuid.UUID]entity.Appointment{}}
	for _, a := range appointments {
		r.items[a.ID] = cloneAppointment(*a)
	}
	return r
}

func cloneAppointment(a entity.Appointment) entity.Appointment {
	a.Payments = append([]entity.EmbeddedPayment{}, a.Payments...)
	a.LabResults = append([]entity.EmbeddedLabResult{}, a.LabResults...)
	return a
}

func (r *fakeAppointmentRepo) get(id uuid.UUID) *entity.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil
	}
	c := cloneAppointment(a)
	return &c
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return err
		}
	}
	r.items[appointment.ID] = cloneAppointment(*appointment)
	return nil
}

func (r *fakeAppointmentRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	return r.get(id), nil
}

func (r *fakeAppointmentRepo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	return r.get(id), nil
}

func (r *fakeAppointmentRepo) FindBySerialNumber(ctx context.Context, db *gorm.DB, serial string) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.items {
		if a.SerialNumber == serial {
			c := cloneAppointment(a)
			return &c, nil
		}
	}
	return nil, nil
}

func (r *fakeAppointmentRepo) FindAll(ctx context.Context, db *gorm.DB, filter entity.AppointmentFilter, page entity.Pagination) ([]entity.Appointment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.items {
		if filter.PatientID != nil && a.PatientID != *filter.PatientID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		out = append(out, cloneAppointment(a))
	}
	return out, int64(len(out)), nil
}

func (r *fakeAppointmentRepo) FindOutstanding(ctx context.Context, db *gorm.DB, limit int) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.items {
		if a.Balance.IsPositive() && a.Status != entity.AppointmentStatusCancelled {
			out = append(out, cloneAppointment(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Balance.GreaterThan(out[j].Balance) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAppointmentRepo) CountByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.items {
		if a.PatientID == patientID {
			n++
		}
	}
	return n, nil
}

func (r *fakeAppointmentRepo) Update(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	appointment.Recalculate()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[appointment.ID] = cloneAppointment(*appointment)
	return nil
}

func (r *fakeAppointmentRepo) UpdateStatus(ctx context.Context, db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return 0, nil
	}
	a.Status = status
	r.items[id] = a
	return 1, nil
}

func (r *fakeAppointmentRepo) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return 0, nil
	}
	delete(r.items, id)
	r.deleted = append(r.deleted, id)
	return 1, nil
}

// =============================================================================
// Payments
// =============================================================================

type fakePaymentRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]entity.Payment
	createErr error
	updateErr error
}

func newFakePaymentRepo(payments ...*entity.Payment) *fakePaymentRepo {
	r := &fakePaymentRepo{items: map[uuid.UUID]entity.Payment{}}
	for _, p := range payments {
		r.items[p.ID] = *p
	}
	return r
}

func (r *fakePaymentRepo) get(id uuid.UUID) *entity.Payment {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil
	}
	return &p
}

func (r *fakePaymentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *fakePaymentRepo) Create(ctx context.Context, db *gorm.DB, payment *entity.Payment) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[payment.ID] = *payment
	return nil
}

func (r *fakePaymentRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Payment, error) {
	return r.get(id), nil
}

func (r *fakePaymentRepo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Payment, error) {
	return r.get(id), nil
}

func (r *fakePaymentRepo) FindAll(ctx context.Context, db *gorm.DB, filter entity.PaymentFilter, page entity.Pagination) ([]entity.Payment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Payment
	for _, p := range r.items {
		if filter.AppointmentID != nil && !p.IsLinkedTo(*filter.AppointmentID) {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakePaymentRepo) Update(ctx context.Context, db *gorm.DB, payment *entity.Payment) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[payment.ID] = *payment
	return nil
}

func (r *fakePaymentRepo) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return 0, nil
	}
	delete(r.items, id)
	return 1, nil
}

func (r *fakePaymentRepo) DetachAppointment(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, p := range r.items {
		if p.IsLinkedTo(appointmentID) {
			p.AppointmentID = nil
			r.items[id] = p
			n++
		}
	}
	return n, nil
}

// =============================================================================
// Prescriptions and lab results
// =============================================================================

type fakePrescriptionRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]entity.Prescription
}

func newFakePrescriptionRepo(items ...*entity.Prescription) *fakePrescriptionRepo {
	r := &fakePrescriptionRepo{items: map[uuid.UUID]entity.Prescription{}}
	for _, p := range items {
		r.items[p.ID] = *p
	}
	return r
}

func (r *fakePrescriptionRepo) Create(ctx context.Context, db *gorm.DB, prescription *entity.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[prescription.ID] = *prescription
	return nil
}

func (r *fakePrescriptionRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePrescriptionRepo) FindByPatientID(ctx context.Context, db *gorm.DB, patientID uuid.UUID) ([]entity.Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Prescription
	for _, p := range r.items {
		if p.PatientID == patientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePrescriptionRepo) Update(ctx context.Context, db *gorm.DB, prescription *entity.Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[prescription.ID] = *prescription
	return nil
}

func (r *fakePrescriptionRepo) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return 0, nil
	}
	delete(r.items, id)
	return 1, nil
}

func (r *fakePrescriptionRepo) DetachAppointment(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, p := range r.items {
		if p.AppointmentID != nil && *p.AppointmentID == appointmentID {
			p.AppointmentID = nil
			r.items[id] = p
			n++
		}
	}
	return n, nil
}

type fakeLabResultRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]entity.LabResult
}

func newFakeLabResultRepo(items ...*entity.LabResult) *fakeLabResultRepo {
	r := &fakeLabResultRepo{items: map[uuid.UUID]entity.LabResult{}}
	for _, l := range items {
		r.items[l.ID] = *l
	}
	return r
}

func (r *fakeLabResultRepo) Create(ctx context.Context, db *gorm.DB, result *entity.LabResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[result.ID] = *result
	return nil
}

func (r *fakeLabResultRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.LabResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *fakeLabResultRepo) FindAll(ctx context.Context, db *gorm.DB, filter entity.LabResultFilter) ([]entity.LabResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.LabResult
	for _, l := range r.items {
		if filter.PatientID != nil && l.PatientID != *filter.PatientID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *fakeLabResultRepo) Update(ctx context.Context, db *gorm.DB, result *entity.LabResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[result.ID] = *result
	return nil
}

func (r *fakeLabResultRepo) Delete(ctx context.Context, db *gorm.DB, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return 0, nil
	}
	delete(r.items, id)
	return 1, nil
}

func (r *fakeLabResultRepo) DetachAppointment(ctx context.Context, db *gorm.DB, appointmentID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, l := range r.items {
		if l.AppointmentID != nil && *l.AppointmentID == appointmentID {
			l.AppointmentID = nil
			r.items[id] = l
			n++
		}
	}
	return n, nil
}

// =============================================================================
// Fixtures
// =============================================================================

var errConnReset = sql.ErrConnDone

func newTestPatient(name string) *entity.Patient {
	return &entity.Patient{
		ID:            uuid.New(),
		Name:          name,
		Age:           30,
		Gender:        entity.GenderFemale,
		PhoneNumber:   "9876543210",
		Prescriptions: []entity.EmbeddedPrescription{},
	}
}

func newTestAppointment(patient *entity.Patient, total int64) *entity.Appointment {
	a := entity.NewAppointment(patient, "APT-"+uuid.NewString()[:8], time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), "10:00", "Checkup", "")
	a.ID = uuid.New()
	_ = a.SetTotalAmount(amount(total))
	return a
}
