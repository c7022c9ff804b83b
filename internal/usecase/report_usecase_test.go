package usecase

import (
	"context"
	"testing"
	"time"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeReportRepo struct {
	lastRange entity.DateRange
	points    []entity.RevenuePoint
}

func (r *fakeReportRepo) RevenueByDay(ctx context.Context, db *gorm.DB, dr entity.DateRange) ([]entity.RevenuePoint, error) {
	r.lastRange = dr
	return r.points, nil
}

func (r *fakeReportRepo) PaymentMethodBreakdown(ctx context.Context, db *gorm.DB, dr entity.DateRange) ([]entity.MethodBreakdown, error) {
	r.lastRange = dr
	return []entity.MethodBreakdown{{Method: entity.PaymentMethodCash, Total: amount(900), Count: 3}}, nil
}

func (r *fakeReportRepo) AppointmentStatusCounts(ctx context.Context, db *gorm.DB, dr entity.DateRange) ([]entity.StatusCount, error) {
	r.lastRange = dr
	return []entity.StatusCount{{Status: entity.AppointmentStatusCompleted, Count: 4}}, nil
}

func (r *fakeReportRepo) Summary(ctx context.Context, db *gorm.DB, dr entity.DateRange) (*entity.DashboardSummary, error) {
	r.lastRange = dr
	return &entity.DashboardSummary{PatientsRegistered: 2, Appointments: 5, Revenue: amount(1500), OutstandingBalance: amount(250)}, nil
}

func TestReport_RevenueByDayParsesRange(t *testing.T) {
	db, _ := newMockDB(t)
	reports := &fakeReportRepo{points: []entity.RevenuePoint{
		{Day: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), Total: amount(400), Count: 2},
	}}
	uc := NewReportUsecase(db, newTestLogger(), reports, newFakeAppointmentRepo())

	points, err := uc.RevenueByDay(context.Background(), &dto.DateRangeRequest{From: "2026-10-01", To: "2026-10-31"})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "2026-10-01", points[0].Date)
	assert.Equal(t, time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC), reports.lastRange.To)

	_, err = uc.RevenueByDay(context.Background(), &dto.DateRangeRequest{From: "2026-10-31", To: "2026-10-01"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReport_OutstandingBalancesSortedAndLimited(t *testing.T) {
	db, _ := newMockDB(t)
	patient := newTestPatient("Omar")
	small := newTestAppointment(patient, 100)
	large := newTestAppointment(patient, 900)
	cancelled := newTestAppointment(patient, 5000)
	cancelled.Status = entity.AppointmentStatusCancelled
	settled := newTestAppointment(patient, 300)
	require.NoError(t, settled.ApplyPayment(entity.EmbeddedPayment{Amount: amount(300), Method: entity.PaymentMethodCash}))

	uc := NewReportUsecase(db, newTestLogger(), &fakeReportRepo{}, newFakeAppointmentRepo(small, large, cancelled, settled))

	rows, err := uc.OutstandingBalances(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, large.ID, rows[0].AppointmentID)
	assert.Equal(t, "Omar", rows[0].PatientName)

	rows, err = uc.OutstandingBalances(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestReport_DashboardSummary(t *testing.T) {
	db, _ := newMockDB(t)
	uc := NewReportUsecase(db, newTestLogger(), &fakeReportRepo{}, newFakeAppointmentRepo())

	summary, err := uc.DashboardSummary(context.Background(), &dto.DateRangeRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), summary.Appointments)
	assert.True(t, summary.OutstandingBalance.Equal(amount(250)))
}
