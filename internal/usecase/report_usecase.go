package usecase

import (
	"context"

	"clinic-management/internal/converter"
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultOutstandingLimit = 20

// ReportUsecase serves dashboard aggregations over committed ledger data
type ReportUsecase interface {
	RevenueByDay(ctx context.Context, req *dto.DateRangeRequest) ([]dto.RevenuePointResponse, error)
	PaymentMethodBreakdown(ctx context.Context, req *dto.DateRangeRequest) ([]dto.MethodBreakdownResponse, error)
	AppointmentStatusCounts(ctx context.Context, req *dto.DateRangeRequest) ([]dto.StatusCountResponse, error)
	OutstandingBalances(ctx context.Context, limit int) ([]dto.OutstandingBalanceResponse, error)
	DashboardSummary(ctx context.Context, req *dto.DateRangeRequest) (*dto.DashboardSummaryResponse, error)
}

type reportUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	reportRepo      repository.ReportRepository
	appointmentRepo repository.AppointmentRepository
}

func NewReportUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	reportRepo repository.ReportRepository,
	appointmentRepo repository.AppointmentRepository,
) ReportUsecase {
	return &reportUsecase{
		db:              db,
		log:             log,
		reportRepo:      reportRepo,
		appointmentRepo: appointmentRepo,
	}
}

func (u *reportUsecase) RevenueByDay(ctx context.Context, req *dto.DateRangeRequest) ([]dto.RevenuePointResponse, error) {
	dateRange, err := parseDateRange(*req)
	if err != nil {
		return nil, err
	}

	points, err := u.reportRepo.RevenueByDay(ctx, u.db, dateRange)
	if err != nil {
		u.log.Warnf("Failed to query revenue by day: %+v", err)
		return nil, persistenceError("revenue by day", err)
	}
	return converter.RevenuePointsToResponses(points), nil
}

func (u *reportUsecase) PaymentMethodBreakdown(ctx context.Context, req *dto.DateRangeRequest) ([]dto.MethodBreakdownResponse, error) {
	dateRange, err := parseDateRange(*req)
	if err != nil {
		return nil, err
	}

	rows, err := u.reportRepo.PaymentMethodBreakdown(ctx, u.db, dateRange)
	if err != nil {
		u.log.Warnf("Failed to query payment method breakdown: %+v", err)
		return nil, persistenceError("payment method breakdown", err)
	}
	return converter.MethodBreakdownToResponses(rows), nil
}

func (u *reportUsecase) AppointmentStatusCounts(ctx context.Context, req *dto.DateRangeRequest) ([]dto.StatusCountResponse, error) {
	dateRange, err := parseDateRange(*req)
	if err != nil {
		return nil, err
	}

	rows, err := u.reportRepo.AppointmentStatusCounts(ctx, u.db, dateRange)
	if err != nil {
		u.log.Warnf("Failed to query appointment status counts: %+v", err)
		return nil, persistenceError("appointment status counts", err)
	}
	return converter.StatusCountsToResponses(rows), nil
}

func (u *reportUsecase) OutstandingBalances(ctx context.Context, limit int) ([]dto.OutstandingBalanceResponse, error) {
	if limit < 1 || limit > dto.MaxPageLimit {
		limit = defaultOutstandingLimit
	}

	appointments, err := u.appointmentRepo.FindOutstanding(ctx, u.db, limit)
	if err != nil {
		u.log.Warnf("Failed to query outstanding balances: %+v", err)
		return nil, persistenceError("outstanding balances", err)
	}
	return converter.OutstandingToResponses(appointments), nil
}

func (u *reportUsecase) DashboardSummary(ctx context.Context, req *dto.DateRangeRequest) (*dto.DashboardSummaryResponse, error) {
	dateRange, err := parseDateRange(*req)
	if err != nil {
		return nil, err
	}

	summary, err := u.reportRepo.Summary(ctx, u.db, dateRange)
	if err != nil {
		u.log.Warnf("Failed to query dashboard summary: %+v", err)
		return nil, persistenceError("dashboard summary", err)
	}
	return converter.DashboardSummaryToResponse(summary), nil
}
