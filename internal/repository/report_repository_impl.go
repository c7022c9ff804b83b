package repository

import (
	"context"

	"clinic-management/internal/domain/entity"
	domainRepo "clinic-management/internal/domain/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type reportRepository struct{}

type sumRow struct {
	Total decimal.NullDecimal
}

func NewReportRepository() domainRepo.ReportRepository {
	return &reportRepository{}
}

func (r *reportRepository) RevenueByDay(ctx context.Context, db *gorm.DB, dr entity.DateRange) ([]entity.RevenuePoint, error) {
	var points []entity.RevenuePoint
	query := db.WithContext(ctx).
		Model(&entity.Payment{}).
		Select("DATE(date) AS day, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count")
	err := applyDateRange(query, "date", dr).
		Group("DATE(date)").
		Order("day ASC").
		Scan(&points).Error
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (r *reportRepository) PaymentMethodBreakdown(ctx context.Context, db *gorm.DB, dr entity.DateRange) ([]entity.MethodBreakdown, error) {
	var rows []entity.MethodBreakdown
	query := db.WithContext(ctx).
		Model(&entity.Payment{}).
		Select("method, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count")
	err := applyDateRange(query, "date", dr).
		Group("method").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reportRepository) AppointmentStatusCounts(ctx context.Context, db *gorm.DB, dr entity.DateRange) ([]entity.StatusCount, error) {
	var rows []entity.StatusCount
	query := db.WithContext(ctx).
		Model(&entity.Appointment{}).
		Select("status, COUNT(*) AS count")
	err := applyDateRange(query, "date", dr).
		Group("status").
		Order("status ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reportRepository) Summary(ctx context.Context, db *gorm.DB, dr entity.DateRange) (*entity.DashboardSummary, error) {
	summary := &entity.DashboardSummary{
		Revenue:            decimal.Zero,
		OutstandingBalance: decimal.Zero,
	}

	patients := applyDateRange(db.WithContext(ctx).Model(&entity.Patient{}), "created_at", dr)
	if err := patients.Count(&summary.PatientsRegistered).Error; err != nil {
		return nil, err
	}

	appointments := applyDateRange(db.WithContext(ctx).Model(&entity.Appointment{}), "date", dr)
	if err := appointments.Count(&summary.Appointments).Error; err != nil {
		return nil, err
	}

	var revenue sumRow
	err := applyDateRange(db.WithContext(ctx).Model(&entity.Payment{}), "date", dr).
		Select("SUM(amount) AS total").
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	if revenue.Total.Valid {
		summary.Revenue = revenue.Total.Decimal
	}

	var outstanding sumRow
	err = applyDateRange(db.WithContext(ctx).Model(&entity.Appointment{}), "date", dr).
		Where("balance > 0 AND status <> ?", entity.AppointmentStatusCancelled).
		Select("SUM(balance) AS total").
		Scan(&outstanding).Error
	if err != nil {
		return nil, err
	}
	if outstanding.Total.Valid {
		summary.OutstandingBalance = outstanding.Total.Decimal
	}

	return summary, nil
}
