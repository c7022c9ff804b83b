package repository

import (
	"context"

	"clinic-management/internal/domain/entity"

	"gorm.io/gorm"
)

// ReportRepository runs read-only aggregations over committed ledger data.
type ReportRepository interface {
	RevenueByDay(ctx context.Context, db *gorm.DB, r entity.DateRange) ([]entity.RevenuePoint, error)
	PaymentMethodBreakdown(ctx context.Context, db *gorm.DB, r entity.DateRange) ([]entity.MethodBreakdown, error)
	AppointmentStatusCounts(ctx context.Context, db *gorm.DB, r entity.DateRange) ([]entity.StatusCount, error)
	Summary(ctx context.Context, db *gorm.DB, r entity.DateRange) (*entity.DashboardSummary, error)
}
