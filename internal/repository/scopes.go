package repository

import (
	"clinic-management/internal/domain/entity"

	"gorm.io/gorm"
)

// applyDateRange bounds column by r. To is inclusive of the whole day.
func applyDateRange(query *gorm.DB, column string, r entity.DateRange) *gorm.DB {
	if !r.From.IsZero() {
		query = query.Where(column+" >= ?", r.From)
	}
	if !r.To.IsZero() {
		query = query.Where(column+" < ?", r.To.AddDate(0, 0, 1))
	}
	return query
}
