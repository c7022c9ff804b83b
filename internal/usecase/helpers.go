package usecase

import (
	"context"
	"time"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/delivery/http/middleware"
	"clinic-management/internal/domain/entity"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// parseDate reads a YYYY-MM-DD value as a UTC calendar date
func parseDate(field, value string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, NewValidationError(field, field+" must use format YYYY-MM-DD")
	}
	return d, nil
}

// parseOptionalDate returns fallback when value is empty
func parseOptionalDate(field, value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	return parseDate(field, value)
}

func parseDateRange(req dto.DateRangeRequest) (entity.DateRange, error) {
	var r entity.DateRange
	var err error
	if req.From != "" {
		if r.From, err = parseDate("from", req.From); err != nil {
			return r, err
		}
	}
	if req.To != "" {
		if r.To, err = parseDate("to", req.To); err != nil {
			return r, err
		}
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return r, NewValidationError("to", "to must not be before from")
	}
	return r, nil
}

func toPagination(p dto.PageRequest) entity.Pagination {
	p = p.Normalize()
	return entity.Pagination{Page: p.Page, Limit: p.Limit}
}

// actorFromContext returns the authenticated staff id, or nil for system calls
func actorFromContext(ctx context.Context) *uuid.UUID {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil
	}
	return &userID
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
