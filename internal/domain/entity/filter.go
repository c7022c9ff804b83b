package entity

import (
	"time"

	"github.com/google/uuid"
)

// Pagination is a 1-based page request already normalized by the usecase layer.
type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// DateRange bounds a query by calendar date. Zero values leave that side open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// PatientFilter is used by repository layer to avoid coupling with delivery DTOs.
type PatientFilter struct {
	Search string // Matches name or phone (ILIKE)
}

type AppointmentFilter struct {
	Range     DateRange
	Status    AppointmentStatus
	PatientID *uuid.UUID
	Search    string // Matches serial number or patient name (ILIKE)
}

type PaymentFilter struct {
	Range         DateRange
	Method        PaymentMethod
	AppointmentID *uuid.UUID
	PatientID     *uuid.UUID
}

type LabResultFilter struct {
	PatientID     *uuid.UUID
	AppointmentID *uuid.UUID
}
