package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreatePaymentRequest struct {
	PatientID     *uuid.UUID      `json:"patient_id"`
	AppointmentID *uuid.UUID      `json:"appointment_id"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	Method        string          `json:"method" validate:"required,oneof=Cash G-Pay Card Other"`
	Date          string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Notes         string          `json:"notes" validate:"omitempty,max=1000"`
}

// UpdatePaymentRequest changes a payment. AppointmentID re-points the payment
// when present; ClearAppointment unlinks it.
type UpdatePaymentRequest struct {
	Amount           *decimal.Decimal `json:"amount" validate:"omitempty,gt=0"`
	Method           *string          `json:"method" validate:"omitempty,oneof=Cash G-Pay Card Other"`
	Date             *string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Notes            *string          `json:"notes" validate:"omitempty,max=1000"`
	AppointmentID    *uuid.UUID       `json:"appointment_id"`
	ClearAppointment bool             `json:"clear_appointment"`
}

type PaymentListRequest struct {
	PageRequest
	DateRangeRequest
	Method        string     `json:"method" validate:"omitempty,oneof=Cash G-Pay Card Other"`
	AppointmentID *uuid.UUID `json:"appointment_id"`
	PatientID     *uuid.UUID `json:"patient_id"`
}

// Response DTOs

type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Method        string          `json:"method"`
	Notes         string          `json:"notes,omitempty"`
	AppointmentID *uuid.UUID      `json:"appointment_id,omitempty"`
	PatientID     *uuid.UUID      `json:"patient_id,omitempty"`
	CreatedBy     *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PaymentResultResponse returns the payment with the ledger it moved
type PaymentResultResponse struct {
	Payment      PaymentResponse      `json:"payment"`
	Appointments []AppointmentResponse `json:"appointments,omitempty"`
}
