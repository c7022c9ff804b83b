package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateAppointmentRequest struct {
	PatientID uuid.UUID `json:"patient_id" validate:"required"`
	Date      string    `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string    `json:"time" validate:"required,datetime=15:04"`
	Reason    string    `json:"reason" validate:"required,max=1000"`
	Notes     string    `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof='Scheduled' 'In Progress' 'Completed' 'Cancelled' 'No-Show'"`
}

// UpdateAppointmentRequest merges the present fields onto the appointment.
// paid_amount and balance are derived and cannot be set.
type UpdateAppointmentRequest struct {
	Date         *string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time         *string          `json:"time" validate:"omitempty,datetime=15:04"`
	Reason       *string          `json:"reason" validate:"omitempty,max=1000"`
	Diagnosis    *string          `json:"diagnosis"`
	Treatment    *string          `json:"treatment"`
	FollowUpDate *string          `json:"follow_up_date" validate:"omitempty,datetime=2006-01-02"`
	TotalAmount  *decimal.Decimal `json:"total_amount" validate:"omitempty,gte=0"`
	HandledBy    *string          `json:"handled_by" validate:"omitempty,max=255"`
	Notes        *string          `json:"notes" validate:"omitempty,max=2000"`
}

type AppointmentListRequest struct {
	PageRequest
	DateRangeRequest
	Status    string     `json:"status" validate:"omitempty,oneof='Scheduled' 'In Progress' 'Completed' 'Cancelled' 'No-Show'"`
	PatientID *uuid.UUID `json:"patient_id"`
	Search    string     `json:"search"`
}

// Response DTOs

type PatientDetailsResponse struct {
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phone_number"`
}

type EmbeddedPaymentResponse struct {
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Date      time.Time       `json:"date"`
	Notes     string          `json:"notes,omitempty"`
}

type EmbeddedLabResultResponse struct {
	LabResultID uuid.UUID `json:"lab_result_id"`
	Type        string    `json:"type"`
	Details     string    `json:"details"`
	FileURL     string    `json:"file_url,omitempty"`
	Date        time.Time `json:"date"`
}

type AppointmentResponse struct {
	ID             uuid.UUID                   `json:"id"`
	SerialNumber   string                      `json:"serial_number"`
	PatientID      uuid.UUID                   `json:"patient_id"`
	PatientDetails PatientDetailsResponse      `json:"patient_details"`
	Date           string                      `json:"date"`
	Time           string                      `json:"time"`
	Day            string                      `json:"day"`
	Reason         string                      `json:"reason"`
	Diagnosis      string                      `json:"diagnosis,omitempty"`
	Treatment      string                      `json:"treatment,omitempty"`
	FollowUpDate   *string                     `json:"follow_up_date,omitempty"`
	TotalAmount    decimal.Decimal             `json:"total_amount"`
	PaidAmount     decimal.Decimal             `json:"paid_amount"`
	Balance        decimal.Decimal             `json:"balance"`
	Payments       []EmbeddedPaymentResponse   `json:"payments"`
	LabResults     []EmbeddedLabResultResponse `json:"lab_results"`
	HandledBy      string                      `json:"handled_by,omitempty"`
	Notes          string                      `json:"notes,omitempty"`
	Status         string                      `json:"status"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
}
