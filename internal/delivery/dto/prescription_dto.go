package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type MedicationRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	Dosage    string `json:"dosage" validate:"required,max=100"`
	Frequency string `json:"frequency" validate:"required,max=100"`
	Duration  string `json:"duration" validate:"required,max=100"`
}

type CreatePrescriptionRequest struct {
	PatientID     uuid.UUID           `json:"patient_id" validate:"required"`
	AppointmentID *uuid.UUID          `json:"appointment_id"`
	Date          string              `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Medications   []MedicationRequest `json:"medications" validate:"required,min=1,dive"`
	Notes         string              `json:"notes" validate:"omitempty,max=2000"`
}

type UpdatePrescriptionRequest struct {
	Date        *string             `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Medications []MedicationRequest `json:"medications" validate:"omitempty,min=1,dive"`
	Notes       *string             `json:"notes" validate:"omitempty,max=2000"`
}

// Response DTOs

type MedicationResponse struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

type PrescriptionResponse struct {
	ID            uuid.UUID            `json:"id"`
	PatientID     uuid.UUID            `json:"patient_id"`
	AppointmentID *uuid.UUID           `json:"appointment_id,omitempty"`
	Date          time.Time            `json:"date"`
	Medications   []MedicationResponse `json:"medications"`
	Notes         string               `json:"notes,omitempty"`
	PrescribedBy  *uuid.UUID           `json:"prescribed_by,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}
