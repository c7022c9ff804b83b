package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreatePatientRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=255"`
	Age            int    `json:"age" validate:"gte=0,lte=150"`
	Gender         string `json:"gender" validate:"required,oneof=M F Other"`
	Address        string `json:"address" validate:"omitempty,max=500"`
	PhoneNumber    string `json:"phone_number" validate:"required,min=7,max=20"`
	MedicalHistory string `json:"medical_history"`
}

// UpdatePatientRequest only changes the fields that are present
type UpdatePatientRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=255"`
	Age            *int    `json:"age" validate:"omitempty,gte=0,lte=150"`
	Gender         *string `json:"gender" validate:"omitempty,oneof=M F Other"`
	Address        *string `json:"address" validate:"omitempty,max=500"`
	PhoneNumber    *string `json:"phone_number" validate:"omitempty,min=7,max=20"`
	MedicalHistory *string `json:"medical_history"`
}

type SetWaitingRequest struct {
	IsWaiting bool   `json:"is_waiting"`
	Reason    string `json:"reason" validate:"omitempty,max=255"`
}

type PatientListRequest struct {
	PageRequest
	Search string `json:"search"`
}

// Response DTOs

type WaitingStatusResponse struct {
	IsWaiting bool       `json:"is_waiting"`
	Since     *time.Time `json:"waiting_since,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

type PatientPrescriptionResponse struct {
	PrescriptionID uuid.UUID            `json:"prescription_id"`
	AppointmentID  *uuid.UUID           `json:"appointment_id,omitempty"`
	Date           time.Time            `json:"date"`
	Medications    []MedicationResponse `json:"medications"`
	Notes          string               `json:"notes,omitempty"`
}

type PatientResponse struct {
	ID             uuid.UUID                     `json:"id"`
	Name           string                        `json:"name"`
	Age            int                           `json:"age"`
	Gender         string                        `json:"gender"`
	Address        string                        `json:"address,omitempty"`
	PhoneNumber    string                        `json:"phone_number"`
	MedicalHistory string                        `json:"medical_history,omitempty"`
	Prescriptions  []PatientPrescriptionResponse `json:"prescriptions"`
	WaitingStatus  WaitingStatusResponse         `json:"waiting_status"`
	CreatedAt      time.Time                     `json:"created_at"`
	UpdatedAt      time.Time                     `json:"updated_at"`
}
