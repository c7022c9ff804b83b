package dto

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateLabResultRequest struct {
	PatientID     uuid.UUID  `json:"patient_id" validate:"required"`
	AppointmentID *uuid.UUID `json:"appointment_id"`
	Type          string     `json:"type" validate:"required,oneof='X-Ray' 'Blood Test' 'Scan' 'Other'"`
	Details       string     `json:"details" validate:"required"`
	Notes         string     `json:"notes" validate:"omitempty,max=2000"`
	Date          string     `json:"date" validate:"omitempty,datetime=2006-01-02"`

	// Optional attachment, filled by the handler from a multipart form
	File *FileUpload `json:"-"`
}

// FileUpload is an attachment read from a multipart request
type FileUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type UpdateLabResultRequest struct {
	Type    *string `json:"type" validate:"omitempty,oneof='X-Ray' 'Blood Test' 'Scan' 'Other'"`
	Details *string `json:"details" validate:"omitempty,min=1"`
	Notes   *string `json:"notes" validate:"omitempty,max=2000"`
	Date    *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type LabResultListRequest struct {
	PatientID     *uuid.UUID `json:"patient_id"`
	AppointmentID *uuid.UUID `json:"appointment_id"`
}

// Response DTOs

type LabResultResponse struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	Type          string     `json:"type"`
	Details       string     `json:"details"`
	FileURL       string     `json:"file_url,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Date          time.Time  `json:"date"`
	CreatedBy     *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
