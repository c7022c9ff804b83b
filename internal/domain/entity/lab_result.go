package entity

import (
	"time"

	"github.com/google/uuid"
)

type LabResultType string

const (
	LabResultXRay      LabResultType = "X-Ray"
	LabResultBloodTest LabResultType = "Blood Test"
	LabResultScan      LabResultType = "Scan"
	LabResultOther     LabResultType = "Other"
)

func (t LabResultType) IsValid() bool {
	switch t {
	case LabResultXRay, LabResultBloodTest, LabResultScan, LabResultOther:
		return true
	}
	return false
}

type LabResult struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"patient_id"`
	AppointmentID *uuid.UUID    `gorm:"type:uuid;index" json:"appointment_id,omitempty"`
	Type          LabResultType `gorm:"type:varchar(20);not null" json:"type"`
	Details       string        `gorm:"type:text;not null" json:"details"`
	FileURL       string        `gorm:"type:text" json:"file_url,omitempty"`
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`
	Date          time.Time     `gorm:"not null;index" json:"date"`
	CreatedBy     *uuid.UUID    `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LabResult) TableName() string {
	return "lab_results"
}

func (r *LabResult) EmbeddedEntry() EmbeddedLabResult {
	return EmbeddedLabResult{
		LabResultID: r.ID,
		Type:        r.Type,
		Details:     r.Details,
		FileURL:     r.FileURL,
		Date:        r.Date,
	}
}
