package entity

import (
	"time"

	"github.com/google/uuid"
)

type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

type Prescription struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID     uuid.UUID    `gorm:"type:uuid;not null;index" json:"patient_id"`
	AppointmentID *uuid.UUID   `gorm:"type:uuid;index" json:"appointment_id,omitempty"`
	Date          time.Time    `gorm:"not null;index" json:"date"`
	Medications   []Medication `gorm:"type:jsonb;serializer:json;not null" json:"medications"`
	Notes         string       `gorm:"type:text" json:"notes,omitempty"`
	PrescribedBy  *uuid.UUID   `gorm:"type:uuid" json:"prescribed_by,omitempty"`
	CreatedAt     time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}
