package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "Other"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// WaitingStatus tracks whether a patient is currently in the waiting room
type WaitingStatus struct {
	IsWaiting bool       `gorm:"column:is_waiting;not null;default:false" json:"is_waiting"`
	Since     *time.Time `gorm:"column:since" json:"waiting_since,omitempty"`
	Reason    string     `gorm:"column:reason;type:text" json:"reason,omitempty"`
}

// EmbeddedPrescription is the copy of a prescription kept on the patient for fast reads.
// The prescriptions table stays authoritative.
type EmbeddedPrescription struct {
	PrescriptionID uuid.UUID    `json:"prescription_id"`
	AppointmentID  *uuid.UUID   `json:"appointment_id,omitempty"`
	Date           time.Time    `json:"date"`
	Medications    []Medication `json:"medications"`
	Notes          string       `json:"notes,omitempty"`
	PrescribedBy   *uuid.UUID   `json:"prescribed_by,omitempty"`
}

// Patient holds identity and demographic data
type Patient struct {
	ID             uuid.UUID              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name           string                 `gorm:"type:varchar(255);not null;index" json:"name"`
	Age            int                    `gorm:"not null" json:"age"`
	Gender         Gender                 `gorm:"type:varchar(10);not null" json:"gender"`
	Address        string                 `gorm:"type:text" json:"address,omitempty"`
	PhoneNumber    string                 `gorm:"type:varchar(20);index" json:"phone_number"`
	MedicalHistory string                 `gorm:"type:text" json:"medical_history,omitempty"`
	Prescriptions  []EmbeddedPrescription `gorm:"type:jsonb;serializer:json;not null" json:"prescriptions"`
	WaitingStatus  WaitingStatus          `gorm:"embedded;embeddedPrefix:waiting_" json:"waiting_status"`
	CreatedAt      time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Patient) TableName() string {
	return "patients"
}

// Snapshot captures the demographics copied onto an appointment at creation time.
func (p *Patient) Snapshot() PatientSnapshot {
	return PatientSnapshot{
		Name:        p.Name,
		Age:         p.Age,
		Gender:      p.Gender,
		Address:     p.Address,
		PhoneNumber: p.PhoneNumber,
	}
}

// MirrorPrescription appends a read copy of rx to the patient's history.
func (p *Patient) MirrorPrescription(rx *Prescription) {
	medications := make([]Medication, len(rx.Medications))
	copy(medications, rx.Medications)

	p.Prescriptions = append(p.Prescriptions, EmbeddedPrescription{
		PrescriptionID: rx.ID,
		AppointmentID:  rx.AppointmentID,
		Date:           rx.Date,
		Medications:    medications,
		Notes:          rx.Notes,
		PrescribedBy:   rx.PrescribedBy,
	})
}

// StartWaiting marks the patient as waiting. The original arrival time is kept
// when the patient is already waiting.
func (p *Patient) StartWaiting(reason string, now time.Time) {
	if !p.WaitingStatus.IsWaiting {
		p.WaitingStatus.Since = &now
	}
	p.WaitingStatus.IsWaiting = true
	p.WaitingStatus.Reason = reason
}

func (p *Patient) StopWaiting() {
	p.WaitingStatus = WaitingStatus{}
}

// BeforeSave keeps the jsonb column non-null.
func (p *Patient) BeforeSave(tx *gorm.DB) error {
	if p.Prescriptions == nil {
		p.Prescriptions = []EmbeddedPrescription{}
	}
	return nil
}
