package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "Cash"
	PaymentMethodGPay  PaymentMethod = "G-Pay"
	PaymentMethodCard  PaymentMethod = "Card"
	PaymentMethodOther PaymentMethod = "Other"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodGPay, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is the authoritative record that a payment happened
type Payment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Date          time.Time       `gorm:"not null;index" json:"date"`
	Method        PaymentMethod   `gorm:"type:varchar(10);not null;index" json:"method"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	AppointmentID *uuid.UUID      `gorm:"type:uuid;index" json:"appointment_id,omitempty"`
	PatientID     *uuid.UUID      `gorm:"type:uuid;index" json:"patient_id,omitempty"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// EmbeddedEntry returns the ledger entry mirrored onto the linked appointment.
func (p *Payment) EmbeddedEntry() EmbeddedPayment {
	return EmbeddedPayment{
		PaymentID: p.ID,
		Amount:    p.Amount,
		Method:    p.Method,
		Date:      p.Date,
		Notes:     p.Notes,
	}
}

// IsLinkedTo reports whether the payment is attached to appointmentID.
func (p *Payment) IsLinkedTo(appointmentID uuid.UUID) bool {
	return p.AppointmentID != nil && *p.AppointmentID == appointmentID
}
