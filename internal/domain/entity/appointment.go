package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrNegativeTotal     = errors.New("total amount must not be negative")
	ErrAmountPrecision   = errors.New("amount must have at most 2 decimal places")
)

// MoneyScale is the number of decimal places every money column stores.
const MoneyScale = 2

// IsMoneyScale reports whether d fits a DECIMAL(12,2) column without rounding.
func IsMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "Scheduled"
	AppointmentStatusInProgress AppointmentStatus = "In Progress"
	AppointmentStatusCompleted  AppointmentStatus = "Completed"
	AppointmentStatusCancelled  AppointmentStatus = "Cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "No-Show"
)

// IsValid reports whether s is a known status. Any known status may follow any other.
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusInProgress, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// PatientSnapshot is the patient's demographics as they were when the appointment was booked
type PatientSnapshot struct {
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Gender      Gender `json:"gender"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phone_number"`
}

// EmbeddedPayment is the appointment-side copy of a standalone Payment.
// PaymentID always equals the originating Payment.ID.
type EmbeddedPayment struct {
	PaymentID uuid.UUID       `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Date      time.Time       `json:"date"`
	Notes     string          `json:"notes,omitempty"`
}

// EmbeddedLabResult is the appointment-side copy of a LabResult, written at creation only
type EmbeddedLabResult struct {
	LabResultID uuid.UUID     `json:"lab_result_id"`
	Type        LabResultType `json:"type"`
	Details     string        `json:"details"`
	FileURL     string        `json:"file_url,omitempty"`
	Date        time.Time     `json:"date"`
}

// Appointment holds scheduling facts and the appointment's financial sub-ledger.
//
// Invariants, enforced by Recalculate before every persist:
//   - Balance == TotalAmount - PaidAmount
//   - PaidAmount == sum(Payments[].Amount)
//   - Day == weekday name of Date
type Appointment struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SerialNumber   string              `gorm:"type:varchar(32);uniqueIndex;not null" json:"serial_number"`
	PatientID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"patient_id"`
	PatientDetails PatientSnapshot     `gorm:"type:jsonb;serializer:json;not null" json:"patient_details"`
	Date           time.Time           `gorm:"type:date;not null;index" json:"date"`
	Time           string              `gorm:"type:varchar(5);not null" json:"time"`
	Day            string              `gorm:"type:varchar(10);not null" json:"day"`
	Reason         string              `gorm:"type:text;not null" json:"reason"`
	Diagnosis      string              `gorm:"type:text" json:"diagnosis,omitempty"`
	Treatment      string              `gorm:"type:text" json:"treatment,omitempty"`
	FollowUpDate   *time.Time          `gorm:"type:date" json:"follow_up_date,omitempty"`
	TotalAmount    decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	PaidAmount     decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"paid_amount"`
	Balance        decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	Payments       []EmbeddedPayment   `gorm:"type:jsonb;serializer:json;not null" json:"payments"`
	LabResults     []EmbeddedLabResult `gorm:"type:jsonb;serializer:json;not null" json:"lab_results"`
	HandledBy      string              `gorm:"type:varchar(255)" json:"handled_by,omitempty"`
	Notes          string              `gorm:"type:text" json:"notes,omitempty"`
	Status         AppointmentStatus   `gorm:"type:varchar(20);not null;default:'Scheduled';index" json:"status"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// NewAppointment books an appointment for patient with an empty ledger.
func NewAppointment(patient *Patient, serialNumber string, date time.Time, timeOfDay, reason, notes string) *Appointment {
	a := &Appointment{
		SerialNumber:   serialNumber,
		PatientID:      patient.ID,
		PatientDetails: patient.Snapshot(),
		Date:           date,
		Time:           timeOfDay,
		Reason:         reason,
		Notes:          notes,
		Status:         AppointmentStatusScheduled,
		TotalAmount:    decimal.Zero,
		Payments:       []EmbeddedPayment{},
		LabResults:     []EmbeddedLabResult{},
	}
	a.Recalculate()
	return a
}

// WeekdayName returns the English weekday name of date, e.g. "Monday".
func WeekdayName(date time.Time) string {
	return date.Weekday().String()
}

// Recalculate re-derives Day, PaidAmount and Balance from their inputs.
func (a *Appointment) Recalculate() {
	if a.Payments == nil {
		a.Payments = []EmbeddedPayment{}
	}
	if a.LabResults == nil {
		a.LabResults = []EmbeddedLabResult{}
	}

	a.Day = WeekdayName(a.Date)

	paid := decimal.Zero
	for _, p := range a.Payments {
		paid = paid.Add(p.Amount)
	}
	a.PaidAmount = paid
	a.Balance = a.TotalAmount.Sub(paid)
}

// ApplyPayment appends entry to the ledger. Nothing is mutated when the amount is not positive.
func (a *Appointment) ApplyPayment(entry EmbeddedPayment) error {
	if !entry.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	if !IsMoneyScale(entry.Amount) {
		return ErrAmountPrecision
	}
	a.Payments = append(a.Payments, entry)
	a.Recalculate()
	return nil
}

// RemovePayment reverses the entry recorded for paymentID.
// It reports false when the ledger holds no entry for that payment.
func (a *Appointment) RemovePayment(paymentID uuid.UUID) bool {
	kept := make([]EmbeddedPayment, 0, len(a.Payments))
	removed := false
	for _, p := range a.Payments {
		if p.PaymentID == paymentID {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	a.Payments = kept
	a.Recalculate()
	return removed
}

// SetTotalAmount changes the billed amount and rebalances.
func (a *Appointment) SetTotalAmount(total decimal.Decimal) error {
	if total.IsNegative() {
		return ErrNegativeTotal
	}
	if !IsMoneyScale(total) {
		return ErrAmountPrecision
	}
	a.TotalAmount = total
	a.Recalculate()
	return nil
}

// SetDate moves the appointment and re-derives Day.
func (a *Appointment) SetDate(date time.Time) {
	a.Date = date
	a.Recalculate()
}

// AttachLabResult mirrors a lab result onto the appointment.
func (a *Appointment) AttachLabResult(result *LabResult) {
	a.LabResults = append(a.LabResults, result.EmbeddedEntry())
}

// HasPayment reports whether paymentID is recorded on the ledger.
func (a *Appointment) HasPayment(paymentID uuid.UUID) bool {
	for _, p := range a.Payments {
		if p.PaymentID == paymentID {
			return true
		}
	}
	return false
}

// BeforeSave re-derives the ledger fields so no write path can persist them out of sync.
func (a *Appointment) BeforeSave(tx *gorm.DB) error {
	a.Recalculate()
	return nil
}
