package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Read models for dashboard aggregations. They are scanned from GROUP BY queries
// and never persisted.

type RevenuePoint struct {
	Day   time.Time       `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

type MethodBreakdown struct {
	Method PaymentMethod   `json:"method"`
	Total  decimal.Decimal `json:"total"`
	Count  int64           `json:"count"`
}

type StatusCount struct {
	Status AppointmentStatus `json:"status"`
	Count  int64             `json:"count"`
}

type DashboardSummary struct {
	PatientsRegistered int64           `json:"patients_registered"`
	Appointments       int64           `json:"appointments"`
	Revenue            decimal.Decimal `json:"revenue"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
}
