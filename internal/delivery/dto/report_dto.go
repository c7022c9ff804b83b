package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RevenuePointResponse struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

type MethodBreakdownResponse struct {
	Method string          `json:"method"`
	Total  decimal.Decimal `json:"total"`
	Count  int64           `json:"count"`
}

type StatusCountResponse struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type OutstandingBalanceResponse struct {
	AppointmentID uuid.UUID       `json:"appointment_id"`
	SerialNumber  string          `json:"serial_number"`
	PatientName   string          `json:"patient_name"`
	Date          string          `json:"date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Balance       decimal.Decimal `json:"balance"`
}

type DashboardSummaryResponse struct {
	PatientsRegistered int64           `json:"patients_registered"`
	Appointments       int64           `json:"appointments"`
	Revenue            decimal.Decimal `json:"revenue"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
}
