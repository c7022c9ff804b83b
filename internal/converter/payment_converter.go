package converter

import (
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
)

func PaymentToResponse(payment *entity.Payment) *dto.PaymentResponse {
	if payment == nil {
		return nil
	}

	return &dto.PaymentResponse{
		ID:            payment.ID,
		Amount:        payment.Amount,
		Date:          payment.Date,
		Method:        string(payment.Method),
		Notes:         payment.Notes,
		AppointmentID: payment.AppointmentID,
		PatientID:     payment.PatientID,
		CreatedBy:     payment.CreatedBy,
		CreatedAt:     payment.CreatedAt,
		UpdatedAt:     payment.UpdatedAt,
	}
}

func PaymentsToResponses(payments []entity.Payment) []dto.PaymentResponse {
	responses := make([]dto.PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = *PaymentToResponse(&payments[i])
	}
	return responses
}

// PaymentResultToResponse pairs a payment with the appointments whose ledger it changed.
// Nil appointments are skipped.
func PaymentResultToResponse(payment *entity.Payment, appointments ...*entity.Appointment) *dto.PaymentResultResponse {
	result := &dto.PaymentResultResponse{
		Payment: *PaymentToResponse(payment),
	}
	for _, a := range appointments {
		if a == nil {
			continue
		}
		result.Appointments = append(result.Appointments, *AppointmentToResponse(a))
	}
	return result
}
