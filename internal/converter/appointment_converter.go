package converter

import (
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	payments := make([]dto.EmbeddedPaymentResponse, 0, len(appointment.Payments))
	for _, p := range appointment.Payments {
		payments = append(payments, dto.EmbeddedPaymentResponse{
			PaymentID: p.PaymentID,
			Amount:    p.Amount,
			Method:    string(p.Method),
			Date:      p.Date,
			Notes:     p.Notes,
		})
	}

	labResults := make([]dto.EmbeddedLabResultResponse, 0, len(appointment.LabResults))
	for _, l := range appointment.LabResults {
		labResults = append(labResults, dto.EmbeddedLabResultResponse{
			LabResultID: l.LabResultID,
			Type:        string(l.Type),
			Details:     l.Details,
			FileURL:     l.FileURL,
			Date:        l.Date,
		})
	}

	var followUp *string
	if appointment.FollowUpDate != nil {
		s := appointment.FollowUpDate.Format(dateLayout)
		followUp = &s
	}

	return &dto.AppointmentResponse{
		ID:           appointment.ID,
		SerialNumber: appointment.SerialNumber,
		PatientID:    appointment.PatientID,
		PatientDetails: dto.PatientDetailsResponse{
			Name:        appointment.PatientDetails.Name,
			Age:         appointment.PatientDetails.Age,
			Gender:      string(appointment.PatientDetails.Gender),
			Address:     appointment.PatientDetails.Address,
			PhoneNumber: appointment.PatientDetails.PhoneNumber,
		},
		Date:         appointment.Date.Format(dateLayout),
		Time:         appointment.Time,
		Day:          appointment.Day,
		Reason:       appointment.Reason,
		Diagnosis:    appointment.Diagnosis,
		Treatment:    appointment.Treatment,
		FollowUpDate: followUp,
		TotalAmount:  appointment.TotalAmount,
		PaidAmount:   appointment.PaidAmount,
		Balance:      appointment.Balance,
		Payments:     payments,
		LabResults:   labResults,
		HandledBy:    appointment.HandledBy,
		Notes:        appointment.Notes,
		Status:       string(appointment.Status),
		CreatedAt:    appointment.CreatedAt,
		UpdatedAt:    appointment.UpdatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to response DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
