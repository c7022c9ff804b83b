package converter

import (
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
)

func RevenuePointsToResponses(points []entity.RevenuePoint) []dto.RevenuePointResponse {
	responses := make([]dto.RevenuePointResponse, len(points))
	for i, p := range points {
		responses[i] = dto.RevenuePointResponse{
			Date:  p.Day.Format(dateLayout),
			Total: p.Total,
			Count: p.Count,
		}
	}
	return responses
}

func MethodBreakdownToResponses(rows []entity.MethodBreakdown) []dto.MethodBreakdownResponse {
	responses := make([]dto.MethodBreakdownResponse, len(rows))
	for i, r := range rows {
		responses[i] = dto.MethodBreakdownResponse{
			Method: string(r.Method),
			Total:  r.Total,
			Count:  r.Count,
		}
	}
	return responses
}

func StatusCountsToResponses(rows []entity.StatusCount) []dto.StatusCountResponse {
	responses := make([]dto.StatusCountResponse, len(rows))
	for i, r := range rows {
		responses[i] = dto.StatusCountResponse{
			Status: string(r.Status),
			Count:  r.Count,
		}
	}
	return responses
}

func OutstandingToResponses(appointments []entity.Appointment) []dto.OutstandingBalanceResponse {
	responses := make([]dto.OutstandingBalanceResponse, len(appointments))
	for i, a := range appointments {
		responses[i] = dto.OutstandingBalanceResponse{
			AppointmentID: a.ID,
			SerialNumber:  a.SerialNumber,
			PatientName:   a.PatientDetails.Name,
			Date:          a.Date.Format(dateLayout),
			TotalAmount:   a.TotalAmount,
			PaidAmount:    a.PaidAmount,
			Balance:       a.Balance,
		}
	}
	return responses
}

func DashboardSummaryToResponse(summary *entity.DashboardSummary) *dto.DashboardSummaryResponse {
	if summary == nil {
		return nil
	}
	return &dto.DashboardSummaryResponse{
		PatientsRegistered: summary.PatientsRegistered,
		Appointments:       summary.Appointments,
		Revenue:            summary.Revenue,
		OutstandingBalance: summary.OutstandingBalance,
	}
}
