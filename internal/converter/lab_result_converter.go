package converter

import (
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
)

func LabResultToResponse(result *entity.LabResult) *dto.LabResultResponse {
	if result == nil {
		return nil
	}

	return &dto.LabResultResponse{
		ID:            result.ID,
		PatientID:     result.PatientID,
		AppointmentID: result.AppointmentID,
		Type:          string(result.Type),
		Details:       result.Details,
		FileURL:       result.FileURL,
		Notes:         result.Notes,
		Date:          result.Date,
		CreatedBy:     result.CreatedBy,
		CreatedAt:     result.CreatedAt,
		UpdatedAt:     result.UpdatedAt,
	}
}

func LabResultsToResponses(results []entity.LabResult) []dto.LabResultResponse {
	responses := make([]dto.LabResultResponse, len(results))
	for i := range results {
		responses[i] = *LabResultToResponse(&results[i])
	}
	return responses
}
