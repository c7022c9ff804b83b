package converter

import (
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
)

func MedicationsToResponses(medications []entity.Medication) []dto.MedicationResponse {
	responses := make([]dto.MedicationResponse, len(medications))
	for i, m := range medications {
		responses[i] = dto.MedicationResponse{
			Name:      m.Name,
			Dosage:    m.Dosage,
			Frequency: m.Frequency,
			Duration:  m.Duration,
		}
	}
	return responses
}

func MedicationsFromRequests(requests []dto.MedicationRequest) []entity.Medication {
	medications := make([]entity.Medication, len(requests))
	for i, m := range requests {
		medications[i] = entity.Medication{
			Name:      m.Name,
			Dosage:    m.Dosage,
			Frequency: m.Frequency,
			Duration:  m.Duration,
		}
	}
	return medications
}

func PrescriptionToResponse(prescription *entity.Prescription) *dto.PrescriptionResponse {
	if prescription == nil {
		return nil
	}

	return &dto.PrescriptionResponse{
		ID:            prescription.ID,
		PatientID:     prescription.PatientID,
		AppointmentID: prescription.AppointmentID,
		Date:          prescription.Date,
		Medications:   MedicationsToResponses(prescription.Medications),
		Notes:         prescription.Notes,
		PrescribedBy:  prescription.PrescribedBy,
		CreatedAt:     prescription.CreatedAt,
		UpdatedAt:     prescription.UpdatedAt,
	}
}

func PrescriptionsToResponses(prescriptions []entity.Prescription) []dto.PrescriptionResponse {
	responses := make([]dto.PrescriptionResponse, len(prescriptions))
	for i := range prescriptions {
		responses[i] = *PrescriptionToResponse(&prescriptions[i])
	}
	return responses
}
