package converter

import (
	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/domain/entity"
)

// PatientToResponse converts a Patient entity to PatientResponse DTO
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	prescriptions := make([]dto.PatientPrescriptionResponse, 0, len(patient.Prescriptions))
	for _, rx := range patient.Prescriptions {
		prescriptions = append(prescriptions, dto.PatientPrescriptionResponse{
			PrescriptionID: rx.PrescriptionID,
			AppointmentID:  rx.AppointmentID,
			Date:           rx.Date,
			Medications:    MedicationsToResponses(rx.Medications),
			Notes:          rx.Notes,
		})
	}

	return &dto.PatientResponse{
		ID:             patient.ID,
		Name:           patient.Name,
		Age:            patient.Age,
		Gender:         string(patient.Gender),
		Address:        patient.Address,
		PhoneNumber:    patient.PhoneNumber,
		MedicalHistory: patient.MedicalHistory,
		Prescriptions:  prescriptions,
		WaitingStatus: dto.WaitingStatusResponse{
			IsWaiting: patient.WaitingStatus.IsWaiting,
			Since:     patient.WaitingStatus.Since,
			Reason:    patient.WaitingStatus.Reason,
		},
		CreatedAt: patient.CreatedAt,
		UpdatedAt: patient.UpdatedAt,
	}
}

// PatientsToResponses converts a slice of Patient entities to response DTOs
func PatientsToResponses(patients []entity.Patient) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(patients))
	for i := range patients {
		responses[i] = *PatientToResponse(&patients[i])
	}
	return responses
}
