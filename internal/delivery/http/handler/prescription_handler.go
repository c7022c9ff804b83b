package handler

import (
	"encoding/json"
	"net/http"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/response"
	"clinic-management/pkg/validator"
)

type PrescriptionHandler struct {
	prescriptionUsecase usecase.PrescriptionUsecase
	validator           *validator.CustomValidator
}

func NewPrescriptionHandler(prescriptionUsecase usecase.PrescriptionUsecase, validator *validator.CustomValidator) *PrescriptionHandler {
	return &PrescriptionHandler{
		prescriptionUsecase: prescriptionUsecase,
		validator:           validator,
	}
}

// CreatePrescription records a prescription and copies it onto the patient
// @Summary Create prescription
// @Tags Prescriptions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreatePrescriptionRequest true "Create Prescription Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prescriptions [post]
func (h *PrescriptionHandler) CreatePrescription(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePrescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	prescription, err := h.prescriptionUsecase.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create prescription")
		return
	}

	response.Success(w, http.StatusCreated, "Prescription created successfully", prescription)
}

// @Summary Get prescription
// @Tags Prescriptions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Prescription ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prescriptions/{id} [get]
func (h *PrescriptionHandler) GetPrescription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "Invalid prescription ID")
		return
	}

	prescription, err := h.prescriptionUsecase.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to get prescription")
		return
	}

	response.Success(w, http.StatusOK, "Prescription retrieved successfully", prescription)
}

// @Summary List prescriptions of a patient
// @Tags Patients
// @Security BearerAuth
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} response.Response
// @Router /patients/{id}/prescriptions [get]
func (h *PrescriptionHandler) ListPatientPrescriptions(w http.ResponseWriter, r *http.Request) {
	patientID, ok := pathUUID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "Invalid patient ID")
		return
	}

	prescriptions, err := h.prescriptionUsecase.ListByPatient(r.Context(), patientID)
	if err != nil {
		writeError(w, err, "Failed to list prescriptions")
		return
	}

	response.Success(w, http.StatusOK, "Prescriptions retrieved successfully", prescriptions)
}

// @Summary Update prescription
// @Tags Prescriptions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Prescription ID"
// @Param request body dto.UpdatePrescriptionRequest true "Update Prescription Request"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prescriptions/{id} [put]
func (h *PrescriptionHandler) UpdatePrescription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "Invalid prescription ID")
		return
	}

	var req dto.UpdatePrescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	prescription, err := h.prescriptionUsecase.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to update prescription")
		return
	}

	response.Success(w, http.StatusOK, "Prescription updated successfully", prescription)
}

// @Summary Delete prescription
// @Tags Prescriptions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Prescription ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prescriptions/{id} [delete]
func (h *PrescriptionHandler) DeletePrescription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "Invalid prescription ID")
		return
	}

	if err := h.prescriptionUsecase.Delete(r.Context(), id); err != nil {
		writeError(w, err, "Failed to delete prescription")
		return
	}

	response.Success(w, http.StatusOK, "Prescription deleted successfully", nil)
}
