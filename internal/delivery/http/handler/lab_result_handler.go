package handler

import (
	"encoding/json"
	"mime"
	"net/http"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/response"
	"clinic-management/pkg/validator"

	"github.com/google/uuid"
)

// maxLabUploadSize caps multipart bodies for lab result attachments
const maxLabUploadSize = 10 << 20

type LabResultHandler struct {
	labResultUsecase usecase.LabResultUsecase
	validator        *validator.CustomValidator
}

func NewLabResultHandler(labResultUsecase usecase.LabResultUsecase, validator *validator.CustomValidator) *LabResultHandler {
	return &LabResultHandler{
		labResultUsecase: labResultUsecase,
		validator:        validator,
	}
}

// CreateLabResult records a lab result. It accepts JSON, or multipart/form-data
// with the same field names and an optional "file" part.
// @Summary Create lab result
// @Tags Lab Results
// @Security BearerAuth
// @Accept json,mpfd
// @Produce json
// @Param request body dto.CreateLabResultRequest true "Create Lab Result Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /lab-results [post]
func (h *LabResultHandler) CreateLabResult(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLabResultRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxLabUploadSize)
		if err := r.ParseMultipartForm(maxLabUploadSize); err != nil {
			response.Fail(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		if !h.readForm(r, &req) {
			response.Fail(w, http.StatusBadRequest, "Invalid patient or appointment ID")
			return
		}

		file, header, err := r.FormFile("file")
		if err == nil {
			defer file.Close()
			req.File = &dto.FileUpload{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Body:        file,
			}
		} else if err != http.ErrMissingFile {
			response.Fail(w, http.StatusBadRequest, "Invalid file upload")
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.labResultUsecase.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create lab result")
		return
	}

	response.Success(w, http.StatusCreated, "Lab result created successfully", result)
}

func (h *LabResultHandler) readForm(r *http.Request, req *dto.CreateLabResultRequest) bool {
	patientID, err := uuid.Parse(r.FormValue("patient_id"))
	if err != nil {
		return false
	}
	req.PatientID = patientID

	if raw := r.FormValue("appointment_id"); raw != "" {
		appointmentID, err := uuid.Parse(raw)
		if err != nil {
			return false
		}
		req.AppointmentID = &appointmentID
	}

	req.Type = r.FormValue("type")
	req.Details = r.FormValue("details")
	req.Notes = r.FormValue("notes")
	req.Date = r.FormValue("date")
	return true
}

// @Summary Get lab result
// @Tags Lab Results
// @Security BearerAuth
// @Produce json
// @Param id path string true "Lab Result ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /lab-results/{id} [get]
func (h *LabResultHandler) GetLabResult(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "Invalid lab result ID")
		return
	}

	result, err := h.labResultUsecase.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to get lab result")
		return
	}

	response.Success(w, http.StatusOK, "Lab result retrieved successfully", result)
}

// @Summary List lab results
// @Tags Lab Results
// @Security BearerAuth
// @Produce json
// @Param patient_id query string false "Patient ID"
// @Param appointment_id query string false "Appointment ID"
// @Success 200 {object} response.Response
// @Router /lab-results [get]
func (h *LabResultHandler) ListLabResults(w http.ResponseWriter, r *http.Request) {
	patientID, ok := queryUUID(r, "patient_id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "Invalid patient ID")
		return
	}
	appointmentID, ok := queryUUID(r, "appointment_id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "Invalid appointment ID")
		return
	}

	h.list(w, r, &dto.LabResultListRequest{PatientID: patientID, AppointmentID: appointmentID})
}

// @Summary List lab results of a patient
// @Tags Patients
// @Security BearerAuth
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} response.Response
// @Router /patients/{id}/lab-results [get]
func (h *LabResultHandler) ListPatientLabResults(w http.ResponseWriter, r *http.Request) {
	patientID, ok := pathUUID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "Invalid patient ID")
		return
	}

	h.list(w, r, &dto.LabResultListRequest{PatientID: &patientID})
}

func (h *LabResultHandler) list(w http.ResponseWriter, r *http.Request, req *dto.LabResultListRequest) {
	results, err := h.labResultUsecase.List(r.Context(), req)
	if err != nil {
		writeError(w, err, "Failed to list lab results")
		return
	}

	response.Success(w, http.StatusOK, "Lab results retrieved successfully", results)
}

// @Summary Update lab result
// @Tags Lab Results
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Lab Result ID"
// @Param request body dto.UpdateLabResultRequest true "Update Lab Result Request"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /lab-results/{id} [put]
func (h *LabResultHandler) UpdateLabResult(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "Invalid lab result ID")
		return
	}

	var req dto.UpdateLabResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.labResultUsecase.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to update lab result")
		return
	}

	response.Success(w, http.StatusOK, "Lab result updated successfully", result)
}

// @Summary Delete lab result
// @Tags Lab Results
// @Security BearerAuth
// @Produce json
// @Param id path string true "Lab Result ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /lab-results/{id} [delete]
func (h *LabResultHandler) DeleteLabResult(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "Invalid lab result ID")
		return
	}

	if err := h.labResultUsecase.Delete(r.Context(), id); err != nil {
		writeError(w, err, "Failed to delete lab result")
		return
	}

	response.Success(w, http.StatusOK, "Lab result deleted successfully", nil)
}
