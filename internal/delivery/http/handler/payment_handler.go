package handler

import (
	"encoding/json"
	"net/http"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/response"
	"clinic-management/pkg/validator"
)

type PaymentHandler struct {
	paymentUsecase usecase.PaymentUsecase
	validator      *validator.CustomValidator
}

func NewPaymentHandler(paymentUsecase usecase.PaymentUsecase, validator *validator.CustomValidator) *PaymentHandler {
	return &PaymentHandler{
		paymentUsecase: paymentUsecase,
		validator:      validator,
	}
}

// CreatePayment records a payment and applies it to the linked appointment
// @Summary Create payment
// @Tags Payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreatePaymentRequest true "Create Payment Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /payments [post]
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.paymentUsecase.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create payment")
		return
	}

	response.Success(w, http.StatusCreated, "Payment created successfully", result)
}

// GetPayment returns one payment
// @Summary Get payment
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /payments/{id} [get]
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}

	payment, err := h.paymentUsecase.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to get payment")
		return
	}

	response.Success(w, http.StatusOK, "Payment retrieved successfully", payment)
}

// ListPayments returns a page of payments
// @Summary List payments
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param method query string false "Method"
// @Param appointment_id query string false "Appointment ID"
// @Param patient_id query string false "Patient ID"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /payments [get]
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := queryUUID(r, "appointment_id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "Invalid appointment ID")
		return
	}
	patientID, ok := queryUUID(r, "patient_id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "Invalid patient ID")
		return
	}

	h.list(w, r, dto.PaymentListRequest{
		PageRequest:      pageRequest(r),
		DateRangeRequest: dateRangeRequest(r),
		Method:           r.URL.Query().Get("method"),
		AppointmentID:    appointmentID,
		PatientID:        patientID,
	})
}

// ListPatientPayments returns the payments of one patient
// @Summary List payments of a patient
// @Tags Patients
// @Security BearerAuth
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} response.Response
// @Router /patients/{id}/payments [get]
func (h *PaymentHandler) ListPatientPayments(w http.ResponseWriter, r *http.Request) {
	patientID, ok := pathUUID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "Invalid patient ID")
		return
	}

	h.list(w, r, dto.PaymentListRequest{
		PageRequest:      pageRequest(r),
		DateRangeRequest: dateRangeRequest(r),
		PatientID:        &patientID,
	})
}

func (h *PaymentHandler) list(w http.ResponseWriter, r *http.Request, req dto.PaymentListRequest) {
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	payments, total, err := h.paymentUsecase.List(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to list payments")
		return
	}

	response.Paginated(w, "Payments retrieved successfully", payments, req.Page, req.Limit, total)
}

// UpdatePayment edits a payment and reconciles the affected ledgers
// @Summary Update payment
// @Tags Payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param request body dto.UpdatePaymentRequest true "Update Payment Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /payments/{id} [put]
func (h *PaymentHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}

	var req dto.UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.paymentUsecase.Update(r.Context(), id, &req)
	if err != nil {
		writeError(w, err, "Failed to update payment")
		return
	}

	response.Success(w, http.StatusOK, "Payment updated successfully", result)
}

// DeletePayment reverses a payment and removes it
// @Summary Delete payment
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /payments/{id} [delete]
func (h *PaymentHandler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		response.Fail(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}

	result, err := h.paymentUsecase.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err, "Failed to delete payment")
		return
	}

	response.Success(w, http.StatusOK, "Payment deleted successfully", result)
}
