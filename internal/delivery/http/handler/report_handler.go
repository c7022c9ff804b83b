package handler

import (
	"net/http"

	"clinic-management/internal/usecase"
	"clinic-management/pkg/response"
	"clinic-management/pkg/validator"
)

type ReportHandler struct {
	reportUsecase usecase.ReportUsecase
	validator     *validator.CustomValidator
}

func NewReportHandler(reportUsecase usecase.ReportUsecase, validator *validator.CustomValidator) *ReportHandler {
	return &ReportHandler{
		reportUsecase: reportUsecase,
		validator:     validator,
	}
}

// GetRevenueByDay returns payment totals per calendar day
// @Summary Revenue by day
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Router /reports/revenue [get]
func (h *ReportHandler) GetRevenueByDay(w http.ResponseWriter, r *http.Request) {
	req := dateRangeRequest(r)
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	points, err := h.reportUsecase.RevenueByDay(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to get revenue report")
		return
	}

	response.Success(w, http.StatusOK, "Revenue retrieved successfully", points)
}

// GetPaymentMethods returns payment totals per method
// @Summary Payment method breakdown
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Router /reports/payment-methods [get]
func (h *ReportHandler) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	req := dateRangeRequest(r)
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	rows, err := h.reportUsecase.PaymentMethodBreakdown(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to get payment method report")
		return
	}

	response.Success(w, http.StatusOK, "Payment methods retrieved successfully", rows)
}

// GetAppointmentStatuses returns appointment counts per status
// @Summary Appointment status counts
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Router /reports/appointment-statuses [get]
func (h *ReportHandler) GetAppointmentStatuses(w http.ResponseWriter, r *http.Request) {
	req := dateRangeRequest(r)
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	rows, err := h.reportUsecase.AppointmentStatusCounts(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to get appointment status report")
		return
	}

	response.Success(w, http.StatusOK, "Appointment statuses retrieved successfully", rows)
}

// GetOutstandingBalances lists unpaid appointments, largest balance first
// @Summary Outstanding balances
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /reports/outstanding [get]
func (h *ReportHandler) GetOutstandingBalances(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reportUsecase.OutstandingBalances(r.Context(), queryInt(r, "limit"))
	if err != nil {
		writeError(w, err, "Failed to get outstanding balances")
		return
	}

	response.Success(w, http.StatusOK, "Outstanding balances retrieved successfully", rows)
}

// GetDashboardSummary returns headline totals for the dashboard
// @Summary Dashboard summary
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Response
// @Router /reports/summary [get]
func (h *ReportHandler) GetDashboardSummary(w http.ResponseWriter, r *http.Request) {
	req := dateRangeRequest(r)
	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	summary, err := h.reportUsecase.DashboardSummary(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to get dashboard summary")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard summary retrieved successfully", summary)
}
