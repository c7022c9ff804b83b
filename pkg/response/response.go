package response

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Response is the envelope every endpoint writes. Exactly one of Data or
// Error is set.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta describes one page of a list endpoint.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// StepError names the write that failed inside a multi-step ledger operation,
// so front desk staff know what to reconcile.
type StepError struct {
	Step string `json:"step"`
}

func NewMeta(page, limit int, total int64) *Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

func JSON(w http.ResponseWriter, statusCode int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Warnf("Failed to encode response: %+v", err)
	}
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	JSON(w, statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Paginated writes a 200 list response with page metadata.
func Paginated(w http.ResponseWriter, message string, data interface{}, page, limit int, total int64) {
	JSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    NewMeta(page, limit, total),
	})
}

// Fail writes an error envelope without detail. An empty message falls back
// to the status text.
func Fail(w http.ResponseWriter, statusCode int, message string) {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	JSON(w, statusCode, Response{
		Success: false,
		Message: message,
	})
}

// ValidationError reports field level messages keyed by json field name.
func ValidationError(w http.ResponseWriter, fields map[string]string) {
	JSON(w, http.StatusBadRequest, Response{
		Success: false,
		Message: "Validation failed",
		Error:   fields,
	})
}

// StepFailure reports a 500 for a ledger operation that was rolled back at step.
func StepFailure(w http.ResponseWriter, message, step string) {
	JSON(w, http.StatusInternalServerError, Response{
		Success: false,
		Message: message,
		Error:   StepError{Step: step},
	})
}
