package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestNewMeta(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		total      int64
		totalPages int
		hasNext    bool
	}{
		{"empty", 1, 20, 0, 0, false},
		{"partial last page", 1, 20, 41, 3, true},
		{"on last page", 3, 20, 41, 3, false},
		{"exact fit", 2, 10, 20, 2, false},
		{"no limit", 1, 0, 5, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := NewMeta(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.totalPages, meta.TotalPages)
			assert.Equal(t, tt.hasNext, meta.HasNext)
		})
	}
}

func TestPaginated(t *testing.T) {
	rec := httptest.NewRecorder()
	Paginated(rec, "Payments retrieved successfully", []string{"a"}, 1, 1, 2)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["total_pages"])
	assert.Equal(t, true, meta["has_next"])
}

func TestFailDefaultsToStatusText(t *testing.T) {
	rec := httptest.NewRecorder()
	Fail(rec, http.StatusForbidden, "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Forbidden", body["message"])
	assert.NotContains(t, body, "error")
	assert.NotContains(t, body, "data")
}

func TestValidationErrorListsFields(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(rec, map[string]string{"amount": "amount must have at most 2 decimal places"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Validation failed", body["message"])
	assert.Equal(t, map[string]interface{}{"amount": "amount must have at most 2 decimal places"}, body["error"])
}

func TestStepFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	StepFailure(rec, "Failed to update payment", "apply payment to appointment")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Failed to update payment", body["message"])
	assert.Equal(t, map[string]interface{}{"step": "apply payment to appointment"}, body["error"])
}
