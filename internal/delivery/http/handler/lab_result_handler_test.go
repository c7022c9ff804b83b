package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/validator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLabResultUsecase struct {
	usecase.LabResultUsecase

	created     *dto.CreateLabResultRequest
	fileContent []byte
}

func (s *stubLabResultUsecase) Create(ctx context.Context, req *dto.CreateLabResultRequest) (*dto.LabResultResponse, error) {
	s.created = req
	if req.File != nil {
		// The multipart file is only readable during the request
		content, err := io.ReadAll(req.File.Body)
		if err != nil {
			return nil, err
		}
		s.fileContent = content
	}
	return &dto.LabResultResponse{ID: uuid.New(), PatientID: req.PatientID, Type: req.Type}, nil
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCreateLabResultMultipart(t *testing.T) {
	stub := &stubLabResultUsecase{}
	h := NewLabResultHandler(stub, validator.NewValidator())
	patientID := uuid.New()
	appointmentID := uuid.New()

	body, contentType := multipartBody(t, map[string]string{
		"patient_id":     patientID.String(),
		"appointment_id": appointmentID.String(),
		"type":           "X-Ray",
		"details":        "Chest PA view",
		"date":           "2026-10-19",
	}, "scan.PDF", []byte("%PDF-1.7"))

	req := httptest.NewRequest(http.MethodPost, "/lab-results", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.CreateLabResult(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, stub.created)
	assert.Equal(t, patientID, stub.created.PatientID)
	assert.Equal(t, appointmentID, *stub.created.AppointmentID)
	assert.Equal(t, "X-Ray", stub.created.Type)
	require.NotNil(t, stub.created.File)
	assert.Equal(t, "scan.PDF", stub.created.File.Filename)
	assert.Equal(t, []byte("%PDF-1.7"), stub.fileContent)
}

func TestCreateLabResultMultipartWithoutFile(t *testing.T) {
	stub := &stubLabResultUsecase{}
	h := NewLabResultHandler(stub, validator.NewValidator())

	body, contentType := multipartBody(t, map[string]string{
		"patient_id": uuid.NewString(),
		"type":       "Blood Test",
		"details":    "CBC",
	}, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/lab-results", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.CreateLabResult(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, stub.created)
	assert.Nil(t, stub.created.File)
	assert.Nil(t, stub.created.AppointmentID)
}

func TestCreateLabResultRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
	}{
		{"bad patient id", map[string]string{"patient_id": "x", "type": "Scan", "details": "MRI"}},
		{"bad appointment id", map[string]string{"patient_id": uuid.NewString(), "appointment_id": "x", "type": "Scan", "details": "MRI"}},
		{"unknown type", map[string]string{"patient_id": uuid.NewString(), "type": "Ultrasound", "details": "Abdomen"}},
		{"missing details", map[string]string{"patient_id": uuid.NewString(), "type": "Scan"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubLabResultUsecase{}
			h := NewLabResultHandler(stub, validator.NewValidator())

			body, contentType := multipartBody(t, tt.fields, "", nil)
			req := httptest.NewRequest(http.MethodPost, "/lab-results", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			h.CreateLabResult(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, stub.created)
		})
	}
}

func TestCreateLabResultJSON(t *testing.T) {
	stub := &stubLabResultUsecase{}
	h := NewLabResultHandler(stub, validator.NewValidator())
	patientID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/lab-results",
		bytes.NewBufferString(`{"patient_id":"`+patientID.String()+`","type":"Other","details":"Allergy panel"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.CreateLabResult(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, stub.created)
	assert.Equal(t, patientID, stub.created.PatientID)
	assert.Nil(t, stub.created.File)
}
