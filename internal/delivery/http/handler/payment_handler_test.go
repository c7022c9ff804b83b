package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPaymentUsecase struct {
	usecase.PaymentUsecase

	created  *dto.CreatePaymentRequest
	listReq  *dto.PaymentListRequest
	deleteID uuid.UUID
	err      error
}

func (s *stubPaymentUsecase) Create(ctx context.Context, req *dto.CreatePaymentRequest) (*dto.PaymentResultResponse, error) {
	s.created = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.PaymentResultResponse{Payment: dto.PaymentResponse{ID: uuid.New(), Amount: req.Amount, Method: req.Method}}, nil
}

func (s *stubPaymentUsecase) List(ctx context.Context, req *dto.PaymentListRequest) ([]dto.PaymentResponse, int64, error) {
	s.listReq = req
	return []dto.PaymentResponse{{ID: uuid.New()}}, 41, s.err
}

func (s *stubPaymentUsecase) Delete(ctx context.Context, id uuid.UUID) (*dto.PaymentResultResponse, error) {
	s.deleteID = id
	if s.err != nil {
		return nil, s.err
	}
	return &dto.PaymentResultResponse{Payment: dto.PaymentResponse{ID: id}}, nil
}

func newPaymentRouter(stub *stubPaymentUsecase) *mux.Router {
	h := NewPaymentHandler(stub, validator.NewValidator())
	r := mux.NewRouter()
	r.HandleFunc("/payments", h.CreatePayment).Methods(http.MethodPost)
	r.HandleFunc("/payments", h.ListPayments).Methods(http.MethodGet)
	r.HandleFunc("/payments/{id}", h.DeletePayment).Methods(http.MethodDelete)
	r.HandleFunc("/patients/{id}/payments", h.ListPatientPayments).Methods(http.MethodGet)
	return r
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreatePayment(t *testing.T) {
	stub := &stubPaymentUsecase{}
	appointmentID := uuid.New()

	rec := serve(newPaymentRouter(stub), http.MethodPost, "/payments",
		`{"appointment_id":"`+appointmentID.String()+`","amount":"400.50","method":"Cash"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, stub.created)
	assert.True(t, decimal.RequireFromString("400.50").Equal(stub.created.Amount))
	assert.Equal(t, appointmentID, *stub.created.AppointmentID)
	assert.True(t, decodeBody(t, rec).Success)
}

func TestCreatePaymentRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"malformed json", `{"amount":`, ""},
		{"zero amount", `{"amount":0,"method":"Cash"}`, "amount"},
		{"negative amount", `{"amount":"-5","method":"Cash"}`, "amount"},
		{"unknown method", `{"amount":10,"method":"Cheque"}`, "method"},
		{"bad date", `{"amount":10,"method":"Card","date":"19/10/2026"}`, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubPaymentUsecase{}
			rec := serve(newPaymentRouter(stub), http.MethodPost, "/payments", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, stub.created, "usecase must not be called")
			if tt.field != "" {
				fields, ok := decodeBody(t, rec).Error.(map[string]interface{})
				require.True(t, ok)
				assert.Contains(t, fields, tt.field)
			}
		})
	}
}

func TestCreatePaymentLedgerFailure(t *testing.T) {
	stub := &stubPaymentUsecase{err: &usecase.PersistenceError{Op: "apply payment to appointment", Err: errors.New("deadlock")}}

	rec := serve(newPaymentRouter(stub), http.MethodPost, "/payments", `{"amount":100,"method":"G-Pay"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, map[string]interface{}{"step": "apply payment to appointment"}, decodeBody(t, rec).Error)
}

func TestListPaymentsFilters(t *testing.T) {
	stub := &stubPaymentUsecase{}
	appointmentID := uuid.New()

	rec := serve(newPaymentRouter(stub), http.MethodGet,
		"/payments?appointment_id="+appointmentID.String()+"&method=Card&from=2026-10-01&to=2026-10-31&page=2&limit=20", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.listReq)
	assert.Equal(t, appointmentID, *stub.listReq.AppointmentID)
	assert.Equal(t, "Card", stub.listReq.Method)
	assert.Equal(t, "2026-10-01", stub.listReq.From)
	assert.Equal(t, 2, stub.listReq.Page)

	meta := decodeBody(t, rec).Meta
	require.NotNil(t, meta)
	assert.Equal(t, int64(41), meta.Total)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
}

func TestListPaymentsRejectsBadQuery(t *testing.T) {
	stub := &stubPaymentUsecase{}

	rec := serve(newPaymentRouter(stub), http.MethodGet, "/payments?patient_id=nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(newPaymentRouter(stub), http.MethodGet, "/payments?method=Cheque", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, stub.listReq)
}

func TestListPatientPayments(t *testing.T) {
	stub := &stubPaymentUsecase{}
	patientID := uuid.New()

	rec := serve(newPaymentRouter(stub), http.MethodGet, "/patients/"+patientID.String()+"/payments", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.listReq)
	assert.Equal(t, patientID, *stub.listReq.PatientID)
}

func TestDeletePayment(t *testing.T) {
	t.Run("removes and returns the payment", func(t *testing.T) {
		stub := &stubPaymentUsecase{}
		id := uuid.New()

		rec := serve(newPaymentRouter(stub), http.MethodDelete, "/payments/"+id.String(), "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, id, stub.deleteID)
	})

	t.Run("unknown id", func(t *testing.T) {
		stub := &stubPaymentUsecase{err: &usecase.NotFoundError{Entity: "payment"}}

		rec := serve(newPaymentRouter(stub), http.MethodDelete, "/payments/"+uuid.NewString(), "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Payment not found", decodeBody(t, rec).Message)
	})

	t.Run("malformed id", func(t *testing.T) {
		stub := &stubPaymentUsecase{}

		rec := serve(newPaymentRouter(stub), http.MethodDelete, "/payments/123", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, uuid.Nil, stub.deleteID)
	})
}
