package handler

import (
	"errors"
	"net/http"
	"strconv"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/usecase"
	"clinic-management/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// writeError maps usecase errors to HTTP responses. fallback is the message
// used for unexpected failures.
func writeError(w http.ResponseWriter, err error, fallback string) {
	var validationErr *usecase.ValidationError
	var notFoundErr *usecase.NotFoundError
	var persistenceErr *usecase.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		response.ValidationError(w, validationErr.Fields)
	case errors.As(err, &notFoundErr):
		response.Fail(w, http.StatusNotFound, capitalize(notFoundErr.Error()))
	case errors.Is(err, usecase.ErrEmailAlreadyExists),
		errors.Is(err, usecase.ErrPatientHasAppointments),
		errors.Is(err, usecase.ErrSerialNumberExhausted):
		response.Fail(w, http.StatusConflict, capitalize(err.Error()))
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrInvalidToken),
		errors.Is(err, usecase.ErrTokenRevoked):
		response.Fail(w, http.StatusUnauthorized, capitalize(err.Error()))
	case errors.Is(err, usecase.ErrUserInactive):
		response.Fail(w, http.StatusForbidden, "User account is inactive")
	case errors.Is(err, usecase.ErrRoleNotFound):
		response.Fail(w, http.StatusBadRequest, "Role not found")
	case errors.As(err, &persistenceErr):
		// The failed step lets staff reconcile by hand if needed.
		response.StepFailure(w, fallback, persistenceErr.Op)
	default:
		response.Fail(w, http.StatusInternalServerError, fallback)
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	return id, err == nil
}

// queryUUID reads an optional uuid query parameter. ok is false only when
// the parameter is present and malformed.
func queryUUID(r *http.Request, name string) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

func pageRequest(r *http.Request) dto.PageRequest {
	return dto.PageRequest{
		Page:  queryInt(r, "page"),
		Limit: queryInt(r, "limit"),
	}.Normalize()
}

func dateRangeRequest(r *http.Request) dto.DateRangeRequest {
	q := r.URL.Query()
	return dto.DateRangeRequest{
		From: q.Get("from"),
		To:   q.Get("to"),
	}
}
