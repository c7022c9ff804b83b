package usecase

import (
	"context"
	"testing"
	"time"

	"clinic-management/internal/delivery/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientDelete_BlockedWhileAppointmentsExist(t *testing.T) {
	db, mock := newMockDB(t)
	patient := newTestPatient("Nisha")
	appointment := newTestAppointment(patient, 300)
	patients := newFakePatientRepo(patient)

	uc := NewPatientUsecase(db, newTestLogger(), patients, newFakeAppointmentRepo(appointment))

	mock.ExpectBegin()
	mock.ExpectRollback()
	err := uc.Delete(context.Background(), patient.ID)

	assert.ErrorIs(t, err, ErrPatientHasAppointments)
	assert.NotNil(t, patients.get(patient.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientDelete(t *testing.T) {
	db, mock := newMockDB(t)
	patient := newTestPatient("Nisha")
	patients := newFakePatientRepo(patient)

	uc := NewPatientUsecase(db, newTestLogger(), patients, newFakeAppointmentRepo())

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, uc.Delete(context.Background(), patient.ID))
	assert.Nil(t, patients.get(patient.ID))

	mock.ExpectBegin()
	mock.ExpectRollback()
	assert.ErrorIs(t, uc.Delete(context.Background(), uuid.New()), ErrPatientNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPatientCreate_RejectsUnknownGender(t *testing.T) {
	db, _ := newMockDB(t)
	uc := NewPatientUsecase(db, newTestLogger(), newFakePatientRepo(), newFakeAppointmentRepo())

	_, err := uc.Create(context.Background(), &dto.CreatePatientRequest{Name: "A", Age: 20, Gender: "X", PhoneNumber: "9000000000"})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestPatientSetWaiting(t *testing.T) {
	db, mock := newMockDB(t)
	patient := newTestPatient("Nisha")
	patients := newFakePatientRepo(patient)

	uc := NewPatientUsecase(db, newTestLogger(), patients, newFakeAppointmentRepo()).(*patientUsecase)
	fixed := time.Date(2026, 10, 17, 8, 15, 0, 0, time.UTC)
	uc.now = func() time.Time { return fixed }

	mock.ExpectBegin()
	mock.ExpectCommit()
	res, err := uc.SetWaiting(context.Background(), patient.ID, &dto.SetWaitingRequest{IsWaiting: true, Reason: "Walk-in"})
	require.NoError(t, err)
	assert.True(t, res.WaitingStatus.IsWaiting)

	waiting, err := uc.ListWaiting(context.Background())
	require.NoError(t, err)
	require.Len(t, waiting, 1)
	assert.Equal(t, patient.ID, waiting[0].ID)

	mock.ExpectBegin()
	mock.ExpectCommit()
	res, err = uc.SetWaiting(context.Background(), patient.ID, &dto.SetWaitingRequest{IsWaiting: false})
	require.NoError(t, err)
	assert.False(t, res.WaitingStatus.IsWaiting)
	assert.NoError(t, mock.ExpectationsWereMet())
}
