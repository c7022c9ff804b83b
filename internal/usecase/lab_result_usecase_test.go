package usecase

import (
	"context"
	"strings"
	"testing"

	"clinic-management/internal/delivery/dto"
	"clinic-management/internal/service"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingS3 struct {
	keys []string
}

func (r *recordingS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	r.keys = append(r.keys, aws.ToString(params.Key))
	return &s3.PutObjectOutput{}, nil
}

func TestLabResultCreate_UploadsAndMirrorsOntoAppointment(t *testing.T) {
	db, mock := newMockDB(t)
	log := newTestLogger()
	patient := newTestPatient("Leela")
	appointment := newTestAppointment(patient, 700)
	appointments := newFakeAppointmentRepo(appointment)
	store := &recordingS3{}

	uc := NewLabResultUsecase(db, log, newFakeLabResultRepo(), newFakePatientRepo(patient), appointments,
		service.NewLabFileService(store, "clinic-files", "https://files.example.test", log), newTestLocker(t))

	mock.ExpectBegin()
	mock.ExpectCommit()
	res, err := uc.Create(context.Background(), &dto.CreateLabResultRequest{
		PatientID:     patient.ID,
		AppointmentID: &appointment.ID,
		Type:          "Blood Test",
		Details:       "CBC within range",
		File:          &dto.FileUpload{Filename: "cbc.PDF", ContentType: "application/pdf", Body: strings.NewReader("%PDF")},
	})
	require.NoError(t, err)

	require.Len(t, store.keys, 1)
	assert.True(t, strings.HasSuffix(store.keys[0], ".pdf"))
	assert.Equal(t, "https://files.example.test/"+store.keys[0], res.FileURL)

	stored := appointments.get(appointment.ID)
	require.Len(t, stored.LabResults, 1)
	assert.Equal(t, res.ID, stored.LabResults[0].LabResultID)
	assert.True(t, stored.Balance.Equal(amount(700)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabResultCreate_FileWithoutStorage(t *testing.T) {
	db, mock := newMockDB(t)
	log := newTestLogger()
	patient := newTestPatient("Leela")

	uc := NewLabResultUsecase(db, log, newFakeLabResultRepo(), newFakePatientRepo(patient), newFakeAppointmentRepo(),
		service.NewLabFileService(nil, "", "", log), newTestLocker(t))

	_, err := uc.Create(context.Background(), &dto.CreateLabResultRequest{
		PatientID: patient.ID,
		Type:      "X-Ray",
		Details:   "Chest PA view",
		File:      &dto.FileUpload{Filename: "xray.png", Body: strings.NewReader("png")},
	})

	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLabResultCreate_UnlinkedAndListed(t *testing.T) {
	db, mock := newMockDB(t)
	log := newTestLogger()
	patient := newTestPatient("Leela")

	uc := NewLabResultUsecase(db, log, newFakeLabResultRepo(), newFakePatientRepo(patient), newFakeAppointmentRepo(),
		service.NewLabFileService(nil, "", "", log), newTestLocker(t))

	mock.ExpectBegin()
	mock.ExpectCommit()
	res, err := uc.Create(context.Background(), &dto.CreateLabResultRequest{
		PatientID: patient.ID,
		Type:      "Scan",
		Details:   "Ultrasound abdomen normal",
		Date:      "2026-10-10",
	})
	require.NoError(t, err)
	assert.Nil(t, res.AppointmentID)
	assert.Empty(t, res.FileURL)

	list, err := uc.List(context.Background(), &dto.LabResultListRequest{PatientID: &patient.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = uc.Update(context.Background(), res.ID, &dto.UpdateLabResultRequest{Type: ptr("MRI")})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, uc.Delete(context.Background(), res.ID))
	assert.ErrorIs(t, uc.Delete(context.Background(), res.ID), ErrLabResultNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
