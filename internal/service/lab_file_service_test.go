package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.input = params
	if params.Body != nil {
		b, _ := io.ReadAll(params.Body)
		m.body = string(b)
	}
	if m.err != nil {
		return nil, m.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestLabFileService_Upload(t *testing.T) {
	client := &mockS3{}
	svc := NewLabFileService(client, "clinic-lab", "", quietLogger())
	patientID := uuid.New()

	url, err := svc.Upload(context.Background(), patientID, "Report.JPG", "", strings.NewReader("image-bytes"))
	require.NoError(t, err)

	key := aws.ToString(client.input.Key)
	assert.True(t, strings.HasPrefix(key, "lab-results/"+patientID.String()+"/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.Equal(t, "clinic-lab", aws.ToString(client.input.Bucket))
	assert.Equal(t, "application/octet-stream", aws.ToString(client.input.ContentType))
	assert.Equal(t, "image-bytes", client.body)
	assert.Equal(t, "https://clinic-lab.s3.amazonaws.com/"+key, url)
}

func TestLabFileService_PublicBaseURL(t *testing.T) {
	client := &mockS3{}
	svc := NewLabFileService(client, "clinic-lab", "http://localhost:9000/clinic-lab/", quietLogger())

	url, err := svc.Upload(context.Background(), uuid.New(), "a.pdf", "application/pdf", strings.NewReader("x"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/clinic-lab/"+aws.ToString(client.input.Key), url)
}

func TestLabFileService_DisabledAndErrors(t *testing.T) {
	disabled := NewLabFileService(nil, "", "", quietLogger())
	assert.False(t, disabled.Enabled())
	_, err := disabled.Upload(context.Background(), uuid.New(), "a.pdf", "", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrFileStorageDisabled)

	failure := errors.New("access denied")
	svc := NewLabFileService(&mockS3{err: failure}, "clinic-lab", "", quietLogger())
	_, err = svc.Upload(context.Background(), uuid.New(), "a.pdf", "", strings.NewReader("x"))
	assert.ErrorIs(t, err, failure)
}
