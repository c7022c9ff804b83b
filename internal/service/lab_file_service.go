package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrFileStorageDisabled is returned when an upload is attempted without a configured bucket
var ErrFileStorageDisabled = errors.New("file storage is not configured")

// S3API is the subset of the S3 client used by LabFileService.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// LabFileService stores lab result attachments in S3 and returns their public URL.
type LabFileService struct {
	s3Client      S3API
	bucket        string
	publicBaseURL string
	log           *logrus.Logger
}

// NewLabFileService creates a LabFileService. If bucket is empty, uploads are rejected.
func NewLabFileService(s3Client S3API, bucket, publicBaseURL string, log *logrus.Logger) *LabFileService {
	return &LabFileService{
		s3Client:      s3Client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		log:           log,
	}
}

// Enabled reports whether uploads are configured.
func (s *LabFileService) Enabled() bool {
	return s != nil && s.bucket != "" && s.s3Client != nil
}

// Upload writes body under lab-results/<patient>/<date>/<random><ext> and returns its URL.
func (s *LabFileService) Upload(ctx context.Context, patientID uuid.UUID, filename, contentType string, body io.Reader) (string, error) {
	if !s.Enabled() {
		return "", ErrFileStorageDisabled
	}

	key := fmt.Sprintf("lab-results/%s/%s/%s%s",
		patientID, time.Now().UTC().Format("2006/01/02"), uuid.NewString(), strings.ToLower(path.Ext(filename)))

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.log.Warnf("Failed to upload lab file %s: %+v", key, err)
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}

	s.log.Infof("Uploaded lab file: key=%s patient=%s", key, patientID)
	return s.objectURL(key), nil
}

func (s *LabFileService) objectURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}
