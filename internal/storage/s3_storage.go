package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	aws_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/vibhu2208/Aadhar-Homes/internal/config"
)

// UploadTicket is a one-shot authorization for a client to PUT an object
// directly to the media bucket.
type UploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	PublicURL string `json:"publicUrl"`
}

// IMediaStorage defines the interface for media bucket operations.
type IMediaStorage interface {
	PresignUpload(ctx context.Context, folder, filename, contentType string) (*UploadTicket, error)
	PutObject(ctx context.Context, key, contentType string, body []byte) error
	PublicURL(key string) string
}

// mediaStorage implements IMediaStorage against S3.
type mediaStorage struct {
	cfg           *config.Config
	s3Client      *s3.Client
	presignClient *s3.PresignClient
}

// NewMediaStorage creates a new S3-backed media storage service.
func NewMediaStorage(cfg *config.Config) (IMediaStorage, error) {
	awsCfg, err := aws_config.LoadDefaultConfig(context.TODO(),
		aws_config.WithRegion(cfg.AwsRegion),
		aws_config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AwsAccessKeyID,
			cfg.AwsSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg)
	return &mediaStorage{
		cfg:           cfg,
		s3Client:      s3Client,
		presignClient: s3.NewPresignClient(s3Client),
	}, nil
}

// sanitizeFilename keeps the base name only and replaces anything that is
// not a safe key character.
func sanitizeFilename(filename string) string {
	base := path.Base(filename)
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// PresignUpload creates a pre-signed PUT URL for a client-side upload. The
// object key is namespaced by folder and a fresh UUID so uploads never
// collide or overwrite.
func (s *mediaStorage) PresignUpload(ctx context.Context, folder, filename, contentType string) (*UploadTicket, error) {
	key := fmt.Sprintf("%s/%s_%s", folder, uuid.NewString(), sanitizeFilename(filename))

	presignedReq, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.cfg.PresignTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned PUT URL for key %s: %w", key, err)
	}

	return &UploadTicket{
		UploadURL: presignedReq.URL,
		Key:       key,
		PublicURL: s.PublicURL(key),
	}, nil
}

// PutObject uploads an object server-side, used by background workers.
func (s *mediaStorage) PutObject(ctx context.Context, key, contentType string, body []byte) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AwsS3Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the address clients use to fetch an object, preferring
// the CDN when one is configured.
func (s *mediaStorage) PublicURL(key string) string {
	if s.cfg.CdnBaseURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.CdnBaseURL, "/"), key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.AwsS3Bucket, s.cfg.AwsRegion, key)
}
