package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/menuvercel/mitienda-host/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrPhotoStoreDisabled is returned by Put when no bucket is configured.
var ErrPhotoStoreDisabled = errors.New("almacenamiento de fotos no configurado")

// S3PhotoStore uploads product photos to an S3 bucket through a circuit breaker
// and returns their public URL.
type S3PhotoStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
	cb      *CircuitBreaker
}

// NewS3PhotoStore builds the store from config using the default AWS credential
// chain. An empty S3_BUCKET yields a disabled store rather than an error.
func NewS3PhotoStore(ctx context.Context, cfg *config.Config, cb *CircuitBreaker) (*S3PhotoStore, error) {
	if cfg.S3Bucket == "" {
		return &S3PhotoStore{cb: cb}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
	if err != nil {
		return nil, fmt.Errorf("s3: load AWS config: %w", err)
	}

	baseURL := cfg.S3PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
	}
	return &S3PhotoStore{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.S3Bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		cb:      cb,
	}, nil
}

func (s *S3PhotoStore) Enabled() bool { return s != nil && s.client != nil && s.bucket != "" }

// Put stores body under key and returns the object's public URL.
func (s *S3PhotoStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if !s.Enabled() {
		return "", ErrPhotoStoreDisabled
	}
	err := s.cb.Execute(ctx, func(ctx context.Context) error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        body,
			ContentType: aws.String(contentType),
		})
		return err
	})
	if err != nil {
		return "", fmt.Errorf("s3: put %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}
