// Package storage provides object storage for candidate documents.
package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	recruitingapp "github.com/hireflow/backend/internal/application/recruiting"
	"github.com/hireflow/backend/internal/infrastructure/config"
)

var _ recruitingapp.ObjectStorage = (*S3ObjectStorage)(nil)

const defaultPresignExpiry = 15 * time.Minute

// S3ObjectStorage talks to AWS S3 or any S3-compatible server (MinIO, RustFS)
type S3ObjectStorage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	expiry        time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// Option configures S3ObjectStorage
type Option func(*S3ObjectStorage)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *S3ObjectStorage) {
		s.logger = logger
	}
}

// NewS3ObjectStorage creates the S3 client from storage configuration.
// An empty endpoint uses regular AWS endpoint resolution.
func NewS3ObjectStorage(ctx context.Context, cfg config.StorageConfig, opts ...Option) (*S3ObjectStorage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
		return nil, errors.New("storage access key id and secret access key must be set together")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint != "" && !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		// Content-MD5 is the integrity check; no extra CRC32 trailers for S3-compatible servers
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	s := &S3ObjectStorage{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		expiry:        cfg.PresignExpiry,
		logger:        zap.NewNop(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.expiry <= 0 {
		s.expiry = defaultPresignExpiry
	}
	return s, nil
}

// Bucket returns the bucket name
func (s *S3ObjectStorage) Bucket() string {
	return s.bucket
}

// EnsureBucket creates the bucket when it does not exist yet
func (s *S3ObjectStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}

	s.logger.Info("Creating storage bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// PresignUpload signs a PUT. Content-Type, Content-MD5 and Content-Length are
// part of the signature, so the client must send exactly the declared file.
func (s *S3ObjectStorage) PresignUpload(ctx context.Context, key, contentType, contentMD5 string, size int64, expiresIn time.Duration) (*recruitingapp.PresignedRequest, error) {
	if key == "" {
		return nil, errors.New("storage key is required")
	}
	expiresIn = s.expiryOr(expiresIn)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		ContentMD5:  aws.String(contentMD5),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	req, err := s.presignClient.PresignPutObject(ctx, input, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}
	return &recruitingapp.PresignedRequest{
		URL:       req.URL,
		Method:    req.Method,
		Headers:   clientHeaders(req.SignedHeader),
		ExpiresAt: s.now().Add(expiresIn),
	}, nil
}

// PresignDownload signs a GET that downloads the object as fileName
func (s *S3ObjectStorage) PresignDownload(ctx context.Context, key, fileName string, expiresIn time.Duration) (*recruitingapp.PresignedRequest, error) {
	if key == "" {
		return nil, errors.New("storage key is required")
	}
	expiresIn = s.expiryOr(expiresIn)

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if fileName != "" {
		input.ResponseContentDisposition = aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))
	}
	req, err := s.presignClient.PresignGetObject(ctx, input, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return nil, fmt.Errorf("failed to presign download: %w", err)
	}
	return &recruitingapp.PresignedRequest{
		URL:       req.URL,
		Method:    req.Method,
		Headers:   map[string]string{},
		ExpiresAt: s.now().Add(expiresIn),
	}, nil
}

// StatObject returns size, ETag and content type of an object
func (s *S3ObjectStorage) StatObject(ctx context.Context, key string) (*recruitingapp.ObjectInfo, error) {
	if key == "" {
		return nil, errors.New("storage key is required")
	}
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, recruitingapp.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to stat object: %w", err)
	}
	return &recruitingapp.ObjectInfo{
		Size:        aws.ToInt64(out.ContentLength),
		ETag:        strings.Trim(aws.ToString(out.ETag), `"`),
		ContentType: aws.ToString(out.ContentType),
	}, nil
}

// DeleteObject removes an object. Deleting a missing key succeeds.
func (s *S3ObjectStorage) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *S3ObjectStorage) expiryOr(d time.Duration) time.Duration {
	if d <= 0 {
		return s.expiry
	}
	return d
}

// clientHeaders flattens the signed headers the client has to repeat.
// Host is set by the HTTP client itself.
func clientHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if strings.EqualFold(name, "Host") || len(values) == 0 {
			continue
		}
		out[http.CanonicalHeaderKey(name)] = values[0]
	}
	return out
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
		return true
	}
	// S3-compatible servers do not always map HEAD 404s to typed errors
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	return false
}
