package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrPhotoStorageDisabled = errors.New("photo storage is not configured")

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// PhotoUploader stores a meal photo and returns its public URL.
type PhotoUploader interface {
	Upload(ctx context.Context, userID, contentType string, body io.Reader) (string, error)
}

type PhotoStoreConfig struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicURL       string
}

// PhotoStore uploads to Cloudflare R2 through the S3 API.
type PhotoStore struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewPhotoStore(ctx context.Context, cfg PhotoStoreConfig) (*PhotoStore, error) {
	if cfg.AccountID == "" || cfg.Bucket == "" {
		return nil, ErrPhotoStorageDisabled
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID))
	})

	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.r2.dev", cfg.Bucket)
	}
	return &PhotoStore{client: client, bucket: cfg.Bucket, publicURL: publicURL}, nil
}

func (p *PhotoStore) Upload(ctx context.Context, userID, contentType string, body io.Reader) (string, error) {
	key, err := PhotoKey(userID, contentType)
	if err != nil {
		return "", err
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	return p.publicURL + "/" + key, nil
}

// PhotoKey builds meals/<user>/<uuid><ext> for an allowed image type.
func PhotoKey(userID, contentType string) (string, error) {
	ext, ok := allowedPhotoTypes[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("%w: unsupported image type %q", ErrInvalidInput, contentType)
	}
	return path.Join("meals", userID, uuid.New().String()+ext), nil
}
