package client

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	appConfig "hoainiem-portal/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Image kinds accepted by the uploader
const (
	ImageKindNews    = "news"
	ImageKindProfile = "profiles"
)

// ImageUploader stores post cover and profile images and returns their public URL
type ImageUploader interface {
	GenerateFileKey(kind, owner, fileExt string) (string, error)
	Upload(ctx context.Context, kind, owner string, file *Upload) (string, error)
	DeleteFile(ctx context.Context, key string) error
	GetFileURL(key string) string
}

// S3ImageUploader implements ImageUploader on an S3 compatible bucket
type S3ImageUploader struct {
	client    *s3.Client
	bucket    string
	region    string
	endpoint  string
	publicURL string
}

// NewS3ImageUploader creates a new uploader
func NewS3ImageUploader(cfg *appConfig.S3Config) (*S3ImageUploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	var awsCfg aws.Config
	var err error

	if cfg.Endpoint != "" {
		// MinIO and other S3 compatible stores need explicit credentials
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, fmt.Errorf("access key and secret key are required for a custom endpoint")
		}
		awsCfg, err = config.LoadDefaultConfig(context.TODO(),
			config.WithRegion(cfg.Region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)),
		)
	} else {
		awsCfg, err = config.LoadDefaultConfig(context.TODO(),
			config.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3ImageUploader{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		endpoint:  cfg.Endpoint,
		publicURL: cfg.PublicURL,
	}, nil
}

// GenerateFileKey generates a unique object key
// Format: portal/{kind}/{owner}/{year}/{month}/{uuid}_{timestamp}.ext
func (u *S3ImageUploader) GenerateFileKey(kind, owner, fileExt string) (string, error) {
	return generateImageKey(time.Now(), kind, owner, fileExt)
}

// Upload stores file under a fresh key and returns its public URL
func (u *S3ImageUploader) Upload(ctx context.Context, kind, owner string, file *Upload) (string, error) {
	if file == nil || file.Body == nil {
		return "", fmt.Errorf("no file to upload")
	}
	key, err := u.GenerateFileKey(kind, owner, filepath.Ext(file.FileName))
	if err != nil {
		return "", err
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        file.Body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return u.GetFileURL(key), nil
}

// DeleteFile deletes an object
func (u *S3ImageUploader) DeleteFile(ctx context.Context, key string) error {
	_, err := u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// GetFileURL returns the public URL of key. PublicURL, when configured, takes
// precedence over the endpoint and the AWS virtual host URL.
func (u *S3ImageUploader) GetFileURL(key string) string {
	return imageURL(u.publicURL, u.endpoint, u.bucket, u.region, key)
}

func generateImageKey(now time.Time, kind, owner, fileExt string) (string, error) {
	switch kind {
	case ImageKindNews, ImageKindProfile:
	default:
		return "", fmt.Errorf("invalid image kind: %q (must be %q or %q)", kind, ImageKindNews, ImageKindProfile)
	}
	if owner == "" {
		owner = "anonymous"
	}
	return fmt.Sprintf("portal/%s/%s/%s/%s/%s_%d%s",
		kind, owner, now.Format("2006"), now.Format("01"), uuid.New().String(), now.Unix(), strings.ToLower(fileExt)), nil
}

func imageURL(publicURL, endpoint, bucket, region, key string) string {
	if publicURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(publicURL, "/"), key)
	}
	if endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(endpoint, "/"), bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}

var _ ImageUploader = (*S3ImageUploader)(nil)
