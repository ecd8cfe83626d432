package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mcdonanzan-spec/controle-ambiental/internal/ports"
)

const defaultMaxPhotoBytes = 10 << 20

type Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	UsePathStyle  bool
	MaxPhotoBytes int64
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3PhotoStorage uploads inspection photos to a public-read bucket and
// returns the URL the report should reference.
type S3PhotoStorage struct {
	client objectPutter
	cfg    Config
}

func NewS3PhotoStorage(ctx context.Context, cfg Config) (*S3PhotoStorage, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("s3 bucket is required")
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(cfg.Endpoint))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3PhotoStorage(client, cfg), nil
}

func newS3PhotoStorage(client objectPutter, cfg Config) *S3PhotoStorage {
	if cfg.MaxPhotoBytes <= 0 {
		cfg.MaxPhotoBytes = defaultMaxPhotoBytes
	}
	return &S3PhotoStorage{client: client, cfg: cfg}
}

func (s *S3PhotoStorage) Upload(ctx context.Context, upload ports.PhotoUpload) (string, error) {
	if upload.Body == nil {
		return "", errors.New("empty photo body")
	}
	content, err := io.ReadAll(io.LimitReader(upload.Body, s.cfg.MaxPhotoBytes+1))
	if err != nil {
		return "", fmt.Errorf("read photo: %w", err)
	}
	if int64(len(content)) > s.cfg.MaxPhotoBytes {
		return "", fmt.Errorf("photo exceeds %d bytes", s.cfg.MaxPhotoBytes)
	}
	if len(content) == 0 {
		return "", errors.New("empty photo body")
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := ObjectKey(upload)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(content),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(content))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.publicURL(key), nil
}

// ObjectKey lays photos out as reports/{report}/{item}/{photo}{ext}.
func ObjectKey(upload ports.PhotoUpload) string {
	ext := strings.ToLower(path.Ext(upload.FileName))
	if len(ext) > 8 {
		ext = ""
	}
	return path.Join("reports", upload.ReportID, upload.ItemID, upload.PhotoID+ext)
}

func (s *S3PhotoStorage) publicURL(key string) string {
	switch {
	case s.cfg.PublicBaseURL != "":
		return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/" + key
	case s.cfg.Endpoint != "":
		return strings.TrimRight(s.cfg.Endpoint, "/") + "/" + s.cfg.Bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
	}
}
