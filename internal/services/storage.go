package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"alfredoptarigan/candidate-scorer/internal/config"
	"alfredoptarigan/candidate-scorer/internal/models"
)

var ErrDocumentNotFound = errors.New("document not found")

// StorageService keeps uploaded resumes so queued evaluations can be replayed.
type StorageService interface {
	SaveFile(ctx context.Context, filename string, content []byte) (string, error)
	LoadFile(ctx context.Context, key string) ([]byte, error)
	DeleteFile(ctx context.Context, key string) error
}

// NewStorageService picks the backend named in cfg.Backend.
func NewStorageService(ctx context.Context, cfg config.StorageConfig) (StorageService, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStorageService(cfg.UploadPath)
	case "s3":
		return NewS3StorageService(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// storageKey names an object by a fresh uuid, keeping the validated extension.
func storageKey(filename string) (string, error) {
	docType, err := models.ParseDocumentType(filename)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedDocument, err)
	}
	return fmt.Sprintf("resume_%s.%s", uuid.New().String(), docType), nil
}

type localStorageService struct {
	uploadPath string
}

func NewLocalStorageService(uploadPath string) (StorageService, error) {
	s := &localStorageService{uploadPath: uploadPath}
	if err := s.ensureUploadDir(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *localStorageService) ensureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// SaveFile implements StorageService.
func (s *localStorageService) SaveFile(ctx context.Context, filename string, content []byte) (string, error) {
	key, err := storageKey(filename)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(s.path(key), content, 0644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return key, nil
}

// LoadFile implements StorageService.
func (s *localStorageService) LoadFile(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// DeleteFile implements StorageService.
func (s *localStorageService) DeleteFile(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// path drops any directory part so keys cannot escape the upload dir.
func (s *localStorageService) path(key string) string {
	return filepath.Join(s.uploadPath, filepath.Base(key))
}

type s3StorageService struct {
	client *s3.Client
	bucket string
}

// NewS3StorageService works against AWS or any S3-compatible endpoint such as R2 or MinIO.
func NewS3StorageService(ctx context.Context, cfg config.S3Config) (StorageService, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 storage requires a bucket")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3StorageService{client: client, bucket: cfg.Bucket}, nil
}

// SaveFile implements StorageService.
func (s *s3StorageService) SaveFile(ctx context.Context, filename string, content []byte) (string, error) {
	key, err := storageKey(filename)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put object: %w", err)
	}

	return key, nil
}

// LoadFile implements StorageService.
func (s *s3StorageService) LoadFile(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, out.Body); err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return buf.Bytes(), nil
}

// DeleteFile implements StorageService.
func (s *s3StorageService) DeleteFile(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
