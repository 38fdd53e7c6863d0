package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/prog-Noon/rakaizfoundation/config"
	"github.com/prog-Noon/rakaizfoundation/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Media kinds, used as the first segment of storage keys
const (
	MediaKindService = "services"
	MediaKindNews    = "news"
	MediaKindTeam    = "team"
	MediaKindSite    = "site"
)

// MediaRoutePrefix is the path media is served under when the provider has no public URL
const MediaRoutePrefix = "/media/"

// IsValidMediaKind checks if a media kind is known
func IsValidMediaKind(kind string) bool {
	switch kind {
	case MediaKindService, MediaKindNews, MediaKindTeam, MediaKindSite:
		return true
	}
	return false
}

// StorageProvider stores uploaded images for catalog entries and site settings
type StorageProvider interface {
	Upload(ctx context.Context, file *multipart.FileHeader, key string) (*StorageResult, error)
	UploadReader(ctx context.Context, reader io.Reader, key string, contentType string, size int64) (*StorageResult, error)
	Delete(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error) // Returns reader, content-type, error
	GetPublicURL(key string) string
	IsConfigured() bool
}

// StorageResult contains information about the stored file
type StorageResult struct {
	Key              string `json:"key"`
	FileOriginalName string `json:"original_name,omitempty"`
	FileSize         int64  `json:"size"`
	MimeType         string `json:"mime_type"`
	URL              string `json:"url"`
}

// Storage is the global storage instance
var Storage StorageProvider

// InitializeStorage picks R2 when it is fully configured and reachable, local disk otherwise
func InitializeStorage(cfg *config.Config) {
	if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" {
		Storage = NewLocalStorage(cfg.UploadDir)
		logging.Log.Info("Storage ready (local filesystem)", zap.String("path", cfg.UploadDir))
		return
	}

	r2, err := NewR2Storage(cfg)
	if err != nil {
		logging.Log.Warn("Failed to initialize R2 storage, falling back to local storage", zap.Error(err))
		Storage = NewLocalStorage(cfg.UploadDir)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := r2.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.R2BucketName)}); err != nil {
		logging.Log.Warn("R2 bucket check failed, falling back to local storage", zap.Error(err))
		Storage = NewLocalStorage(cfg.UploadDir)
		return
	}

	Storage = r2
	logging.Log.Info("Storage ready (Cloudflare R2)", zap.String("bucket", cfg.R2BucketName))
}

// MediaURL returns the URL a stored key is reachable at, or "" for an empty key
func MediaURL(key string) string {
	if key == "" {
		return ""
	}
	if Storage != nil {
		if u := Storage.GetPublicURL(key); u != "" {
			return u
		}
	}
	return MediaRoutePrefix + key
}

// R2Storage implements StorageProvider for Cloudflare R2 through the S3 API
type R2Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewR2Storage creates a new R2 storage provider
func NewR2Storage(cfg *config.Config) (*R2Storage, error) {
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	creds := credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(creds),
		awsconfig.WithRegion("auto"), // R2 uses "auto" region
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Storage{
		client:    client,
		bucket:    cfg.R2BucketName,
		publicURL: cfg.R2PublicURL,
	}, nil
}

// IsConfigured returns true if R2 is properly configured
func (r *R2Storage) IsConfigured() bool {
	return r.client != nil && r.bucket != ""
}

// Upload uploads a multipart file to R2
func (r *R2Storage) Upload(ctx context.Context, file *multipart.FileHeader, key string) (*StorageResult, error) {
	return uploadFileHeader(ctx, r, file, key)
}

// UploadReader uploads content from a reader to R2
func (r *R2Storage) UploadReader(ctx context.Context, reader io.Reader, key string, contentType string, size int64) (*StorageResult, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          reader,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to R2: %w", err)
	}

	url := r.GetPublicURL(key)
	if url == "" {
		url = MediaRoutePrefix + key
	}
	return &StorageResult{Key: key, FileSize: size, MimeType: contentType, URL: url}, nil
}

// Delete removes an object from R2
func (r *R2Storage) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from R2: %w", err)
	}
	return nil
}

// Get streams an object from R2
func (r *R2Storage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	result, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get object from R2: %w", err)
	}

	contentType := "application/octet-stream"
	if result.ContentType != nil {
		contentType = *result.ContentType
	}
	return result.Body, contentType, nil
}

// GetPublicURL returns the public bucket URL for a key, or "" when the bucket is private
func (r *R2Storage) GetPublicURL(key string) string {
	if r.publicURL == "" {
		return ""
	}
	return strings.TrimSuffix(r.publicURL, "/") + "/" + key
}

// LocalStorage implements StorageProvider on the local filesystem
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates a new local storage provider
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir}
}

// IsConfigured returns true (local storage is always available)
func (l *LocalStorage) IsConfigured() bool {
	return true
}

// resolve maps a key to a path inside baseDir, rejecting keys that escape it
func (l *LocalStorage) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(l.baseDir, filepath.FromSlash(clean)), nil
}

// Upload saves a multipart file to disk
func (l *LocalStorage) Upload(ctx context.Context, file *multipart.FileHeader, key string) (*StorageResult, error) {
	return uploadFileHeader(ctx, l, file, key)
}

// UploadReader saves content from a reader to disk
func (l *LocalStorage) UploadReader(ctx context.Context, reader io.Reader, key string, contentType string, size int64) (*StorageResult, error) {
	fullPath, err := l.resolve(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, reader)
	if err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &StorageResult{Key: key, FileSize: written, MimeType: contentType, URL: MediaRoutePrefix + key}, nil
}

// Delete removes a file; a missing file is not an error
func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Get opens a stored file, deriving the content type from its extension
func (l *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	fullPath, err := l.resolve(key)
	if err != nil {
		return nil, "", err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}

	contentType, ok := imageContentTypes[strings.ToLower(filepath.Ext(key))]
	if !ok {
		contentType = "application/octet-stream"
	}
	return file, contentType, nil
}

// GetPublicURL returns "" so media is served through MediaRoutePrefix
func (l *LocalStorage) GetPublicURL(key string) string {
	return ""
}

func uploadFileHeader(ctx context.Context, p StorageProvider, file *multipart.FileHeader, key string) (*StorageResult, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := p.UploadReader(ctx, src, key, contentType, file.Size)
	if err != nil {
		return nil, err
	}
	result.FileOriginalName = file.Filename
	return result, nil
}

// ReleaseMedia removes a stored image that a record no longer references.
// Keys outside the known media kinds are left alone. Failures are only logged.
func ReleaseMedia(oldKey, newKey string) {
	if Storage == nil || oldKey == "" || oldKey == newKey {
		return
	}
	kind, _, found := strings.Cut(oldKey, "/")
	if !found || !IsValidMediaKind(kind) {
		return
	}
	if err := Storage.Delete(context.Background(), oldKey); err != nil {
		logging.Log.Warn("Failed to delete released media", zap.String("key", oldKey), zap.Error(err))
	}
}

// GenerateMediaKey creates a unique key for an uploaded image of the given kind
func GenerateMediaKey(kind, originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	return fmt.Sprintf("%s/%s/%s%s", kind, time.Now().Format("2006/01"), uuid.New().String(), ext)
}
