package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Jostyn07/Asesoriasth-backend/config"
	"github.com/Jostyn07/Asesoriasth-backend/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// UploadFile is one attachment headed for object storage.
type UploadFile struct {
	Name     string
	MimeType string
	Content  []byte
}

// FileLink pairs an uploaded file with its shareable address, in input
// order so callers can correlate results with what they sent.
type FileLink struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// UploadError reports a batch that stopped partway. Links holds what
// succeeded before the failure so an operator can clean up or resume.
type UploadError struct {
	FailedFile string
	Uploaded   int
	Links      []FileLink
	Err        error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %q failed after %d file(s) succeeded: %v", e.FailedFile, e.Uploaded, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// StorageService stores attachments in the object-storage collaborator.
type StorageService struct {
	client *minio.Client
	bucket string
	config *config.StorageConfig
}

func NewStorageService(cfg *config.StorageConfig) (*StorageService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &StorageService{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *StorageService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// UploadFiles uploads each file in order under the given folder prefix.
// Per file the content upload is followed by the share-link step; if the
// link step fails after the content landed, the file counts as failed and
// the orphaned object is logged, not rolled back. The first failure aborts
// the rest of the batch; links gathered so far ride along on the error.
func (s *StorageService) UploadFiles(ctx context.Context, files []UploadFile, folder string) ([]FileLink, error) {
	links := make([]FileLink, 0, len(files))

	for i, f := range files {
		objectName := s.objectName(folder, f.Name)

		_, err := s.client.PutObject(ctx, s.bucket, objectName,
			bytes.NewReader(f.Content), int64(len(f.Content)),
			minio.PutObjectOptions{ContentType: f.MimeType})
		if err != nil {
			return links, &UploadError{
				FailedFile: f.Name,
				Uploaded:   i,
				Links:      links,
				Err:        fmt.Errorf("failed to upload file: %w", err),
			}
		}

		link, err := s.shareLink(ctx, objectName)
		if err != nil {
			logger.Warn(ctx, "uploaded object orphaned, share link failed",
				"object", objectName,
				"error", err,
			)
			return links, &UploadError{
				FailedFile: f.Name,
				Uploaded:   i,
				Links:      links,
				Err:        fmt.Errorf("failed to create share link: %w", err),
			}
		}

		links = append(links, FileLink{Name: f.Name, Link: link})
	}

	return links, nil
}

// CreateFolder provisions a folder prefix by writing a zero-byte marker
// object, mirroring how the intake flow groups one client's documents.
func (s *StorageService) CreateFolder(ctx context.Context, name string) (string, string, error) {
	folderID := sanitizeObjectName(name)
	if folderID == "" {
		return "", "", fmt.Errorf("invalid folder name %q", name)
	}

	marker := folderID + "/"
	_, err := s.client.PutObject(ctx, s.bucket, marker,
		bytes.NewReader(nil), 0, minio.PutObjectOptions{})
	if err != nil {
		return "", "", fmt.Errorf("failed to create folder: %w", err)
	}

	return folderID, s.publicURL(marker), nil
}

// shareLink generates the shareable read link for an object. Expiry comes
// from config; a failure here counts against the file even though its
// content is already stored.
func (s *StorageService) shareLink(ctx context.Context, objectName string) (string, error) {
	expiry := time.Duration(s.config.ExpireDays) * 24 * time.Hour
	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (s *StorageService) objectName(folder, filename string) string {
	folder = sanitizeObjectName(folder)
	if folder == "" {
		folder = "sin-carpeta"
	}
	return fmt.Sprintf("%s/%d-%s", folder, time.Now().UnixMilli(), filename)
}

func (s *StorageService) publicURL(objectName string) string {
	protocol := "http"
	if s.config.UseSSL {
		protocol = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", protocol, s.config.Endpoint, s.bucket, objectName)
}

// sanitizeObjectName keeps folder names to a safe object-key subset.
func sanitizeObjectName(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-.")
}
