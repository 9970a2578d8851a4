package media

import (
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/mmattyV/scentra-backend/pkg/config"
	"github.com/mmattyV/scentra-backend/pkg/enums"
	pkgerrors "github.com/mmattyV/scentra-backend/pkg/errors"
)

type gcsSigner interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
}

// Service issues short-lived signed URLs for direct browser uploads and
// reads. Objects never flow through the API; the bucket is the store of
// record and listings reference objects by key.
type Service interface {
	PresignUpload(userID uuid.UUID, input PresignInput) (*PresignOutput, error)
	ReadURL(key string) (*ReadURLOutput, error)
}

type service struct {
	gcs         gcsSigner
	bucket      string
	uploadTTL   time.Duration
	downloadTTL time.Duration
	maxBytes    int64
}

// NewService constructs a media service backed by the GCS signer.
func NewService(signer gcsSigner, cfg config.GCSConfig) (Service, error) {
	if signer == nil {
		return nil, fmt.Errorf("gcs signer required")
	}
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	if cfg.UploadURLExpiry <= 0 || cfg.DownloadURLExpiry <= 0 {
		return nil, fmt.Errorf("url expiry must be positive")
	}
	maxBytes := int64(cfg.MaxUploadMB) * 1024 * 1024
	if maxBytes <= 0 {
		maxBytes = 25 * 1024 * 1024
	}
	return &service{
		gcs:         signer,
		bucket:      cfg.BucketName,
		uploadTTL:   cfg.UploadURLExpiry,
		downloadTTL: cfg.DownloadURLExpiry,
		maxBytes:    maxBytes,
	}, nil
}

// PresignInput models the payload required to request an upload URL.
type PresignInput struct {
	Kind      enums.MediaKind
	MimeType  string
	FileName  string
	SizeBytes int64
}

// PresignOutput is returned to the client so it can PUT the object itself.
type PresignOutput struct {
	Key          string    `json:"key"`
	SignedPUTURL string    `json:"signed_put_url"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ReadURLOutput wraps a signed GET URL for a stored object.
type ReadURLOutput struct {
	Key          string    `json:"key"`
	SignedGETURL string    `json:"signed_get_url"`
	ExpiresAt    time.Time `json:"expires_at"`
}

var allowedImageMimes = []string{"image/png", "image/jpeg", "image/webp"}

func (s *service) PresignUpload(userID uuid.UUID, input PresignInput) (*PresignOutput, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind")
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}
	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_bytes must be positive")
	}
	if input.SizeBytes > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size_bytes must be at most %d", s.maxBytes))
	}

	mimeType := strings.ToLower(strings.TrimSpace(input.MimeType))
	if !isAllowedMime(mimeType) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime_type not allowed; use png, jpeg, or webp")
	}

	key := buildObjectKey(input.Kind, fileName)
	signedURL, err := s.gcs.SignedURL(s.bucket, key, mimeType, s.uploadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &PresignOutput{
		Key:          key,
		SignedPUTURL: signedURL,
		ContentType:  mimeType,
		ExpiresAt:    time.Now().UTC().Add(s.uploadTTL),
	}, nil
}

func (s *service) ReadURL(key string) (*ReadURLOutput, error) {
	clean := strings.TrimSpace(key)
	if clean == "" || strings.Contains(clean, "..") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid object key")
	}

	signedURL, err := s.gcs.SignedReadURL(s.bucket, clean, s.downloadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign read url")
	}

	return &ReadURLOutput{
		Key:          clean,
		SignedGETURL: signedURL,
		ExpiresAt:    time.Now().UTC().Add(s.downloadTTL),
	}, nil
}

func isAllowedMime(mimeType string) bool {
	for _, candidate := range allowedImageMimes {
		if candidate == mimeType {
			return true
		}
	}
	return false
}

func buildObjectKey(kind enums.MediaKind, fileName string) string {
	id := uuid.New()
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = id.String()
	}
	return fmt.Sprintf("%s-images/%s/%s", kind, id.String(), cleanName)
}

func sanitizeFileName(name string) string {
	clean := path.Base(strings.TrimSpace(name))
	if clean == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
