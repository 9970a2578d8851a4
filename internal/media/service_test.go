package media

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mmattyV/scentra-backend/pkg/config"
	"github.com/mmattyV/scentra-backend/pkg/enums"
	pkgerrors "github.com/mmattyV/scentra-backend/pkg/errors"
)

type stubSigner struct {
	putCalls  int
	getCalls  int
	lastKey   string
	lastMime  string
	signError error
}

func (s *stubSigner) SignedURL(bucket, object, contentType string, expires time.Duration) (string, error) {
	s.putCalls++
	s.lastKey = object
	s.lastMime = contentType
	if s.signError != nil {
		return "", s.signError
	}
	return fmt.Sprintf("https://storage.example.com/%s/%s?sig=put", bucket, object), nil
}

func (s *stubSigner) SignedReadURL(bucket, object string, expires time.Duration) (string, error) {
	s.getCalls++
	s.lastKey = object
	if s.signError != nil {
		return "", s.signError
	}
	return fmt.Sprintf("https://storage.example.com/%s/%s?sig=get", bucket, object), nil
}

func newMediaService(t *testing.T, signer *stubSigner) Service {
	t.Helper()
	svc, err := NewService(signer, config.GCSConfig{
		BucketName:        "scentra-media",
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: time.Hour,
		MaxUploadMB:       25,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestPresignUpload(t *testing.T) {
	signer := &stubSigner{}
	svc := newMediaService(t, signer)

	out, err := svc.PresignUpload(uuid.New(), PresignInput{
		Kind:      enums.MediaKindListing,
		MimeType:  "image/JPEG",
		FileName:  "my bottle photo.jpg",
		SizeBytes: 2 << 20,
	})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.HasPrefix(out.Key, "listing-images/") {
		t.Fatalf("key should be kind-scoped, got %q", out.Key)
	}
	if !strings.HasSuffix(out.Key, "/my-bottle-photo.jpg") {
		t.Fatalf("file name should be sanitized, got %q", out.Key)
	}
	if out.ContentType != "image/jpeg" {
		t.Fatalf("mime should be lowercased, got %q", out.ContentType)
	}
	if signer.lastMime != "image/jpeg" {
		t.Fatalf("signer should receive the normalized mime, got %q", signer.lastMime)
	}
	if out.SignedPUTURL == "" {
		t.Fatal("expected a signed url")
	}
}

func TestPresignUploadValidation(t *testing.T) {
	svc := newMediaService(t, &stubSigner{})
	valid := PresignInput{
		Kind:      enums.MediaKindFragrance,
		MimeType:  "image/png",
		FileName:  "bottle.png",
		SizeBytes: 1024,
	}

	cases := []struct {
		name   string
		userID uuid.UUID
		mutate func(*PresignInput)
	}{
		{"nil user", uuid.Nil, func(in *PresignInput) {}},
		{"bad kind", uuid.New(), func(in *PresignInput) { in.Kind = "avatar" }},
		{"empty file name", uuid.New(), func(in *PresignInput) { in.FileName = "  " }},
		{"zero size", uuid.New(), func(in *PresignInput) { in.SizeBytes = 0 }},
		{"oversized", uuid.New(), func(in *PresignInput) { in.SizeBytes = 26 << 20 }},
		{"pdf", uuid.New(), func(in *PresignInput) { in.MimeType = "application/pdf" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			tc.mutate(&input)
			_, err := svc.PresignUpload(tc.userID, input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestReadURL(t *testing.T) {
	signer := &stubSigner{}
	svc := newMediaService(t, signer)

	out, err := svc.ReadURL("listing-images/abc/bottle.png")
	if err != nil {
		t.Fatalf("read url: %v", err)
	}
	if out.SignedGETURL == "" || signer.getCalls != 1 {
		t.Fatal("expected a signed read url")
	}

	for _, key := range []string{"", "  ", "a/../b"} {
		if _, err := svc.ReadURL(key); err == nil {
			t.Fatalf("key %q should be rejected", key)
		}
	}
}
