package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

var ErrValidation = errors.New("validation error")

const (
	signedURLTTL = 5 * time.Minute
	maxPhotoSize = 10 << 20
)

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// Service stores profile photos in object storage. Profiles keep only the
// object keys; every read path signs them into short-lived URLs.
type Service struct {
	storage ObjectStorage
	now     func() time.Time
}

type Photo struct {
	Key string
	URL string
}

func NewService(storage ObjectStorage) *Service {
	return &Service{
		storage: storage,
		now:     time.Now,
	}
}

func (s *Service) UploadPhoto(ctx context.Context, userID int64, fileName, contentType string, body io.Reader, size int64) (Photo, error) {
	if userID <= 0 || body == nil || size <= 0 || size > maxPhotoSize {
		return Photo{}, ErrValidation
	}
	if s.storage == nil {
		return Photo{}, fmt.Errorf("media storage is not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Photo{}, fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey, err := s.buildPhotoObjectKey(userID, fileName)
	if err != nil {
		return Photo{}, fmt.Errorf("build object key: %w", err)
	}

	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}

	if err := s.storage.PutObject(ctx, objectKey, body, size, contentType); err != nil {
		return Photo{}, fmt.Errorf("put object: %w", err)
	}

	url, err := s.storage.PresignGet(ctx, objectKey, signedURLTTL)
	if err != nil {
		return Photo{}, fmt.Errorf("presign photo url: %w", err)
	}

	return Photo{Key: objectKey, URL: url}, nil
}

func (s *Service) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("media storage is not configured")
	}
	return s.storage.PresignGet(ctx, key, ttl)
}

// DeletePhoto removes an uploaded object. The key must live under the
// owner's prefix so one user cannot delete another user's photos.
func (s *Service) DeletePhoto(ctx context.Context, userID int64, key string) error {
	if userID <= 0 || key == "" {
		return ErrValidation
	}
	if !strings.HasPrefix(key, fmt.Sprintf("users/%d/photos/", userID)) {
		return ErrValidation
	}
	if s.storage == nil {
		return nil
	}
	return s.storage.Delete(ctx, key)
}

func (s *Service) buildPhotoObjectKey(userID int64, fileName string) (string, error) {
	rnd := make([]byte, 8)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}

	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = ".bin"
	}

	stamp := s.now().UTC().Format("20060102T150405")
	return fmt.Sprintf("users/%d/photos/%s_%s%s", userID, stamp, hex.EncodeToString(rnd), ext), nil
}
