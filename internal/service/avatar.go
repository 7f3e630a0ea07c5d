package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/identity-server/internal/api/errors"
	"github.com/dtroode/identity-server/internal/logger"
	"github.com/dtroode/identity-server/internal/model"
)

// MaxAvatarSize is the largest accepted avatar, in bytes.
const MaxAvatarSize = 1 << 20

var avatarContentTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

// Avatar stores user avatars in object storage.
type Avatar struct {
	storage model.Storage
	logger  *logger.Logger
}

func NewAvatar(storage model.Storage, logger *logger.Logger) *Avatar {
	return &Avatar{storage: storage, logger: logger}
}

func avatarKey(userID uuid.UUID) string {
	return "avatars/" + userID.String()
}

// Set replaces the user's avatar. Only PNG, JPEG, WebP and GIF images up to
// MaxAvatarSize are accepted.
func (s *Avatar) Set(ctx context.Context, userID uuid.UUID, data []byte) (string, error) {
	if len(data) > MaxAvatarSize {
		return "", apiErrors.New(apiErrors.CodeFileTooLarge)
	}
	contentType := http.DetectContentType(data)
	if len(data) == 0 || !avatarContentTypes[contentType] {
		return "", apiErrors.New(apiErrors.CodeFileInvalid)
	}

	err := s.storage.Upload(ctx, avatarKey(userID), bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		s.logger.Error("Avatar service: failed to upload avatar",
			"user_id", userID,
			"error", err.Error())
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	s.logger.Info("Avatar service: avatar updated",
		"user_id", userID,
		"content_type", contentType,
		"size", len(data))

	return contentType, nil
}

// Get returns the avatar bytes and their content type.
func (s *Avatar) Get(ctx context.Context, userID uuid.UUID) ([]byte, string, error) {
	rc, err := s.storage.Download(ctx, avatarKey(userID))
	if errors.Is(err, model.ErrNotFound) {
		return nil, "", apiErrors.New(apiErrors.CodeResourceNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to download avatar: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxAvatarSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read avatar: %w", err)
	}
	return data, http.DetectContentType(data), nil
}

// Remove deletes the user's avatar if there is one.
func (s *Avatar) Remove(ctx context.Context, userID uuid.UUID) error {
	key := avatarKey(userID)
	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check avatar: %w", err)
	}
	if !exists {
		return nil
	}
	return s.storage.Delete(ctx, key)
}
