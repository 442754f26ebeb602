package service

import (
	"strings"

	"anoa.com/kirimpesan/internal/model"
	"anoa.com/kirimpesan/pkg/apperror"
)

const (
	// MaxAvatarSize is the upload cap for profile avatars.
	MaxAvatarSize = 5 * 1024 * 1024
	// MaxChatMediaSize is the upload cap for images/videos sent in chat.
	MaxChatMediaSize = 50 * 1024 * 1024
)

// ValidateAvatarUpload rejects oversized or non-image avatar files before
// anything reaches storage.
func ValidateAvatarUpload(size int64, contentType string) error {
	if size > MaxAvatarSize {
		return apperror.ErrInvalidInput
	}
	if !strings.HasPrefix(contentType, "image/") {
		return apperror.ErrInvalidInput
	}
	return nil
}

// ValidateChatMediaUpload rejects oversized or non image/video files and
// returns the media type derived from the MIME type.
func ValidateChatMediaUpload(size int64, contentType string) (model.MediaType, error) {
	if size > MaxChatMediaSize {
		return "", apperror.ErrInvalidInput
	}
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return model.MediaImage, nil
	case strings.HasPrefix(contentType, "video/"):
		return model.MediaVideo, nil
	}
	return "", apperror.ErrInvalidInput
}
