package service

import (
	"errors"
	"testing"

	"anoa.com/kirimpesan/internal/model"
	"anoa.com/kirimpesan/pkg/apperror"
)

func TestValidateAvatarUpload(t *testing.T) {
	if err := ValidateAvatarUpload(1024, "image/png"); err != nil {
		t.Errorf("small png rejected: %v", err)
	}
	if err := ValidateAvatarUpload(MaxAvatarSize, "image/jpeg"); err != nil {
		t.Errorf("avatar exactly at the cap rejected: %v", err)
	}

	if err := ValidateAvatarUpload(MaxAvatarSize+1, "image/png"); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("oversized avatar error = %v, want ErrInvalidInput", err)
	}
	if err := ValidateAvatarUpload(1024, "video/mp4"); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("video avatar error = %v, want ErrInvalidInput", err)
	}
	if err := ValidateAvatarUpload(1024, "application/pdf"); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("pdf avatar error = %v, want ErrInvalidInput", err)
	}
}

func TestValidateChatMediaUpload(t *testing.T) {
	mediaType, err := ValidateChatMediaUpload(1024, "image/webp")
	if err != nil {
		t.Fatalf("image rejected: %v", err)
	}
	if mediaType != model.MediaImage {
		t.Errorf("media type = %s, want %s", mediaType, model.MediaImage)
	}

	mediaType, err = ValidateChatMediaUpload(MaxChatMediaSize, "video/mp4")
	if err != nil {
		t.Fatalf("video at the cap rejected: %v", err)
	}
	if mediaType != model.MediaVideo {
		t.Errorf("media type = %s, want %s", mediaType, model.MediaVideo)
	}

	if _, err := ValidateChatMediaUpload(MaxChatMediaSize+1, "image/png"); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("oversized media error = %v, want ErrInvalidInput", err)
	}
	if _, err := ValidateChatMediaUpload(1024, "audio/mpeg"); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("audio error = %v, want ErrInvalidInput", err)
	}
	if _, err := ValidateChatMediaUpload(1024, "application/zip"); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("zip error = %v, want ErrInvalidInput", err)
	}
}
