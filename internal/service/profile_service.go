package service

import (
	"context"
	"errors"
	"io"
	"log"
	"time"
	"unicode/utf8"

	"anoa.com/kirimpesan/internal/model"
	"anoa.com/kirimpesan/internal/policy"
	"anoa.com/kirimpesan/internal/repository"
	"anoa.com/kirimpesan/pkg/apperror"
	"anoa.com/kirimpesan/pkg/storage"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

const searchResultCap = 10

type AvatarFile struct {
	Reader      io.Reader
	FileName    string
	Size        int64
	ContentType string
}

type UpdateProfileInput struct {
	Username    *string `json:"username" form:"username"`
	Bio         *string `json:"bio" form:"bio"`
	Gender      *string `json:"gender" form:"gender"`
	DateOfBirth *string `json:"date_of_birth" form:"date_of_birth"` // YYYY-MM-DD
}

type ProfileService interface {
	GetByUsername(ctx context.Context, callerID uuid.UUID, username string) (*model.User, error)
	GetCurrent(ctx context.Context, callerID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, callerID uuid.UUID, input UpdateProfileInput, avatar *AvatarFile) (*model.User, error)
	// Search is the privileged discovery path: it bypasses the profile read
	// policy on purpose, returns the fixed minimal projection, excludes the
	// caller and caps results.
	Search(ctx context.Context, callerID uuid.UUID, query string) ([]model.ProfileSummary, error)
}

type profileService struct {
	repo           repository.UserRepository
	friendshipRepo repository.FriendshipRepository
	mediaStorage   storage.MediaStorage
	searchSvc      SearchService
	sanitizer      *bluemonday.Policy
}

func NewProfileService(repo repository.UserRepository, friendshipRepo repository.FriendshipRepository, mediaStorage storage.MediaStorage, searchSvc SearchService) ProfileService {
	return &profileService{
		repo:           repo,
		friendshipRepo: friendshipRepo,
		mediaStorage:   mediaStorage,
		searchSvc:      searchSvc,
		sanitizer:      bluemonday.StrictPolicy(),
	}
}

func (s *profileService) GetByUsername(ctx context.Context, callerID uuid.UUID, username string) (*model.User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	related, err := s.relationshipExists(ctx, callerID, user.ID)
	if err != nil {
		return nil, err
	}

	// Denied reads look exactly like missing rows.
	if !policy.Profile(callerID, policy.OpSelect, user.ID, related) {
		return nil, apperror.ErrNotFound
	}

	user.PasswordHash = ""
	if user.ID != callerID {
		user.Email = ""
	}
	return user, nil
}

func (s *profileService) GetCurrent(ctx context.Context, callerID uuid.UUID) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, callerID uuid.UUID, input UpdateProfileInput, avatar *AvatarFile) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if !policy.Profile(callerID, policy.OpUpdate, user.ID, false) {
		return nil, apperror.ErrNotFound
	}

	if input.Username != nil && *input.Username != "" {
		username, err := NormalizeUsername(*input.Username)
		if err != nil {
			return nil, err
		}
		if username != user.Username {
			// Uniqueness is re-validated on every username change.
			if _, err := s.repo.FindByUsername(ctx, username); err == nil {
				return nil, apperror.ErrConflict
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			user.Username = username
		}
	}

	profile := user.Profile
	if profile == nil {
		profile = &model.Profile{UserID: user.ID}
	}

	if input.Bio != nil {
		bio := s.sanitizer.Sanitize(*input.Bio)
		// The cap counts characters, not bytes.
		if utf8.RuneCountInString(bio) > 160 {
			return nil, apperror.ErrInvalidInput
		}
		profile.Bio = &bio
	}

	if input.Gender != nil {
		gender := model.Gender(*input.Gender)
		if !gender.IsValid() {
			return nil, apperror.ErrInvalidInput
		}
		profile.Gender = &gender
	}

	if input.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *input.DateOfBirth)
		if err != nil {
			return nil, apperror.ErrInvalidInput
		}
		profile.DateOfBirth = &dob
	}

	if avatar != nil && avatar.Reader != nil && s.mediaStorage != nil {
		if err := ValidateAvatarUpload(avatar.Size, avatar.ContentType); err != nil {
			return nil, err
		}
		url, err := s.mediaStorage.UploadImage(ctx, avatar.Reader, "avatars", avatar.FileName)
		if err != nil {
			return nil, err
		}
		if user.AvatarURL != nil && *user.AvatarURL != url {
			if err := s.mediaStorage.DeleteMedia(ctx, *user.AvatarURL); err != nil {
				log.Printf("failed to delete replaced avatar: %v", err)
			}
		}
		user.AvatarURL = &url
	}

	if err := s.repo.Update(ctx, user, profile); err != nil {
		return nil, err
	}

	updatedUser, err := s.repo.FindByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if s.searchSvc != nil {
		if err := s.searchSvc.IndexProfile(updatedUser); err != nil {
			log.Printf("failed to reindex profile %s: %v", updatedUser.ID, err)
		}
	}

	updatedUser.PasswordHash = ""
	return updatedUser, nil
}

func (s *profileService) Search(ctx context.Context, callerID uuid.UUID, query string) ([]model.ProfileSummary, error) {
	if query == "" {
		return []model.ProfileSummary{}, nil
	}

	return s.repo.SearchByUsername(ctx, query, callerID, searchResultCap)
}

// relationshipExists reports whether any friendship row, in any status and
// either direction, links the two users. Existence is what the profile
// read policy cares about, not the status.
func (s *profileService) relationshipExists(ctx context.Context, a, b uuid.UUID) (bool, error) {
	if a == b {
		return true, nil
	}
	_, err := s.friendshipRepo.FindBetween(ctx, a, b)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
