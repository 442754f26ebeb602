package service

import (
	"context"
	"errors"
	"log"
	"time"

	"anoa.com/kirimpesan/internal/model"
	"anoa.com/kirimpesan/internal/policy"
	"anoa.com/kirimpesan/internal/repository"
	"anoa.com/kirimpesan/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type FriendshipService interface {
	SendRequest(ctx context.Context, callerID, addresseeID uuid.UUID) (*model.Friendship, error)
	Respond(ctx context.Context, callerID, friendshipID uuid.UUID, accept bool) (*model.Friendship, error)
	Remove(ctx context.Context, callerID, otherUserID uuid.UUID) error
	Block(ctx context.Context, callerID, otherUserID uuid.UUID) (*model.Friendship, error)
	ListFriends(ctx context.Context, callerID uuid.UUID) ([]model.Friendship, error)
	ListPendingRequests(ctx context.Context, callerID uuid.UUID) ([]model.Friendship, error)
}

type friendshipService struct {
	repo             repository.FriendshipRepository
	conversationRepo repository.ConversationRepository
	notificationSvc  NotificationService
	redisClient      *redis.Client
	requestCooldown  time.Duration
}

func NewFriendshipService(
	repo repository.FriendshipRepository,
	conversationRepo repository.ConversationRepository,
	notificationSvc NotificationService,
	redisClient *redis.Client,
	requestCooldown time.Duration,
) FriendshipService {
	return &friendshipService{
		repo:             repo,
		conversationRepo: conversationRepo,
		notificationSvc:  notificationSvc,
		redisClient:      redisClient,
		requestCooldown:  requestCooldown,
	}
}

func (s *friendshipService) SendRequest(ctx context.Context, callerID, addresseeID uuid.UUID) (*model.Friendship, error) {
	if !policy.CanRequest(callerID, addresseeID) {
		return nil, apperror.ErrInvalidInput
	}

	allowed, err := CheckAndSetRateLimit(ctx, s.redisClient, callerID, "friend_request", s.requestCooldown)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperror.ErrRateLimitExceeded
	}

	// Symmetric pre-check: the unique index covers the ordered pair only,
	// so the reversed edge has to be looked up here. Two simultaneous
	// reversed requests can still both pass this check; the store then
	// keeps both rows. Known gap, kept as-is.
	if _, err := s.repo.FindBetween(ctx, callerID, addresseeID); err == nil {
		return nil, apperror.ErrConflict
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	friendship := &model.Friendship{
		RequesterID: callerID,
		AddresseeID: addresseeID,
		Status:      model.FriendshipPending,
	}

	if !policy.Friendship(callerID, policy.OpInsert, friendship) {
		return nil, apperror.ErrNotFound
	}

	if err := s.repo.Create(ctx, friendship); err != nil {
		if clearErr := ClearRateLimit(ctx, s.redisClient, callerID, "friend_request"); clearErr != nil {
			log.Printf("failed to clear friend_request rate limit for %s: %v", callerID, clearErr)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.ErrConflict
		}
		return nil, err
	}

	if err := s.notificationSvc.NotifyFriendRequest(ctx, callerID, addresseeID, friendship.ID); err != nil {
		log.Printf("failed to create friend request notification: %v", err)
	}

	return friendship, nil
}

func (s *friendshipService) Respond(ctx context.Context, callerID, friendshipID uuid.UUID, accept bool) (*model.Friendship, error) {
	friendship, err := s.findVisible(ctx, callerID, friendshipID)
	if err != nil {
		return nil, err
	}

	// Row policy lets either side update the edge; accepting is further
	// restricted to the addressee, declining is not.
	if !policy.CanRespond(friendship, callerID, accept) {
		return nil, apperror.ErrForbidden
	}

	// Consume the notification before touching the row: deleting the edge
	// detaches the notification's friendship reference.
	if err := s.notificationSvc.ConsumeForFriendship(friendshipID); err != nil {
		log.Printf("failed to mark friend request notification read: %v", err)
	}

	if !accept {
		// Declines are not persisted as a status; the edge is removed.
		if err := s.repo.Delete(ctx, friendshipID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if !policy.CanTransition(friendship.Status, model.FriendshipAccepted) {
		return nil, apperror.ErrInvalidInput
	}

	if err := s.repo.UpdateStatus(ctx, friendshipID, model.FriendshipAccepted); err != nil {
		return nil, err
	}

	friendship.Status = model.FriendshipAccepted
	return friendship, nil
}

func (s *friendshipService) Remove(ctx context.Context, callerID, otherUserID uuid.UUID) error {
	friendship, err := s.repo.FindBetween(ctx, callerID, otherUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if !policy.Friendship(callerID, policy.OpDelete, friendship) {
		return apperror.ErrNotFound
	}
	if !policy.CanRemove(friendship, callerID) {
		return apperror.ErrForbidden
	}

	if err := s.repo.Delete(ctx, friendship.ID); err != nil {
		return err
	}

	// Unfriending also tears down the pair's conversation and messages.
	if err := s.conversationRepo.DeleteByPair(ctx, callerID, otherUserID); err != nil {
		log.Printf("failed to delete conversation after unfriend: %v", err)
	}

	return nil
}

func (s *friendshipService) Block(ctx context.Context, callerID, otherUserID uuid.UUID) (*model.Friendship, error) {
	if !policy.CanRequest(callerID, otherUserID) {
		return nil, apperror.ErrInvalidInput
	}

	friendship, err := s.repo.FindBetween(ctx, callerID, otherUserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// No edge yet: blocking creates one directly in blocked state.
		friendship = &model.Friendship{
			RequesterID: callerID,
			AddresseeID: otherUserID,
			Status:      model.FriendshipBlocked,
		}
		if err := s.repo.Create(ctx, friendship); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperror.ErrConflict
			}
			return nil, err
		}
		return friendship, nil
	}

	if !policy.CanBlock(friendship, callerID) {
		// blocked is terminal; there is no unblock or re-block.
		return nil, apperror.ErrForbidden
	}

	if err := s.notificationSvc.ConsumeForFriendship(friendship.ID); err != nil {
		log.Printf("failed to mark friend request notification read: %v", err)
	}

	if err := s.repo.UpdateStatus(ctx, friendship.ID, model.FriendshipBlocked); err != nil {
		return nil, err
	}

	friendship.Status = model.FriendshipBlocked
	return friendship, nil
}

func (s *friendshipService) ListFriends(ctx context.Context, callerID uuid.UUID) ([]model.Friendship, error) {
	return s.repo.ListByUser(ctx, callerID, model.FriendshipAccepted)
}

func (s *friendshipService) ListPendingRequests(ctx context.Context, callerID uuid.UUID) ([]model.Friendship, error) {
	return s.repo.ListPendingFor(ctx, callerID)
}

func (s *friendshipService) findVisible(ctx context.Context, callerID, friendshipID uuid.UUID) (*model.Friendship, error) {
	friendship, err := s.repo.FindByID(ctx, friendshipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if !policy.Friendship(callerID, policy.OpSelect, friendship) {
		return nil, apperror.ErrNotFound
	}

	return friendship, nil
}
