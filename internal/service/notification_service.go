package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"anoa.com/kirimpesan/internal/model"
	"anoa.com/kirimpesan/internal/policy"
	"anoa.com/kirimpesan/internal/repository"
	"anoa.com/kirimpesan/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type NotificationService interface {
	// NotifyFriendRequest records the friend_request notification for the
	// addressee. The actor must be the caller; the row is committed before
	// anything is published to the change feed.
	NotifyFriendRequest(ctx context.Context, actorID, recipientID, friendshipID uuid.UUID) error
	ListUnread(callerID uuid.UUID, limit, offset int) ([]model.Notification, error)
	MarkAsRead(callerID, id uuid.UUID) error
	MarkAllAsRead(callerID uuid.UUID) error
	ConsumeForFriendship(friendshipID uuid.UUID) error
	UnreadCount(callerID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        repository.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

func (s *notificationService) NotifyFriendRequest(ctx context.Context, actorID, recipientID, friendshipID uuid.UUID) error {
	notification := &model.Notification{
		UserID:       recipientID,
		ActorID:      &actorID,
		FriendshipID: &friendshipID,
		Type:         model.NotificationFriendRequest,
	}

	// Only the originator of the event may create its notification.
	if !policy.Notification(actorID, policy.OpInsert, notification) {
		return apperror.ErrNotFound
	}

	// 1. Save to DB
	if err := s.repo.Create(notification); err != nil {
		return err
	}

	// 2. Publish to Redis if Redis is available
	if s.redisClient != nil {
		channel := fmt.Sprintf("user_notifications:%s", recipientID.String())

		payload, err := json.Marshal(notification)
		if err == nil {
			s.redisClient.Publish(ctx, channel, payload)
		}
	}

	return nil
}

func (s *notificationService) ListUnread(callerID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	// Rows are already scoped to the caller; the repository only ever
	// selects by recipient, which is exactly the select policy.
	return s.repo.GetUnreadByUserID(callerID, limit, offset)
}

func (s *notificationService) MarkAsRead(callerID, id uuid.UUID) error {
	notification, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	if !policy.Notification(callerID, policy.OpUpdate, notification) {
		return apperror.ErrNotFound
	}

	return s.repo.MarkAsRead(id)
}

func (s *notificationService) MarkAllAsRead(callerID uuid.UUID) error {
	return s.repo.MarkAllAsRead(callerID)
}

func (s *notificationService) ConsumeForFriendship(friendshipID uuid.UUID) error {
	return s.repo.MarkReadByFriendship(friendshipID)
}

func (s *notificationService) UnreadCount(callerID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(callerID)
}
