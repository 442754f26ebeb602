package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"anoa.com/kirimpesan/internal/model"
	"anoa.com/kirimpesan/internal/policy"
	"anoa.com/kirimpesan/internal/repository"
	"anoa.com/kirimpesan/pkg/apperror"
	"anoa.com/kirimpesan/pkg/storage"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type MediaFile struct {
	Reader      io.Reader
	FileName    string
	Size        int64
	ContentType string
}

type SendMessageInput struct {
	Content *string `json:"content" form:"content"`
}

type ConversationService interface {
	// GetOrCreate returns the existing conversation for the pair (looked up
	// in both orders) or inserts a new one ordered (caller, peer). Two
	// concurrent calls with reversed arguments can both insert; the store's
	// ordered-pair uniqueness does not stop that. Kept as-is.
	GetOrCreate(ctx context.Context, callerID, peerID uuid.UUID) (*model.Conversation, error)
	List(ctx context.Context, callerID uuid.UUID) ([]model.Conversation, error)
	Delete(ctx context.Context, callerID, conversationID uuid.UUID) error
	SendMessage(ctx context.Context, callerID, conversationID uuid.UUID, input SendMessageInput, media *MediaFile) (*model.Message, error)
	ListMessages(ctx context.Context, callerID, conversationID uuid.UUID) ([]model.Message, error)
	EditMessage(ctx context.Context, callerID, messageID uuid.UUID, content string) (*model.Message, error)
	MarkMessageRead(ctx context.Context, callerID, messageID uuid.UUID) error
}

type conversationService struct {
	repo         repository.ConversationRepository
	messageRepo  repository.MessageRepository
	mediaStorage storage.MediaStorage
	redisClient  *redis.Client
	sanitizer    *bluemonday.Policy
}

func NewConversationService(
	repo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	mediaStorage storage.MediaStorage,
	redisClient *redis.Client,
) ConversationService {
	return &conversationService{
		repo:         repo,
		messageRepo:  messageRepo,
		mediaStorage: mediaStorage,
		redisClient:  redisClient,
		sanitizer:    bluemonday.StrictPolicy(),
	}
}

func (s *conversationService) GetOrCreate(ctx context.Context, callerID, peerID uuid.UUID) (*model.Conversation, error) {
	if callerID == peerID || peerID == uuid.Nil {
		return nil, apperror.ErrInvalidInput
	}

	conversation, err := s.repo.FindByPair(ctx, callerID, peerID)
	if err == nil {
		return conversation, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	conversation = &model.Conversation{
		Participant1ID: callerID,
		Participant2ID: peerID,
	}

	if !policy.Conversation(callerID, policy.OpInsert, conversation) {
		return nil, apperror.ErrNotFound
	}

	if err := s.repo.Create(ctx, conversation); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race on the same ordered pair: the winner's row is
			// the conversation.
			return s.repo.FindByPair(ctx, callerID, peerID)
		}
		return nil, err
	}

	return conversation, nil
}

func (s *conversationService) List(ctx context.Context, callerID uuid.UUID) ([]model.Conversation, error) {
	return s.repo.ListByUser(ctx, callerID)
}

func (s *conversationService) Delete(ctx context.Context, callerID, conversationID uuid.UUID) error {
	conversation, err := s.findVisible(ctx, callerID, conversationID)
	if err != nil {
		return err
	}

	if !policy.Conversation(callerID, policy.OpDelete, conversation) {
		return apperror.ErrNotFound
	}

	messages, err := s.messageRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, conversationID); err != nil {
		return err
	}

	// The rows are gone; stored media follows. Failures only leave
	// orphaned blobs, so they are logged, not surfaced.
	if s.mediaStorage != nil {
		for _, message := range messages {
			if message.MediaURL == nil {
				continue
			}
			if err := s.mediaStorage.DeleteMedia(ctx, *message.MediaURL); err != nil {
				log.Printf("failed to delete media for message %s: %v", message.ID, err)
			}
		}
	}

	return nil
}

func (s *conversationService) SendMessage(ctx context.Context, callerID, conversationID uuid.UUID, input SendMessageInput, media *MediaFile) (*model.Message, error) {
	conversation, err := s.findVisible(ctx, callerID, conversationID)
	if err != nil {
		return nil, err
	}

	message := &model.Message{
		ConversationID: conversationID,
		SenderID:       callerID,
	}

	if !policy.Message(callerID, policy.OpInsert, message, conversation) {
		return nil, apperror.ErrNotFound
	}

	if input.Content != nil && *input.Content != "" {
		content := s.sanitizer.Sanitize(*input.Content)
		message.Content = &content
	}

	if media != nil && media.Reader != nil {
		mediaType, err := ValidateChatMediaUpload(media.Size, media.ContentType)
		if err != nil {
			return nil, err
		}

		var url string
		switch mediaType {
		case model.MediaVideo:
			url, err = s.mediaStorage.UploadVideo(ctx, media.Reader, "chat_media", media.FileName)
		default:
			url, err = s.mediaStorage.UploadImage(ctx, media.Reader, "chat_media", media.FileName)
		}
		if err != nil {
			return nil, err
		}

		message.MediaURL = &url
		message.MediaType = &mediaType
	}

	if message.Content == nil && message.MediaURL == nil {
		return nil, apperror.ErrInvalidInput
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	s.publishMessage(ctx, conversation, message)
	return message, nil
}

func (s *conversationService) ListMessages(ctx context.Context, callerID, conversationID uuid.UUID) ([]model.Message, error) {
	conversation, err := s.findVisible(ctx, callerID, conversationID)
	if err != nil {
		return nil, err
	}

	probe := &model.Message{ConversationID: conversationID}
	if !policy.Message(callerID, policy.OpSelect, probe, conversation) {
		return nil, apperror.ErrNotFound
	}

	return s.messageRepo.ListByConversation(ctx, conversationID)
}

func (s *conversationService) EditMessage(ctx context.Context, callerID, messageID uuid.UUID, content string) (*model.Message, error) {
	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	conversation, err := s.findVisible(ctx, callerID, message.ConversationID)
	if err != nil {
		return nil, err
	}

	if !policy.Message(callerID, policy.OpUpdate, message, conversation) {
		return nil, apperror.ErrNotFound
	}

	sanitized := s.sanitizer.Sanitize(content)
	if sanitized == "" {
		return nil, apperror.ErrInvalidInput
	}

	if err := s.messageRepo.UpdateContent(ctx, messageID, sanitized); err != nil {
		return nil, err
	}

	message.Content = &sanitized
	return message, nil
}

func (s *conversationService) MarkMessageRead(ctx context.Context, callerID, messageID uuid.UUID) error {
	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrNotFound
		}
		return err
	}

	conversation, err := s.findVisible(ctx, callerID, message.ConversationID)
	if err != nil {
		return err
	}

	// Reading is a participant action, not a sender one.
	if !policy.Message(callerID, policy.OpSelect, message, conversation) {
		return apperror.ErrNotFound
	}

	return s.messageRepo.MarkRead(ctx, messageID)
}

func (s *conversationService) findVisible(ctx context.Context, callerID, conversationID uuid.UUID) (*model.Conversation, error) {
	conversation, err := s.repo.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	if !policy.Conversation(callerID, policy.OpSelect, conversation) {
		return nil, apperror.ErrNotFound
	}

	return conversation, nil
}

// publishMessage pushes the committed message onto the conversation's
// change feed. The row is durable before anyone can hear about it.
func (s *conversationService) publishMessage(ctx context.Context, conversation *model.Conversation, message *model.Message) {
	if s.redisClient == nil {
		return
	}

	payload, err := json.Marshal(message)
	if err != nil {
		log.Printf("failed to marshal message for publish: %v", err)
		return
	}

	channel := fmt.Sprintf("conversation_messages:%s", conversation.ID.String())
	s.redisClient.Publish(ctx, channel, payload)
}
