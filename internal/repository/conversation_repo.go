package repository

import (
	"context"

	"anoa.com/kirimpesan/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationRepository interface {
	Create(ctx context.Context, c *model.Conversation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Conversation, error)
	// FindByPair checks both orders; uniqueness at the store is on the
	// ordered pair only, so this lookup plus insert is the known race.
	FindByPair(ctx context.Context, a, b uuid.UUID) (*model.Conversation, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByPair(ctx context.Context, a, b uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Conversation, error)
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, c *model.Conversation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *conversationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Conversation, error) {
	var c model.Conversation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *conversationRepository) FindByPair(ctx context.Context, a, b uuid.UUID) (*model.Conversation, error) {
	var c model.Conversation
	err := r.db.WithContext(ctx).
		Where("(participant1_id = ? AND participant2_id = ?) OR (participant1_id = ? AND participant2_id = ?)", a, b, b, a).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *conversationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Messages go with the conversation via FK cascade; the delete in the
	// same transaction keeps older schemas without the constraint clean too.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Message{}, "conversation_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Conversation{}, "id = ?", id).Error
	})
}

func (r *conversationRepository) DeleteByPair(ctx context.Context, a, b uuid.UUID) error {
	c, err := r.FindByPair(ctx, a, b)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	return r.Delete(ctx, c.ID)
}

func (r *conversationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Conversation, error) {
	var conversations []model.Conversation
	err := r.db.WithContext(ctx).
		Where("participant1_id = ? OR participant2_id = ?", userID, userID).
		Preload("Participant1", minimalUserSelect).
		Preload("Participant2", minimalUserSelect).
		Order("updated_at desc").
		Find(&conversations).Error
	return conversations, err
}
