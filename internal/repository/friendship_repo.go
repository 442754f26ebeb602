package repository

import (
	"context"

	"anoa.com/kirimpesan/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FriendshipRepository interface {
	Create(ctx context.Context, f *model.Friendship) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Friendship, error)
	// FindBetween looks the edge up in both directions; at most one row
	// exists per unordered pair when callers pre-check before insert.
	FindBetween(ctx context.Context, a, b uuid.UUID) (*model.Friendship, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.FriendshipStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, status model.FriendshipStatus) ([]model.Friendship, error)
	ListPendingFor(ctx context.Context, addresseeID uuid.UUID) ([]model.Friendship, error)
}

type friendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

func (r *friendshipRepository) Create(ctx context.Context, f *model.Friendship) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *friendshipRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Friendship, error) {
	var f model.Friendship
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *friendshipRepository) FindBetween(ctx context.Context, a, b uuid.UUID) (*model.Friendship, error) {
	var f model.Friendship
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)", a, b, b, a).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *friendshipRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.FriendshipStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Friendship{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *friendshipRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Friendship{}, "id = ?", id).Error
}

func (r *friendshipRepository) ListByUser(ctx context.Context, userID uuid.UUID, status model.FriendshipStatus) ([]model.Friendship, error) {
	var friendships []model.Friendship
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? OR addressee_id = ?) AND status = ?", userID, userID, status).
		Preload("Requester", minimalUserSelect).
		Preload("Addressee", minimalUserSelect).
		Order("updated_at desc").
		Find(&friendships).Error
	return friendships, err
}

func (r *friendshipRepository) ListPendingFor(ctx context.Context, addresseeID uuid.UUID) ([]model.Friendship, error) {
	var friendships []model.Friendship
	err := r.db.WithContext(ctx).
		Where("addressee_id = ? AND status = ?", addresseeID, model.FriendshipPending).
		Preload("Requester", minimalUserSelect).
		Order("created_at desc").
		Find(&friendships).Error
	return friendships, err
}

func minimalUserSelect(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "avatar_url")
}
