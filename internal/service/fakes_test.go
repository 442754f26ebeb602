package service

import (
	"context"
	"sort"

	"anoa.com/kirimpesan/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository fakes. They reproduce the storage behavior the
// services depend on: not-found as gorm.ErrRecordNotFound and ordered-pair
// uniqueness as gorm.ErrDuplicatedKey.

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User, profile *model.Profile) error {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if profile != nil {
		profile.UserID = user.ID
		user.Profile = profile
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User, profile *model.Profile) error {
	if profile != nil {
		user.Profile = profile
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) SearchByUsername(ctx context.Context, substring string, exclude uuid.UUID, limit int) ([]model.ProfileSummary, error) {
	var results []model.ProfileSummary
	for _, u := range r.users {
		if u.ID == exclude {
			continue
		}
		if !containsFold(u.Username, substring) {
			continue
		}
		summary := model.ProfileSummary{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
		if u.Profile != nil {
			summary.Bio = u.Profile.Bio
		}
		results = append(results, summary)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Username < results[j].Username })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func containsFold(haystack, needle string) bool {
	h, n := []rune(haystack), []rune(needle)
	lower := func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}
	for i := 0; i+len(n) <= len(h); i++ {
		match := true
		for j := range n {
			if lower(h[i+j]) != lower(n[j]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

type fakeFriendshipRepo struct {
	friendships map[uuid.UUID]*model.Friendship
}

func newFakeFriendshipRepo() *fakeFriendshipRepo {
	return &fakeFriendshipRepo{friendships: make(map[uuid.UUID]*model.Friendship)}
}

func (r *fakeFriendshipRepo) Create(ctx context.Context, f *model.Friendship) error {
	for _, existing := range r.friendships {
		if existing.RequesterID == f.RequesterID && existing.AddresseeID == f.AddresseeID {
			return gorm.ErrDuplicatedKey
		}
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	cp := *f
	r.friendships[f.ID] = &cp
	return nil
}

func (r *fakeFriendshipRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Friendship, error) {
	if f, ok := r.friendships[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeFriendshipRepo) FindBetween(ctx context.Context, a, b uuid.UUID) (*model.Friendship, error) {
	for _, f := range r.friendships {
		if (f.RequesterID == a && f.AddresseeID == b) || (f.RequesterID == b && f.AddresseeID == a) {
			cp := *f
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeFriendshipRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.FriendshipStatus) error {
	f, ok := r.friendships[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	f.Status = status
	return nil
}

func (r *fakeFriendshipRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.friendships, id)
	return nil
}

func (r *fakeFriendshipRepo) ListByUser(ctx context.Context, userID uuid.UUID, status model.FriendshipStatus) ([]model.Friendship, error) {
	var out []model.Friendship
	for _, f := range r.friendships {
		if f.Involves(userID) && f.Status == status {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFriendshipRepo) ListPendingFor(ctx context.Context, addresseeID uuid.UUID) ([]model.Friendship, error) {
	var out []model.Friendship
	for _, f := range r.friendships {
		if f.AddresseeID == addresseeID && f.Status == model.FriendshipPending {
			out = append(out, *f)
		}
	}
	return out, nil
}

type fakeConversationRepo struct {
	conversations map[uuid.UUID]*model.Conversation
	messages      *fakeMessageRepo
}

func newFakeConversationRepo(messages *fakeMessageRepo) *fakeConversationRepo {
	return &fakeConversationRepo{
		conversations: make(map[uuid.UUID]*model.Conversation),
		messages:      messages,
	}
}

func (r *fakeConversationRepo) Create(ctx context.Context, c *model.Conversation) error {
	for _, existing := range r.conversations {
		if existing.Participant1ID == c.Participant1ID && existing.Participant2ID == c.Participant2ID {
			return gorm.ErrDuplicatedKey
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	r.conversations[c.ID] = &cp
	return nil
}

func (r *fakeConversationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Conversation, error) {
	if c, ok := r.conversations[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeConversationRepo) FindByPair(ctx context.Context, a, b uuid.UUID) (*model.Conversation, error) {
	for _, c := range r.conversations {
		if (c.Participant1ID == a && c.Participant2ID == b) || (c.Participant1ID == b && c.Participant2ID == a) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeConversationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.conversations, id)
	if r.messages != nil {
		for mid, m := range r.messages.messages {
			if m.ConversationID == id {
				delete(r.messages.messages, mid)
			}
		}
	}
	return nil
}

func (r *fakeConversationRepo) DeleteByPair(ctx context.Context, a, b uuid.UUID) error {
	c, err := r.FindByPair(ctx, a, b)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}
	return r.Delete(ctx, c.ID)
}

func (r *fakeConversationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Conversation, error) {
	var out []model.Conversation
	for _, c := range r.conversations {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeMessageRepo struct {
	messages map[uuid.UUID]*model.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[uuid.UUID]*model.Message)}
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *model.Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	r.messages[m.ID] = &cp
	return nil
}

func (r *fakeMessageRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Message, error) {
	if m, ok := r.messages[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMessageRepo) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]model.Message, error) {
	var out []model.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeMessageRepo) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	m, ok := r.messages[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.Content = &content
	return nil
}

func (r *fakeMessageRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	m, ok := r.messages[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.IsRead = true
	return nil
}

type fakeNotificationRepo struct {
	notifications map[uuid.UUID]*model.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[uuid.UUID]*model.Notification)}
}

func (r *fakeNotificationRepo) Create(n *model.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	cp := *n
	r.notifications[n.ID] = &cp
	return nil
}

func (r *fakeNotificationRepo) FindByID(id uuid.UUID) (*model.Notification, error) {
	if n, ok := r.notifications[id]; ok {
		cp := *n
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeNotificationRepo) GetUnreadByUserID(userID uuid.UUID, limit, offset int) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			out = append(out, *n)
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkAsRead(id uuid.UUID) error {
	n, ok := r.notifications[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	n.IsRead = true
	return nil
}

func (r *fakeNotificationRepo) MarkAllAsRead(userID uuid.UUID) error {
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkReadByFriendship(friendshipID uuid.UUID) error {
	for _, n := range r.notifications {
		if n.FriendshipID != nil && *n.FriendshipID == friendshipID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) CountUnread(userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}
