package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/kirimpesan/internal/model"
	"anoa.com/kirimpesan/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type friendshipFixture struct {
	svc              FriendshipService
	friendshipRepo   *fakeFriendshipRepo
	conversationRepo *fakeConversationRepo
	notificationRepo *fakeNotificationRepo
}

func newFriendshipFixture() *friendshipFixture {
	friendshipRepo := newFakeFriendshipRepo()
	messageRepo := newFakeMessageRepo()
	conversationRepo := newFakeConversationRepo(messageRepo)
	notificationRepo := newFakeNotificationRepo()
	notificationSvc := NewNotificationService(notificationRepo, nil)

	return &friendshipFixture{
		svc:              NewFriendshipService(friendshipRepo, conversationRepo, notificationSvc, nil, time.Second),
		friendshipRepo:   friendshipRepo,
		conversationRepo: conversationRepo,
		notificationRepo: notificationRepo,
	}
}

func TestSendRequestCreatesPendingAndNotification(t *testing.T) {
	fx := newFriendshipFixture()
	ctx := context.Background()
	alice := uuid.New()
	budi := uuid.New()

	friendship, err := fx.svc.SendRequest(ctx, alice, budi)
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}
	if friendship.Status != model.FriendshipPending {
		t.Errorf("status = %s, want pending", friendship.Status)
	}
	if friendship.RequesterID != alice || friendship.AddresseeID != budi {
		t.Error("friendship edge has wrong endpoints")
	}

	unread, err := fx.notificationRepo.GetUnreadByUserID(budi, 10, 0)
	if err != nil {
		t.Fatalf("GetUnreadByUserID failed: %v", err)
	}
	if len(unread) != 1 {
		t.Fatalf("addressee has %d unread notifications, want 1", len(unread))
	}
	n := unread[0]
	if n.Type != model.NotificationFriendRequest {
		t.Errorf("notification type = %s, want %s", n.Type, model.NotificationFriendRequest)
	}
	if n.ActorID == nil || *n.ActorID != alice {
		t.Error("notification actor is not the requester")
	}
	if n.FriendshipID == nil || *n.FriendshipID != friendship.ID {
		t.Error("notification does not reference the friendship")
	}

	// The requester must not get a notification.
	if count, _ := fx.notificationRepo.CountUnread(alice); count != 0 {
		t.Errorf("requester has %d unread notifications, want 0", count)
	}
}

func TestSendRequestToSelf(t *testing.T) {
	fx := newFriendshipFixture()
	alice := uuid.New()

	if _, err := fx.svc.SendRequest(context.Background(), alice, alice); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("self request error = %v, want ErrInvalidInput", err)
	}
}

func TestSendRequestDuplicateEdge(t *testing.T) {
	fx := newFriendshipFixture()
	ctx := context.Background()
	alice := uuid.New()
	budi := uuid.New()

	if _, err := fx.svc.SendRequest(ctx, alice, budi); err != nil {
		t.Fatalf("first request failed: %v", err)
	}

	if _, err := fx.svc.SendRequest(ctx, alice, budi); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("same-direction duplicate error = %v, want ErrConflict", err)
	}

	// The reversed direction hits the symmetric pre-check.
	if _, err := fx.svc.SendRequest(ctx, budi, alice); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("reversed duplicate error = %v, want ErrConflict", err)
	}
}

func TestRespondAccept(t *testing.T) {
	fx := newFriendshipFixture()
	ctx := context.Background()
	alice := uuid.New()
	budi := uuid.New()

	friendship, err := fx.svc.SendRequest(ctx, alice, budi)
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	accepted, err := fx.svc.Respond(ctx, budi, friendship.ID, true)
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if accepted.Status != model.FriendshipAccepted {
		t.Errorf("status = %s, want accepted", accepted.Status)
	}

	stored, err := fx.friendshipRepo.FindByID(ctx, friendship.ID)
	if err != nil {
		t.Fatalf("edge vanished after accept: %v", err)
	}
	if stored.Status != model.FriendshipAccepted {
		t.Errorf("stored status = %s, want accepted", stored.Status)
	}

	// The friend request notification is consumed by the response.
	if count, _ := fx.notificationRepo.CountUnread(budi); count != 0 {
		t.Errorf("addressee still has %d unread notifications after accepting", count)
	}
}

func TestRespondDecline(t *testing.T) {
	fx := newFriendshipFixture()
	ctx := context.Background()
	alice := uuid.New()
	budi := uuid.New()

	friendship, err := fx.svc.SendRequest(ctx, alice, budi)
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	result, err := fx.svc.Respond(ctx, budi, friendship.ID, false)
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if result != nil {
		t.Error("decline returned a friendship, want nil")
	}

	if _, err := fx.friendshipRepo.FindByID(ctx, friendship.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Error("declined edge still exists")
	}
	if count, _ := fx.notificationRepo.CountUnread(budi); count != 0 {
		t.Errorf("addressee still has %d unread notifications after declining", count)
	}
}

func TestAcceptIsAddresseeOnly(t *testing.T) {
	fx := newFriendshipFixture()
	ctx := context.Background()
	alice := uuid.New()
	budi := uuid.New()

	friendship, err := fx.svc.SendRequest(ctx, alice, budi)
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	// The requester can see the edge but may not accept their own request.
	if _, err := fx.svc.Respond(ctx, alice, friendship.ID, true); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("requester accept error = %v, want ErrForbidden", err)
	}

	// A third party gets not-found, never forbidden.
	if _, err := fx.svc.Respond(ctx, uuid.New(), friendship.ID, true); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("stranger accept error = %v, want ErrNotFound", err)
	}
}

func TestRequesterWithdrawsOwnRequest(t *testing.T) {
	fx := newFriendshipFixture()
	ctx := context.Background()
	alice := uuid.New()
	budi := uuid.New()

	friendship, err := fx.svc.SendRequest(ctx, alice, budi)
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	// Declining is open to either participant, so the requester can
	// withdraw a request the addressee has not answered yet.
	result, err := fx.svc.Respond(ctx, alice, friendship.ID, false)
	if err != nil {
		t.Fatalf("requester withdrawal failed: %v", err)
	}
	if result != nil {
		t.Error("withdrawal returned a friendship, want nil")
	}

	if _, err := fx.friendshipRepo.FindByID(ctx, friendship.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Error("withdrawn edge still exists")
	}
	if count, _ := fx.notificationRepo.CountUnread(budi); count != 0 {
		t.Errorf("addressee still has %d unread notifications after withdrawal", count)
	}
}

func TestRemoveDeletesEdgeAndConversation(t *testing.T) {
	fx := newFriendshipFixture()
	ctx := context.Background()
	alice := uuid.New()
	budi := uuid.New()

	friendship, err := fx.svc.SendRequest(ctx, alice, budi)
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}
	if _, err := fx.svc.Respond(ctx, budi, friendship.ID, true); err != nil {
		t.Fatalf("Respond failed: %v", err)
	}

	conversation := &model.Conversation{Participant1ID: alice, Participant2ID: budi}
	if err := fx.conversationRepo.Create(ctx, conversation); err != nil {
		t.Fatalf("seed conversation failed: %v", err)
	}

	if err := fx.svc.Remove(ctx, alice, budi); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, err := fx.friendshipRepo.FindBetween(ctx, alice, budi); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Error("edge still exists after unfriend")
	}
	if _, err := fx.conversationRepo.FindByID(ctx, conversation.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Error("conversation still exists after unfriend")
	}
}

func TestRemoveRequiresAcceptedEdge(t *testing.T) {
	fx := newFriendshipFixture()
	ctx := context.Background()
	alice := uuid.New()
	budi := uuid.New()

	if _, err := fx.svc.SendRequest(ctx, alice, budi); err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	if err := fx.svc.Remove(ctx, alice, budi); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("remove on pending edge error = %v, want ErrForbidden", err)
	}
	if err := fx.svc.Remove(ctx, alice, uuid.New()); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("remove without edge error = %v, want ErrNotFound", err)
	}
}

func TestBlockWithoutExistingEdge(t *testing.T) {
	fx := newFriendshipFixture()
	ctx := context.Background()
	alice := uuid.New()
	budi := uuid.New()

	friendship, err := fx.svc.Block(ctx, alice, budi)
	if err != nil {
		t.Fatalf("Block failed: %v", err)
	}
	if friendship.Status != model.FriendshipBlocked {
		t.Errorf("status = %s, want blocked", friendship.Status)
	}
	if friendship.RequesterID != alice {
		t.Error("blocker is not the edge's requester")
	}
}

func TestBlockPendingEdgeIsTerminal(t *testing.T) {
	fx := newFriendshipFixture()
	ctx := context.Background()
	alice := uuid.New()
	budi := uuid.New()

	friendship, err := fx.svc.SendRequest(ctx, alice, budi)
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	blocked, err := fx.svc.Block(ctx, budi, alice)
	if err != nil {
		t.Fatalf("Block failed: %v", err)
	}
	if blocked.Status != model.FriendshipBlocked {
		t.Errorf("status = %s, want blocked", blocked.Status)
	}
	if count, _ := fx.notificationRepo.CountUnread(budi); count != 0 {
		t.Errorf("blocker still has %d unread notifications", count)
	}

	// No unblock, no re-block, no accepting a blocked edge.
	if _, err := fx.svc.Block(ctx, alice, budi); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("re-block error = %v, want ErrForbidden", err)
	}
	if _, err := fx.svc.Respond(ctx, budi, friendship.ID, true); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("accept after block error = %v, want ErrForbidden", err)
	}
	if _, err := fx.svc.SendRequest(ctx, alice, budi); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("new request over blocked edge error = %v, want ErrConflict", err)
	}
}

func TestListFriendsOnlyAccepted(t *testing.T) {
	fx := newFriendshipFixture()
	ctx := context.Background()
	alice := uuid.New()
	budi := uuid.New()
	citra := uuid.New()

	accepted, err := fx.svc.SendRequest(ctx, alice, budi)
	if err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}
	if _, err := fx.svc.Respond(ctx, budi, accepted.ID, true); err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if _, err := fx.svc.SendRequest(ctx, citra, alice); err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	friends, err := fx.svc.ListFriends(ctx, alice)
	if err != nil {
		t.Fatalf("ListFriends failed: %v", err)
	}
	if len(friends) != 1 {
		t.Fatalf("ListFriends returned %d edges, want 1", len(friends))
	}
	if friends[0].OtherParty(alice) != budi {
		t.Error("accepted friend is not the expected user")
	}

	pending, err := fx.svc.ListPendingRequests(ctx, alice)
	if err != nil {
		t.Fatalf("ListPendingRequests failed: %v", err)
	}
	if len(pending) != 1 || pending[0].RequesterID != citra {
		t.Error("pending requests do not contain citra's request")
	}
}
