package policy

import (
	"testing"

	"anoa.com/kirimpesan/internal/model"
	"github.com/google/uuid"
)

func TestProfilePolicy(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	tests := []struct {
		name    string
		caller  uuid.UUID
		op      Op
		related bool
		want    bool
	}{
		{"owner reads own profile", owner, OpSelect, false, true},
		{"related user reads profile", stranger, OpSelect, true, true},
		{"stranger cannot read profile", stranger, OpSelect, false, false},
		{"owner creates own profile", owner, OpInsert, false, true},
		{"stranger cannot create profile", stranger, OpInsert, true, false},
		{"owner updates own profile", owner, OpUpdate, false, true},
		{"related user cannot update profile", stranger, OpUpdate, true, false},
		{"nobody deletes profiles", owner, OpDelete, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Profile(tt.caller, tt.op, owner, tt.related); got != tt.want {
				t.Errorf("Profile(%v) = %v, want %v", tt.op, got, tt.want)
			}
		})
	}
}

func TestFriendshipPolicy(t *testing.T) {
	requester := uuid.New()
	addressee := uuid.New()
	stranger := uuid.New()

	f := &model.Friendship{
		RequesterID: requester,
		AddresseeID: addressee,
		Status:      model.FriendshipPending,
	}

	tests := []struct {
		name   string
		caller uuid.UUID
		op     Op
		want   bool
	}{
		{"requester inserts", requester, OpInsert, true},
		{"addressee cannot insert", addressee, OpInsert, false},
		{"stranger cannot insert", stranger, OpInsert, false},
		{"requester reads", requester, OpSelect, true},
		{"addressee reads", addressee, OpSelect, true},
		{"stranger cannot read", stranger, OpSelect, false},
		{"addressee updates", addressee, OpUpdate, true},
		{"requester deletes", requester, OpDelete, true},
		{"stranger cannot delete", stranger, OpDelete, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Friendship(tt.caller, tt.op, f); got != tt.want {
				t.Errorf("Friendship(%v) = %v, want %v", tt.op, got, tt.want)
			}
		})
	}
}

func TestConversationPolicy(t *testing.T) {
	p1 := uuid.New()
	p2 := uuid.New()
	stranger := uuid.New()

	conv := &model.Conversation{Participant1ID: p1, Participant2ID: p2}

	for _, op := range []Op{OpSelect, OpInsert, OpDelete} {
		if !Conversation(p1, op, conv) {
			t.Errorf("participant 1 denied %v", op)
		}
		if !Conversation(p2, op, conv) {
			t.Errorf("participant 2 denied %v", op)
		}
		if Conversation(stranger, op, conv) {
			t.Errorf("stranger allowed %v", op)
		}
	}

	if Conversation(p1, OpUpdate, conv) {
		t.Error("conversations must not be updatable")
	}
}

func TestMessagePolicy(t *testing.T) {
	sender := uuid.New()
	peer := uuid.New()
	stranger := uuid.New()

	conv := &model.Conversation{Participant1ID: sender, Participant2ID: peer}
	msg := &model.Message{ConversationID: conv.ID, SenderID: sender}

	if !Message(sender, OpSelect, msg, conv) {
		t.Error("sender denied read")
	}
	if !Message(peer, OpSelect, msg, conv) {
		t.Error("peer denied read")
	}
	if Message(stranger, OpSelect, msg, conv) {
		t.Error("stranger allowed read")
	}

	if !Message(sender, OpInsert, msg, conv) {
		t.Error("sender denied insert into own conversation")
	}
	if Message(peer, OpInsert, msg, conv) {
		t.Error("non-sender allowed insert of someone else's message")
	}

	// A sender who is not a participant must not be able to insert.
	outsideMsg := &model.Message{ConversationID: conv.ID, SenderID: stranger}
	if Message(stranger, OpInsert, outsideMsg, conv) {
		t.Error("non-participant sender allowed insert")
	}

	if !Message(sender, OpUpdate, msg, conv) {
		t.Error("sender denied edit")
	}
	if Message(peer, OpUpdate, msg, conv) {
		t.Error("peer allowed edit of sender's message")
	}
}

func TestNotificationPolicy(t *testing.T) {
	actor := uuid.New()
	recipient := uuid.New()
	stranger := uuid.New()

	n := &model.Notification{
		UserID:  recipient,
		ActorID: &actor,
		Type:    model.NotificationFriendRequest,
	}

	if !Notification(actor, OpInsert, n) {
		t.Error("actor denied insert")
	}
	if Notification(recipient, OpInsert, n) {
		t.Error("recipient allowed insert of someone else's event")
	}

	if !Notification(recipient, OpSelect, n) {
		t.Error("recipient denied read")
	}
	if Notification(actor, OpSelect, n) {
		t.Error("actor allowed read of recipient's notification")
	}
	if Notification(stranger, OpUpdate, n) {
		t.Error("stranger allowed update")
	}
	if !Notification(recipient, OpUpdate, n) {
		t.Error("recipient denied mark-as-read")
	}

	noActor := &model.Notification{UserID: recipient, Type: model.NotificationFriendRequest}
	if Notification(actor, OpInsert, noActor) {
		t.Error("insert allowed without an actor")
	}
}
