// Package policy centralizes every row-level access rule in one place.
// Services must consult these predicates before touching a row; a denied
// read or write surfaces to the caller as "not found" so that denial
// leaks nothing about the row's existence.
package policy

import (
	"anoa.com/kirimpesan/internal/model"
	"github.com/google/uuid"
)

type Op string

const (
	OpSelect Op = "select"
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Profile gates access to a profile owned by owner. related must be true
// when any friendship row exists between caller and owner, in any status
// and either direction. Pending requests and blocked pairs still expose
// the profile; that is intentional so the UI can render the other side
// of an unanswered request.
func Profile(caller uuid.UUID, op Op, owner uuid.UUID, related bool) bool {
	switch op {
	case OpSelect:
		return caller == owner || related
	case OpInsert, OpUpdate:
		return caller == owner
	}
	return false
}

// Friendship gates access to a friendship edge. Only the requester may
// create the edge; both sides may read, update and delete it.
func Friendship(caller uuid.UUID, op Op, f *model.Friendship) bool {
	switch op {
	case OpInsert:
		return caller == f.RequesterID
	case OpSelect, OpUpdate, OpDelete:
		return f.Involves(caller)
	}
	return false
}

// Conversation gates access to a conversation. Participants may read,
// create and delete; conversations are never updated in place.
func Conversation(caller uuid.UUID, op Op, c *model.Conversation) bool {
	switch op {
	case OpSelect, OpInsert, OpDelete:
		return c.HasParticipant(caller)
	}
	return false
}

// Message gates access to a message inside conv. Reads require
// participation in the parent conversation; inserts additionally require
// the caller to be the sender; updates are sender-only.
func Message(caller uuid.UUID, op Op, msg *model.Message, conv *model.Conversation) bool {
	switch op {
	case OpSelect:
		return conv.HasParticipant(caller)
	case OpInsert:
		return caller == msg.SenderID && conv.HasParticipant(caller)
	case OpUpdate:
		return caller == msg.SenderID
	}
	return false
}

// Notification gates access to a notification row. Only the actor that
// triggered the event may create it; everything else is recipient-only.
func Notification(caller uuid.UUID, op Op, n *model.Notification) bool {
	switch op {
	case OpInsert:
		return n.ActorID != nil && caller == *n.ActorID
	case OpSelect, OpUpdate, OpDelete:
		return caller == n.UserID
	}
	return false
}
