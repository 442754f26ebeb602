package policy

import (
	"anoa.com/kirimpesan/internal/model"
	"github.com/google/uuid"
)

// Friendship state machine:
//
//	(absent) --request--> pending --accept--> accepted
//	pending  --decline--> (deleted)
//	accepted --remove---> (deleted)
//	pending|accepted --block--> blocked (terminal, no unblock)

// CanRequest reports whether requester may open a new edge to addressee.
// The symmetric no-existing-edge check is done separately against storage.
func CanRequest(requester, addressee uuid.UUID) bool {
	return requester != addressee && requester != uuid.Nil && addressee != uuid.Nil
}

// CanTransition reports whether the status change itself is legal,
// independent of who asks for it. blocked is terminal.
func CanTransition(from, to model.FriendshipStatus) bool {
	if from == model.FriendshipBlocked {
		return false
	}
	switch to {
	case model.FriendshipAccepted:
		return from == model.FriendshipPending
	case model.FriendshipBlocked:
		return true
	}
	return false
}

// CanRespond reports whether caller may accept or decline f. Accepting
// is addressee-only; declining is open to either participant, which is
// how a requester withdraws their own pending request.
func CanRespond(f *model.Friendship, caller uuid.UUID, accept bool) bool {
	if f.Status != model.FriendshipPending {
		return false
	}
	if accept {
		return caller == f.AddresseeID
	}
	return f.Involves(caller)
}

// CanRemove reports whether caller may unfriend, which deletes the edge.
func CanRemove(f *model.Friendship, caller uuid.UUID) bool {
	return f.Status == model.FriendshipAccepted && f.Involves(caller)
}

// CanBlock reports whether caller may move the edge to blocked.
func CanBlock(f *model.Friendship, caller uuid.UUID) bool {
	return f.Involves(caller) && CanTransition(f.Status, model.FriendshipBlocked)
}
