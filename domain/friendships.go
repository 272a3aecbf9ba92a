package domain

import "time"

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "PENDING"
	FriendshipAccepted FriendshipStatus = "ACCEPTED"
	FriendshipRejected FriendshipStatus = "REJECTED"
)

// Friendship is one directed record between two users; undirected
// "friend" semantics are derived by checking both endpoint roles.
type Friendship struct {
	Id        int64            `json:"id"`
	Requester User             `json:"requester"`
	Addressee User             `json:"addressee"`
	Status    FriendshipStatus `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
}

// FriendshipRequest is the payload for sending a friend request
type FriendshipRequest struct {
	RequesterUserId int64  `json:"requesterUserId"`
	AddresseeUserId int64  `json:"addresseeUserId"`
	Status          string `json:"status,omitempty"`
}

func (f *Friendship) between(a, b int64) bool {
	return (f.Requester.Id == a && f.Addressee.Id == b) ||
		(f.Requester.Id == b && f.Addressee.Id == a)
}

// OtherUser returns the endpoint of the friendship that is not the
// given user.
func (f *Friendship) OtherUser(userId int64) User {
	if f.Requester.Id == userId {
		return f.Addressee
	}
	return f.Requester
}

// IsFriend holds iff some record is ACCEPTED between a and b,
// regardless of who requested.
func IsFriend(list []Friendship, a, b int64) bool {
	for i := range list {
		if list[i].Status == FriendshipAccepted && list[i].between(a, b) {
			return true
		}
	}
	return false
}

// IsPending holds iff some record is PENDING with requester from and
// addressee to. Direction matters: the addressee sees an incoming
// request, not an outgoing one.
func IsPending(list []Friendship, from, to int64) bool {
	for i := range list {
		if list[i].Status == FriendshipPending &&
			list[i].Requester.Id == from && list[i].Addressee.Id == to {
			return true
		}
	}
	return false
}

// HasOpenFriendship reports whether any non-rejected record exists
// between the pair, in either direction. Used to refuse duplicate
// requests before they hit the network.
func HasOpenFriendship(list []Friendship, a, b int64) bool {
	for i := range list {
		if list[i].Status != FriendshipRejected && list[i].between(a, b) {
			return true
		}
	}
	return false
}

func AcceptedCount(list []Friendship) int {
	n := 0
	for i := range list {
		if list[i].Status == FriendshipAccepted {
			n++
		}
	}
	return n
}

// IncomingPending filters requests awaiting the given user's answer.
func IncomingPending(list []Friendship, userId int64) []Friendship {
	out := []Friendship{}
	for _, f := range list {
		if f.Status == FriendshipPending && f.Addressee.Id == userId {
			out = append(out, f)
		}
	}
	return out
}

// OutgoingPending filters requests the given user has sent and are
// still unanswered.
func OutgoingPending(list []Friendship, userId int64) []Friendship {
	out := []Friendship{}
	for _, f := range list {
		if f.Status == FriendshipPending && f.Requester.Id == userId {
			out = append(out, f)
		}
	}
	return out
}

func AcceptedFriendships(list []Friendship) []Friendship {
	out := []Friendship{}
	for _, f := range list {
		if f.Status == FriendshipAccepted {
			out = append(out, f)
		}
	}
	return out
}

// AppendFriendship adds a record to a copied list.
func AppendFriendship(list []Friendship, f Friendship) []Friendship {
	out := make([]Friendship, 0, len(list)+1)
	out = append(out, list...)
	return append(out, f)
}

// SetFriendshipStatus returns a copy of the list with the status of
// the record with the given id changed.
func SetFriendshipStatus(list []Friendship, id int64, status FriendshipStatus) []Friendship {
	out := make([]Friendship, len(list))
	for i, f := range list {
		if f.Id == id {
			f.Status = status
		}
		out[i] = f
	}
	return out
}

// ReplaceFriendship swaps the record with oldId for the given one,
// preserving its position.
func ReplaceFriendship(list []Friendship, oldId int64, f Friendship) []Friendship {
	out := make([]Friendship, len(list))
	for i, existing := range list {
		if existing.Id == oldId {
			out[i] = f
		} else {
			out[i] = existing
		}
	}
	return out
}
