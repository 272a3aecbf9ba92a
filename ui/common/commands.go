package common

import "github.com/deemkeen/plaza/domain"

type SessionState uint

const (
	LoginView SessionState = iota
	RegisterView
	FeedView
	WallView
	WritePostView
	CommentsView
	FriendsView
	AddFriendView
	EditProfileView
	DeleteAccountView
)

// SessionStartedMsg announces a successful login.
type SessionStartedMsg struct {
	Session domain.Session
}

// SessionEndedMsg announces a logout, voluntary or forced (refresh
// failure, account deletion).
type SessionEndedMsg struct {
	Reason string
}

// NoticeMsg is a transient user-facing notification.
type NoticeMsg struct {
	Text    string
	IsError bool
}

// EditPostMsg routes a post into the compose view for editing.
type EditPostMsg struct {
	Post domain.Post
}

// OpenWallMsg switches to the wall of the given user.
type OpenWallMsg struct {
	UserId int64
}

// OpenCommentsMsg opens the comment panel of a post.
type OpenCommentsMsg struct {
	Post domain.Post
}

// PostsChangedMsg tells post lists to reload after a mutation settled.
type PostsChangedMsg struct{}

// FriendshipsChangedMsg tells friendship views to reload.
type FriendshipsChangedMsg struct{}
