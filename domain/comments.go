package domain

import "time"

type Comment struct {
	Id          int64         `json:"id"`
	CommentText string        `json:"commentText"`
	Timestamp   time.Time     `json:"timestamp"`
	User        CommentAuthor `json:"user"`
}

// CommentAuthor is the user subset the backend embeds in comments
type CommentAuthor struct {
	Id          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// CommentRequest is the payload for adding a comment to a post
type CommentRequest struct {
	CommentText string `json:"commentText"`
	UserId      int64  `json:"userId"`
}

// AppendComment adds a comment to a copied list, oldest first.
func AppendComment(list []Comment, c Comment) []Comment {
	out := make([]Comment, 0, len(list)+1)
	out = append(out, list...)
	return append(out, c)
}

// ReplaceComment swaps the comment with oldId for the given comment,
// preserving its position.
func ReplaceComment(list []Comment, oldId int64, c Comment) []Comment {
	out := make([]Comment, len(list))
	for i, existing := range list {
		if existing.Id == oldId {
			out[i] = c
		} else {
			out[i] = existing
		}
	}
	return out
}
