package domain

import (
	"fmt"
	"time"
)

type Post struct {
	Id        int64     `json:"id"`
	Content   string    `json:"content"`
	Author    User      `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PostRequest is the payload for creating and editing posts
type PostRequest struct {
	Content string `json:"content"`
	UserId  int64  `json:"userId"`
}

func (p *Post) ToString() string {
	return fmt.Sprintf("\n\tId: %d \n\tAuthor: %s \n\tContent: %s \n\tCreatedAt: %s", p.Id, p.Author.Username, p.Content, p.CreatedAt)
}

// PrependPost inserts a post at the head of a page, keeping the envelope
// totals in step. The content is capped at the page size so a full page
// does not grow past what the server would return.
func PrependPost(page Page[Post], post Post) Page[Post] {
	content := make([]Post, 0, len(page.Content)+1)
	content = append(content, post)
	content = append(content, page.Content...)
	if page.Size > 0 && len(content) > page.Size {
		content = content[:page.Size]
	}

	page.Content = content
	page.TotalElements++
	if page.Size > 0 {
		page.TotalPages = (page.TotalElements + page.Size - 1) / page.Size
	}
	return page
}

// RemovePost removes the post with the given id. Totals are only
// decremented when the post was actually present.
func RemovePost(page Page[Post], id int64) Page[Post] {
	content := make([]Post, 0, len(page.Content))
	removed := false
	for _, p := range page.Content {
		if p.Id == id {
			removed = true
			continue
		}
		content = append(content, p)
	}

	page.Content = content
	if removed {
		page.TotalElements--
		if page.Size > 0 {
			page.TotalPages = (page.TotalElements + page.Size - 1) / page.Size
		}
	}
	return page
}

// ReplacePost swaps the post with oldId for the given post, preserving
// its position. A page without oldId comes back unchanged.
func ReplacePost(page Page[Post], oldId int64, post Post) Page[Post] {
	content := make([]Post, len(page.Content))
	for i, p := range page.Content {
		if p.Id == oldId {
			content[i] = post
		} else {
			content[i] = p
		}
	}
	page.Content = content
	return page
}

// ContainsPost reports whether the page holds the given post id.
func ContainsPost(page Page[Post], id int64) bool {
	for _, p := range page.Content {
		if p.Id == id {
			return true
		}
	}
	return false
}
