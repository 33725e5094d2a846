package domain

import (
	"time"

	userdomain "github.com/AlibekovAA/smalltalk-feed/internal/user/domain"
)

// Post is a stored post. ID 0 means the store has not assigned one yet.
type Post struct {
	ID        int64
	Content   string
	CreatedAt time.Time
	AuthorID  userdomain.ID
}

// EnrichedView is the read model handed to callers. It is built per request
// and never cached.
type EnrichedView struct {
	ID        int64
	Content   string
	CreatedAt time.Time
	Author    string
	LikeCount int64
	Liked     bool
}

// Submission is an untrusted write request: the author claims a username and
// proves it with Token.
type Submission struct {
	AuthorUsername string
	Content        string
	Token          string
}

// CreatedEvent is published after a post has been persisted.
type CreatedEvent struct {
	PostID    int64     `json:"post_id"`
	AuthorID  int64     `json:"author_id"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}
