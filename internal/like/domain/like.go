package domain

import userdomain "github.com/AlibekovAA/smalltalk-feed/internal/user/domain"

// Like records that UserID endorsed PostID. A (PostID, UserID) pair exists at most once.
type Like struct {
	PostID int64
	UserID userdomain.ID
}
