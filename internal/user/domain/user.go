package domain

import "time"

type ID int64

type User struct {
	ID          ID
	Username    string
	DisplayName string
	CreatedAt   time.Time
}

// Name is what other users see: the display name, or the username when none is set.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
