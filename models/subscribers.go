package models

import "time"

// User is one private-chat subscriber receiving every report.
type User struct {
	ID        int64
	Username  string
	CreatedAt time.Time
}

// Channel is a broadcast target. Channels the bot was removed from are
// deactivated, not deleted, so re-adding the bot restores history.
type Channel struct {
	ID       int64
	Title    string
	IsActive bool
}
