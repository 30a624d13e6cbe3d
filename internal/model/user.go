package model

import "time"

// How many recent-activity items we keep per user. Older entries are
// trimmed on append.
const RecentActivityLimit = 10

// User represents a registered account.
//
// Authentication (password, sessions, email verification) lives in the
// upstream auth layer — this core only reads users to decide who to notify
// and keeps their garden statistics current.
//
// Notifications is the opt-out flag for reminder emails. The reminder
// engine must skip a user whose flag is false without treating it as an
// error and without touching the record.
type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Notifications  bool      `json:"notifications"`
	TotalPlants    int       `json:"totalPlants"`
	TasksCompleted int       `json:"tasksCompleted"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Activity is one entry in a user's recent-activity feed
// ("Added Monstera to garden").
type Activity struct {
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

// NotificationTarget is the slice of a user the reminder engine needs:
// where to deliver and whether delivery is wanted.
type NotificationTarget struct {
	Name    string
	Address string
	Enabled bool
}
