package entity

import "time"

type Project struct {
	ID          int64     `json:"id" db:"id"`
	SlackTeamID string    `json:"slack_team_id" db:"slack_team_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	DueAt       time.Time `json:"due_at" db:"due_at"`     // always UTC
	Timezone    string    `json:"timezone" db:"timezone"` // IANA name used at creation, kept for display
	RoleID      string    `json:"role_id" db:"role_id"`   // Slack user group mentioned by reminders
	ChannelID   string    `json:"channel_id" db:"channel_id"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

type Reminder struct {
	ID            int64      `json:"id" db:"id"`
	ProjectID     int64      `json:"project_id" db:"project_id"`
	OffsetSeconds int64      `json:"offset_seconds" db:"offset_seconds"`
	RemindAt      time.Time  `json:"remind_at" db:"remind_at"` // due_at minus offset, UTC
	FiredAt       *time.Time `json:"fired_at" db:"fired_at"`   // nil until delivered, then never cleared
}

// Offset returns the lead time before the project due instant
func (r *Reminder) Offset() time.Duration {
	return time.Duration(r.OffsetSeconds) * time.Second
}

// DueReminder is a reminder joined with its project, as returned by ListDue
type DueReminder struct {
	Reminder
	Project Project
}

type TeamConfig struct {
	ID              int64     `json:"id" db:"id"`
	SlackTeamID     string    `json:"slack_team_id" db:"slack_team_id"`
	Timezone        string    `json:"timezone" db:"timezone"`
	DigestChannelID string    `json:"digest_channel_id" db:"digest_channel_id"` // empty disables the digest
	DigestTime      string    `json:"digest_time" db:"digest_time"`             // HH:MM in team local time
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// DigestRecord is the durable fence that keeps a team's digest at one per
// local day. Records are never updated or deleted once written.
type DigestRecord struct {
	ID          int64     `json:"id" db:"id"`
	SlackTeamID string    `json:"slack_team_id" db:"slack_team_id"`
	DigestDate  string    `json:"digest_date" db:"digest_date"` // YYYY-MM-DD in the team's timezone
	Entries     int       `json:"entries" db:"entries"`
	SentAt      time.Time `json:"sent_at" db:"sent_at"`
}
