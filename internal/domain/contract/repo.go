package contract

import (
	"context"
	"time"

	"github.com/diegoclair/slack-deadline-bot/internal/domain/entity"
)

// DataManager aggregates all repository interfaces
type DataManager interface {
	WithTransaction(ctx context.Context, fn func(dm DataManager) error) error
	Project() ProjectRepo
	Reminder() ReminderRepo
	Digest() DigestRepo
	TeamConfig() TeamConfigRepo
}

// ProjectRepo defines the contract for the project repository
type ProjectRepo interface {
	Create(project *entity.Project) error
	GetByID(id int64) (*entity.Project, error)
	GetByTeam(slackTeamID string) ([]*entity.Project, error)
	// GetDueWithin returns the team's projects with from < due_at <= to,
	// ordered by due instant ascending.
	GetDueWithin(slackTeamID string, from, to time.Time) ([]*entity.Project, error)
	Delete(id int64) error
}

// ReminderRepo defines the contract for the reminder state store
type ReminderRepo interface {
	Create(reminder *entity.Reminder) error
	GetByProject(projectID int64) ([]*entity.Reminder, error)
	// ListDue returns unfired reminders with remind_at <= nowUTC, joined with
	// their projects. It never mutates state and is safe to call repeatedly.
	ListDue(nowUTC time.Time) ([]*entity.DueReminder, error)
	// MarkFired sets fired_at only if it is still unset and returns the value
	// that ended up stored, so a retry after a crash between send and mark
	// observes the original fired_at instead of overwriting it.
	MarkFired(reminderID int64, firedAtUTC time.Time) (time.Time, error)
}

// DigestRepo defines the contract for the per-(team, local day) digest fence
type DigestRepo interface {
	Create(record *entity.DigestRecord) error
	WasSent(slackTeamID, digestDate string) (bool, error)
}

// TeamConfigRepo defines the contract for per-team settings
type TeamConfigRepo interface {
	GetByTeam(slackTeamID string) (*entity.TeamConfig, error)
	Upsert(cfg *entity.TeamConfig) error
	// ListWithDigest returns only teams that have a digest channel configured
	ListWithDigest() ([]*entity.TeamConfig, error)
}
