package contract

import (
	"context"

	"github.com/diegoclair/slack-deadline-bot/internal/domain/entity"
)

// CreateProjectInput carries everything needed to create a project deadline.
// DueLocal is wall-clock time in Timezone; when Timezone is empty the team's
// configured timezone applies, then UTC.
type CreateProjectInput struct {
	SlackTeamID string
	Name        string
	Description string
	DueLocal    string // "YYYY-MM-DD HH:MM" (24h)
	Timezone    string
	RoleID      string
	ChannelID   string
	Offsets     string // optional, e.g. "3d,24h"; empty picks defaults from lead time
	CreatedBy   string
}

// TeamConfigInput updates per-team settings; empty fields are left unchanged
type TeamConfigInput struct {
	SlackTeamID     string
	Timezone        string
	DigestChannelID string
	DigestTime      string // HH:MM (24h)
}

type DeadlineService interface {
	CreateProject(ctx context.Context, in CreateProjectInput) (*entity.Project, []*entity.Reminder, error)
	AddOffsets(ctx context.Context, projectID int64, offsets string) ([]*entity.Reminder, error)
	DeleteProject(ctx context.Context, projectID int64) error
	ListProjects(slackTeamID string) ([]*entity.Project, error)
	GetTeamConfig(slackTeamID string) (*entity.TeamConfig, error)
	SetTeamConfig(ctx context.Context, in TeamConfigInput) (*entity.TeamConfig, error)
}
