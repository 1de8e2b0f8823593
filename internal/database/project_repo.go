package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/diegoclair/slack-deadline-bot/internal/domain/contract"
	"github.com/diegoclair/slack-deadline-bot/internal/domain/entity"
)

type projectRepository struct {
	db dbConn
}

func newProjectRepo(db dbConn) contract.ProjectRepo {
	return &projectRepository{db: db}
}

const projectColumns = `id, slack_team_id, name, description, due_at, timezone, role_id, channel_id, created_by, created_at`

func (r *projectRepository) Create(project *entity.Project) error {
	query := `
		INSERT INTO projects (slack_team_id, name, description, due_at, timezone, role_id, channel_id, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		project.SlackTeamID,
		project.Name,
		project.Description,
		project.DueAt.UTC(),
		project.Timezone,
		project.RoleID,
		project.ChannelID,
		project.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	project.ID = id
	return nil
}

func (r *projectRepository) GetByID(id int64) (*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`

	project, err := scanProject(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

func (r *projectRepository) GetByTeam(slackTeamID string) ([]*entity.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE slack_team_id = ? ORDER BY due_at ASC`

	rows, err := r.db.Query(query, slackTeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team projects: %w", err)
	}
	defer rows.Close()

	return collectProjects(rows)
}

func (r *projectRepository) GetDueWithin(slackTeamID string, from, to time.Time) ([]*entity.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects
		WHERE slack_team_id = ? AND due_at > ? AND due_at <= ?
		ORDER BY due_at ASC
	`

	rows, err := r.db.Query(query, slackTeamID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get due projects: %w", err)
	}
	defer rows.Close()

	return collectProjects(rows)
}

func (r *projectRepository) Delete(id int64) error {
	// ON DELETE CASCADE removes the project's reminders with it
	_, err := r.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*entity.Project, error) {
	project := &entity.Project{}
	err := row.Scan(
		&project.ID,
		&project.SlackTeamID,
		&project.Name,
		&project.Description,
		&project.DueAt,
		&project.Timezone,
		&project.RoleID,
		&project.ChannelID,
		&project.CreatedBy,
		&project.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	project.DueAt = project.DueAt.UTC()
	return project, nil
}

func collectProjects(rows *sql.Rows) ([]*entity.Project, error) {
	var projects []*entity.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}
