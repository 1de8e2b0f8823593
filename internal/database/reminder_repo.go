package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/diegoclair/slack-deadline-bot/internal/domain"
	"github.com/diegoclair/slack-deadline-bot/internal/domain/contract"
	"github.com/diegoclair/slack-deadline-bot/internal/domain/entity"
	"github.com/mattn/go-sqlite3"
)

type reminderRepository struct {
	db dbConn
}

func newReminderRepo(db dbConn) contract.ReminderRepo {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) Create(reminder *entity.Reminder) error {
	query := `
		INSERT INTO reminders (project_id, offset_seconds, remind_at)
		VALUES (?, ?, ?)
	`

	result, err := r.db.Exec(query,
		reminder.ProjectID,
		reminder.OffsetSeconds,
		reminder.RemindAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateOffset
		}
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	reminder.ID = id
	return nil
}

func (r *reminderRepository) GetByProject(projectID int64) ([]*entity.Reminder, error) {
	query := `
		SELECT id, project_id, offset_seconds, remind_at, fired_at
		FROM reminders
		WHERE project_id = ?
		ORDER BY remind_at ASC
	`

	rows, err := r.db.Query(query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*entity.Reminder
	for rows.Next() {
		reminder := &entity.Reminder{}
		var firedAt sql.NullTime
		err := rows.Scan(
			&reminder.ID,
			&reminder.ProjectID,
			&reminder.OffsetSeconds,
			&reminder.RemindAt,
			&firedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminder.RemindAt = reminder.RemindAt.UTC()
		if firedAt.Valid {
			t := firedAt.Time.UTC()
			reminder.FiredAt = &t
		}
		reminders = append(reminders, reminder)
	}

	return reminders, rows.Err()
}

func (r *reminderRepository) ListDue(nowUTC time.Time) ([]*entity.DueReminder, error) {
	query := `
		SELECT r.id, r.project_id, r.offset_seconds, r.remind_at,
			p.id, p.slack_team_id, p.name, p.description, p.due_at, p.timezone,
			p.role_id, p.channel_id, p.created_by, p.created_at
		FROM reminders r
		JOIN projects p ON p.id = r.project_id
		WHERE r.fired_at IS NULL AND r.remind_at <= ?
		ORDER BY r.remind_at ASC
	`

	rows, err := r.db.Query(query, nowUTC.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	defer rows.Close()

	var due []*entity.DueReminder
	for rows.Next() {
		item := &entity.DueReminder{}
		err := rows.Scan(
			&item.ID,
			&item.ProjectID,
			&item.OffsetSeconds,
			&item.RemindAt,
			&item.Project.ID,
			&item.Project.SlackTeamID,
			&item.Project.Name,
			&item.Project.Description,
			&item.Project.DueAt,
			&item.Project.Timezone,
			&item.Project.RoleID,
			&item.Project.ChannelID,
			&item.Project.CreatedBy,
			&item.Project.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due reminder: %w", err)
		}
		item.RemindAt = item.RemindAt.UTC()
		item.Project.DueAt = item.Project.DueAt.UTC()
		due = append(due, item)
	}

	return due, rows.Err()
}

func (r *reminderRepository) MarkFired(reminderID int64, firedAtUTC time.Time) (time.Time, error) {
	firedAtUTC = firedAtUTC.UTC()

	// Conditional update: a reminder that already fired keeps its original
	// fired_at no matter how often this is retried.
	result, err := r.db.Exec(
		`UPDATE reminders SET fired_at = ? WHERE id = ? AND fired_at IS NULL`,
		firedAtUTC, reminderID,
	)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to mark reminder fired: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected > 0 {
		return firedAtUTC, nil
	}

	var existing sql.NullTime
	err = r.db.QueryRow(`SELECT fired_at FROM reminders WHERE id = ?`, reminderID).Scan(&existing)
	if err == sql.ErrNoRows {
		return time.Time{}, fmt.Errorf("reminder %d not found", reminderID)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read fired_at: %w", err)
	}
	if !existing.Valid {
		return time.Time{}, fmt.Errorf("reminder %d claims to be fired but has no fired_at", reminderID)
	}

	return existing.Time.UTC(), nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
