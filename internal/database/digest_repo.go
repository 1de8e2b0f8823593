package database

import (
	"fmt"

	"github.com/diegoclair/slack-deadline-bot/internal/domain/contract"
	"github.com/diegoclair/slack-deadline-bot/internal/domain/entity"
)

type digestRepository struct {
	db dbConn
}

func newDigestRepo(db dbConn) contract.DigestRepo {
	return &digestRepository{db: db}
}

func (r *digestRepository) Create(record *entity.DigestRecord) error {
	query := `
		INSERT INTO digest_log (slack_team_id, digest_date, entries)
		VALUES (?, ?, ?)
	`

	result, err := r.db.Exec(query, record.SlackTeamID, record.DigestDate, record.Entries)
	if err != nil {
		if isUniqueViolation(err) {
			// The fence already exists for this (team, day); writing it twice
			// changes nothing.
			return nil
		}
		return fmt.Errorf("failed to create digest record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id
	return nil
}

func (r *digestRepository) WasSent(slackTeamID, digestDate string) (bool, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(1) FROM digest_log WHERE slack_team_id = ? AND digest_date = ?`,
		slackTeamID, digestDate,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check digest record: %w", err)
	}

	return count > 0, nil
}
