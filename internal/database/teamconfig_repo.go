package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/diegoclair/slack-deadline-bot/internal/domain/contract"
	"github.com/diegoclair/slack-deadline-bot/internal/domain/entity"
)

type teamConfigRepository struct {
	db dbConn
}

func newTeamConfigRepo(db dbConn) contract.TeamConfigRepo {
	return &teamConfigRepository{db: db}
}

const teamConfigColumns = `id, slack_team_id, timezone, digest_channel_id, digest_time, created_at, updated_at`

func (r *teamConfigRepository) GetByTeam(slackTeamID string) (*entity.TeamConfig, error) {
	query := `SELECT ` + teamConfigColumns + ` FROM team_configs WHERE slack_team_id = ?`

	cfg, err := scanTeamConfig(r.db.QueryRow(query, slackTeamID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team config: %w", err)
	}

	return cfg, nil
}

func (r *teamConfigRepository) Upsert(cfg *entity.TeamConfig) error {
	query := `
		INSERT INTO team_configs (slack_team_id, timezone, digest_channel_id, digest_time)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(slack_team_id) DO UPDATE SET
			timezone = excluded.timezone,
			digest_channel_id = excluded.digest_channel_id,
			digest_time = excluded.digest_time,
			updated_at = ?
	`

	_, err := r.db.Exec(query,
		cfg.SlackTeamID,
		cfg.Timezone,
		cfg.DigestChannelID,
		cfg.DigestTime,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert team config: %w", err)
	}

	return nil
}

func (r *teamConfigRepository) ListWithDigest() ([]*entity.TeamConfig, error) {
	query := `SELECT ` + teamConfigColumns + ` FROM team_configs WHERE digest_channel_id != ''`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list digest configs: %w", err)
	}
	defer rows.Close()

	var configs []*entity.TeamConfig
	for rows.Next() {
		cfg, err := scanTeamConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team config: %w", err)
		}
		configs = append(configs, cfg)
	}

	return configs, rows.Err()
}

func scanTeamConfig(row rowScanner) (*entity.TeamConfig, error) {
	cfg := &entity.TeamConfig{}
	err := row.Scan(
		&cfg.ID,
		&cfg.SlackTeamID,
		&cfg.Timezone,
		&cfg.DigestChannelID,
		&cfg.DigestTime,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
