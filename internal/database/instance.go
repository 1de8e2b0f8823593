package database

import (
	"context"
	"fmt"

	"github.com/diegoclair/slack-deadline-bot/internal/domain/contract"
)

// instance implements the DataManager interface
type instance struct {
	db             *DB
	projectRepo    contract.ProjectRepo
	reminderRepo   contract.ReminderRepo
	digestRepo     contract.DigestRepo
	teamConfigRepo contract.TeamConfigRepo
}

// NewInstance creates a new database instance with all repositories
func NewInstance(db *DB) contract.DataManager {
	i := &instance{db: db}
	i.projectRepo = newProjectRepo(db.conn)
	i.reminderRepo = newReminderRepo(db.conn)
	i.digestRepo = newDigestRepo(db.conn)
	i.teamConfigRepo = newTeamConfigRepo(db.conn)
	return i
}

// repoInstancesWithConn creates repository instances bound to a custom dbConn
func repoInstancesWithConn(db dbConn) *instance {
	return &instance{
		projectRepo:    newProjectRepo(db),
		reminderRepo:   newReminderRepo(db),
		digestRepo:     newDigestRepo(db),
		teamConfigRepo: newTeamConfigRepo(db),
	}
}

func (i *instance) Project() contract.ProjectRepo {
	return i.projectRepo
}

func (i *instance) Reminder() contract.ReminderRepo {
	return i.reminderRepo
}

func (i *instance) Digest() contract.DigestRepo {
	return i.digestRepo
}

func (i *instance) TeamConfig() contract.TeamConfigRepo {
	return i.teamConfigRepo
}

// WithTransaction executes a function within a database transaction
func (i *instance) WithTransaction(ctx context.Context, fn func(dm contract.DataManager) error) error {
	tx, err := i.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txInstance := repoInstancesWithConn(tx)
	err = fn(txInstance)
	if err != nil {
		rbErr := tx.Rollback()
		if rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v, original error: %w", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}
