package database

import (
	"testing"
	"time"

	"github.com/diegoclair/slack-deadline-bot/internal/domain"
	"github.com/diegoclair/slack-deadline-bot/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestProject(t *testing.T, db *DB, due time.Time) *entity.Project {
	t.Helper()

	project := testProject(due)
	require.NoError(t, newProjectRepo(db.conn).Create(project))
	return project
}

func TestReminderRepository_Create_DuplicateOffset(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newReminderRepo(db.conn)
	due := time.Date(2025, 10, 1, 18, 0, 0, 0, time.UTC)
	project := createTestProject(t, db, due)

	reminder := &entity.Reminder{
		ProjectID:     project.ID,
		OffsetSeconds: 86400,
		RemindAt:      due.Add(-24 * time.Hour),
	}
	require.NoError(t, repo.Create(reminder))
	assert.NotZero(t, reminder.ID)

	duplicate := &entity.Reminder{
		ProjectID:     project.ID,
		OffsetSeconds: 86400,
		RemindAt:      due.Add(-24 * time.Hour),
	}
	err := repo.Create(duplicate)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateOffset)

	reminders, err := repo.GetByProject(project.ID)
	require.NoError(t, err)
	assert.Len(t, reminders, 1, "Expected duplicate offset to never create a second row")
}

func TestReminderRepository_ListDue(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newReminderRepo(db.conn)
	now := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	due := now.Add(24 * time.Hour)
	project := createTestProject(t, db, due)

	dueReminder := &entity.Reminder{
		ProjectID:     project.ID,
		OffsetSeconds: int64((25 * time.Hour).Seconds()),
		RemindAt:      now.Add(-time.Hour),
	}
	require.NoError(t, repo.Create(dueReminder))

	futureReminder := &entity.Reminder{
		ProjectID:     project.ID,
		OffsetSeconds: int64((4 * time.Hour).Seconds()),
		RemindAt:      due.Add(-4 * time.Hour),
	}
	require.NoError(t, repo.Create(futureReminder))

	list, err := repo.ListDue(now)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, dueReminder.ID, list[0].ID)
	assert.Equal(t, project.ID, list[0].Project.ID)
	assert.Equal(t, project.ChannelID, list[0].Project.ChannelID)
	assert.True(t, list[0].Project.DueAt.Equal(due))

	// Firing it removes it from subsequent scans
	_, err = repo.MarkFired(dueReminder.ID, now)
	require.NoError(t, err)

	list, err = repo.ListDue(now)
	require.NoError(t, err)
	assert.Empty(t, list, "Expected fired reminders to never be listed as due")
}

func TestReminderRepository_ListDue_IsReadOnly(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newReminderRepo(db.conn)
	now := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	project := createTestProject(t, db, now.Add(time.Hour))

	reminder := &entity.Reminder{
		ProjectID:     project.ID,
		OffsetSeconds: int64((2 * time.Hour).Seconds()),
		RemindAt:      now.Add(-time.Hour),
	}
	require.NoError(t, repo.Create(reminder))

	first, err := repo.ListDue(now)
	require.NoError(t, err)
	second, err := repo.ListDue(now)
	require.NoError(t, err)

	assert.Len(t, first, 1)
	assert.Len(t, second, 1, "Expected repeated scans to keep returning unfired reminders")
}

func TestReminderRepository_MarkFired_Idempotent(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newReminderRepo(db.conn)
	due := time.Date(2025, 10, 1, 18, 0, 0, 0, time.UTC)
	project := createTestProject(t, db, due)

	reminder := &entity.Reminder{
		ProjectID:     project.ID,
		OffsetSeconds: 86400,
		RemindAt:      due.Add(-24 * time.Hour),
	}
	require.NoError(t, repo.Create(reminder))

	first := time.Date(2025, 9, 30, 18, 0, 0, 0, time.UTC)
	firedAt, err := repo.MarkFired(reminder.ID, first)
	require.NoError(t, err)
	assert.True(t, firedAt.Equal(first))

	// A retry with a later timestamp must keep the original fired_at
	second := first.Add(5 * time.Minute)
	firedAt, err = repo.MarkFired(reminder.ID, second)
	require.NoError(t, err)
	assert.True(t, firedAt.Equal(first), "Expected original fired_at, got %v", firedAt)

	reminders, err := repo.GetByProject(project.ID)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	require.NotNil(t, reminders[0].FiredAt)
	assert.True(t, reminders[0].FiredAt.Equal(first))
}

func TestReminderRepository_MarkFired_NotFound(t *testing.T) {
	db := SetupTestDB(t)
	defer CleanupTestDB(t, db)

	repo := newReminderRepo(db.conn)

	_, err := repo.MarkFired(12345, time.Now().UTC())
	require.Error(t, err)
}
