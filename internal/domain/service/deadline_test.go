package service

import (
	"context"
	"testing"
	"time"

	"github.com/diegoclair/slack-deadline-bot/internal/domain"
	"github.com/diegoclair/slack-deadline-bot/internal/domain/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func validCreateInput() contract.CreateProjectInput {
	return contract.CreateProjectInput{
		SlackTeamID: "T123456789",
		Name:        "API v2 launch",
		Description: "Ship the public API",
		DueLocal:    "2025-06-02 14:00",
		Timezone:    "UTC",
		RoleID:      "S123456789",
		ChannelID:   "C123456789",
		CreatedBy:   "U123456789",
	}
}

func TestDeadlineService_CreateProject(t *testing.T) {
	svc, dm, _, _ := setupService(t, testNow)
	ctx := context.Background()

	project, reminders, err := svc.Deadline.CreateProject(ctx, validCreateInput())
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.NotZero(t, project.ID)
	assert.True(t, project.DueAt.Equal(testNow.Add(26*time.Hour)))
	assert.Equal(t, "UTC", project.Timezone)

	// 26h of lead gets the single 4h default offset
	require.Len(t, reminders, 1)
	assert.Equal(t, int64((4*time.Hour).Seconds()), reminders[0].OffsetSeconds)
	assert.True(t, reminders[0].RemindAt.Equal(project.DueAt.Add(-4*time.Hour)))

	stored, err := dm.Reminder().GetByProject(project.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestDeadlineService_CreateProject_ExplicitOffsets(t *testing.T) {
	svc, _, _, _ := setupService(t, testNow)

	in := validCreateInput()
	in.Offsets = "24h, 1h"

	_, reminders, err := svc.Deadline.CreateProject(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, reminders, 2)
	assert.Equal(t, int64((24*time.Hour).Seconds()), reminders[0].OffsetSeconds)
	assert.Equal(t, int64(time.Hour.Seconds()), reminders[1].OffsetSeconds)
}

func TestDeadlineService_CreateProject_TeamTimezoneFallback(t *testing.T) {
	svc, _, _, _ := setupService(t, testNow)
	ctx := context.Background()

	_, err := svc.Deadline.SetTeamConfig(ctx, contract.TeamConfigInput{
		SlackTeamID: "T123456789",
		Timezone:    "America/Sao_Paulo",
	})
	require.NoError(t, err)

	in := validCreateInput()
	in.Timezone = ""

	project, _, err := svc.Deadline.CreateProject(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", project.Timezone)
	// 14:00 in Sao Paulo (UTC-3) is 17:00 UTC
	assert.True(t, project.DueAt.Equal(time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC)))
}

func TestDeadlineService_CreateProject_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(in *contract.CreateProjectInput)
	}{
		{
			name:   "Should reject an empty name",
			modify: func(in *contract.CreateProjectInput) { in.Name = "  " },
		},
		{
			name:   "Should reject a missing role",
			modify: func(in *contract.CreateProjectInput) { in.RoleID = "" },
		},
		{
			name:   "Should reject a missing channel",
			modify: func(in *contract.CreateProjectInput) { in.ChannelID = "" },
		},
		{
			name:   "Should reject an unknown timezone",
			modify: func(in *contract.CreateProjectInput) { in.Timezone = "Mars/Olympus_Mons" },
		},
		{
			name:   "Should reject a malformed due time",
			modify: func(in *contract.CreateProjectInput) { in.DueLocal = "tomorrow at noon" },
		},
		{
			name:   "Should reject a due time in the past",
			modify: func(in *contract.CreateProjectInput) { in.DueLocal = "2025-05-01 14:00" },
		},
		{
			name:   "Should reject explicit offsets that all fire in the past",
			modify: func(in *contract.CreateProjectInput) {
				in.DueLocal = "2025-06-01 12:30"
				in.Offsets = "24h"
			},
		},
		{
			name:   "Should reject malformed offsets",
			modify: func(in *contract.CreateProjectInput) { in.Offsets = "3x" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _, _ := setupService(t, testNow)

			in := validCreateInput()
			tt.modify(&in)

			_, _, err := svc.Deadline.CreateProject(context.Background(), in)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err), "Expected a validation error, got %v", err)
		})
	}
}

func TestDeadlineService_AddOffsets(t *testing.T) {
	svc, dm, _, _ := setupService(t, testNow)
	ctx := context.Background()

	project, _, err := svc.Deadline.CreateProject(ctx, validCreateInput())
	require.NoError(t, err)

	added, err := svc.Deadline.AddOffsets(ctx, project.ID, "12h, 1h")
	require.NoError(t, err)
	require.Len(t, added, 2)

	stored, err := dm.Reminder().GetByProject(project.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestDeadlineService_AddOffsets_Duplicate(t *testing.T) {
	svc, dm, _, _ := setupService(t, testNow)
	ctx := context.Background()

	project, _, err := svc.Deadline.CreateProject(ctx, validCreateInput())
	require.NoError(t, err)

	// The 4h default already exists
	_, err = svc.Deadline.AddOffsets(ctx, project.ID, "4h")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateOffset)

	stored, err := dm.Reminder().GetByProject(project.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1, "Expected the duplicate to leave the stored reminders untouched")
}

func TestDeadlineService_AddOffsets_Errors(t *testing.T) {
	svc, _, _, _ := setupService(t, testNow)
	ctx := context.Background()

	_, err := svc.Deadline.AddOffsets(ctx, 99999, "1h")
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)

	project, _, err := svc.Deadline.CreateProject(ctx, validCreateInput())
	require.NoError(t, err)

	// Lead is 26h, so a 3d offset would fire in the past
	_, err = svc.Deadline.AddOffsets(ctx, project.ID, "3d")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestDeadlineService_DeleteProject(t *testing.T) {
	svc, dm, _, _ := setupService(t, testNow)
	ctx := context.Background()

	project, _, err := svc.Deadline.CreateProject(ctx, validCreateInput())
	require.NoError(t, err)

	require.NoError(t, svc.Deadline.DeleteProject(ctx, project.ID))

	reminders, err := dm.Reminder().GetByProject(project.ID)
	require.NoError(t, err)
	assert.Empty(t, reminders)

	err = svc.Deadline.DeleteProject(ctx, project.ID)
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestDeadlineService_ListProjects(t *testing.T) {
	svc, _, _, _ := setupService(t, testNow)
	ctx := context.Background()

	_, _, err := svc.Deadline.CreateProject(ctx, validCreateInput())
	require.NoError(t, err)

	projects, err := svc.Deadline.ListProjects("T123456789")
	require.NoError(t, err)
	assert.Len(t, projects, 1)

	projects, err = svc.Deadline.ListProjects("T987654321")
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestDeadlineService_TeamConfig(t *testing.T) {
	svc, _, _, _ := setupService(t, testNow)
	ctx := context.Background()

	// Defaults before anything is stored
	cfg, err := svc.Deadline.GetTeamConfig("T123456789")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTimezone, cfg.Timezone)
	assert.Equal(t, domain.DefaultDigestTime, cfg.DigestTime)
	assert.Empty(t, cfg.DigestChannelID)

	cfg, err = svc.Deadline.SetTeamConfig(ctx, contract.TeamConfigInput{
		SlackTeamID:     "T123456789",
		Timezone:        "Europe/Berlin",
		DigestChannelID: "C123456789",
	})
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, "C123456789", cfg.DigestChannelID)
	assert.Equal(t, domain.DefaultDigestTime, cfg.DigestTime)

	// Empty fields keep their stored value
	cfg, err = svc.Deadline.SetTeamConfig(ctx, contract.TeamConfigInput{
		SlackTeamID: "T123456789",
		DigestTime:  "17:30",
	})
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, "17:30", cfg.DigestTime)
}

func TestDeadlineService_SetTeamConfig_Validation(t *testing.T) {
	svc, _, _, _ := setupService(t, testNow)
	ctx := context.Background()

	_, err := svc.Deadline.SetTeamConfig(ctx, contract.TeamConfigInput{
		SlackTeamID: "T123456789",
		Timezone:    "Not/AZone",
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	_, err = svc.Deadline.SetTeamConfig(ctx, contract.TeamConfigInput{
		SlackTeamID: "T123456789",
		DigestTime:  "9am",
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}
