package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diegoclair/slack-deadline-bot/internal/clock"
	"github.com/diegoclair/slack-deadline-bot/internal/domain"
	"github.com/diegoclair/slack-deadline-bot/internal/domain/contract"
	"github.com/diegoclair/slack-deadline-bot/internal/domain/entity"
	log "github.com/sirupsen/logrus"
)

type deadlineService struct {
	dm        contract.DataManager
	clk       clock.Clock
	scheduler *scheduler
}

func newDeadline(dm contract.DataManager, clk clock.Clock) *deadlineService {
	return &deadlineService{
		dm:  dm,
		clk: clk,
	}
}

func (s *deadlineService) SetScheduler(scheduler *scheduler) {
	s.scheduler = scheduler
}

func (s *deadlineService) notifyScheduler() {
	if s.scheduler != nil {
		s.scheduler.Notify()
	}
}

// CreateProject validates the input, computes the reminder offsets and stores
// the project with its reminders in one transaction. Projects are immutable
// after creation apart from offset additions and deletion.
func (s *deadlineService) CreateProject(ctx context.Context, in contract.CreateProjectInput) (*entity.Project, []*entity.Reminder, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, nil, domain.Validationf("project name cannot be empty")
	}
	if in.RoleID == "" {
		return nil, nil, domain.Validationf("a role to mention is required")
	}
	if in.ChannelID == "" {
		return nil, nil, domain.Validationf("a channel to post reminders is required")
	}

	tz := in.Timezone
	if tz == "" {
		cfg, err := s.teamConfigOrDefault(in.SlackTeamID)
		if err != nil {
			return nil, nil, err
		}
		tz = cfg.Timezone
	}
	if err := clock.Validate(tz); err != nil {
		return nil, nil, domain.Validationf("%v", err)
	}

	dueUTC, err := clock.ParseLocalTime(in.DueLocal, tz)
	if err != nil {
		return nil, nil, domain.Validationf("%v", err)
	}

	now := s.clk.Now().UTC().Truncate(time.Second)
	if dueUTC.Sub(now) < domain.MinLeadTime {
		return nil, nil, domain.Validationf("due time must be at least %s in the future", domain.MinLeadTime)
	}

	var explicit []time.Duration
	if in.Offsets != "" {
		explicit, err = domain.ParseOffsets(in.Offsets)
		if err != nil {
			return nil, nil, err
		}
	}

	offsets, err := domain.PlanOffsets(now, dueUTC, explicit)
	if err != nil {
		return nil, nil, err
	}

	project := &entity.Project{
		SlackTeamID: in.SlackTeamID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		DueAt:       dueUTC,
		Timezone:    timezoneOrDefault(tz),
		RoleID:      in.RoleID,
		ChannelID:   in.ChannelID,
		CreatedBy:   in.CreatedBy,
	}

	var reminders []*entity.Reminder
	err = s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		if err := tx.Project().Create(project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		for _, off := range offsets {
			reminder := &entity.Reminder{
				ProjectID:     project.ID,
				OffsetSeconds: int64(off / time.Second),
				RemindAt:      dueUTC.Add(-off),
			}
			if err := tx.Reminder().Create(reminder); err != nil {
				return fmt.Errorf("failed to create reminder: %w", err)
			}
			reminders = append(reminders, reminder)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	log.Printf("Created project %d (%s) due %s with %d reminders",
		project.ID, project.Name, dueUTC.Format(time.RFC3339), len(reminders))

	s.notifyScheduler()
	return project, reminders, nil
}

// AddOffsets schedules extra reminder offsets for an existing project. An
// offset whose fire time already passed is dropped; duplicating an existing
// offset is reported as a conflict, never stored twice.
func (s *deadlineService) AddOffsets(ctx context.Context, projectID int64, offsets string) ([]*entity.Reminder, error) {
	project, err := s.dm.Project().GetByID(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, domain.ErrProjectNotFound
	}

	parsed, err := domain.ParseOffsets(offsets)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now().UTC().Truncate(time.Second)
	lead := project.DueAt.Sub(now)

	var toSchedule []time.Duration
	for _, off := range parsed {
		if off < lead {
			toSchedule = append(toSchedule, off)
		}
	}
	if len(toSchedule) == 0 {
		return nil, domain.Validationf("every requested offset would fire in the past")
	}

	var reminders []*entity.Reminder
	err = s.dm.WithTransaction(ctx, func(tx contract.DataManager) error {
		for _, off := range toSchedule {
			reminder := &entity.Reminder{
				ProjectID:     project.ID,
				OffsetSeconds: int64(off / time.Second),
				RemindAt:      project.DueAt.Add(-off),
			}
			if err := tx.Reminder().Create(reminder); err != nil {
				return err
			}
			reminders = append(reminders, reminder)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyScheduler()
	return reminders, nil
}

// DeleteProject removes a project; its reminders cascade with it
func (s *deadlineService) DeleteProject(ctx context.Context, projectID int64) error {
	project, err := s.dm.Project().GetByID(projectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return domain.ErrProjectNotFound
	}

	if err := s.dm.Project().Delete(projectID); err != nil {
		return err
	}

	log.Printf("Deleted project %d (%s)", project.ID, project.Name)
	return nil
}

func (s *deadlineService) ListProjects(slackTeamID string) ([]*entity.Project, error) {
	return s.dm.Project().GetByTeam(slackTeamID)
}

// GetTeamConfig returns the stored team config, or the defaults when the team
// never configured anything.
func (s *deadlineService) GetTeamConfig(slackTeamID string) (*entity.TeamConfig, error) {
	return s.teamConfigOrDefault(slackTeamID)
}

// SetTeamConfig applies the non-empty fields of in on top of the stored
// config and persists the result.
func (s *deadlineService) SetTeamConfig(ctx context.Context, in contract.TeamConfigInput) (*entity.TeamConfig, error) {
	cfg, err := s.teamConfigOrDefault(in.SlackTeamID)
	if err != nil {
		return nil, err
	}

	if in.Timezone != "" {
		if err := clock.Validate(in.Timezone); err != nil {
			return nil, domain.Validationf("%v", err)
		}
		cfg.Timezone = in.Timezone
	}
	if in.DigestChannelID != "" {
		cfg.DigestChannelID = in.DigestChannelID
	}
	if in.DigestTime != "" {
		if _, err := time.Parse(domain.DigestTimeLayout, in.DigestTime); err != nil {
			return nil, domain.Validationf("invalid digest time %q, use HH:MM (24h)", in.DigestTime)
		}
		cfg.DigestTime = in.DigestTime
	}

	if err := s.dm.TeamConfig().Upsert(cfg); err != nil {
		return nil, err
	}

	s.notifyScheduler()
	return cfg, nil
}

func (s *deadlineService) teamConfigOrDefault(slackTeamID string) (*entity.TeamConfig, error) {
	cfg, err := s.dm.TeamConfig().GetByTeam(slackTeamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get team config: %w", err)
	}
	if cfg == nil {
		cfg = &entity.TeamConfig{
			SlackTeamID: slackTeamID,
			Timezone:    domain.DefaultTimezone,
			DigestTime:  domain.DefaultDigestTime,
		}
	}
	return cfg, nil
}

func timezoneOrDefault(tz string) string {
	if tz == "" {
		return domain.DefaultTimezone
	}
	return tz
}
