package service

import (
	"context"
	"fmt"
	"time"

	"github.com/diegoclair/slack-deadline-bot/internal/clock"
	"github.com/diegoclair/slack-deadline-bot/internal/domain"
	"github.com/diegoclair/slack-deadline-bot/internal/domain/contract"
	"github.com/diegoclair/slack-deadline-bot/internal/domain/entity"
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
)

// scheduler is the single writer of reminder and digest delivery state.
// Running more than one scheduler process against the same database is
// unsupported: nothing coordinates them, and both would deliver.
type scheduler struct {
	dm           contract.DataManager
	slackClient  contract.SlackClient
	clk          clock.Clock
	tickInterval time.Duration
	notifyCh     chan struct{}
}

func newScheduler(dm contract.DataManager, slackClient contract.SlackClient, clk clock.Clock) *scheduler {
	return &scheduler{
		dm:           dm,
		slackClient:  slackClient,
		clk:          clk,
		tickInterval: domain.TickInterval,
		notifyCh:     make(chan struct{}, 1),
	}
}

// Notify triggers an immediate tick. Non-blocking if one is already pending.
func (s *scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// Start runs the tick loop until ctx is cancelled. Cancellation stops between
// deliveries, never mid-delivery, so no message is left ambiguously sent.
func (s *scheduler) Start(ctx context.Context) {
	log.Println("Scheduler started")
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		case <-s.notifyCh:
			s.tick(ctx)
		}
	}
}

func (s *scheduler) tick(ctx context.Context) {
	now := s.clk.Now().UTC()
	s.runDigests(ctx, now)
	s.runReminders(ctx, now)
}

// runReminders delivers every unfired reminder whose fire time has passed.
// Delivery happens before the fired mark: a crash in between can duplicate
// one message on the next tick but never drops one.
func (s *scheduler) runReminders(ctx context.Context, now time.Time) {
	due, err := s.dm.Reminder().ListDue(now)
	if err != nil {
		// Storage trouble is fatal for this tick only
		log.Errorf("Failed to list due reminders: %v", err)
		return
	}

	for _, item := range due {
		if ctx.Err() != nil {
			return
		}
		if err := s.deliverReminder(item, now); err != nil {
			// Left unfired, retried next tick
			log.Errorf("Failed to deliver reminder %d for project %d: %v", item.ID, item.ProjectID, err)
		}
	}
}

func (s *scheduler) deliverReminder(item *entity.DueReminder, now time.Time) error {
	text := reminderText(&item.Project, now)
	_, _, err := s.slackClient.PostMessage(item.Project.ChannelID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("failed to post message: %w", err)
	}

	if _, err := s.dm.Reminder().MarkFired(item.ID, now); err != nil {
		return fmt.Errorf("failed to mark reminder fired: %w", err)
	}

	return nil
}

func reminderText(p *entity.Project, now time.Time) string {
	due := clock.In(p.DueAt, p.Timezone)
	text := fmt.Sprintf(":alarm_clock: %s Reminder: *%s* is due %s (%s)",
		roleMention(p.RoleID), p.Name, due.Format("Mon, 02 Jan 15:04 MST"),
		humanize.RelTime(p.DueAt, now, "ago", "from now"))
	if p.Description != "" {
		text += "\n" + p.Description
	}
	return text
}

func roleMention(roleID string) string {
	switch roleID {
	case "here", "channel":
		return fmt.Sprintf("<!%s>", roleID)
	}
	return fmt.Sprintf("<!subteam^%s>", roleID)
}

// runDigests posts at most one digest per team per local day. One team's
// failure never blocks the others.
func (s *scheduler) runDigests(ctx context.Context, now time.Time) {
	configs, err := s.dm.TeamConfig().ListWithDigest()
	if err != nil {
		log.Errorf("Failed to list digest configs: %v", err)
		return
	}

	for _, cfg := range configs {
		if ctx.Err() != nil {
			return
		}
		if err := s.sendDigestIfDue(cfg, now); err != nil {
			log.Errorf("Failed to send digest for team %s: %v", cfg.SlackTeamID, err)
		}
	}
}

func (s *scheduler) sendDigestIfDue(cfg *entity.TeamConfig, nowUTC time.Time) error {
	local := clock.In(nowUTC, cfg.Timezone)
	if !digestDue(cfg, local) {
		return nil
	}

	date := local.Format(digestDateLayout)
	sent, err := s.dm.Digest().WasSent(cfg.SlackTeamID, date)
	if err != nil {
		return fmt.Errorf("failed to check digest record: %w", err)
	}
	if sent {
		return nil
	}

	projects, err := s.dm.Project().GetDueWithin(cfg.SlackTeamID, nowUTC, nowUTC.Add(domain.DigestWindow))
	if err != nil {
		return fmt.Errorf("failed to get upcoming projects: %w", err)
	}

	if len(projects) > 0 {
		text := renderDigest(projects, cfg, nowUTC)
		_, _, err := s.slackClient.PostMessage(cfg.DigestChannelID, slack.MsgOptionText(text, false))
		if err != nil {
			// Record not written: retried on later ticks this local day
			return fmt.Errorf("failed to post digest: %w", err)
		}
		log.Printf("Sent digest to team %s with %d deadlines", cfg.SlackTeamID, len(projects))
	}

	// A quiet day still writes the fence so it is not rechecked all day
	return s.dm.Digest().Create(&entity.DigestRecord{
		SlackTeamID: cfg.SlackTeamID,
		DigestDate:  date,
		Entries:     len(projects),
	})
}
