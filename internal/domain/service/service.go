package service

import (
	"github.com/diegoclair/slack-deadline-bot/internal/clock"
	"github.com/diegoclair/slack-deadline-bot/internal/domain/contract"
)

type Instance struct {
	Deadline  *deadlineService
	Scheduler *scheduler
}

func NewInstance(dm contract.DataManager, slackClient contract.SlackClient, clk clock.Clock) *Instance {
	deadline := newDeadline(dm, clk)
	sched := newScheduler(dm, slackClient, clk)

	// Administrative writes nudge the scheduler so a freshly created reminder
	// that is already due does not wait out a full tick.
	deadline.SetScheduler(sched)

	return &Instance{
		Deadline:  deadline,
		Scheduler: sched,
	}
}
