package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/diegoclair/slack-deadline-bot/internal/clock"
	"github.com/diegoclair/slack-deadline-bot/internal/domain"
	"github.com/diegoclair/slack-deadline-bot/internal/domain/entity"
	"github.com/dustin/go-humanize"
)

const digestDateLayout = "2006-01-02"

// digestDue reports whether the team's digest should fire at nowLocal: the
// local time of day has reached the configured HH:MM. The durable digest
// record, not this check, keeps it at one per day, so a failed delivery keeps
// retrying until the local day rolls over.
func digestDue(cfg *entity.TeamConfig, nowLocal time.Time) bool {
	configured, err := time.Parse(domain.DigestTimeLayout, cfg.DigestTime)
	if err != nil {
		return false
	}

	nowMinutes := nowLocal.Hour()*60 + nowLocal.Minute()
	dueMinutes := configured.Hour()*60 + configured.Minute()
	return nowMinutes >= dueMinutes
}

// renderDigest formats the daily digest: every project due within the next
// seven days, soonest first, with the due instant in the team's timezone and
// the remaining lead time.
func renderDigest(projects []*entity.Project, cfg *entity.TeamConfig, nowUTC time.Time) string {
	loc := clock.Location(cfg.Timezone)

	var b strings.Builder
	b.WriteString(":calendar: *Upcoming deadlines (next 7 days)*\n")
	for _, p := range projects {
		due := p.DueAt.In(loc)
		b.WriteString(fmt.Sprintf("• #%d *%s* — due %s (%s)\n",
			p.ID, p.Name, due.Format("Mon, 02 Jan 15:04"), humanize.RelTime(p.DueAt, nowUTC, "ago", "from now")))
	}
	return b.String()
}
