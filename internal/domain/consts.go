package domain

import "time"

const (
	// DefaultTimezone is used when a team never configured one
	DefaultTimezone = "UTC"

	// DefaultDigestTime is the HH:MM local time the daily digest fires at
	DefaultDigestTime = "09:00"

	// DigestWindow is how far ahead the daily digest looks for deadlines
	DigestWindow = 7 * 24 * time.Hour

	// TickInterval is how often the scheduler scans for due work. It must stay
	// below the coarsest reminder offset (10 minutes) or reminders can be
	// delivered a full band late.
	TickInterval = time.Minute

	// MinLeadTime is the minimum distance between creation and due time
	MinLeadTime = time.Minute
)

// DigestTimeLayout is the time.Parse layout for configured digest times
const DigestTimeLayout = "15:04"
