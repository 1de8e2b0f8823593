package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/karrick/tparse/v2"
)

const day = 24 * time.Hour

// DefaultOffsets returns the lead-time offsets scheduled when a project is
// created without explicit ones. The band is picked from how much lead time
// exists at creation, first match wins.
func DefaultOffsets(lead time.Duration) []time.Duration {
	switch {
	case lead >= 3*day:
		return []time.Duration{3 * day, 2 * day, day}
	case lead >= 2*day:
		return []time.Duration{24 * time.Hour}
	case lead >= 12*time.Hour:
		return []time.Duration{4 * time.Hour}
	case lead >= 2*time.Hour:
		return []time.Duration{2 * time.Hour}
	case lead >= time.Hour:
		return []time.Duration{time.Hour}
	case lead >= 30*time.Minute:
		return []time.Duration{30 * time.Minute}
	default:
		return []time.Duration{10 * time.Minute}
	}
}

// ParseOffsets parses a comma separated list of human durations like
// "3d,24h,30m" into distinct offsets, largest first. Repeating a duration is
// not an error, it just collapses into one offset.
func ParseOffsets(s string) ([]time.Duration, error) {
	base := time.Unix(0, 0).UTC()
	seen := make(map[time.Duration]bool)
	var out []time.Duration

	for _, part := range strings.Split(s, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		end, err := tparse.AddDuration(base, p)
		if err != nil {
			return nil, Validationf("invalid duration %q (use forms like 3d, 24h, 30m)", p)
		}

		d := end.Sub(base)
		if d <= 0 {
			return nil, Validationf("offset %q must be a positive duration", p)
		}

		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}

	if len(out) == 0 {
		return nil, Validationf("no offsets given")
	}

	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out, nil
}

// PlanOffsets picks the offsets to schedule for a project created at now and
// due at due. Explicit offsets override the default bands. An offset whose
// fire time already passed is dropped, never scheduled and fired late; when
// the caller explicitly asked for offsets and none survive, that is a
// validation error instead of a silently reminder-less project.
func PlanOffsets(now, due time.Time, explicit []time.Duration) ([]time.Duration, error) {
	lead := due.Sub(now)
	if lead <= 0 {
		return nil, Validationf("due time must be in the future")
	}

	candidates := explicit
	if len(candidates) == 0 {
		candidates = DefaultOffsets(lead)
	}

	var out []time.Duration
	for _, off := range candidates {
		if off < lead {
			out = append(out, off)
		}
	}

	if len(out) == 0 && len(explicit) > 0 {
		return nil, Validationf("every requested offset would fire in the past")
	}

	return out, nil
}
