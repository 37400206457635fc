package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DurationOfCourse is the sentinel duration meaning "the session runs until the
// end of the course". EndTime resolves it to the far-future anchor below.
const DurationOfCourse int64 = 9999

// BoundaryMinutes is the lead time before a session's start during which
// participants may already join.
const BoundaryMinutes = 15

const openEndedAnchor = "3000-01-01 00:00"

const weekSeconds int64 = 7 * 24 * 60 * 60

// AnchorTime returns the far-future timestamp used for open-ended sessions.
func AnchorTime() int64 {
	t, _ := time.Parse("2006-01-02 15:04", openEndedAnchor)
	return t.Unix()
}

// EndTime computes the absolute end time for a session. A duration equal to
// DurationOfCourse resolves to the open-ended anchor, everything else is
// start + duration.
func EndTime(start, duration int64) int64 {
	if duration == DurationOfCourse {
		return AnchorTime()
	}
	return start + duration
}

// IsOpenEnded reports whether an end time represents an open-ended session.
// Anything within a week of the anchor counts, so small anchor or timezone
// drift does not break the check.
func IsOpenEnded(end int64) bool {
	return end >= AnchorTime()-weekSeconds
}

// ToUTC normalizes a time value to a UTC epoch. Accepted forms: an integer
// epoch, a numeric string, or a wall-clock string ("2006-01-02 15:04" or
// "2006-01-02 15:04:05", optionally suffixed 'Z' meaning the reading is
// already UTC).
//
// Contract: for non-'Z' inputs the value is read as a local wall-clock time
// and that reading is reinterpreted as UTC. The server's local offset is
// stripped, not converted: the conferencing API expects wall-clock times with
// the offset removed, so callers that need a true timezone conversion must
// not use this function.
func ToUTC(v interface{}) (int64, error) {
	switch t := v.(type) {
	case int64:
		return reinterpretAsUTC(time.Unix(t, 0).Local()), nil
	case int:
		return reinterpretAsUTC(time.Unix(int64(t), 0).Local()), nil
	case time.Time:
		return reinterpretAsUTC(t.Local()), nil
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return reinterpretAsUTC(time.Unix(n, 0).Local()), nil
		}
		if strings.HasSuffix(s, "Z") {
			parsed, err := parseWallClock(strings.TrimSuffix(s, "Z"), time.UTC)
			if err != nil {
				return 0, err
			}
			return parsed.Unix(), nil
		}
		parsed, err := parseWallClock(s, time.Local)
		if err != nil {
			return 0, err
		}
		return reinterpretAsUTC(parsed), nil
	default:
		return 0, fmt.Errorf("timeutil: unsupported time value %T", v)
	}
}

// reinterpretAsUTC takes the wall-clock components of t and rebuilds them in
// UTC, discarding the original offset.
func reinterpretAsUTC(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC).Unix()
}

func parseWallClock(s string, loc *time.Location) (time.Time, error) {
	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, s, loc); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("timeutil: cannot parse time string %q", s)
}
