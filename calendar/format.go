package calendar

import (
	"fmt"
	"strings"
	"time"
)

// DurationPlaceholder is what a zero duration renders as. The dashboard shows
// "-" instead of "0:00:00".
const DurationPlaceholder = "-"

// FormatDuration renders d as H:MM:SS. Zero and negative durations render as
// the placeholder.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return DurationPlaceholder
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// ParseDuration parses the H:MM:SS form produced by FormatDuration. The
// placeholder and the empty string parse as zero.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == DurationPlaceholder {
		return 0, nil
	}
	var h, m, sec int
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil {
		return 0, fmt.Errorf("calendar: parse duration %q: %w", s, err)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second, nil
}
