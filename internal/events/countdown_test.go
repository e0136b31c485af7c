package events

import (
	"testing"
	"time"
)

func TestComingDay(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name  string
		start time.Time
		want  string
	}{
		{"past", now.Add(-time.Hour), "started"},
		{"now", now, "started"},
		{"seconds", now.Add(30 * time.Second), "less than a minute"},
		{"one minute", now.Add(time.Minute + 10*time.Second), "1 minute"},
		{"minutes", now.Add(45 * time.Minute), "45 minutes"},
		{"hour and minute", now.Add(time.Hour + time.Minute), "1 hour 1 minute"},
		{"hours", now.Add(5*time.Hour + 30*time.Minute), "5 hours 30 minutes"},
		{"day exact", now.Add(24 * time.Hour), "1 day 0 hours"},
		{"days", now.Add(3*24*time.Hour + 2*time.Hour), "3 days 2 hours"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComingDay(now, tc.start); got != tc.want {
				t.Fatalf("ComingDay() = %q, want %q", got, tc.want)
			}
		})
	}
}
