package events

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// ComingDay renders the time left until start, measured from now.
func ComingDay(now, start time.Time) string {
	left := start.Sub(now)
	switch {
	case left <= 0:
		return "started"
	case left < time.Minute:
		return "less than a minute"
	case left >= day:
		days := int(left / day)
		hours := int((left % day) / time.Hour)
		return unit(days, "day") + " " + unit(hours, "hour")
	case left >= time.Hour:
		hours := int(left / time.Hour)
		minutes := int((left % time.Hour) / time.Minute)
		return unit(hours, "hour") + " " + unit(minutes, "minute")
	default:
		return unit(int(left/time.Minute), "minute")
	}
}

func unit(n int, name string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", name)
	}
	return fmt.Sprintf("%d %ss", n, name)
}
