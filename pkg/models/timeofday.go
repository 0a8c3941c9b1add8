package models

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDayLayout is the stored format of User.NotificationTime
const TimeOfDayLayout = "15:04"

// ParseTimeOfDay normalizes "H:MM" or "HH:MM" to the stored "HH:MM" form
func ParseTimeOfDay(s string) (string, error) {
	t, err := time.Parse(TimeOfDayLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid time of day %q", s)
	}
	return t.Format(TimeOfDayLayout), nil
}
