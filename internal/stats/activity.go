package stats

import (
	"time"
)

// ActivityLevel represents the commit count for a specific date
type ActivityLevel struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"` // 0-4
}

// ActivityCalendar expands day buckets into one entry per day in [from, to],
// filling days without commits with zero.
func ActivityCalendar(days []DayBucket, from, to time.Time) []ActivityLevel {
	counts := make(map[string]int, len(days))
	for _, d := range days {
		counts[d.Day] = d.TotalCount
	}

	start := truncateDay(from)
	end := truncateDay(to)

	activity := []ActivityLevel{}
	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		date := current.Format(dayLayout)
		count := counts[date]
		activity = append(activity, ActivityLevel{
			Date:  date,
			Count: count,
			Level: activityLevel(count),
		})
	}

	return activity
}

func activityLevel(count int) int {
	switch {
	case count <= 0:
		return 0
	case count <= 2:
		return 1
	case count <= 5:
		return 2
	case count <= 10:
		return 3
	default:
		return 4
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
