package models

import "time"

// TimestampLayout renders UTC instants as ISO-8601 with microseconds.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
