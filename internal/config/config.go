package config

import "time"

const (
	DefaultTimeZone = "Europe/Berlin"

	// Reminder job configuration
	DefaultReminderSchedule = "30 6 * * *" // daily morning scan
	ReminderBatchSize       = 500

	// Upload limits
	MaxStatementUploadBytes = 5 * 1024 * 1024
)

// Location returns the operational timezone. Due dates and month
// boundaries are calendar concepts in this zone, not in the server
// clock's zone.
func Location() *time.Location {
	loc, err := time.LoadLocation(DefaultTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
