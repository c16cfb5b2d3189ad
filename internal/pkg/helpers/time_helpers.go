package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		// Global logger: this may run before the application logger is configured.
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// DisabledOrDuration reads an interval where "0" or "" turns the feature off.
func DisabledOrDuration(durationStr string) (time.Duration, bool) {
	if durationStr == "" || durationStr == "0" {
		return 0, false
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}
