package export

import "fmt"

// formatTimestamp renders seconds as HH:MM:SS.
func formatTimestamp(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// formatSRTTimestamp renders seconds as HH:MM:SS,mmm per the SRT format.
func formatSRTTimestamp(seconds float64) string {
	totalMillis := int(seconds*1000 + 0.5)
	hours := totalMillis / 3600000
	minutes := (totalMillis % 3600000) / 60000
	secs := (totalMillis % 60000) / 1000
	millis := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
