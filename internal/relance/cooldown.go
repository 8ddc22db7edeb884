package relance

import "time"

// DefaultCooldownDays is the minimum number of days between two reminders for one folder
const DefaultCooldownDays = 7

// IsEligible reports whether a folder last reminded at last may be reminded again at now.
// A folder that was never reminded is always eligible; the boundary is inclusive.
func IsEligible(last *time.Time, now time.Time, cooldownDays int) bool {
	if last == nil {
		return true
	}
	if cooldownDays < 0 {
		cooldownDays = 0
	}
	return now.Sub(*last) >= time.Duration(cooldownDays)*24*time.Hour
}
