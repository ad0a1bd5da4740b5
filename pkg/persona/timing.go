package persona

import (
	"fmt"
	"time"
)

const (
	beforeLunch    = "I haven't had lunch yet, so my patience is even thinner than usual."
	afterLunch     = "Post-lunch fatigue is real. Your call is not helping."
	nearCloseTime  = "You do realize we close in %d hour(s), right? This better be quick."
	friday4pm      = "It's 4 PM on a Friday. Do you have any idea what you're doing to me right now?"
	mondayMorning  = "It's Monday morning. I haven't had enough coffee for this level of human interaction."
	closingHour    = 17
	lateAfternoon  = 16
	mondayCutoff   = 10
	lunchStartHour = 11
	lunchEndHour   = 13
)

// TimeGreeting returns "Good morning", "Good afternoon" or "Good evening".
func TimeGreeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < closingHour:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// TimeModifier returns the special-occasion line for t, or "" when nothing applies.
// The close-time countdown is not clamped and goes to zero or below after 17:00.
func TimeModifier(t time.Time) string {
	h := t.Hour()
	day := t.Weekday()
	switch {
	case day == time.Monday && h < mondayCutoff:
		return mondayMorning
	case day == time.Friday && h >= lateAfternoon:
		return friday4pm
	case h >= lunchStartHour && h < lunchStartHour+1:
		return beforeLunch
	case h >= lunchEndHour && h < lunchEndHour+1:
		return afterLunch
	case h >= lateAfternoon:
		return fmt.Sprintf(nearCloseTime, closingHour-h)
	}
	return ""
}
