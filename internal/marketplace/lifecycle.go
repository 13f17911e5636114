package marketplace

import (
	"time"

	"github.com/easyukapp/easyuk-backend/pkg/enums"
)

// allowedTransitions is the listing state machine. Creation always lands in
// trial; cancelled is not terminal because a captured payment reactivates.
var allowedTransitions = map[enums.ListingStatus][]enums.ListingStatus{
	enums.ListingStatusTrial:     {enums.ListingStatusActive, enums.ListingStatusCancelled},
	enums.ListingStatusActive:    {enums.ListingStatusCancelled},
	enums.ListingStatusCancelled: {enums.ListingStatusActive},
}

// CanTransition reports whether the listing status may move from one state to another.
func CanTransition(from, to enums.ListingStatus) bool {
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// trialWindow returns the start and end of a trial opened at now.
func trialWindow(now time.Time, days int) (time.Time, time.Time) {
	start := now.UTC()
	return start, start.Add(time.Duration(days) * 24 * time.Hour)
}
