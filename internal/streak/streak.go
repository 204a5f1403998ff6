package streak

import "time"

const dayFormat = "2006-01-02"

// Calculate returns the length of the user's current posting streak: the
// number of consecutive calendar days, ending at the reference day, on which
// a post exists. The reference day itself is a grace day — a run that ends at
// yesterday still counts as if today's entry had already been written, so a
// streak only breaks once two consecutive days are missed.
//
// The input may be unordered; dates are normalized to calendar days.
func Calculate(dates []time.Time, today time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	days := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		days[d.Format(dayFormat)] = struct{}{}
	}

	// Count the run ending at yesterday.
	run := 0
	cursor := today.AddDate(0, 0, -1)
	for {
		if _, ok := days[cursor.Format(dayFormat)]; !ok {
			break
		}
		run++
		cursor = cursor.AddDate(0, 0, -1)
	}

	_, postedToday := days[today.Format(dayFormat)]
	if !postedToday && run == 0 {
		// Missed both today and yesterday: the streak is over.
		return 0
	}

	return run + 1
}
