package recall

import "time"

// Fixed review intervals. A correct answer pushes the question a week out,
// a wrong one brings it back the next day.
const (
	CorrectInterval   = 7 * 24 * time.Hour
	IncorrectInterval = 24 * time.Hour
)

// NextReviewDate returns when a question answered at now is next due.
// It depends on nothing but its arguments.
func NextReviewDate(now time.Time, wasCorrect bool) time.Time {
	if wasCorrect {
		return now.Add(CorrectInterval)
	}
	return now.Add(IncorrectInterval)
}
