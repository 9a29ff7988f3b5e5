package grading

// Pass thresholds. Ratios are compared with integer cross-multiplication so
// exactly 8/10 or exactly 15/30 sits on the passing side.
const (
	attemptScoreNum = 4 // this-attempt score >= 4/5
	attemptScoreDen = 5

	MinAnswered = 30 // cumulative answers before a content can pass

	cumulativeNum = 1 // cumulative correct/answered >= 1/2
	cumulativeDen = 2
)

// ContentPassed is the content-exam pass rule: all three gates must hold.
func ContentPassed(correct, total, answeredTotal, correctTotal int) bool {
	return scoreAtLeast(correct, total, attemptScoreNum, attemptScoreDen) &&
		answeredTotal >= MinAnswered &&
		scoreAtLeast(correctTotal, answeredTotal, cumulativeNum, cumulativeDen)
}

// UnitPassed is the single-shot unit-exam rule.
func UnitPassed(correct, total int) bool {
	return scoreAtLeast(correct, total, attemptScoreNum, attemptScoreDen)
}

// scoreAtLeast reports correct/total >= num/den. An empty attempt never passes.
func scoreAtLeast(correct, total, num, den int) bool {
	if total <= 0 {
		return false
	}
	return correct*den >= total*num
}

func score(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}
