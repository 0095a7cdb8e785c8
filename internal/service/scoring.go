package service

import "math"

const (
	// BasePoints is awarded for an instant correct answer
	BasePoints = 1000
	// MinPoints is the floor for any correct answer inside the window
	MinPoints = 100
)

// Points scores an answer by how quickly it arrived within the question's
// window. Wrong answers always score zero. Callers must have rejected
// answers that arrived after the question closed.
func Points(responseTimeMs float64, durationMs int, correct bool) int {
	if !correct {
		return 0
	}

	t := 1.0
	if durationMs > 0 {
		t = math.Max(0, math.Min(responseTimeMs/float64(durationMs), 1))
	}

	points := int(math.Round(BasePoints * (1 - t)))
	if points < MinPoints {
		return MinPoints
	}
	return points
}
