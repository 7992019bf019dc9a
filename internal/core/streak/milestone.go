package streak

// Milestones is the fixed ladder of streak lengths that trigger a
// celebration signal, in ascending order.
var Milestones = []int{3, 7, 14, 30, 60, 100, 180, 365}

// CheckMilestone returns the smallest threshold newly crossed when a streak
// moves from previous to current, or 0 when none was. When one update jumps
// several thresholds at once (e.g. a data import), only the lowest fires.
func CheckMilestone(previous, current int) int {
	for _, m := range Milestones {
		if current >= m && previous < m {
			return m
		}
	}
	return 0
}

// NextMilestone returns the smallest threshold still above current, or 0
// once the highest is reached.
func NextMilestone(current int) int {
	for _, m := range Milestones {
		if m > current {
			return m
		}
	}
	return 0
}
