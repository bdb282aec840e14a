package consult

const (
	defaultConfidence = 70
	defaultPriority   = 5

	minScore = 0
	maxScore = 100

	minPriority = 1
	maxPriority = 10
)

var validUrgencies = map[string]bool{
	UrgencyRoutine: true,
	UrgencyUrgent:  true,
	UrgencyStat:    true,
}

var validSeverities = map[string]bool{
	SeverityLow:      true,
	SeverityMedium:   true,
	SeverityHigh:     true,
	SeverityCritical: true,
}

// clampScore bounds percentage-style scores to [0, 100].
func clampScore(n int) int {
	if n < minScore {
		return minScore
	}
	if n > maxScore {
		return maxScore
	}
	return n
}

// clampPriority bounds test priorities to [1, 10].
func clampPriority(n int) int {
	if n < minPriority {
		return minPriority
	}
	if n > maxPriority {
		return maxPriority
	}
	return n
}

// normalizeUrgency maps any unrecognized urgency to routine, recording the
// substitution under the given gap name.
func normalizeUrgency(s string, gaps *gapList, gapName string) string {
	if validUrgencies[s] {
		return s
	}
	gaps.add(gapName)
	return UrgencyRoutine
}

// normalizeSeverity maps any unrecognized warning severity to medium,
// recording the substitution under the given gap name.
func normalizeSeverity(s string, gaps *gapList, gapName string) string {
	if validSeverities[s] {
		return s
	}
	gaps.add(gapName)
	return SeverityMedium
}
