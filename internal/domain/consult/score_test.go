package consult

import "testing"

func TestClampScore(t *testing.T) {
	tests := []struct{ in, want int }{
		{-10, 0}, {0, 0}, {70, 70}, {100, 100}, {150, 100},
	}
	for _, tt := range tests {
		if got := clampScore(tt.in); got != tt.want {
			t.Errorf("clampScore(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClampPriority(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 1}, {1, 1}, {5, 5}, {10, 10}, {11, 10}, {-3, 1},
	}
	for _, tt := range tests {
		if got := clampPriority(tt.in); got != tt.want {
			t.Errorf("clampPriority(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeUrgency(t *testing.T) {
	var gaps gapList
	if got := normalizeUrgency(UrgencyStat, &gaps, "u"); got != UrgencyStat {
		t.Errorf("valid urgency rewritten to %q", got)
	}
	if len(gaps.fields) != 0 {
		t.Errorf("valid urgency recorded a gap: %v", gaps.fields)
	}
	if got := normalizeUrgency("IMMEDIATELY", &gaps, "u"); got != UrgencyRoutine {
		t.Errorf("invalid urgency = %q, want routine", got)
	}
	if len(gaps.fields) != 1 {
		t.Errorf("invalid urgency must record a gap: %v", gaps.fields)
	}
}

func TestNormalizeSeverity(t *testing.T) {
	var gaps gapList
	if got := normalizeSeverity(SeverityCritical, &gaps, "s"); got != SeverityCritical {
		t.Errorf("valid severity rewritten to %q", got)
	}
	if got := normalizeSeverity("", &gaps, "s"); got != SeverityMedium {
		t.Errorf("absent severity = %q, want medium", got)
	}
}
