package consult

import (
	"fmt"
	"strings"
)

// Bounds on how much historical data is folded into a prompt. Older
// entries carry less signal than they cost in prompt size.
const (
	maxRecentVisits = 3
	maxLabResults   = 5
)

// BuildPatientContext renders a patient snapshot into the bounded,
// priority-ordered text block shared by all prompt variants. It is a pure
// function of its input: identity first, then background with explicit
// fallbacks, then vitals, visits, and labs. Optional groups with no data
// are omitted entirely rather than rendered as empty headings.
func BuildPatientContext(pc PatientContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Patient: %s, %d years old", pc.Name, pc.Age)
	if pc.Gender != "" {
		fmt.Fprintf(&b, ", %s", pc.Gender)
	}
	b.WriteString("\n")

	writeLine(&b, "Medical History", pc.MedicalHistory, "None reported")
	writeLine(&b, "Allergies", pc.Allergies, "None")
	writeLine(&b, "Current Medications", pc.CurrentMedications, "None")

	if !pc.Vitals.Empty() {
		var parts []string
		if pc.Vitals.Temperature != "" {
			parts = append(parts, "Temp: "+pc.Vitals.Temperature)
		}
		if pc.Vitals.BloodPressure != "" {
			parts = append(parts, "BP: "+pc.Vitals.BloodPressure)
		}
		if pc.Vitals.HeartRate != "" {
			parts = append(parts, "HR: "+pc.Vitals.HeartRate)
		}
		if pc.Vitals.Weight != "" {
			parts = append(parts, "Weight: "+pc.Vitals.Weight)
		}
		fmt.Fprintf(&b, "Vitals: %s\n", strings.Join(parts, ", "))
	}

	if len(pc.RecentVisits) > 0 {
		b.WriteString("Recent Visits:\n")
		for i, v := range pc.RecentVisits {
			if i >= maxRecentVisits {
				break
			}
			fmt.Fprintf(&b, "- %s: %s", v.Date, v.Diagnosis)
			if v.Treatment != "" {
				fmt.Fprintf(&b, " (Treated with: %s)", v.Treatment)
			}
			b.WriteString("\n")
		}
	}

	if len(pc.LabResults) > 0 {
		b.WriteString("Recent Lab Results:\n")
		for i, l := range pc.LabResults {
			if i >= maxLabResults {
				break
			}
			fmt.Fprintf(&b, "- %s: %s", l.Test, l.Result)
			if l.IsAbnormal {
				b.WriteString(" (ABNORMAL)")
			}
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeLine(b *strings.Builder, label, value, fallback string) {
	if strings.TrimSpace(value) == "" {
		value = fallback
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}
