package consult

import (
	"strconv"
	"strings"

	"github.com/carenote/carenote/internal/domain/catalog"
)

// ReconcileSuggestions maps model-claimed test suggestions onto the
// orderable catalog. Matching is case-insensitive equality of the claimed
// name against an entry's name, or the claimed code against an entry's
// code; the first matching entry wins. Identity fields on the result
// always come from the catalog entry, never from the model. Suggestions
// that match nothing are dropped and their claimed names returned for
// logging.
func ReconcileSuggestions(raws []rawLabSuggestion, entries []catalog.Entry) ([]LabTestSuggestion, []string) {
	out := make([]LabTestSuggestion, 0, len(raws))
	var dropped []string

	for _, r := range raws {
		entry, ok := matchEntry(r, entries)
		if !ok {
			dropped = append(dropped, claimedName(r))
			continue
		}
		s := LabTestSuggestion{
			TestID:               entry.ID,
			TestName:             entry.Name,
			Category:             entry.Category,
			Reasoning:            r.Reasoning,
			Urgency:              r.Urgency,
			Priority:             r.Priority,
			ClinicalSignificance: r.ClinicalSignificance,
			EstimatedCost:        parseCost(entry.Cost),
		}
		if entry.Code != nil {
			s.TestCode = *entry.Code
		}
		if entry.LoincCode != nil {
			s.LoincCode = *entry.LoincCode
		}
		out = append(out, s)
	}
	return out, dropped
}

// matchEntry compares names to names and codes to codes, never across
// fields. A claimed name that happens to equal some entry's code must not
// bind; over-matching would surface a test the model never named.
func matchEntry(r rawLabSuggestion, entries []catalog.Entry) (catalog.Entry, bool) {
	name := strings.ToLower(strings.TrimSpace(r.TestName))
	code := strings.ToLower(strings.TrimSpace(r.TestCode))

	for _, e := range entries {
		if name != "" && name == strings.ToLower(strings.TrimSpace(e.Name)) {
			return e, true
		}
		if code != "" && e.Code != nil && code == strings.ToLower(strings.TrimSpace(*e.Code)) {
			return e, true
		}
	}
	return catalog.Entry{}, false
}

func claimedName(r rawLabSuggestion) string {
	if strings.TrimSpace(r.TestName) != "" {
		return r.TestName
	}
	return r.TestCode
}

// parseCost converts the catalog's stored cost to a number when it is one;
// unparseable or absent costs leave the field unset.
func parseCost(cost *string) *float64 {
	if cost == nil {
		return nil
	}
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(*cost), "$"))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
