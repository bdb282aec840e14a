package consult

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ParseError reports that the upstream response body was not valid JSON for
// a structured task. It carries the raw text for diagnostics and is fatal
// for the request.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("upstream response is not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// gapList accumulates the names of fields that were absent or wrong-typed
// and got a default substituted. Gaps are observability signals, never
// errors.
type gapList struct {
	fields []string
}

func (g *gapList) add(field string) {
	g.fields = append(g.fields, field)
}

// NormalizeClinicalNote parses raw upstream text into a fully-populated
// ClinicalNote. Absent or uncoercible scalar strings become "", absent
// lists become empty slices, and an absent confidence score becomes 70.
// The returned gap names identify every substitution made. A body that is
// not a JSON object at all is a *ParseError.
func NormalizeClinicalNote(raw string) (*ClinicalNote, []string, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, nil, err
	}

	var gaps gapList
	note := &ClinicalNote{
		ChiefComplaint:          stringField(obj, "chiefComplaint", &gaps),
		Subjective:              stringField(obj, "subjective", &gaps),
		Objective:               stringField(obj, "objective", &gaps),
		Assessment:              stringField(obj, "assessment", &gaps),
		Plan:                    stringField(obj, "plan", &gaps),
		HistoryOfPresentIllness: stringField(obj, "historyOfPresentIllness", &gaps),
		Diagnosis:               stringField(obj, "diagnosis", &gaps),
		Medications:             medicationList(obj, &gaps),
		DifferentialDiagnoses:   differentialList(obj, &gaps),
		ICDCodes:                icdCodeList(obj, &gaps),
		SuggestedLabTests:       suggestedTestList(obj, &gaps),
		ClinicalWarnings:        warningList(obj, &gaps),
		Recommendations:         stringField(obj, "recommendations", &gaps),
		FollowUpInstructions:    stringField(obj, "followUpInstructions", &gaps),
	}

	if fd, ok := coerceString(obj["followUpDate"]); ok {
		note.FollowUpDate = fd
	}

	if n, ok := coerceInt(obj["confidenceScore"]); ok {
		note.ConfidenceScore = clampScore(n)
	} else {
		gaps.add("confidenceScore")
		note.ConfidenceScore = defaultConfidence
	}

	return note, gaps.fields, nil
}

// NormalizeLabSuggestions parses raw upstream text into the list of test
// suggestions claimed by the model, before catalog reconciliation. Both
// {"suggestions": [...]} and a bare top-level array are accepted.
func NormalizeLabSuggestions(raw string) ([]rawLabSuggestion, []string, error) {
	trimmed := stripJSONFences(raw)

	var gaps gapList
	var items []interface{}
	if strings.HasPrefix(strings.TrimSpace(trimmed), "[") {
		if err := unmarshalNumeric(trimmed, &items); err != nil {
			return nil, nil, &ParseError{Raw: raw, Err: err}
		}
	} else {
		obj, err := decodeObject(raw)
		if err != nil {
			return nil, nil, err
		}
		arr, ok := obj["suggestions"].([]interface{})
		if !ok {
			gaps.add("suggestions")
		}
		items = arr
	}
	out := make([]rawLabSuggestion, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			gaps.add(fmt.Sprintf("suggestions[%d]", i))
			continue
		}
		s := rawLabSuggestion{
			TestName:             stringIn(m, "testName"),
			TestCode:             stringIn(m, "testCode"),
			Reasoning:            stringIn(m, "reasoning"),
			Urgency:              normalizeUrgency(stringIn(m, "urgency"), &gaps, fmt.Sprintf("suggestions[%d].urgency", i)),
			ClinicalSignificance: stringIn(m, "clinicalSignificance"),
		}
		if n, ok := coerceInt(m["priority"]); ok {
			s.Priority = clampPriority(n)
		} else {
			gaps.add(fmt.Sprintf("suggestions[%d].priority", i))
			s.Priority = defaultPriority
		}
		out = append(out, s)
	}
	return out, gaps.fields, nil
}

// decodeObject parses raw text as a JSON object with numeric fidelity
// preserved (json.Number, not float64).
func decodeObject(raw string) (map[string]interface{}, error) {
	var obj map[string]interface{}
	if err := unmarshalNumeric(stripJSONFences(raw), &obj); err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}
	return obj, nil
}

func unmarshalNumeric(raw string, v interface{}) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// stripJSONFences removes a surrounding markdown code fence, which some
// completion services emit even in JSON mode.
func stripJSONFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ---------------------------------------------------------------------------
// Field coercion
// ---------------------------------------------------------------------------

// coerceString accepts a string as-is and formats numbers and booleans;
// anything else (objects, arrays, null, absent) fails.
func coerceString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// coerceInt accepts JSON numbers (truncating fractions), numeric strings,
// and float64 values; anything else fails.
func coerceInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		if f, err := t.Float64(); err == nil {
			return int(f), true
		}
		return 0, false
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return int(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func stringField(obj map[string]interface{}, key string, gaps *gapList) string {
	if s, ok := coerceString(obj[key]); ok {
		return s
	}
	gaps.add(key)
	return ""
}

// stringIn is the lenient variant for nested objects: no gap recording,
// absent or uncoercible values are simply "".
func stringIn(m map[string]interface{}, key string) string {
	s, _ := coerceString(m[key])
	return s
}

func objectList(obj map[string]interface{}, key string, gaps *gapList) []map[string]interface{} {
	v, present := obj[key]
	if !present {
		gaps.add(key)
		return nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		gaps.add(key)
		return nil
	}
	var out []map[string]interface{}
	for _, item := range arr {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

func medicationList(obj map[string]interface{}, gaps *gapList) []Medication {
	out := make([]Medication, 0)
	for _, m := range objectList(obj, "medications", gaps) {
		out = append(out, Medication{
			Name:      stringIn(m, "name"),
			Dosage:    stringIn(m, "dosage"),
			Frequency: stringIn(m, "frequency"),
			Duration:  stringIn(m, "duration"),
			Reasoning: stringIn(m, "reasoning"),
		})
	}
	return out
}

func differentialList(obj map[string]interface{}, gaps *gapList) []DifferentialDiagnosis {
	out := make([]DifferentialDiagnosis, 0)
	for i, m := range objectList(obj, "differentialDiagnoses", gaps) {
		d := DifferentialDiagnosis{
			Diagnosis: stringIn(m, "diagnosis"),
			ICDCode:   stringIn(m, "icdCode"),
			Reasoning: stringIn(m, "reasoning"),
		}
		if n, ok := coerceInt(m["probability"]); ok {
			d.Probability = clampScore(n)
		} else {
			gaps.add(fmt.Sprintf("differentialDiagnoses[%d].probability", i))
		}
		out = append(out, d)
	}
	return out
}

func icdCodeList(obj map[string]interface{}, gaps *gapList) []ICDCode {
	out := make([]ICDCode, 0)
	for _, m := range objectList(obj, "icdCodes", gaps) {
		out = append(out, ICDCode{
			Code:        stringIn(m, "code"),
			Description: stringIn(m, "description"),
			Category:    stringIn(m, "category"),
		})
	}
	return out
}

func suggestedTestList(obj map[string]interface{}, gaps *gapList) []SuggestedLabTest {
	out := make([]SuggestedLabTest, 0)
	for i, m := range objectList(obj, "suggestedLabTests", gaps) {
		out = append(out, SuggestedLabTest{
			Test:      stringIn(m, "test"),
			Reasoning: stringIn(m, "reasoning"),
			Urgency:   normalizeUrgency(stringIn(m, "urgency"), gaps, fmt.Sprintf("suggestedLabTests[%d].urgency", i)),
		})
	}
	return out
}

func warningList(obj map[string]interface{}, gaps *gapList) []ClinicalWarning {
	out := make([]ClinicalWarning, 0)
	for i, m := range objectList(obj, "clinicalWarnings", gaps) {
		out = append(out, ClinicalWarning{
			Type:     stringIn(m, "type"),
			Message:  stringIn(m, "message"),
			Severity: normalizeSeverity(stringIn(m, "severity"), gaps, fmt.Sprintf("clinicalWarnings[%d].severity", i)),
		})
	}
	return out
}
