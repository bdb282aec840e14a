package consult

import (
	"testing"

	"github.com/google/uuid"

	"github.com/carenote/carenote/internal/domain/catalog"
)

func testCatalog() []catalog.Entry {
	return []catalog.Entry{
		{
			ID:        uuid.MustParse("00000000-0000-0000-0000-000000000007"),
			Name:      "Complete Blood Count",
			Code:      strPtr("CBC"),
			LoincCode: strPtr("58410-2"),
			Category:  "hematology",
			Cost:      strPtr("25.50"),
		},
		{
			ID:       uuid.MustParse("00000000-0000-0000-0000-000000000008"),
			Name:     "Thyroid Stimulating Hormone",
			Code:     strPtr("TSH"),
			Category: "endocrinology",
		},
	}
}

func TestReconcileMatchesByName(t *testing.T) {
	raws := []rawLabSuggestion{{TestName: "complete blood count", Reasoning: "r", Urgency: UrgencyUrgent, Priority: 2}}

	out, dropped := ReconcileSuggestions(raws, testCatalog())
	if len(dropped) != 0 {
		t.Fatalf("unexpected drops: %v", dropped)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(out))
	}
	s := out[0]
	if s.TestName != "Complete Blood Count" {
		t.Errorf("identity must come from the catalog, got %q", s.TestName)
	}
	if s.TestID != uuid.MustParse("00000000-0000-0000-0000-000000000007") {
		t.Errorf("testId = %s", s.TestID)
	}
	if s.TestCode != "CBC" || s.LoincCode != "58410-2" || s.Category != "hematology" {
		t.Errorf("catalog fields not carried: %+v", s)
	}
	if s.EstimatedCost == nil || *s.EstimatedCost != 25.50 {
		t.Errorf("estimatedCost = %v, want 25.50", s.EstimatedCost)
	}
	if s.Urgency != UrgencyUrgent || s.Priority != 2 {
		t.Errorf("model fields not carried: %+v", s)
	}
}

func TestReconcileMatchesByCode(t *testing.T) {
	raws := []rawLabSuggestion{{TestName: "Full blood panel", TestCode: "cbc", Priority: 3}}
	out, dropped := ReconcileSuggestions(raws, testCatalog())
	if len(out) != 1 || len(dropped) != 0 {
		t.Fatalf("out=%d dropped=%v", len(out), dropped)
	}
	if out[0].TestName != "Complete Blood Count" {
		t.Errorf("matched wrong entry: %+v", out[0])
	}
}

func TestReconcileNeverMatchesAcrossFields(t *testing.T) {
	// A claimed name equal to an entry's code is not a match; names only
	// compare to names, codes to codes.
	raws := []rawLabSuggestion{{TestName: "TSH", Priority: 4}}
	out, dropped := ReconcileSuggestions(raws, testCatalog())
	if len(out) != 0 {
		t.Fatalf("name-vs-code must not bind, got %+v", out)
	}
	if len(dropped) != 1 || dropped[0] != "TSH" {
		t.Errorf("dropped = %v", dropped)
	}
}

func TestReconcileNameCollidingWithEarlierCode(t *testing.T) {
	entries := []catalog.Entry{
		{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Name: "Basic Metabolic Panel", Code: strPtr("GLUCOSE"), Category: "chemistry"},
		{ID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), Name: "Glucose", Code: strPtr("GLU"), Category: "chemistry"},
	}
	raws := []rawLabSuggestion{{TestName: "Glucose", Priority: 3}}

	out, dropped := ReconcileSuggestions(raws, entries)
	if len(dropped) != 0 {
		t.Fatalf("unexpected drops: %v", dropped)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(out))
	}
	if out[0].TestName != "Glucose" {
		t.Errorf("bound to wrong entry: testName = %q", out[0].TestName)
	}
	if out[0].TestID != uuid.MustParse("00000000-0000-0000-0000-000000000002") {
		t.Errorf("testId = %s", out[0].TestID)
	}
}

func TestReconcileDropsUnmatched(t *testing.T) {
	raws := []rawLabSuggestion{
		{TestName: "Complete Blood Count", Priority: 1},
		{TestName: "Invented Panel", Priority: 1},
	}
	out, dropped := ReconcileSuggestions(raws, testCatalog())
	if len(out) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(out))
	}
	if len(dropped) != 1 || dropped[0] != "Invented Panel" {
		t.Errorf("dropped = %v", dropped)
	}
}

func TestReconcileNeverExceedsInput(t *testing.T) {
	raws := []rawLabSuggestion{{TestName: "CBC", Priority: 1}}
	out, _ := ReconcileSuggestions(raws, testCatalog())
	if len(out) > len(raws) {
		t.Errorf("output %d exceeds input %d", len(out), len(raws))
	}
}

func TestReconcileEmptyCatalogDropsAll(t *testing.T) {
	raws := []rawLabSuggestion{{TestName: "CBC", Priority: 1}}
	out, dropped := ReconcileSuggestions(raws, nil)
	if len(out) != 0 || len(dropped) != 1 {
		t.Errorf("out=%v dropped=%v", out, dropped)
	}
	if out == nil {
		t.Error("result must be non-nil even when everything drops")
	}
}

func TestParseCost(t *testing.T) {
	tests := []struct {
		in   *string
		want *float64
	}{
		{nil, nil},
		{strPtr("25.50"), float64Ptr(25.50)},
		{strPtr("$40"), float64Ptr(40)},
		{strPtr("varies"), nil},
	}
	for _, tt := range tests {
		got := parseCost(tt.in)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("parseCost(%v) = %v, want nil", tt.in, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("parseCost(%v) = %v, want %v", *tt.in, got, *tt.want)
		}
	}
}

func float64Ptr(f float64) *float64 { return &f }
