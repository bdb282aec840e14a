// Package consult implements the clinical decision-support generation
// pipeline: it assembles patient context into a bounded prompt, calls the
// completion gateway, and normalizes the unstructured response into a
// validated clinical artifact (SOAP note, differentials, ICD codes,
// catalog-reconciled lab-test suggestions, and safety warnings).
package consult

import (
	"time"

	"github.com/google/uuid"
)

// Transcript message roles. RoleUser is the clinician; RoleAssistant is the
// simulated patient voice. RoleSystem messages are never rendered into
// prompts.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single turn of a consultation transcript. The transcript is
// append-only for the caller and read-only here.
type Message struct {
	Role      string    `json:"role" validate:"required,oneof=user assistant system"`
	Content   string    `json:"content" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
}

// Vitals holds the optional vital-sign readings of a patient snapshot. All
// fields are free text as recorded at intake ("120/80", "88 bpm").
type Vitals struct {
	Temperature   string `json:"temperature,omitempty"`
	BloodPressure string `json:"bloodPressure,omitempty"`
	HeartRate     string `json:"heartRate,omitempty"`
	Weight        string `json:"weight,omitempty"`
}

// Empty reports whether no vital sign is present.
func (v Vitals) Empty() bool {
	return v.Temperature == "" && v.BloodPressure == "" && v.HeartRate == "" && v.Weight == ""
}

// RecentVisit is one prior encounter, most recent first.
type RecentVisit struct {
	Date      string `json:"date"`
	Diagnosis string `json:"diagnosis"`
	Treatment string `json:"treatment,omitempty"`
}

// LabResult is one prior lab observation, most recent first.
type LabResult struct {
	Test       string `json:"test"`
	Result     string `json:"result"`
	Date       string `json:"date,omitempty"`
	IsAbnormal bool   `json:"isAbnormal,omitempty"`
}

// PatientContext is an immutable per-request snapshot of the patient,
// constructed by the caller from its data store and discarded after the
// pipeline call returns.
type PatientContext struct {
	Name               string        `json:"name" validate:"required"`
	Age                int           `json:"age" validate:"gte=0,lte=150"`
	Gender             string        `json:"gender"`
	MedicalHistory     string        `json:"medicalHistory,omitempty"`
	Allergies          string        `json:"allergies,omitempty"`
	CurrentMedications string        `json:"currentMedications,omitempty"`
	Vitals             Vitals        `json:"vitals,omitempty"`
	RecentVisits       []RecentVisit `json:"recentVisits,omitempty"`
	LabResults         []LabResult   `json:"labResults,omitempty"`
}

// Medication is one prescribed or suggested medication inside a note.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
	Reasoning string `json:"reasoning,omitempty"`
}

// DifferentialDiagnosis is an alternative candidate diagnosis with a
// 0-100 probability claim.
type DifferentialDiagnosis struct {
	Diagnosis   string `json:"diagnosis"`
	ICDCode     string `json:"icdCode,omitempty"`
	Probability int    `json:"probability"`
	Reasoning   string `json:"reasoning"`
}

// ICDCode is one coded diagnosis reference.
type ICDCode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// SuggestedLabTest is a free-text lab suggestion embedded in a clinical
// note. It is informational only; catalog reconciliation happens in the
// dedicated lab-suggestions operation.
type SuggestedLabTest struct {
	Test      string `json:"test"`
	Reasoning string `json:"reasoning"`
	Urgency   string `json:"urgency"`
}

// Clinical warning types.
const (
	WarningContraindication = "contraindication"
	WarningDrugInteraction  = "drug_interaction"
	WarningAllergy          = "allergy"
	WarningRedFlag          = "red_flag"
)

// Warning severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// ClinicalWarning is a safety flag surfaced alongside a note.
type ClinicalWarning struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// ClinicalNote is the fully-normalized structured note returned to the
// caller. After normalization every string field is present (possibly "")
// and every list field is non-nil, so consumers never null-check.
type ClinicalNote struct {
	ChiefComplaint          string                  `json:"chiefComplaint"`
	Subjective              string                  `json:"subjective"`
	Objective               string                  `json:"objective"`
	Assessment              string                  `json:"assessment"`
	Plan                    string                  `json:"plan"`
	HistoryOfPresentIllness string                  `json:"historyOfPresentIllness"`
	Diagnosis               string                  `json:"diagnosis"`
	Medications             []Medication            `json:"medications"`
	DifferentialDiagnoses   []DifferentialDiagnosis `json:"differentialDiagnoses"`
	ICDCodes                []ICDCode               `json:"icdCodes"`
	SuggestedLabTests       []SuggestedLabTest      `json:"suggestedLabTests"`
	ClinicalWarnings        []ClinicalWarning       `json:"clinicalWarnings"`
	ConfidenceScore         int                     `json:"confidenceScore"`
	Recommendations         string                  `json:"recommendations"`
	FollowUpInstructions    string                  `json:"followUpInstructions"`
	FollowUpDate            string                  `json:"followUpDate,omitempty"`
}

// Lab-test urgencies.
const (
	UrgencyRoutine = "routine"
	UrgencyUrgent  = "urgent"
	UrgencyStat    = "stat"
)

// LabTestSuggestion is a catalog-reconciled lab-test recommendation. Every
// emitted suggestion carries the identity of a real catalog entry; raw
// upstream strings never reach the caller.
type LabTestSuggestion struct {
	TestID               uuid.UUID `json:"testId"`
	TestName             string    `json:"testName"`
	TestCode             string    `json:"testCode,omitempty"`
	LoincCode            string    `json:"loincCode,omitempty"`
	Category             string    `json:"category"`
	Reasoning            string    `json:"reasoning"`
	Urgency              string    `json:"urgency"`
	Priority             int       `json:"priority"`
	ClinicalSignificance string    `json:"clinicalSignificance,omitempty"`
	EstimatedCost        *float64  `json:"estimatedCost,omitempty"`
}

// rawLabSuggestion is a lab suggestion as claimed by the upstream model,
// before catalog reconciliation.
type rawLabSuggestion struct {
	TestName             string
	TestCode             string
	Reasoning            string
	Urgency              string
	Priority             int
	ClinicalSignificance string
}
