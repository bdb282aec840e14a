package consult

import (
	"fmt"
	"strings"

	"github.com/carenote/carenote/internal/domain/catalog"
	"github.com/carenote/carenote/internal/platform/llm"
)

// Sampling temperatures per task. Patient simulation tolerates creative
// variance; the structured variants favor determinism and completeness.
const (
	simulateTemperature = 0.8
	noteTemperature     = 0.3
	suggestTemperature  = 0.4
)

const simulateSystemPrompt = `You are role-playing as a patient in a medical consultation. ` +
	`Stay in character and answer the doctor's questions as this patient would, ` +
	`consistent with the patient profile provided. Keep answers to 2-4 sentences. ` +
	`Do not offer diagnoses or medical advice; describe symptoms and history from ` +
	`the patient's point of view.`

const noteSystemPrompt = `You are a clinical documentation assistant. From the consultation ` +
	`transcript and patient profile, produce a complete structured SOAP note. ` +
	`Respond with a single valid JSON object and nothing else. The object must contain: ` +
	`chiefComplaint (string), subjective (string), objective (string), assessment (string), ` +
	`plan (string), historyOfPresentIllness (string), diagnosis (string), ` +
	`medications (array of {name, dosage, frequency, duration, reasoning}), ` +
	`differentialDiagnoses (array of {diagnosis, icdCode, probability (integer 0-100), reasoning}), ` +
	`icdCodes (array of {code, description, category}), ` +
	`suggestedLabTests (array of {test, reasoning, urgency}), ` +
	`clinicalWarnings (array of {type (one of contraindication, drug_interaction, allergy, red_flag), ` +
	`message, severity (one of low, medium, high, critical)}), ` +
	`confidenceScore (integer 0-100), recommendations (string), ` +
	`followUpInstructions (string), followUpDate (ISO date, optional). ` +
	`Cross-check every medication against the patient's listed allergies and current ` +
	`medications and emit a clinicalWarnings entry for each interaction or allergy conflict found.`

const suggestSystemPrompt = `You are a clinical laboratory advisor. From the consultation ` +
	`transcript and patient profile, suggest relevant lab tests. You may select ONLY from ` +
	`the available test catalog provided; never invent a test that is not listed. ` +
	`Avoid redundant tests that measure the same thing. Respond with a single valid JSON ` +
	`object of the form {"suggestions": [{testName, testCode, reasoning, ` +
	`urgency (one of routine, urgent, stat), priority (integer 1-10, 1 is highest), ` +
	`clinicalSignificance}]}.`

// SimulatePrompt builds the request for a simulated patient reply to the
// clinician's latest turn.
func SimulatePrompt(pc PatientContext, transcript []Message) llm.Request {
	var b strings.Builder
	b.WriteString("Patient profile:\n")
	b.WriteString(BuildPatientContext(pc))
	b.WriteString("\n\nConsultation so far:\n")
	b.WriteString(renderTranscript(transcript))
	b.WriteString("\n\nReply as the patient to the doctor's last message.")

	return llm.Request{
		System:      simulateSystemPrompt,
		Prompt:      b.String(),
		Temperature: simulateTemperature,
	}
}

// NotePrompt builds the structured SOAP-note generation request.
func NotePrompt(pc PatientContext, transcript []Message) llm.Request {
	var b strings.Builder
	b.WriteString("Patient profile:\n")
	b.WriteString(BuildPatientContext(pc))
	b.WriteString("\n\nConsultation transcript:\n")
	b.WriteString(renderTranscript(transcript))

	return llm.Request{
		System:      noteSystemPrompt,
		Prompt:      b.String(),
		Temperature: noteTemperature,
		ForceJSON:   true,
	}
}

// SuggestPrompt builds the lab-test suggestion request with the full
// catalog embedded as an enumerated list.
func SuggestPrompt(pc PatientContext, transcript []Message, entries []catalog.Entry) llm.Request {
	var b strings.Builder
	b.WriteString("Patient profile:\n")
	b.WriteString(BuildPatientContext(pc))
	b.WriteString("\n\nConsultation transcript:\n")
	b.WriteString(renderTranscript(transcript))
	b.WriteString("\n\nAvailable test catalog:\n")
	b.WriteString(renderCatalog(entries))

	return llm.Request{
		System:      suggestSystemPrompt,
		Prompt:      b.String(),
		Temperature: suggestTemperature,
		ForceJSON:   true,
	}
}

// renderTranscript serializes the conversation for prompt embedding.
// System messages are excluded; clinician and patient turns are relabeled
// as Doctor/Patient.
func renderTranscript(transcript []Message) string {
	var lines []string
	for _, m := range transcript {
		switch m.Role {
		case RoleUser:
			lines = append(lines, "Doctor: "+m.Content)
		case RoleAssistant:
			lines = append(lines, "Patient: "+m.Content)
		}
	}
	if len(lines) == 0 {
		return "(no conversation yet)"
	}
	return strings.Join(lines, "\n")
}

// renderCatalog enumerates catalog entries as "name (code) - category: description".
func renderCatalog(entries []catalog.Entry) string {
	var lines []string
	for i, e := range entries {
		line := fmt.Sprintf("%d. %s", i+1, e.Name)
		if e.Code != nil && *e.Code != "" {
			line += fmt.Sprintf(" (%s)", *e.Code)
		}
		line += " - " + e.Category
		if e.Description != nil && *e.Description != "" {
			line += ": " + *e.Description
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return "(catalog is empty)"
	}
	return strings.Join(lines, "\n")
}
