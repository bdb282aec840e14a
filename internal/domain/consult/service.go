package consult

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/carenote/carenote/internal/domain/catalog"
	"github.com/carenote/carenote/internal/platform/llm"
)

// Service runs the consultation pipeline: assemble patient context, compose
// the task prompt, call the completion gateway, then normalize and (for lab
// suggestions) reconcile the response.
type Service struct {
	gateway llm.Client
	logger  zerolog.Logger
}

func NewService(gateway llm.Client, logger zerolog.Logger) *Service {
	return &Service{gateway: gateway, logger: logger}
}

// SimulatePatientTurn produces the simulated patient's next conversational
// reply. The output is free text and is returned as-is, trimmed.
func (s *Service) SimulatePatientTurn(ctx context.Context, pc PatientContext, transcript []Message) (string, error) {
	reply, err := s.gateway.Complete(ctx, SimulatePrompt(pc, transcript))
	if err != nil {
		return "", fmt.Errorf("simulate patient turn: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// GenerateClinicalNote produces a structured clinical note from the
// consultation transcript. Missing fields in the model output are defaulted
// rather than failing the request.
func (s *Service) GenerateClinicalNote(ctx context.Context, pc PatientContext, transcript []Message) (*ClinicalNote, error) {
	raw, err := s.gateway.Complete(ctx, NotePrompt(pc, transcript))
	if err != nil {
		return nil, fmt.Errorf("generate clinical note: %w", err)
	}

	note, gaps, err := NormalizeClinicalNote(raw)
	if err != nil {
		s.logger.Error().Err(err).Msg("clinical note response unparseable")
		return nil, fmt.Errorf("generate clinical note: %w", err)
	}
	if len(gaps) > 0 {
		s.logger.Debug().
			Strs("fields", gaps).
			Msg("clinical note fields defaulted")
	}
	if len(note.ClinicalWarnings) > 0 {
		s.logger.Info().
			Int("count", len(note.ClinicalWarnings)).
			Msg("clinical warnings raised")
	}
	return note, nil
}

// SuggestLabTests produces catalog-backed lab test suggestions. Entries is
// the set of orderable tests to reconcile against; suggestions that match
// no entry are dropped.
func (s *Service) SuggestLabTests(ctx context.Context, pc PatientContext, transcript []Message, entries []catalog.Entry) ([]LabTestSuggestion, error) {
	raw, err := s.gateway.Complete(ctx, SuggestPrompt(pc, transcript, entries))
	if err != nil {
		return nil, fmt.Errorf("suggest lab tests: %w", err)
	}

	raws, gaps, err := NormalizeLabSuggestions(raw)
	if err != nil {
		s.logger.Error().Err(err).Msg("lab suggestion response unparseable")
		return nil, fmt.Errorf("suggest lab tests: %w", err)
	}
	if len(gaps) > 0 {
		s.logger.Debug().
			Strs("fields", gaps).
			Msg("lab suggestion fields defaulted")
	}

	suggestions, dropped := ReconcileSuggestions(raws, entries)
	if len(dropped) > 0 {
		s.logger.Warn().
			Strs("tests", dropped).
			Msg("suggested tests not in catalog, dropped")
	}
	return suggestions, nil
}
