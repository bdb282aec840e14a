package consult

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carenote/carenote/internal/domain/catalog"
	"github.com/carenote/carenote/internal/platform/llm"
)

type stubCatalogProvider struct {
	entries []catalog.Entry
	err     error
	calls   int
}

func (s *stubCatalogProvider) ListActive(context.Context) ([]catalog.Entry, error) {
	s.calls++
	return s.entries, s.err
}

func newTestHandler(gw llm.Client, provider CatalogProvider) *Handler {
	return NewHandler(NewService(gw, zerolog.Nop()), provider)
}

func postJSON(t *testing.T, h echo.HandlerFunc, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, h(e.NewContext(req, rec))
}

func TestSimulatePatientHandler(t *testing.T) {
	h := newTestHandler(&stubGateway{reply: "My chest hurts when I breathe."}, &stubCatalogProvider{})

	rec, err := postJSON(t, h.SimulatePatient,
		`{"patientContext": {"name": "Jane", "age": 30}, "transcript": [{"role": "user", "content": "What brings you in?"}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp SimulateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reply != "My chest hurts when I breathe." {
		t.Errorf("reply = %q", resp.Reply)
	}
}

func TestSimulatePatientHandlerRejectsMissingName(t *testing.T) {
	h := newTestHandler(&stubGateway{reply: "x"}, &stubCatalogProvider{})

	_, err := postJSON(t, h.SimulatePatient, `{"patientContext": {"age": 30}}`)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestGenerateNoteHandlerRequiresTranscript(t *testing.T) {
	h := newTestHandler(&stubGateway{reply: "{}"}, &stubCatalogProvider{})

	_, err := postJSON(t, h.GenerateNote, `{"patientContext": {"name": "Jane", "age": 30}, "transcript": []}`)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestGenerateNoteHandler(t *testing.T) {
	h := newTestHandler(&stubGateway{reply: `{"diagnosis": "Influenza", "confidenceScore": 80}`}, &stubCatalogProvider{})

	rec, err := postJSON(t, h.GenerateNote,
		`{"patientContext": {"name": "Jane", "age": 30}, "transcript": [{"role": "user", "content": "Fever?"}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var note ClinicalNote
	if err := json.Unmarshal(rec.Body.Bytes(), &note); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if note.Diagnosis != "Influenza" || note.ConfidenceScore != 80 {
		t.Errorf("note = %+v", note)
	}
}

func TestGatewayErrorMapping(t *testing.T) {
	tests := []struct {
		kind string
		want int
	}{
		{llm.ErrKindTimeout, http.StatusGatewayTimeout},
		{llm.ErrKindRateLimited, http.StatusTooManyRequests},
		{llm.ErrKindEmpty, http.StatusBadGateway},
		{llm.ErrKindUpstream, http.StatusBadGateway},
	}
	for _, tt := range tests {
		gw := &stubGateway{err: &llm.ServiceError{Kind: tt.kind, Err: errors.New(tt.kind)}}
		h := newTestHandler(gw, &stubCatalogProvider{})

		_, err := postJSON(t, h.SimulatePatient, `{"patientContext": {"name": "J", "age": 1}}`)
		he, ok := err.(*echo.HTTPError)
		if !ok || he.Code != tt.want {
			t.Errorf("kind %s: expected %d, got %v", tt.kind, tt.want, err)
		}
	}
}

func TestGenerateNoteHandlerUnparseableUpstream(t *testing.T) {
	h := newTestHandler(&stubGateway{reply: "not json"}, &stubCatalogProvider{})

	_, err := postJSON(t, h.GenerateNote,
		`{"patientContext": {"name": "J", "age": 1}, "transcript": [{"role": "user", "content": "hi"}]}`)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %v", err)
	}
}

func TestSuggestHandlerUsesStoredCatalog(t *testing.T) {
	provider := &stubCatalogProvider{entries: testCatalog()}
	gw := &stubGateway{reply: `{"suggestions": [{"testName": "CBC", "reasoning": "r", "urgency": "routine", "priority": 3}]}`}
	h := newTestHandler(gw, provider)

	rec, err := postJSON(t, h.SuggestLabTests, `{"patientContext": {"name": "Jane", "age": 30}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
	var resp SuggestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Suggestions) != 1 || resp.Suggestions[0].TestName != "Complete Blood Count" {
		t.Errorf("suggestions = %+v", resp.Suggestions)
	}
}

func TestSuggestHandlerInlineCatalogOverride(t *testing.T) {
	provider := &stubCatalogProvider{entries: testCatalog()}
	gw := &stubGateway{reply: `{"suggestions": [{"testName": "Lipid Panel", "reasoning": "r", "urgency": "routine", "priority": 5}]}`}
	h := newTestHandler(gw, provider)

	body := `{
		"patientContext": {"name": "Jane", "age": 30},
		"catalog": [{"id": "00000000-0000-0000-0000-000000000009", "name": "Lipid Panel", "category": "chemistry", "active": true}]
	}`
	rec, err := postJSON(t, h.SuggestLabTests, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.calls != 0 {
		t.Error("stored catalog must not be consulted when an inline catalog is given")
	}
	var resp SuggestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Suggestions) != 1 || resp.Suggestions[0].TestName != "Lipid Panel" {
		t.Errorf("suggestions = %+v", resp.Suggestions)
	}
}

func TestSuggestHandlerCatalogLoadFailure(t *testing.T) {
	provider := &stubCatalogProvider{err: errors.New("db down")}
	h := newTestHandler(&stubGateway{reply: "{}"}, provider)

	_, err := postJSON(t, h.SuggestLabTests, `{"patientContext": {"name": "J", "age": 1}}`)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
}
