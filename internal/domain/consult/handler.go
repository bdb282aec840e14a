package consult

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/carenote/carenote/internal/domain/catalog"
	"github.com/carenote/carenote/internal/platform/llm"
)

// CatalogProvider supplies the active orderable tests for reconciliation.
type CatalogProvider interface {
	ListActive(ctx context.Context) ([]catalog.Entry, error)
}

type Handler struct {
	svc      *Service
	catalogs CatalogProvider
	validate *validator.Validate
}

func NewHandler(svc *Service, catalogs CatalogProvider) *Handler {
	return &Handler{
		svc:      svc,
		catalogs: catalogs,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/consults/simulate", h.SimulatePatient)
	api.POST("/consults/note", h.GenerateNote)
	api.POST("/consults/lab-suggestions", h.SuggestLabTests)
}

// SimulateRequest carries the patient profile and the conversation so far.
type SimulateRequest struct {
	PatientContext PatientContext `json:"patientContext" validate:"required"`
	Transcript     []Message      `json:"transcript" validate:"dive"`
}

type SimulateResponse struct {
	Reply string `json:"reply"`
}

// NoteRequest is identical in shape to SimulateRequest; the task differs.
type NoteRequest struct {
	PatientContext PatientContext `json:"patientContext" validate:"required"`
	Transcript     []Message      `json:"transcript" validate:"required,min=1,dive"`
}

// SuggestRequest optionally carries an inline catalog; when absent the
// active entries from the store are used.
type SuggestRequest struct {
	PatientContext PatientContext  `json:"patientContext" validate:"required"`
	Transcript     []Message       `json:"transcript" validate:"dive"`
	Catalog        []catalog.Entry `json:"catalog"`
}

type SuggestResponse struct {
	Suggestions []LabTestSuggestion `json:"suggestions"`
}

func (h *Handler) SimulatePatient(c echo.Context) error {
	var req SimulateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reply, err := h.svc.SimulatePatientTurn(c.Request().Context(), req.PatientContext, req.Transcript)
	if err != nil {
		return upstreamHTTPError(err)
	}
	return c.JSON(http.StatusOK, SimulateResponse{Reply: reply})
}

func (h *Handler) GenerateNote(c echo.Context) error {
	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	note, err := h.svc.GenerateClinicalNote(c.Request().Context(), req.PatientContext, req.Transcript)
	if err != nil {
		return upstreamHTTPError(err)
	}
	return c.JSON(http.StatusOK, note)
}

func (h *Handler) SuggestLabTests(c echo.Context) error {
	var req SuggestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entries := req.Catalog
	if len(entries) == 0 {
		var err error
		entries, err = h.catalogs.ListActive(c.Request().Context())
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to load lab catalog")
		}
	}

	suggestions, err := h.svc.SuggestLabTests(c.Request().Context(), req.PatientContext, req.Transcript, entries)
	if err != nil {
		return upstreamHTTPError(err)
	}
	return c.JSON(http.StatusOK, SuggestResponse{Suggestions: suggestions})
}

// upstreamHTTPError maps completion gateway failures to response codes:
// upstream timeouts become 504, rate limiting propagates as 429, and
// everything else from the gateway is a 502.
func upstreamHTTPError(err error) *echo.HTTPError {
	var svcErr *llm.ServiceError
	if errors.As(err, &svcErr) {
		switch svcErr.Kind {
		case llm.ErrKindTimeout:
			return echo.NewHTTPError(http.StatusGatewayTimeout, "model request timed out")
		case llm.ErrKindRateLimited:
			return echo.NewHTTPError(http.StatusTooManyRequests, "model rate limit exceeded")
		}
		return echo.NewHTTPError(http.StatusBadGateway, "model request failed")
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return echo.NewHTTPError(http.StatusBadGateway, "model returned an unreadable response")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
