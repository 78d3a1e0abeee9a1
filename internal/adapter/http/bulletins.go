package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/heatguard-service/internal/domain"
	"github.com/couchcryptid/heatguard-service/internal/observability"
	"github.com/couchcryptid/heatguard-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

const (
	maxForecastBytes = 1 << 20
	defaultListLimit = 20
	maxListLimit     = 100
)

// Archive persists bulletins for later retrieval.
type Archive interface {
	Save(ctx context.Context, b domain.Bulletin) error
	Get(ctx context.Context, id string) (domain.Bulletin, error)
	Recent(ctx context.Context, limit int) ([]domain.Bulletin, error)
}

// BulletinHandler serves the /v1/bulletins routes.
type BulletinHandler struct {
	engine      *domain.Engine
	archive     Archive
	defaultRole domain.Role
	horizon     int
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewBulletinHandler wires the engine and archive behind the HTTP routes.
func NewBulletinHandler(engine *domain.Engine, archive Archive, defaultRole domain.Role, horizon int, logger *slog.Logger, metrics *observability.Metrics) *BulletinHandler {
	return &BulletinHandler{
		engine:      engine,
		archive:     archive,
		defaultRole: defaultRole,
		horizon:     horizon,
		logger:      logger.With("component", "http"),
		metrics:     metrics,
	}
}

// handleCreate plans a forecast posted in the request body.
func (h *BulletinHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxForecastBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		h.writeError(w, r, status, err)
		return
	}

	units, err := domain.ParseUnits(r.URL.Query().Get("units"))
	if err != nil {
		h.writeError(w, r, statusFor(err), err)
		return
	}

	req, err := h.buildRequest(body, r)
	if err != nil {
		h.metrics.RejectedForecasts.WithLabelValues(pipeline.RejectReason(err)).Inc()
		h.writeError(w, r, statusFor(err), err)
		return
	}

	b, err := h.engine.Generate(req)
	if err != nil {
		h.metrics.RejectedForecasts.WithLabelValues(pipeline.RejectReason(err)).Inc()
		h.writeError(w, r, statusFor(err), err)
		return
	}
	pipeline.RecordBulletin(h.metrics, "http", b)

	// An archive failure does not withhold a bulletin that was already computed.
	if err := h.archive.Save(r.Context(), b); err != nil {
		h.logger.Error("archive bulletin failed",
			"error", err, "bulletin_id", b.ID, "request_id", RequestID(r.Context()))
	}

	h.logger.Info("bulletin generated",
		"bulletin_id", b.ID,
		"peak_risk", b.PeakRisk.Key(),
		"role", b.Role.Key(),
		"request_id", RequestID(r.Context()),
	)
	w.Header().Set("Location", "/v1/bulletins/"+b.ID)
	writeBulletin(w, r, http.StatusCreated, b, units)
}

func (h *BulletinHandler) buildRequest(body []byte, r *http.Request) (domain.ForecastRequest, error) {
	doc, err := domain.ParseForecast(body)
	if err != nil {
		return domain.ForecastRequest{}, err
	}

	q := r.URL.Query()
	if role := q.Get("role"); role != "" {
		doc.Role = role
	}
	if s := q.Get("session"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return domain.ForecastRequest{}, fmt.Errorf("%w: session must be a whole number of minutes, got %q", domain.ErrInvalidRequest, s)
		}
		doc.SessionMinutes = n
	}
	return doc.Request(h.defaultRole, h.horizon)
}

// handleGet returns an archived bulletin.
func (h *BulletinHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	units, err := domain.ParseUnits(r.URL.Query().Get("units"))
	if err != nil {
		h.writeError(w, r, statusFor(err), err)
		return
	}

	b, err := h.archive.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, statusFor(err), err)
		return
	}
	writeBulletin(w, r, http.StatusOK, b, units)
}

// bulletinSummary is one entry of the archive listing.
type bulletinSummary struct {
	ID          string              `json:"id"`
	Location    string              `json:"location,omitempty"`
	Role        domain.Role         `json:"role"`
	PeakRisk    domain.RiskCategory `json:"peak_risk"`
	Summary     string              `json:"summary"`
	GeneratedAt time.Time           `json:"generated_at"`
}

type listResponse struct {
	Bulletins []bulletinSummary `json:"bulletins"`
}

// handleList returns the most recently generated archived bulletins.
func (h *BulletinHandler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxListLimit {
			err := fmt.Errorf("%w: limit must be between 1 and %d, got %q", domain.ErrInvalidRequest, maxListLimit, s)
			h.writeError(w, r, statusFor(err), err)
			return
		}
		limit = n
	}

	bs, err := h.archive.Recent(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, statusFor(err), err)
		return
	}
	resp := listResponse{Bulletins: make([]bulletinSummary, len(bs))}
	for i, b := range bs {
		resp.Bulletins[i] = bulletinSummary{
			ID:          b.ID,
			Location:    b.Location,
			Role:        b.Role,
			PeakRisk:    b.PeakRisk,
			Summary:     b.Summary,
			GeneratedAt: b.GeneratedAt,
		}
	}
	sharedobs.WriteJSON(w, http.StatusOK, resp)
}

func (h *BulletinHandler) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err, "path", r.URL.Path, "request_id", RequestID(r.Context()))
	} else {
		h.logger.Debug("request rejected", "error", err, "status", status, "request_id", RequestID(r.Context()))
	}
	sharedobs.WriteJSON(w, status, errorBody(err))
}

type errorResponse struct {
	Error string `json:"error"`
	Hour  *int   `json:"hour,omitempty"`
	Field string `json:"field,omitempty"`
}

func errorBody(err error) errorResponse {
	resp := errorResponse{Error: err.Error()}
	var ire *domain.InvalidReadingError
	if errors.As(err, &ire) {
		hour := ire.Index
		resp.Hour = &hour
		resp.Field = ire.Field
	}
	return resp
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidReading), errors.Is(err, domain.ErrEmptyForecast):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBulletinNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeBulletin(w http.ResponseWriter, r *http.Request, status int, b domain.Bulletin, units domain.Units) {
	if !wantsText(r) {
		sharedobs.WriteJSON(w, status, b)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, domain.RenderText(b, units)) //nolint:errcheck // client went away
}

func wantsText(r *http.Request) bool {
	if r.URL.Query().Get("format") == "text" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/plain")
}
