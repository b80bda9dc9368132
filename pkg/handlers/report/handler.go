package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/report-forge/pkg/adapters"
	"github.com/de-tools/report-forge/pkg/models/api"
	"github.com/de-tools/report-forge/pkg/models/domain"
	"github.com/de-tools/report-forge/pkg/models/store"
	"github.com/de-tools/report-forge/pkg/services/generator"
	reportsvc "github.com/de-tools/report-forge/pkg/services/report"
	reportstore "github.com/de-tools/report-forge/pkg/store/report"
)

const defaultListLimit = 50

type Handler struct {
	generator generator.Generator
	store     reportstore.Store
}

func NewHandler(gen generator.Generator, store reportstore.Store) *Handler {
	return &Handler{
		generator: gen,
		store:     store,
	}
}

func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, logger, http.StatusBadRequest, "invalid request body")
		return
	}

	from, err := time.Parse(domain.DateLayout, req.From)
	if err != nil {
		respondError(w, logger, http.StatusBadRequest,
			fmt.Sprintf("invalid from date %q, expected %s", req.From, domain.DateLayout))
		return
	}
	to, err := time.Parse(domain.DateLayout, req.To)
	if err != nil {
		respondError(w, logger, http.StatusBadRequest,
			fmt.Sprintf("invalid to date %q, expected %s", req.To, domain.DateLayout))
		return
	}

	domainReq := adapters.MapGenerateReportRequestToDomain(req, from, to)
	if err := domainReq.Validate(); err != nil {
		respondError(w, logger, http.StatusBadRequest, err.Error())
		return
	}

	run, err := h.generator.Generate(ctx, domainReq)
	if err != nil {
		respondError(w, logger, statusForError(err), err.Error())
		return
	}

	respondJSON(w, logger, http.StatusOK, api.GenerateReportResponse{
		Id:         run.ID,
		Results:    adapters.MapGroupReportsDomainToApi(run.Results),
		DurationMs: run.DurationMs,
	})
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	id := chi.URLParam(r, "id")

	record, err := h.store.Get(ctx, id)
	if err != nil {
		respondError(w, logger, http.StatusInternalServerError, err.Error())
		return
	}
	if record == nil {
		respondError(w, logger, http.StatusNotFound, "report not found")
		return
	}

	respondJSON(w, logger, http.StatusOK, adapters.MapReportStoreToApi(*record))
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	filter := store.ListFilter{Limit: defaultListLimit}

	if value := r.URL.Query().Get("status"); value != "" {
		status, err := store.ParseReportStatus(value)
		if err != nil {
			respondError(w, logger, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = status
	}

	if value := r.URL.Query().Get("limit"); value != "" {
		limit, err := strconv.Atoi(value)
		if err != nil || limit < 0 {
			respondError(w, logger, http.StatusBadRequest, fmt.Sprintf("invalid limit: %s", value))
			return
		}
		filter.Limit = limit
	}

	if value := r.URL.Query().Get("offset"); value != "" {
		offset, err := strconv.Atoi(value)
		if err != nil || offset < 0 {
			respondError(w, logger, http.StatusBadRequest, fmt.Sprintf("invalid offset: %s", value))
			return
		}
		filter.Offset = offset
	}

	page, err := h.store.List(ctx, filter)
	if err != nil {
		respondError(w, logger, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, logger, http.StatusOK, adapters.MapReportPageStoreToApi(page))
}

func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	id := chi.URLParam(r, "id")

	if err := h.store.Delete(ctx, id); err != nil {
		respondError(w, logger, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// statusForError maps the client error taxonomy onto HTTP statuses: a
// missing API key is a service misconfiguration, a timeout or remote API
// failure is an upstream problem, anything else is internal.
func statusForError(err error) int {
	var configErr *reportsvc.ConfigurationError
	var timeoutErr *reportsvc.TimeoutError
	var apiErr *reportsvc.ApiError

	switch {
	case errors.As(err, &configErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, logger *zerolog.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, logger *zerolog.Logger, status int, message string) {
	logger.Error().
		Int("status", status).
		Str("error", message).
		Msg("request failed")

	respondJSON(w, logger, status, api.Error{Error: message})
}
