package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/iwvelando/mortgage-ledger/internal/config"
	"github.com/iwvelando/mortgage-ledger/internal/forecast"
	"github.com/iwvelando/mortgage-ledger/internal/metrics"
	"github.com/iwvelando/mortgage-ledger/internal/optimizer"
	"github.com/iwvelando/mortgage-ledger/internal/store"
	"github.com/iwvelando/mortgage-ledger/internal/tracing"
	"github.com/iwvelando/mortgage-ledger/pkg/adapters"
	"github.com/iwvelando/mortgage-ledger/pkg/constants"
	"github.com/iwvelando/mortgage-ledger/pkg/finance"
	"github.com/iwvelando/mortgage-ledger/pkg/mortgage"
	"github.com/iwvelando/mortgage-ledger/pkg/output"
	"github.com/iwvelando/mortgage-ledger/pkg/snapshot"
	"github.com/iwvelando/mortgage-ledger/pkg/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	repo          *store.Repository
	policy        mortgage.Policy
	maxUploadSize int64
	version       string
	now           func() time.Time
}

// Options configures the API handler.
type Options struct {
	Policy        mortgage.Policy
	MaxUploadSize int64
	Version       string
}

// NewHandler constructs the HTTP handler that serves the mortgage API over
// the records in repo.
func NewHandler(logger *zap.Logger, repo *store.Repository, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		repo:          repo,
		policy:        opts.Policy,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		now:           time.Now,
	}

	r := mux.NewRouter()
	r.Use(h.instrument)

	api := r.PathPrefix("/api").Subrouter()

	// Stateless calculation over a posted mortgage and timeline
	api.HandleFunc("/calculate", h.handleCalculate).Methods(http.MethodPost)
	api.HandleFunc("/optimize", h.handleOptimize).Methods(http.MethodPost)

	// Stored records
	api.HandleFunc("/mortgage", h.handleGetMortgage).Methods(http.MethodGet)
	api.HandleFunc("/mortgage", h.handlePutMortgage).Methods(http.MethodPut)
	api.HandleFunc("/events", h.handleListEvents).Methods(http.MethodGet)
	api.HandleFunc("/events", h.handleAddEvent).Methods(http.MethodPost)
	api.HandleFunc("/events/{id}", h.handleDeleteEvent).Methods(http.MethodDelete)
	api.HandleFunc("/investments", h.handleGetInvestments).Methods(http.MethodGet)
	api.HandleFunc("/investments", h.handlePutInvestments).Methods(http.MethodPut)
	api.HandleFunc("/data", h.handleClear).Methods(http.MethodDelete)

	// Calculation over the stored records
	api.HandleFunc("/results", h.handleResults).Methods(http.MethodGet)

	// Snapshot download and upload
	api.HandleFunc("/export", h.handleExport).Methods(http.MethodGet)
	api.HandleFunc("/import", h.handleImport).Methods(http.MethodPost)

	// Version endpoint for UI metadata
	api.HandleFunc("/version", h.handleVersion).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

type calculateRequest struct {
	MortgageData   *adapters.MortgageData `json:"mortgageData"`
	TimelineEvents []adapters.EventRecord  `json:"timelineEvents"`
	Investments    []finance.Investment    `json:"investments"`
}

type calculateResponse struct {
	Result      *mortgage.Result     `json:"result"`
	Comparisons []finance.Comparison `json:"comparisons,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
	Duration    string               `json:"duration"`
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"
	start := time.Now()

	var req calculateRequest
	if !h.readJSON(w, r, &req, op) {
		return
	}
	if req.MortgageData == nil {
		h.respondError(w, http.StatusBadRequest, "missing mortgageData", op)
		return
	}

	h.runForecast(r.Context(), w, forecast.SourceRequest, forecast.Input{
		Mortgage:    *req.MortgageData,
		Events:      req.TimelineEvents,
		Investments: req.Investments,
		Policy:      h.policy,
	}, start, op)
}

type optimizeRequest struct {
	calculateRequest
	Optimizer config.OptimizerConfig `json:"optimizer"`
}

// handleOptimize searches for the repayment that pays the posted mortgage off
// by optimizer.targetPayoffDate.
func (h *handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleOptimize"

	var req optimizeRequest
	if !h.readJSON(w, r, &req, op) {
		return
	}
	if req.MortgageData == nil {
		h.respondError(w, http.StatusBadRequest, "missing mortgageData", op)
		return
	}

	runner, err := optimizer.NewRunner(h.logger, forecast.Input{
		Mortgage: *req.MortgageData,
		Events:   req.TimelineEvents,
		Policy:   h.policy,
	}, req.Optimizer)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	summary, err := runner.Run(r.Context())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to optimize repayment: %v", err), op)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *handler) handleResults(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleResults"
	start := time.Now()
	ctx := r.Context()

	m, err := h.repo.LoadMortgage(ctx)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	if m == nil {
		h.respondError(w, http.StatusNotFound, "no mortgage data stored", op)
		return
	}
	records, err := h.repo.LoadEvents(ctx)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	investments, err := h.repo.LoadInvestments(ctx)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	in := forecast.Input{Mortgage: *m, Events: records, Investments: investments, Policy: h.policy}
	if r.URL.Query().Get("format") != constants.OutputFormatCSV {
		h.runForecast(ctx, w, forecast.SourceStored, in, start, op)
		return
	}

	show := r.URL.Query().Get("show")
	if show == "" {
		show = constants.ShowLedger
	}
	if err := validation.ValidateShow(show); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	fc, err := forecast.FromRecords(ctx, h.logger, forecast.SourceStored, in)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	output.CsvFormat(w, show, fc.Result)
}

func (h *handler) runForecast(ctx context.Context, w http.ResponseWriter, source string, in forecast.Input, start time.Time, op string) {
	result, err := forecast.FromRecords(ctx, h.logger, source, in)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to calculate mortgage: %v", err), op)
		return
	}

	warnings := append(validation.ValidateMortgage(in.Mortgage), result.Warnings...)
	warnings = append(warnings, validation.ValidateEvents(in.Mortgage, in.Events)...)

	h.writeJSON(w, http.StatusOK, calculateResponse{
		Result:      result.Result,
		Comparisons: result.Comparisons,
		Warnings:    warnings,
		Duration:    time.Since(start).String(),
	})
}

func (h *handler) handleGetMortgage(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetMortgage"
	m, err := h.repo.LoadMortgage(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	if m == nil {
		h.respondError(w, http.StatusNotFound, "no mortgage data stored", op)
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}

type mortgageResponse struct {
	MortgageData adapters.MortgageData `json:"mortgageData"`
	Warnings     []string              `json:"warnings,omitempty"`
}

func (h *handler) handlePutMortgage(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePutMortgage"

	var m adapters.MortgageData
	if !h.readJSON(w, r, &m, op) {
		return
	}
	if _, err := m.ToLoanConfiguration(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	if err := h.repo.SaveMortgage(r.Context(), m); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, mortgageResponse{MortgageData: m, Warnings: validation.ValidateMortgage(m)})
}

func (h *handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.LoadEvents(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "server.handleListEvents")
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *handler) handleAddEvent(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAddEvent"

	var record adapters.EventRecord
	if !h.readJSON(w, r, &record, op) {
		return
	}
	if record.ID == "" {
		record.ID = adapters.NewRecordID()
	}
	if _, err := record.ToEvent(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	stored, err := h.repo.AddEvent(r.Context(), record)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusCreated, stored)
}

func (h *handler) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDeleteEvent"
	id := mux.Vars(r)["id"]

	removed, err := h.repo.DeleteEvent(r.Context(), id)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	if !removed {
		h.respondError(w, http.StatusNotFound, fmt.Sprintf("no timeline event with id %s", id), op)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleGetInvestments(w http.ResponseWriter, r *http.Request) {
	investments, err := h.repo.LoadInvestments(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "server.handleGetInvestments")
		return
	}
	h.writeJSON(w, http.StatusOK, investments)
}

func (h *handler) handlePutInvestments(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePutInvestments"

	var investments []finance.Investment
	if !h.readJSON(w, r, &investments, op) {
		return
	}
	for i := range investments {
		if investments[i].ID == "" {
			investments[i].ID = adapters.NewRecordID()
		}
	}
	if err := h.repo.SaveInvestments(r.Context(), investments); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	if investments == nil {
		investments = []finance.Investment{}
	}
	h.writeJSON(w, http.StatusOK, investments)
}

func (h *handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Clear(r.Context()); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), "server.handleClear")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExport"
	now := h.now()

	doc, err := snapshot.Export(r.Context(), h.repo, now)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	data, err := doc.Marshal()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode export: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", snapshot.FileName(now)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write export",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

type importResponse struct {
	Mortgage    bool `json:"mortgage"`
	Events      int  `json:"events"`
	Investments int  `json:"investments"`
}

func (h *handler) handleImport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleImport"

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		h.respondBodyError(w, err, op)
		return
	}

	records, err := snapshot.Import(r.Context(), h.repo, data)
	if err != nil {
		var importErr *snapshot.ImportError
		if errors.As(err, &importErr) {
			h.logger.Warn("snapshot import rejected",
				zap.String("op", op),
				zap.Error(err),
			)
			h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": importErr.Message})
			return
		}
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	var resp importResponse
	// The records are stored as given; counting them is best effort.
	if decoded, err := records.Decode(); err == nil {
		resp = importResponse{
			Mortgage:    decoded.Mortgage != nil,
			Events:      len(decoded.Events),
			Investments: len(decoded.Investments),
		}
	} else {
		resp.Mortgage = records.MortgageData != nil
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// readJSON decodes a size-limited request body into dst. It writes the error
// response itself and reports whether decoding succeeded.
func (h *handler) readJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondBodyError(w, err, op)
		return false
	}
	return true
}

func (h *handler) respondBodyError(w http.ResponseWriter, err error, op string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.respondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds limit of %d bytes", h.maxUploadSize), op)
		return
	}
	h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// instrument wraps every routed request in a span and records its metrics
// under the route template.
func (h *handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		ctx, span := tracing.Tracer("server").Start(r.Context(), r.Method+" "+route)
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))
		elapsed := time.Since(start)

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", rec.status),
		)
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}

		metrics.HTTPRequests.WithLabelValues(route, r.Method, fmt.Sprintf("%d", rec.status)).Inc()
		metrics.HTTPDuration.WithLabelValues(route, r.Method).Observe(elapsed.Seconds())

		h.logger.Debug("request handled",
			zap.String("op", "server.instrument"),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed),
		)
	})
}
