// Package server exposes the calculators over a JSON HTTP API.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"sterling/internal/config"
	"sterling/internal/incometax"
	"sterling/internal/payoff"
	"sterling/internal/planner"
	"sterling/pkg/constants"
	"sterling/pkg/tax"
)

type handler struct {
	logger       *zap.Logger
	maxBodyBytes int64
	tables       *tax.Tables
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, cfg *config.Configuration, tables *tax.Tables, limiter *RateLimiter) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxBodyBytes := constants.DefaultMaxBodyBytes
	if cfg != nil && cfg.Server.MaxBodyBytes > 0 {
		maxBodyBytes = cfg.Server.MaxBodyBytes
	}

	h := &handler{logger: logger, maxBodyBytes: maxBodyBytes, tables: tables}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/calculate", h.handlePayoff)
	mux.HandleFunc("/api/income-tax/calculate", h.handleIncomeTax)
	mux.HandleFunc("/api/rent-vs-buy/calculate", h.handleRentVsBuy)
	mux.HandleFunc("/api/emergency-fund/calculate", h.handleEmergencyFund)
	mux.HandleFunc("/api/resilience-score/calculate", h.handleResilienceScore)
	mux.HandleFunc("/api/time-to-freedom/calculate", h.handleTimeToFreedom)
	mux.HandleFunc("/health", h.handleHealth)

	var wrapped http.Handler = mux
	if limiter != nil {
		wrapped = withRateLimit(limiter, wrapped)
	}
	return withRequestLogging(logger, wrapped)
}

func (h *handler) handlePayoff(w http.ResponseWriter, r *http.Request) {
	op := "server.handlePayoff"
	var req payoffRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	in, missing := req.toInput()
	if len(missing) > 0 {
		h.respondValidationErrors(w, missing, op)
		return
	}

	table, err := h.tables.Get("")
	if err != nil {
		h.respondInternalError(w, err, op)
		return
	}

	result, validationErrs, err := payoff.Calculate(h.logger, in, table)
	if len(validationErrs) > 0 {
		h.respondValidationErrors(w, validationErrs, op)
		return
	}
	if err != nil {
		h.respondInternalError(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, buildPayoffResponse(result))
}

func (h *handler) handleIncomeTax(w http.ResponseWriter, r *http.Request) {
	op := "server.handleIncomeTax"
	var req incomeTaxRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	in, missing := req.toInput()
	if len(missing) > 0 {
		h.respondValidationErrors(w, missing, op)
		return
	}

	if validationErrs := in.Validate(); len(validationErrs) > 0 {
		h.respondValidationErrors(w, validationErrs, op)
		return
	}

	table, err := h.tables.Get(in.TaxYear)
	if err != nil {
		h.respondValidationErrors(w, []string{err.Error()}, op)
		return
	}

	result, err := incometax.Calculate(in, table)
	if err != nil {
		h.respondInternalError(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, buildIncomeTaxResponse(result))
}

func (h *handler) handleRentVsBuy(w http.ResponseWriter, r *http.Request) {
	op := "server.handleRentVsBuy"
	var req rentVsBuyRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	in, missing := req.toInput()
	if len(missing) > 0 {
		h.respondValidationErrors(w, missing, op)
		return
	}

	if validationErrs := in.Validate(); len(validationErrs) > 0 {
		h.respondValidationErrors(w, validationErrs, op)
		return
	}

	h.writeJSON(w, http.StatusOK, buildRentVsBuyResponse(planner.CalculateRentVsBuy(in)))
}

func (h *handler) handleEmergencyFund(w http.ResponseWriter, r *http.Request) {
	op := "server.handleEmergencyFund"
	var req emergencyFundRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	in, missing := req.toInput()
	if len(missing) > 0 {
		h.respondValidationErrors(w, missing, op)
		return
	}

	if validationErrs := in.Validate(); len(validationErrs) > 0 {
		h.respondValidationErrors(w, validationErrs, op)
		return
	}

	h.writeJSON(w, http.StatusOK, buildEmergencyFundResponse(planner.CalculateEmergencyFund(in)))
}

func (h *handler) handleResilienceScore(w http.ResponseWriter, r *http.Request) {
	op := "server.handleResilienceScore"
	var req resilienceScoreRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	in, missing := req.toInput()
	if len(missing) > 0 {
		h.respondValidationErrors(w, missing, op)
		return
	}

	if validationErrs := in.Validate(); len(validationErrs) > 0 {
		h.respondValidationErrors(w, validationErrs, op)
		return
	}

	result := planner.CalculateResilienceScore(in)
	weakPoints := result.WeakPoints
	if weakPoints == nil {
		weakPoints = []string{}
	}
	h.writeJSON(w, http.StatusOK, resilienceScoreResponse{
		ResilienceIndex: result.ResilienceIndex,
		WeakPoints:      weakPoints,
		Summary:         result.Summary,
	})
}

func (h *handler) handleTimeToFreedom(w http.ResponseWriter, r *http.Request) {
	op := "server.handleTimeToFreedom"
	var req timeToFreedomRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	in, missing := req.toInput()
	if len(missing) > 0 {
		h.respondValidationErrors(w, missing, op)
		return
	}

	if validationErrs := in.Validate(); len(validationErrs) > 0 {
		h.respondValidationErrors(w, validationErrs, op)
		return
	}

	h.writeJSON(w, http.StatusOK, buildTimeToFreedomResponse(planner.CalculateTimeToFreedom(in)))
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.respondValidationErrorsWithStatus(w, http.StatusMethodNotAllowed,
			[]string{"method not allowed"}, "server.handleHealth")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// decodeJSON strictly decodes the request body into dst. It rejects
// non-POST requests, oversized bodies, unknown fields, and trailing
// content, and writes the error response itself. The return value says
// whether the handler should proceed.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	if r.Method != http.MethodPost {
		h.respondValidationErrorsWithStatus(w, http.StatusMethodNotAllowed,
			[]string{"method not allowed"}, op)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondValidationErrorsWithStatus(w, http.StatusRequestEntityTooLarge,
				[]string{fmt.Sprintf("request body exceeds %d bytes", maxBytesErr.Limit)}, op)
			return false
		}
		h.respondValidationErrors(w, []string{decodeErrorMessage(err)}, op)
		return false
	}

	if decoder.More() {
		h.respondValidationErrors(w, []string{"Invalid JSON: unexpected content after payload"}, op)
		return false
	}

	return true
}

func decodeErrorMessage(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("Invalid JSON: syntax error at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		return fmt.Sprintf("Invalid value for field: %s", typeErr.Field)
	case errors.Is(err, io.EOF):
		return "Invalid JSON: empty request body"
	case strings.Contains(err.Error(), "unknown field"):
		return fmt.Sprintf("Unknown field: %s", unknownFieldName(err))
	default:
		return fmt.Sprintf("Invalid JSON: %v", err)
	}
}

func unknownFieldName(err error) string {
	// encoding/json formats the error as `json: unknown field "name"`.
	msg := err.Error()
	if start := strings.Index(msg, `"`); start >= 0 {
		return strings.Trim(msg[start:], `"`)
	}
	return msg
}

func (h *handler) respondValidationErrors(w http.ResponseWriter, messages []string, op string) {
	h.respondValidationErrorsWithStatus(w, http.StatusBadRequest, messages, op)
}

func (h *handler) respondValidationErrorsWithStatus(w http.ResponseWriter, status int, messages []string, op string) {
	h.logger.Warn("request rejected",
		zap.String("op", op),
		zap.Int("status", status),
		zap.Strings("errors", messages),
	)

	h.writeJSON(w, status, map[string][]string{"errors": messages})
}

func (h *handler) respondInternalError(w http.ResponseWriter, err error, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Error(err),
	)

	h.writeJSON(w, http.StatusInternalServerError, map[string][]string{"errors": {"internal server error"}})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
