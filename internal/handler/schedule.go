// Package handler provides the engine's single HTTP trigger endpoint.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/rostergen/internal/config"
	"github.com/paiban/rostergen/pkg/adapter"
	apperrors "github.com/paiban/rostergen/pkg/errors"
	"github.com/paiban/rostergen/pkg/logger"
	"github.com/paiban/rostergen/pkg/notify"
	"github.com/paiban/rostergen/pkg/scheduler/solver"
)

// ScheduleHandler serves the roster-generation trigger endpoint.
type ScheduleHandler struct {
	cfg *config.Config
}

// NewScheduleHandler builds a ScheduleHandler over the loaded config —
// the one thing every request needs (solver defaults, weight catalog).
func NewScheduleHandler(cfg *config.Config) *ScheduleHandler {
	return &ScheduleHandler{cfg: cfg}
}

// GenerateResponse is the success-path envelope around the §6 output
// document.
type GenerateResponse struct {
	RunID  string          `json:"run_id"`
	Status string          `json:"status"`
	Result *adapter.Output `json:"result"`
}

// Generate runs one full generation: decode, adapt, solve, adapt back.
// Exit semantics follow spec §6: success returns the output document;
// infeasible_input/no_solution/error all return a notification-shaped
// error body with the matching HTTP status from errors.AppError.
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, apperrors.New(apperrors.CodeInvalidInput, "only POST is supported"))
		return
	}

	var req adapter.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "failed to decode request body"))
		return
	}

	runID := requestID(r.Context())

	in, aerr := adapter.BuildInput(req)
	if aerr != nil {
		respondError(w, aerr)
		return
	}

	searchTime := time.Duration(in.SearchTime) * time.Second
	if searchTime <= 0 {
		searchTime = h.cfg.Solver.DefaultSearchTime
	}

	sink := notify.NewSink()
	defer sink.Close()
	go drainSink(runID, sink)

	ctx, cancel := context.WithTimeout(r.Context(), searchTime+10*time.Second)
	defer cancel()

	result, aerr := solver.Run(ctx, solver.Request{
		Staff:      in.Staff,
		Global:     in.Global,
		Month:      in.Month,
		Hopes:      in.Hopes,
		Weights:    in.Weights,
		Sink:       sink,
		RunID:      runID,
		Mode:       solver.Mode(in.Mode),
		SearchTime: searchTime,
		MaxWorkers: h.cfg.Solver.MaxWorkers,
	})
	if aerr != nil {
		respondError(w, aerr)
		return
	}

	output, aerr := adapter.BuildOutput(result.Solution, in.Month, in.Staff)
	if aerr != nil {
		respondError(w, aerr)
		return
	}

	respondJSON(w, http.StatusOK, GenerateResponse{
		RunID:  runID,
		Status: string(result.Statistics.Status),
		Result: output,
	})
}

// drainSink forwards the run's diagnostics to the structured logger
// until the sink is closed — the HTTP response body only ever carries
// the terminal outcome, per spec §6's "notification channel" being a
// separate write-only sink from the output record.
func drainSink(runID string, sink *notify.Sink) {
	for {
		select {
		case n, ok := <-sink.Notifications:
			if !ok {
				return
			}
			switch n.Category {
			case notify.SeverityError:
				logger.WithField("run_id", runID).Error().Msg(n.Message)
			case notify.SeverityWarning:
				logger.WithField("run_id", runID).Warn().Msg(n.Message)
			default:
				logger.WithField("run_id", runID).Info().Msg(n.Message)
			}
		case _, ok := <-sink.Progress:
			if !ok {
				return
			}
		}
	}
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value("request_id").(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, err *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}
