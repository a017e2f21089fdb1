// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/recsim/internal/evaluation"
	"github.com/tomtom215/recsim/internal/runstore"
)

const (
	maxRequestBodyBytes = 1 << 20
	defaultListLimit    = runstore.DefaultListLimit
)

// CreateEvaluationRequest is the body of POST /api/v1/evaluations. Zero
// fields use the server's configured defaults; seed 0 keeps the configured
// seed.
type CreateEvaluationRequest struct {
	Name     string `json:"name" validate:"omitempty,max=128,runname"`
	Episodes int    `json:"episodes" validate:"omitempty,min=1,max=100000"`
	KValues  []int  `json:"k_values,omitempty" validate:"omitempty,max=16,unique,dive,min=1,max=1000"`
	Seed     int64  `json:"seed"`
}

type listEvaluationsRequest struct {
	Limit int `json:"limit" validate:"min=1,max=500"`
}

// CreateEvaluation runs an evaluation synchronously and returns the stored
// run with 201.
func (h *Handler) CreateEvaluation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateEvaluationRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}

	if !h.evalSlots.TryAcquire(1) {
		respondError(w, r, http.StatusTooManyRequests, CodeBusy,
			"Too many evaluations in progress, retry later", nil)
		return
	}
	defer h.evalSlots.Release(1)
	h.active.Add(1)
	defer h.active.Add(-1)

	run, err := h.runner.Run(r.Context(), evaluation.Request{
		Name:     req.Name,
		Episodes: req.Episodes,
		KValues:  req.KValues,
		Seed:     req.Seed,
	})
	if err != nil {
		status, code, message := classifyRunError(run, err)
		respondError(w, r, status, code, message, err)
		return
	}

	w.Header().Set("Location", "/api/v1/evaluations/"+run.ID)
	respondSuccess(w, r, http.StatusCreated, run, start)
}

// ListEvaluations returns stored runs, newest first.
func (h *Handler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	limit, err := getIntParam(r, "limit", defaultListLimit)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	req := listEvaluationsRequest{Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, r, apiErr)
		return
	}

	runs, err := h.runs.List(r.Context(), req.Limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, CodeStorageError, "Failed to list evaluations", err)
		return
	}
	if runs == nil {
		runs = []*evaluation.Run{}
	}

	count := len(runs)
	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data:   runs,
		Metadata: Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Count:       &count,
		},
	})
}

// GetEvaluation returns one run by ID.
func (h *Handler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	run, err := h.runs.Get(r.Context(), id)
	switch {
	case errors.Is(err, runstore.ErrRunNotFound):
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Evaluation not found", nil)
		return
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, CodeStorageError, "Failed to load evaluation", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, run, start)
}

// decodeBody reads a JSON body into dst. An empty body leaves dst untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errors.New("request body too large")
		}
		return errors.New("failed to read request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}

func classifyRunError(run *evaluation.Run, err error) (int, string, string) {
	switch {
	case run != nil && run.Status == evaluation.StatusCompleted:
		return http.StatusInternalServerError, CodeStorageError, "Evaluation completed but could not be stored"
	case errors.Is(err, evaluation.ErrAllEpisodesFailed):
		return http.StatusUnprocessableEntity, CodeEvaluationFailed, "Every episode failed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, CodeEvaluationCanceled, "Evaluation was canceled"
	default:
		return http.StatusInternalServerError, CodeInternalError, "Evaluation failed"
	}
}
