// RecSim - Recommendation Agent Simulation and Offline Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsim

package policy

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/tomtom215/recsim/internal/simulator"
)

// ModelWeights are the parameters of a trained recommendation agent.
//
// The state vector fed to the network is
//
//	userEmb ++ itemEmb(slot 1) ++ ... ++ itemEmb(slot N) ++ rewards
//
// which passes through one ReLU hidden layer and a linear projection back
// to the embedding dimension. Item scores are the dot product of that
// projection with every item embedding.
type ModelWeights struct {
	UserEmbeddings [][]float64 `json:"user_embeddings"`
	ItemEmbeddings [][]float64 `json:"item_embeddings"`

	// HiddenWeights is hidden x input.
	HiddenWeights [][]float64 `json:"hidden_weights"`
	HiddenBias    []float64   `json:"hidden_bias"`

	// OutputWeights is dim x hidden.
	OutputWeights [][]float64 `json:"output_weights"`
	OutputBias    []float64   `json:"output_bias"`

	HistoryLength int `json:"history_length"`
}

// EmbeddingDim returns the embedding width.
func (w *ModelWeights) EmbeddingDim() int {
	if len(w.ItemEmbeddings) == 0 {
		return 0
	}
	return len(w.ItemEmbeddings[0])
}

// InputSize returns the length of the state vector the hidden layer expects.
func (w *ModelWeights) InputSize() int {
	dim := w.EmbeddingDim()
	return dim*(1+w.HistoryLength) + w.HistoryLength
}

// Validate checks that every matrix has consistent dimensions.
func (w *ModelWeights) Validate() error {
	if len(w.ItemEmbeddings) == 0 {
		return errors.New("item embeddings are empty")
	}
	if len(w.UserEmbeddings) == 0 {
		return errors.New("user embeddings are empty")
	}
	if w.HistoryLength <= 0 {
		return fmt.Errorf("history length must be positive, got %d", w.HistoryLength)
	}

	dim := w.EmbeddingDim()
	if dim == 0 {
		return errors.New("embedding dimension is zero")
	}
	if err := checkRows("item_embeddings", w.ItemEmbeddings, dim); err != nil {
		return err
	}
	if err := checkRows("user_embeddings", w.UserEmbeddings, dim); err != nil {
		return err
	}

	hidden := len(w.HiddenWeights)
	if hidden == 0 {
		return errors.New("hidden layer is empty")
	}
	if err := checkRows("hidden_weights", w.HiddenWeights, w.InputSize()); err != nil {
		return err
	}
	if len(w.HiddenBias) != hidden {
		return fmt.Errorf("hidden_bias has %d entries, want %d", len(w.HiddenBias), hidden)
	}

	if len(w.OutputWeights) != dim {
		return fmt.Errorf("output_weights has %d rows, want %d", len(w.OutputWeights), dim)
	}
	if err := checkRows("output_weights", w.OutputWeights, hidden); err != nil {
		return err
	}
	if len(w.OutputBias) != dim {
		return fmt.Errorf("output_bias has %d entries, want %d", len(w.OutputBias), dim)
	}
	return nil
}

func checkRows(name string, m [][]float64, width int) error {
	for i, row := range m {
		if len(row) != width {
			return fmt.Errorf("%s row %d has %d columns, want %d", name, i, len(row), width)
		}
	}
	return nil
}

// RandomWeights returns small random weights of the given shape. Useful as
// an untrained baseline and in tests.
func RandomWeights(rng *rand.Rand, numUsers, numItems, dim, hidden, historyLength int) *ModelWeights {
	matrix := func(rows, cols int) [][]float64 {
		m := make([][]float64, rows)
		for i := range m {
			m[i] = make([]float64, cols)
			for j := range m[i] {
				m[i][j] = rng.NormFloat64() * 0.1
			}
		}
		return m
	}

	w := &ModelWeights{
		UserEmbeddings: matrix(numUsers, dim),
		ItemEmbeddings: matrix(numItems, dim),
		HiddenBias:     make([]float64, hidden),
		OutputBias:     make([]float64, dim),
		HistoryLength:  historyLength,
	}
	w.HiddenWeights = matrix(hidden, w.InputSize())
	w.OutputWeights = matrix(dim, hidden)
	return w
}

// EmbeddingScorer runs inference over ModelWeights. It never mutates the
// weights and is safe for concurrent use.
type EmbeddingScorer struct {
	weights *ModelWeights
}

// NewEmbeddingScorer validates w and returns a scorer over it.
func NewEmbeddingScorer(w *ModelWeights) (*EmbeddingScorer, error) {
	if w == nil {
		return nil, errors.New("model weights are required")
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model weights: %w", err)
	}
	return &EmbeddingScorer{weights: w}, nil
}

// Name implements Named.
func (s *EmbeddingScorer) Name() string { return "embedding" }

// NumItems returns the number of items the model scores.
func (s *EmbeddingScorer) NumItems() int { return len(s.weights.ItemEmbeddings) }

// Score implements Scorer.
func (s *EmbeddingScorer) Score(ctx context.Context, obs simulator.Observation) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w := s.weights
	if obs.HistoryLength() != w.HistoryLength {
		return nil, fmt.Errorf("observation history length %d does not match model %d",
			obs.HistoryLength(), w.HistoryLength)
	}

	state := s.stateVector(obs)

	hidden := make([]float64, len(w.HiddenWeights))
	for i, row := range w.HiddenWeights {
		v := dot(row, state) + w.HiddenBias[i]
		if v < 0 {
			v = 0
		}
		hidden[i] = v
	}

	proj := make([]float64, len(w.OutputWeights))
	for i, row := range w.OutputWeights {
		proj[i] = dot(row, hidden) + w.OutputBias[i]
	}

	scores := make([]float64, len(w.ItemEmbeddings))
	for i, emb := range w.ItemEmbeddings {
		scores[i] = dot(emb, proj)
	}
	return scores, nil
}

func (s *EmbeddingScorer) stateVector(obs simulator.Observation) []float64 {
	w := s.weights
	dim := w.EmbeddingDim()
	state := make([]float64, 0, w.InputSize())

	state = appendEmbedding(state, w.UserEmbeddings, obs.User(), dim)
	for _, item := range obs.Items() {
		state = appendEmbedding(state, w.ItemEmbeddings, item, dim)
	}
	return append(state, obs.Rewards()...)
}

// appendEmbedding appends row id of table, or zeros when id is out of range.
func appendEmbedding(dst []float64, table [][]float64, id, dim int) []float64 {
	if id >= 0 && id < len(table) {
		return append(dst, table[id]...)
	}
	return append(dst, make([]float64, dim)...)
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
