// Package eval computes win-probability pairs for board positions. Three
// interchangeable strategies sit behind the Evaluator interface; the choice
// is made once, at construction, from configuration. All strategies share a
// fingerprint-keyed TTL cache.
package eval

import (
	"context"
	"fmt"
	"time"

	"github.com/caesarchess/switchcore/internal/board"
	"github.com/caesarchess/switchcore/internal/uci"
)

// Strategy names accepted by New. They match the configuration values.
const (
	ModeMaterial = "material"
	ModeEnhanced = "enhanced"
	ModeEngine   = "engine"
)

// Probabilities is a win-probability pair; White+Black ≈ 1.
type Probabilities struct {
	White float64
	Black float64
}

// Evaluator scores a position. Implementations never fail: recoverable
// problems (engine missing, timeout) degrade internally and the caller
// always gets a usable pair.
type Evaluator interface {
	Evaluate(ctx context.Context, pos *board.Position) Probabilities
}

// Analyzer is the bounded-time scoring contract of the external analysis
// process manager.
type Analyzer interface {
	Analyze(ctx context.Context, fen string, budget time.Duration) (uci.Score, error)
}

// Options carries the strategy dependencies. Cache is required; Analyzer is
// only consulted by the engine strategy.
type Options struct {
	Cache           *Cache
	StabilityWeight float64
	Analyzer        Analyzer
	AnalysisBudget  time.Duration
}

// New builds the evaluator for the configured mode.
func New(mode string, opts Options) (Evaluator, error) {
	if opts.Cache == nil {
		return nil, fmt.Errorf("evaluation cache required")
	}
	switch mode {
	case ModeMaterial:
		return &materialEvaluator{cache: opts.Cache}, nil
	case ModeEnhanced:
		weight := opts.StabilityWeight
		if weight <= 0 {
			weight = defaultStabilityWeight
		}
		return &enhancedEvaluator{cache: opts.Cache, weight: weight}, nil
	case ModeEngine:
		if opts.Analyzer == nil {
			return nil, fmt.Errorf("engine evaluation mode requires an analyzer")
		}
		budget := opts.AnalysisBudget
		if budget <= 0 {
			budget = 100 * time.Millisecond
		}
		return &engineEvaluator{cache: opts.Cache, analyzer: opts.Analyzer, budget: budget}, nil
	}
	return nil, fmt.Errorf("unknown evaluation mode %q", mode)
}
