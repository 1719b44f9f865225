package eval

import (
	"context"
	"math"
	"time"

	nchess "github.com/corentings/chess/v2"
	"go.uber.org/zap"

	"github.com/caesarchess/switchcore/internal/board"
	"github.com/caesarchess/switchcore/internal/obslog"
)

// engineEvaluator asks the external analysis process for a verdict and maps
// it onto a probability pair. Any failure degrades to the material score for
// that call; repeated identical calls stay deterministic either way because
// the result is cached under the position fingerprint.
type engineEvaluator struct {
	cache    *Cache
	analyzer Analyzer
	budget   time.Duration
}

func (e *engineEvaluator) Evaluate(ctx context.Context, pos *board.Position) Probabilities {
	key := pos.Fingerprint()
	if probs, ok := e.cache.Get(key); ok {
		return probs
	}

	var probs Probabilities
	score, err := e.analyzer.Analyze(ctx, pos.FEN(), e.budget)
	if err != nil {
		obslog.L().Debug("engine_eval_fallback", zap.Error(err))
		probs = materialProbabilities(pos)
	} else {
		probs = scoreToProbabilities(score.CP, score.Mate, pos.Turn())
	}
	e.cache.Put(key, probs)
	return probs
}

// scoreToProbabilities converts a side-to-move-relative engine score into a
// White-perspective probability pair.
func scoreToProbabilities(cp, mate int, turn nchess.Color) Probabilities {
	var stm float64
	switch {
	case mate > 0:
		stm = 0.99
	case mate < 0:
		stm = 0.01
	default:
		stm = centipawnToProbability(cp)
	}
	if turn == nchess.White {
		return Probabilities{White: stm, Black: 1 - stm}
	}
	return Probabilities{White: 1 - stm, Black: stm}
}

func centipawnToProbability(cp int) float64 {
	return 1 / (1 + math.Pow(10, -float64(cp)/400))
}
