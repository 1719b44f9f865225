package eval

import (
	"context"

	nchess "github.com/corentings/chess/v2"

	"github.com/caesarchess/switchcore/internal/board"
)

// enhancedEvaluator layers a stability adjustment on top of the material
// score: each side's probability is discounted in proportion to how many of
// its pieces could be flipped away, then the pair is renormalized.
type enhancedEvaluator struct {
	cache  *Cache
	weight float64
}

func (e *enhancedEvaluator) Evaluate(ctx context.Context, pos *board.Position) Probabilities {
	key := pos.Fingerprint()
	if probs, ok := e.cache.Get(key); ok {
		return probs
	}
	probs := applyStability(pos, materialProbabilities(pos), e.weight)
	e.cache.Put(key, probs)
	return probs
}

// applyStability discounts each side by its count of flippable pieces. Kings
// cannot change allegiance, so everything else counts as exposed.
func applyStability(pos *board.Position, probs Probabilities, weight float64) Probabilities {
	whiteExposed := countFlippable(pos, nchess.White)
	blackExposed := countFlippable(pos, nchess.Black)

	white := probs.White * (1 - float64(whiteExposed)*weight)
	black := probs.Black * (1 - float64(blackExposed)*weight)

	total := white + black
	if total <= 0 {
		return Probabilities{White: 0.5, Black: 0.5}
	}
	return Probabilities{White: white / total, Black: black / total}
}

func countFlippable(pos *board.Position, color nchess.Color) int {
	count := 0
	for _, sq := range board.AllSquares() {
		piece := pos.PieceAt(sq)
		if piece != nchess.NoPiece && piece.Color() == color && piece.Type() != nchess.King {
			count++
		}
	}
	return count
}
