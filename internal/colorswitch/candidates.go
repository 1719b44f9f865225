package colorswitch

import (
	"context"
	"math"
	"sort"

	nchess "github.com/corentings/chess/v2"
	"go.uber.org/zap"

	"github.com/caesarchess/switchcore/internal/board"
	"github.com/caesarchess/switchcore/internal/eval"
	"github.com/caesarchess/switchcore/internal/obslog"
)

type candidate struct {
	sq     nchess.Square
	color  nchess.Color
	impact float64
}

// rankCandidates scores each eligible square by the probability disturbance
// its flip would cause and orders ascending: the least disruptive flip wins.
// All simulation happens on throwaway copies; the live position is never
// touched. Ties break on square index so selection is deterministic.
func rankCandidates(ctx context.Context, pos *board.Position, evaluator eval.Evaluator, squares []nchess.Square) []candidate {
	base := evaluator.Evaluate(ctx, pos)

	out := make([]candidate, 0, len(squares))
	for _, sq := range squares {
		piece := pos.PieceAt(sq)
		if piece == nchess.NoPiece {
			continue
		}
		sim := simulateFlip(pos, sq)
		flipped := evaluator.Evaluate(ctx, sim)
		impact := math.Abs(flipped.White-base.White) + math.Abs(flipped.Black-base.Black)
		out = append(out, candidate{sq: sq, color: piece.Color(), impact: impact})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].impact != out[j].impact {
			return out[i].impact < out[j].impact
		}
		return out[i].sq < out[j].sq
	})
	return out
}

// simulateFlip returns a copy of pos with the piece on sq flipped.
func simulateFlip(pos *board.Position, sq nchess.Square) *board.Position {
	sim := pos.Copy()
	piece := sim.PieceAt(sq)
	if piece != nchess.NoPiece {
		sim.RemovePieceAt(sq)
		sim.PlacePieceAt(sq, board.Flipped(piece))
	}
	return sim
}

// flipWouldCauseCheck vets a candidate by simulating its flip and asking
// whether either king ends up attacked.
func flipWouldCauseCheck(pos *board.Position, sq nchess.Square) bool {
	sim := simulateFlip(pos, sq)
	return sim.InCheck(nchess.White) || sim.InCheck(nchess.Black)
}

// selectSquares applies the mode-specific pick to ranked, check-vetted
// candidate pools. An empty result means the trigger is skipped whole; there
// is never a partial or cross-color fallback.
func selectSquares(pos *board.Position, ranked []candidate, mode int, lastColor nchess.Color, hasLast bool) []nchess.Square {
	var whitePool, blackPool []nchess.Square
	for _, c := range ranked {
		if flipWouldCauseCheck(pos, c.sq) {
			obslog.L().Debug("candidate_vetoed_check", zap.String("square", squareName(c.sq)))
			continue
		}
		if c.color == nchess.White {
			whitePool = append(whitePool, c.sq)
		} else {
			blackPool = append(blackPool, c.sq)
		}
	}

	if mode == 2 {
		if len(whitePool) == 0 || len(blackPool) == 0 {
			obslog.L().Info("two_piece_switch_skipped",
				zap.Int("white_pool", len(whitePool)),
				zap.Int("black_pool", len(blackPool)))
			return nil
		}
		return []nchess.Square{whitePool[0], blackPool[0]}
	}

	// Single-piece mode alternates strictly: after a Black flip, or before
	// any flip at all, only White candidates are considered, and vice versa.
	wantWhite := !hasLast || lastColor == nchess.Black
	if wantWhite {
		if len(whitePool) == 0 {
			return nil
		}
		return []nchess.Square{whitePool[0]}
	}
	if len(blackPool) == 0 {
		return nil
	}
	return []nchess.Square{blackPool[0]}
}
