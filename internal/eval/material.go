package eval

import (
	"context"
	"math"

	nchess "github.com/corentings/chess/v2"

	"github.com/caesarchess/switchcore/internal/board"
)

// Piece-square tables indexed a1=0..h8=63 from White's perspective; Black
// reads them through mirrorSquare. Values are in pawn units.
var (
	pawnTable = [64]float64{
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 5, 5, 5, 5, 5, 5, 5,
		1, 1, 2, 3, 3, 2, 1, 1,
		0.5, 0.5, 1, 2.5, 2.5, 1, 0.5, 0.5,
		0, 0, 0, 2.0, 2.0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
	}
	knightTable = [64]float64{
		-5, -4, -3, -3, -3, -3, -4, -5,
		-4, -2, 0, 0, 0, 0, -2, -4,
		-3, 0, 1, 1.5, 1.5, 1, 0, -3,
		-3, 0.5, 1.5, 2, 2, 1.5, 0.5, -3,
		-3, 0, 1.5, 2, 2, 1.5, 0, -3,
		-3, 0.5, 1, 1.5, 1.5, 1, 0.5, -3,
		-4, -2, 0, 0.5, 0.5, 0, -2, -4,
		-5, -4, -3, -3, -3, -3, -4, -5,
	}
	bishopTable = [64]float64{
		-2, -1, -1, -1, -1, -1, -1, -2,
		-1, 0, 0, 0, 0, 0, 0, -1,
		-1, 0, 0.5, 1, 1, 0.5, 0, -1,
		-1, 0.5, 0.5, 1, 1, 0.5, 0.5, -1,
		-1, 0, 1, 1, 1, 1, 0, -1,
		-1, 1, 1, 1, 1, 1, 1, -1,
		-1, 0.5, 0, 0, 0, 0, 0.5, -1,
		-2, -1, -1, -1, -1, -1, -1, -2,
	}
	rookTable = [64]float64{
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0,
		2, 2, 2, 2, 2, 2, 2, 2,
		3, 3, 3, 3, 3, 3, 3, 3,
	}
	queenTable = [64]float64{
		-3, -2, -2, -1, -1, -2, -2, -3,
		-2, 0, 0, 0, 0, 0, 0, -2,
		-2, 0, 0.5, 0.5, 0.5, 0.5, 0, -2,
		-1, 0, 0.5, 0.5, 0.5, 0.5, 0, -1,
		-1, 0, 0.5, 0.5, 0.5, 0.5, 0, -1,
		-2, 0, 0, 0, 0, 0, 0, -2,
		-2, 0, 0, 0, 0, 0, 0, -2,
		-3, -2, -2, -1, -1, -2, -2, -3,
	}
	kingTable = [64]float64{
		-3, -4, -4, -5, -5, -4, -4, -3,
		-3, -4, -4, -5, -5, -4, -4, -3,
		-3, -4, -4, -5, -5, -4, -4, -3,
		-3, -4, -4, -5, -5, -4, -4, -3,
		-2, -3, -3, -4, -4, -3, -3, -2,
		-1, -2, -2, -2, -2, -2, -2, -1,
		2, 2, 0, 0, 0, 0, 2, 2,
		2, 3, 1, 0, 0, 1, 3, 2,
	}
)

var pieceValues = map[nchess.PieceType]float64{
	nchess.Pawn:   1,
	nchess.Knight: 3,
	nchess.Bishop: 3,
	nchess.Rook:   5,
	nchess.Queen:  9,
	nchess.King:   0,
}

// materialEvaluator scores by material plus piece-square placement, squashed
// through a logistic curve.
type materialEvaluator struct {
	cache *Cache
}

func (e *materialEvaluator) Evaluate(ctx context.Context, pos *board.Position) Probabilities {
	key := pos.Fingerprint()
	if probs, ok := e.cache.Get(key); ok {
		return probs
	}
	probs := materialProbabilities(pos)
	e.cache.Put(key, probs)
	return probs
}

// materialProbabilities is the uncached scoring shared by the material,
// enhanced and engine-fallback paths.
func materialProbabilities(pos *board.Position) Probabilities {
	var white, black float64
	for _, sq := range board.AllSquares() {
		piece := pos.PieceAt(sq)
		if piece == nchess.NoPiece {
			continue
		}
		if piece.Color() == nchess.White {
			white += pieceValues[piece.Type()] + placementBonus(piece.Type(), squareIndex(sq))
		} else {
			black += pieceValues[piece.Type()] + placementBonus(piece.Type(), mirrorSquare(squareIndex(sq)))
		}
	}

	total := white + black
	if total == 0 {
		return Probabilities{White: 0.5, Black: 0.5}
	}

	normalized := white / total
	whiteProb := 1 / (1 + math.Exp(-5*(normalized-0.5)))
	return Probabilities{White: whiteProb, Black: 1 - whiteProb}
}

func placementBonus(t nchess.PieceType, idx int) float64 {
	switch t {
	case nchess.Pawn:
		return pawnTable[idx]
	case nchess.Knight:
		return knightTable[idx]
	case nchess.Bishop:
		return bishopTable[idx]
	case nchess.Rook:
		return rookTable[idx]
	case nchess.Queen:
		return queenTable[idx]
	case nchess.King:
		return kingTable[idx]
	}
	return 0
}

func squareIndex(sq nchess.Square) int {
	return int(sq.Rank())*8 + int(sq.File())
}

// mirrorSquare flips the rank, mapping a1 to a8. Black reads the tables
// through this so both sides see the same geometry.
func mirrorSquare(idx int) int { return idx ^ 56 }
