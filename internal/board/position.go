// Package board adapts the external move-legality library to the small,
// opaque position surface the switch core consumes: piece queries, turn
// control, check and attack predicates, cheap copies for simulation, a
// canonical fingerprint for cache keys, and the two mutation primitives the
// switch executor uses.
package board

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// Position is the board state as the switch core sees it. The core never
// builds one from scratch during play; it reads the position the surrounding
// application maintains and asks for color flips through RemovePieceAt and
// PlacePieceAt.
type Position struct {
	pieces map[nchess.Square]nchess.Piece
	turn   nchess.Color
}

// NewPosition returns an empty board with White to move.
func NewPosition() *Position {
	return &Position{
		pieces: make(map[nchess.Square]nchess.Piece, 32),
		turn:   nchess.White,
	}
}

// FromGame snapshots the current position of a chess/v2 game.
func FromGame(g *nchess.Game) *Position {
	p := NewPosition()
	for sq, piece := range g.Position().Board().SquareMap() {
		p.pieces[sq] = piece
	}
	p.turn = g.Position().Turn()
	return p
}

// StartingPosition returns the standard initial setup.
func StartingPosition() *Position {
	p := NewPosition()
	back := []nchess.PieceType{
		nchess.Rook, nchess.Knight, nchess.Bishop, nchess.Queen,
		nchess.King, nchess.Bishop, nchess.Knight, nchess.Rook,
	}
	for f := 0; f < 8; f++ {
		file := nchess.File(f)
		p.PlacePieceAt(nchess.NewSquare(file, nchess.Rank1), PieceFor(back[f], nchess.White))
		p.PlacePieceAt(nchess.NewSquare(file, nchess.Rank2), PieceFor(nchess.Pawn, nchess.White))
		p.PlacePieceAt(nchess.NewSquare(file, nchess.Rank7), PieceFor(nchess.Pawn, nchess.Black))
		p.PlacePieceAt(nchess.NewSquare(file, nchess.Rank8), PieceFor(back[f], nchess.Black))
	}
	return p
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq nchess.Square) nchess.Piece {
	if piece, ok := p.pieces[sq]; ok {
		return piece
	}
	return nchess.NoPiece
}

// Turn reports the side to move.
func (p *Position) Turn() nchess.Color { return p.turn }

// SetTurn overrides the side to move. The switch executor uses this to
// restore the pre-switch turn; a color flip must not consume a move.
func (p *Position) SetTurn(c nchess.Color) { p.turn = c }

// KingSquare locates the king of the given color.
func (p *Position) KingSquare(color nchess.Color) (nchess.Square, bool) {
	for sq, piece := range p.pieces {
		if piece.Type() == nchess.King && piece.Color() == color {
			return sq, true
		}
	}
	return 0, false
}

// Copy returns an independent clone. Simulated flips during candidate
// evaluation happen on copies only.
func (p *Position) Copy() *Position {
	clone := &Position{
		pieces: make(map[nchess.Square]nchess.Piece, len(p.pieces)),
		turn:   p.turn,
	}
	for sq, piece := range p.pieces {
		clone.pieces[sq] = piece
	}
	return clone
}

// RemovePieceAt clears sq.
func (p *Position) RemovePieceAt(sq nchess.Square) {
	delete(p.pieces, sq)
}

// PlacePieceAt puts piece on sq, replacing any occupant.
func (p *Position) PlacePieceAt(sq nchess.Square, piece nchess.Piece) {
	if piece == nchess.NoPiece {
		delete(p.pieces, sq)
		return
	}
	p.pieces[sq] = piece
}

// Fingerprint is a canonical cache key: piece placement plus side to move.
// Distinct positions never share a fingerprint.
func (p *Position) Fingerprint() string {
	return p.placement() + " " + colorChar(p.turn)
}

// FEN renders the position as a minimal FEN record. Castling and en passant
// rights are not tracked here; the analysis engine only needs placement and
// side to move.
func (p *Position) FEN() string {
	return p.placement() + " " + colorChar(p.turn) + " - - 0 1"
}

// Move is a from/to pair produced by legal-move enumeration.
type Move struct {
	From nchess.Square
	To   nchess.Square
}

// LegalMoves enumerates legal moves for the given color regardless of whose
// turn it is, by handing the position to the chess library with the side to
// move overridden. Castling and en passant are not generated here; the
// switch core only inspects plain from/to movement.
func (p *Position) LegalMoves(color nchess.Color) []Move {
	fen := p.placement() + " " + colorChar(color) + " - - 0 1"
	pos := &nchess.Position{}
	if err := pos.UnmarshalText([]byte(fen)); err != nil {
		return nil
	}
	valid := pos.ValidMoves()
	out := make([]Move, 0, len(valid))
	for _, mv := range valid {
		out = append(out, Move{From: mv.S1(), To: mv.S2()})
	}
	return out
}

// ApplyMove moves a piece with minimal semantics: capture by replacement and
// auto-queen promotion. It reports whether the move promoted so the caller
// can flag the square for the switch core. It exists for the self-play
// harness; the switch core itself never applies moves.
func (p *Position) ApplyMove(mv Move) (bool, error) {
	piece := p.PieceAt(mv.From)
	if piece == nchess.NoPiece {
		return false, fmt.Errorf("no piece at %v", mv.From)
	}
	promoted := false
	p.RemovePieceAt(mv.From)
	if piece.Type() == nchess.Pawn && isLastRank(mv.To, piece.Color()) {
		piece = PieceFor(nchess.Queen, piece.Color())
		promoted = true
	}
	p.PlacePieceAt(mv.To, piece)
	p.turn = opposite(p.turn)
	return promoted, nil
}

// AllSquares lists the 64 squares in a1..h8 order.
func AllSquares() []nchess.Square {
	out := make([]nchess.Square, 0, 64)
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			out = append(out, nchess.NewSquare(nchess.File(f), nchess.Rank(r)))
		}
	}
	return out
}

// Distance is the king-move (Chebyshev) distance between two squares.
func Distance(a, b nchess.Square) int {
	df := int(a.File()) - int(b.File())
	dr := int(a.Rank()) - int(b.Rank())
	if df < 0 {
		df = -df
	}
	if dr < 0 {
		dr = -dr
	}
	if df > dr {
		return df
	}
	return dr
}

// PieceFor builds the concrete piece value for a type/color pair.
func PieceFor(t nchess.PieceType, c nchess.Color) nchess.Piece {
	if c == nchess.White {
		switch t {
		case nchess.King:
			return nchess.WhiteKing
		case nchess.Queen:
			return nchess.WhiteQueen
		case nchess.Rook:
			return nchess.WhiteRook
		case nchess.Bishop:
			return nchess.WhiteBishop
		case nchess.Knight:
			return nchess.WhiteKnight
		case nchess.Pawn:
			return nchess.WhitePawn
		}
		return nchess.NoPiece
	}
	switch t {
	case nchess.King:
		return nchess.BlackKing
	case nchess.Queen:
		return nchess.BlackQueen
	case nchess.Rook:
		return nchess.BlackRook
	case nchess.Bishop:
		return nchess.BlackBishop
	case nchess.Knight:
		return nchess.BlackKnight
	case nchess.Pawn:
		return nchess.BlackPawn
	}
	return nchess.NoPiece
}

// Flipped returns the same piece type with its color inverted.
func Flipped(piece nchess.Piece) nchess.Piece {
	return PieceFor(piece.Type(), opposite(piece.Color()))
}

func (p *Position) placement() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		empty := 0
		for f := 0; f < 8; f++ {
			sq := nchess.NewSquare(nchess.File(f), nchess.Rank(r))
			piece := p.PieceAt(sq)
			if piece == nchess.NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(fenChar(piece))
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if r > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

func fenChar(piece nchess.Piece) byte {
	var ch byte
	switch piece.Type() {
	case nchess.King:
		ch = 'k'
	case nchess.Queen:
		ch = 'q'
	case nchess.Rook:
		ch = 'r'
	case nchess.Bishop:
		ch = 'b'
	case nchess.Knight:
		ch = 'n'
	case nchess.Pawn:
		ch = 'p'
	default:
		return '?'
	}
	if piece.Color() == nchess.White {
		return ch - 'a' + 'A'
	}
	return ch
}

func colorChar(c nchess.Color) string {
	if c == nchess.Black {
		return "b"
	}
	return "w"
}

func opposite(c nchess.Color) nchess.Color {
	if c == nchess.White {
		return nchess.Black
	}
	return nchess.White
}

func isLastRank(sq nchess.Square, c nchess.Color) bool {
	if c == nchess.White {
		return sq.Rank() == nchess.Rank8
	}
	return sq.Rank() == nchess.Rank1
}
