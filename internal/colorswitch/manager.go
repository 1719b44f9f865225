package colorswitch

import (
	"context"
	"math/rand"
	"time"

	nchess "github.com/corentings/chess/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/caesarchess/switchcore/internal/board"
	"github.com/caesarchess/switchcore/internal/config"
	"github.com/caesarchess/switchcore/internal/eval"
	"github.com/caesarchess/switchcore/internal/obslog"
)

// Animator is the animation collaborator. The state machine leaves the
// ANIMATION phase only once Active reports false.
type Animator interface {
	Start()
	Active() bool
	Stop()
}

// session is the ephemeral trigger-to-completion state. Squares are fixed
// for its lifetime; highlightStart is set when the HIGHLIGHTING phase opens.
type session struct {
	id             string
	squares        []nchess.Square
	moveNumber     int
	highlightStart time.Time
}

// Manager owns the switch lifecycle for one game: trigger polling, candidate
// selection, phase sequencing and the single board mutation. It is built for
// a single-threaded game loop; no internal locking.
type Manager struct {
	pos       *board.Position
	anim      Animator
	evaluator eval.Evaluator
	history   *History
	store     EventStore

	mode              string
	switchMode        int
	timerDuration     time.Duration
	highlightDuration time.Duration

	state   State
	session *session

	timerStart      time.Time
	tokenMoves      map[int]struct{}
	playerRequested bool
	moveCount       int

	now func() time.Time
}

// Option adjusts a Manager at construction.
type Option func(*Manager)

// WithClock substitutes the time source. Tests use this to step through the
// timer trigger and the highlight window deterministically.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithEventStore attaches a switch-event journal.
func WithEventStore(store EventStore) Option {
	return func(m *Manager) { m.store = store }
}

// NewManager wires the switch core around the live position. The evaluator
// strategy is fixed here; it does not change for the life of the manager.
func NewManager(pos *board.Position, anim Animator, evaluator eval.Evaluator, cfg *config.AppConfig, opts ...Option) *Manager {
	m := &Manager{
		pos:               pos,
		anim:              anim,
		evaluator:         evaluator,
		history:           NewHistory(),
		store:             NoopStore{},
		mode:              cfg.TriggerMode,
		switchMode:        cfg.SwitchMode,
		timerDuration:     cfg.TimerDuration,
		highlightDuration: cfg.HighlightDuration,
		state:             StateIdle,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.timerStart = m.now()
	if m.mode == config.TriggerRandomToken {
		seed := cfg.RandomSeed
		if seed == 0 {
			seed = m.now().UnixNano()
		}
		m.tokenMoves = drawTokenMoves(rand.New(rand.NewSource(seed)))
		obslog.L().Info("random_tokens_drawn", zap.Ints("moves", m.TokenMoves()))
	}
	return m
}

// State reports the current lifecycle phase.
func (m *Manager) State() State { return m.state }

// History exposes the read-only switch record.
func (m *Manager) History() *History { return m.history }

// SelectedSquares returns the active session's squares, or nil.
func (m *Manager) SelectedSquares() []nchess.Square {
	if m.session == nil {
		return nil
	}
	out := make([]nchess.Square, len(m.session.squares))
	copy(out, m.session.squares)
	return out
}

// MarkPromotion records that the square now holds a promoted piece.
func (m *Manager) MarkPromotion(sq nchess.Square) {
	m.history.MarkPromotion(sq)
}

// BeginSwitchSequence runs eligibility, ranking and selection, and opens a
// session when the selection is non-empty. Returns the selected squares, or
// nil when the trigger is skipped (no candidates, or a session is already
// active).
func (m *Manager) BeginSwitchSequence(ctx context.Context) []nchess.Square {
	if m.state != StateIdle {
		obslog.L().Debug("switch_sequence_already_active", zap.String("state", m.state.String()))
		return nil
	}

	eligible := eligibleSquares(m.pos, m.history)
	if len(eligible) == 0 {
		obslog.L().Info("no_eligible_pieces")
		return nil
	}

	ranked := rankCandidates(ctx, m.pos, m.evaluator, eligible)
	lastColor, hasLast := m.history.LastColor()
	squares := selectSquares(m.pos, ranked, m.switchMode, lastColor, hasLast)
	if len(squares) == 0 {
		obslog.L().Info("no_candidates_selected", zap.Int("eligible", len(eligible)))
		return nil
	}

	next, ok := transition(m.state, EventTriggerFired)
	if !ok {
		return nil
	}
	m.state = next
	m.session = &session{
		id:         uuid.NewString(),
		squares:    squares,
		moveNumber: m.moveCount,
	}
	if m.anim != nil {
		m.anim.Start()
	}

	obslog.L().Info("switch_sequence_started",
		zap.String("session", m.session.id),
		zap.Strings("squares", squareNames(squares)),
		zap.Int("move", m.session.moveNumber))
	return m.SelectedSquares()
}

// Advance drives at most one state-machine step. Called once per game loop
// iteration.
func (m *Manager) Advance(ctx context.Context) {
	switch m.state {
	case StateAnimation:
		if m.anim == nil || !m.anim.Active() {
			if next, ok := transition(m.state, EventAnimationDone); ok {
				m.state = next
				m.session.highlightStart = m.now()
				obslog.L().Debug("switch_highlight_started", zap.String("session", m.session.id))
			}
		}
	case StateHighlighting:
		if m.now().Sub(m.session.highlightStart) >= m.highlightDuration {
			if next, ok := transition(m.state, EventHighlightElapsed); ok {
				m.state = next
			}
		}
	case StateSwitching:
		m.ExecuteSwitch(ctx)
	}
}

// ExecuteSwitch performs the one real board mutation of a session: flips the
// selected pieces, preserves the turn, updates history and journals the
// flips. Outside the SWITCHING phase, or with no session, it is a no-op.
func (m *Manager) ExecuteSwitch(ctx context.Context) bool {
	if m.state != StateSwitching || m.session == nil || len(m.session.squares) == 0 {
		return false
	}

	turnBefore := m.pos.Turn()
	var firstOriginal nchess.Color
	flipped := 0

	for _, sq := range m.session.squares {
		piece := m.pos.PieceAt(sq)
		if piece == nchess.NoPiece {
			obslog.L().Warn("switch_square_empty", zap.String("square", squareName(sq)))
			continue
		}
		original := piece.Color()
		replacement := board.Flipped(piece)

		m.pos.RemovePieceAt(sq)
		m.pos.PlacePieceAt(sq, replacement)

		if flipped == 0 {
			firstOriginal = original
		}
		flipped++
		m.history.recordFlip(sq, replacement.Color())

		if err := m.store.RecordSwitch(ctx, SwitchEvent{
			SessionID:  m.session.id,
			Square:     squareName(sq),
			FromColor:  colorName(original),
			ToColor:    colorName(replacement.Color()),
			PieceType:  pieceTypeName(piece.Type()),
			MoveNumber: m.session.moveNumber,
			At:         m.now(),
		}); err != nil {
			obslog.L().Warn("switch_journal_failed", zap.Error(err))
		}

		obslog.L().Info("piece_switched",
			zap.String("session", m.session.id),
			zap.String("square", squareName(sq)),
			zap.String("from", colorName(original)),
			zap.String("to", colorName(replacement.Color())))
	}

	// A switch never consumes a move.
	m.pos.SetTurn(turnBefore)

	if flipped > 0 {
		m.history.recordSession(m.session.moveNumber, firstOriginal)
	}

	m.timerStart = m.now()
	m.session = nil
	if next, ok := transition(m.state, EventSwitchExecuted); ok {
		m.state = next
	}
	return flipped > 0
}

// CancelSession abandons the active session without touching the board. The
// only path back to IDLE that skips SWITCHING.
func (m *Manager) CancelSession() {
	if m.state == StateIdle {
		return
	}
	if m.anim != nil && m.anim.Active() {
		m.anim.Stop()
	}
	id := ""
	if m.session != nil {
		id = m.session.id
	}
	m.session = nil
	m.timerStart = m.now()
	m.state, _ = transition(m.state, EventCancel)
	obslog.L().Info("switch_sequence_cancelled", zap.String("session", id))
}

// Snapshot is the read-only counter view exposed for display and stats.
type Snapshot struct {
	State           string   `json:"state"`
	WhiteSwitches   int      `json:"white_switches"`
	BlackSwitches   int      `json:"black_switches"`
	SwitchMoves     []int    `json:"switch_moves"`
	SwitchedSquares []string `json:"switched_squares"`
	SelectedSquares []string `json:"selected_squares,omitempty"`
	TokenMoves      []int    `json:"token_moves,omitempty"`
}

// Stats captures the current counters.
func (m *Manager) Stats() Snapshot {
	white, black := m.history.Counts()
	return Snapshot{
		State:           m.state.String(),
		WhiteSwitches:   white,
		BlackSwitches:   black,
		SwitchMoves:     m.history.MoveNumbers(),
		SwitchedSquares: squareNames(m.history.SwitchedSquares()),
		SelectedSquares: squareNames(m.SelectedSquares()),
		TokenMoves:      m.TokenMoves(),
	}
}

func squareNames(squares []nchess.Square) []string {
	out := make([]string, len(squares))
	for i, sq := range squares {
		out[i] = squareName(sq)
	}
	return out
}

func squareName(sq nchess.Square) string {
	return sq.File().String() + sq.Rank().String()
}

func colorName(c nchess.Color) string {
	if c == nchess.White {
		return "white"
	}
	return "black"
}

func pieceTypeName(pt nchess.PieceType) string {
	switch pt {
	case nchess.Queen:
		return "queen"
	case nchess.Rook:
		return "rook"
	case nchess.Bishop:
		return "bishop"
	case nchess.Knight:
		return "knight"
	case nchess.Pawn:
		return "pawn"
	case nchess.King:
		return "king"
	}
	return ""
}
