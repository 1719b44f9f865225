package colorswitch

import (
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/caesarchess/switchcore/internal/config"
	"github.com/caesarchess/switchcore/internal/obslog"
)

const (
	moveTriggerFloor    = 10
	moveTriggerInterval = 5
)

// Move-number windows the random-token policy draws from, one token per
// window: early, mid and late game. The windows are disjoint, so every game
// gets exactly three distinct token moves.
var tokenWindows = [3][2]int{{5, 20}, {21, 45}, {46, 70}}

// drawTokenMoves picks one move number from each window, inclusive on both
// ends. Drawn once per game.
func drawTokenMoves(rnd *rand.Rand) map[int]struct{} {
	out := make(map[int]struct{}, len(tokenWindows))
	for _, w := range tokenWindows {
		out[w[0]+rnd.Intn(w[1]-w[0]+1)] = struct{}{}
	}
	return out
}

// CheckTrigger polls the configured trigger policy for the given move count.
// It always returns false while a session is active; a firing trigger does
// not by itself start a session, the caller follows up with
// BeginSwitchSequence.
func (m *Manager) CheckTrigger(moveCount int) bool {
	m.moveCount = moveCount
	if m.state != StateIdle {
		return false
	}

	switch m.mode {
	case config.TriggerMove:
		if moveCount >= moveTriggerFloor &&
			(moveCount-moveTriggerFloor)%moveTriggerInterval == 0 &&
			!m.history.MoveUsed(moveCount) {
			obslog.L().Info("switch_trigger_fired",
				zap.String("policy", "move"),
				zap.Int("move", moveCount))
			return true
		}
	case config.TriggerTimer:
		elapsed := m.now().Sub(m.timerStart)
		if elapsed >= m.timerDuration {
			// Consumed on fire; the interval restarts whether or not the
			// selection that follows produces a session.
			m.timerStart = m.now()
			obslog.L().Info("switch_trigger_fired",
				zap.String("policy", "timer"),
				zap.Duration("elapsed", elapsed))
			return true
		}
	case config.TriggerPlayer:
		if m.playerRequested {
			m.playerRequested = false
			obslog.L().Info("switch_trigger_fired", zap.String("policy", "player"))
			return true
		}
	case config.TriggerRandomToken:
		if _, ok := m.tokenMoves[moveCount]; ok && !m.history.MoveUsed(moveCount) {
			obslog.L().Info("switch_trigger_fired",
				zap.String("policy", "random_token"),
				zap.Int("move", moveCount))
			return true
		}
	}
	return false
}

// RequestSwitch arms the player-initiated trigger; the next CheckTrigger
// under that policy fires once.
func (m *Manager) RequestSwitch() {
	m.playerRequested = true
}

// TimeUntilTimerFires reports the remaining timer interval, for display.
// Zero when not in timer mode.
func (m *Manager) TimeUntilTimerFires() time.Duration {
	if m.mode != config.TriggerTimer {
		return 0
	}
	remaining := m.timerDuration - m.now().Sub(m.timerStart)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// TokenMoves lists the pre-drawn random-token move numbers in ascending
// order. Empty outside random-token mode.
func (m *Manager) TokenMoves() []int {
	out := make([]int, 0, len(m.tokenMoves))
	for n := range m.tokenMoves {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
