// Package colorswitch implements the covert piece-allegiance mechanic: a
// trigger policy decides when a switch sequence starts, an eligibility filter
// and impact ranking choose which square(s) flip, and a small state machine
// sequences the visible phases before the single board mutation happens.
package colorswitch

import "fmt"

// State is the switch-sequence lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateAnimation
	StateHighlighting
	StateSwitching
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnimation:
		return "animation"
	case StateHighlighting:
		return "highlighting"
	case StateSwitching:
		return "switching"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Event is a state-machine input.
type Event int

const (
	EventTriggerFired Event = iota
	EventAnimationDone
	EventHighlightElapsed
	EventSwitchExecuted
	EventCancel
)

func (e Event) String() string {
	switch e {
	case EventTriggerFired:
		return "trigger_fired"
	case EventAnimationDone:
		return "animation_done"
	case EventHighlightElapsed:
		return "highlight_elapsed"
	case EventSwitchExecuted:
		return "switch_executed"
	case EventCancel:
		return "cancel"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// transition is the single source of truth for lifecycle moves. An event
// that does not apply in the current state returns ok=false and the caller
// treats it as a no-op guard, never a crash.
func transition(s State, e Event) (State, bool) {
	if e == EventCancel {
		return StateIdle, true
	}
	switch s {
	case StateIdle:
		if e == EventTriggerFired {
			return StateAnimation, true
		}
	case StateAnimation:
		if e == EventAnimationDone {
			return StateHighlighting, true
		}
	case StateHighlighting:
		if e == EventHighlightElapsed {
			return StateSwitching, true
		}
	case StateSwitching:
		if e == EventSwitchExecuted {
			return StateIdle, true
		}
	}
	return s, false
}
