package colorswitch

import "testing"

func TestTransitionHappyPath(t *testing.T) {
	steps := []struct {
		from  State
		event Event
		to    State
	}{
		{StateIdle, EventTriggerFired, StateAnimation},
		{StateAnimation, EventAnimationDone, StateHighlighting},
		{StateHighlighting, EventHighlightElapsed, StateSwitching},
		{StateSwitching, EventSwitchExecuted, StateIdle},
	}
	for _, s := range steps {
		got, ok := transition(s.from, s.event)
		if !ok || got != s.to {
			t.Fatalf("transition(%v, %v) = %v ok=%v, want %v", s.from, s.event, got, ok, s.to)
		}
	}
}

func TestTransitionCancelFromAnyState(t *testing.T) {
	for _, s := range []State{StateIdle, StateAnimation, StateHighlighting, StateSwitching} {
		got, ok := transition(s, EventCancel)
		if !ok || got != StateIdle {
			t.Fatalf("cancel from %v = %v ok=%v, want idle", s, got, ok)
		}
	}
}

func TestTransitionRejectsOutOfOrderEvents(t *testing.T) {
	cases := []struct {
		from  State
		event Event
	}{
		{StateIdle, EventAnimationDone},
		{StateIdle, EventSwitchExecuted},
		{StateAnimation, EventTriggerFired},
		{StateAnimation, EventHighlightElapsed},
		{StateHighlighting, EventAnimationDone},
		{StateSwitching, EventTriggerFired},
	}
	for _, c := range cases {
		got, ok := transition(c.from, c.event)
		if ok || got != c.from {
			t.Fatalf("transition(%v, %v) should be rejected, got %v ok=%v", c.from, c.event, got, ok)
		}
	}
}

func TestStateStrings(t *testing.T) {
	if StateIdle.String() != "idle" || StateSwitching.String() != "switching" {
		t.Fatalf("unexpected state names: %v %v", StateIdle, StateSwitching)
	}
}
