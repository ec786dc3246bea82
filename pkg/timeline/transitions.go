package timeline

// Transition is one edge of the playback state machine.
type Transition struct {
	From  State
	To    State
	Event string
}

// States lists the states reachable with or without loop.
func States(loop bool) []State {
	if loop {
		return []State{Stopped, Playing, WaitingLoopEnd, WaitingLoopStart}
	}
	return []State{Stopped, Playing}
}

// Transitions describes the driver's state machine. Seek and Pause lead to
// Stopped from every other state; SetOptions keeps the current state.
func Transitions(loop bool) []Transition {
	ts := []Transition{
		{Stopped, Playing, "play"},
		{Playing, Playing, "tick"},
		{Playing, Stopped, "pause / seek"},
	}
	if !loop {
		return append(ts, Transition{Playing, Stopped, "last step"})
	}
	return append(ts,
		Transition{Stopped, WaitingLoopEnd, "play at last step"},
		Transition{Playing, WaitingLoopEnd, "last step"},
		Transition{WaitingLoopEnd, WaitingLoopStart, "loopDelayAfter, reset to 0"},
		Transition{WaitingLoopStart, Playing, "loopDelayBefore"},
		Transition{WaitingLoopEnd, Stopped, "pause / seek"},
		Transition{WaitingLoopStart, Stopped, "pause / seek"},
	)
}
