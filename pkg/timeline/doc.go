// Package timeline drives bar chart race playback.
//
// A [Driver] is a small state machine over a fractional index in [0, T-1]:
//
//	Stopped ──Play──▶ Playing ──end, loop──▶ WaitingLoopEnd
//	   ▲                 │                        │ loopDelayAfter
//	   │            end, no loop                  ▼ (index := 0)
//	   └── Pause/Seek ◀──┘            WaitingLoopStart
//	                                              │ loopDelayBefore
//	                          Playing ◀───────────┘
//
// While playing, each tick advances the index by 1/150 of a step and the
// cadence is chosen so a full traversal takes exactly the configured duration.
// Tick times are derived from the tick ordinal, not accumulated, so long
// races do not drift.
//
// Time comes from a [Scheduler]. [RealScheduler] wraps time.AfterFunc;
// [ManualScheduler] is a virtual clock that makes playback deterministic in
// tests.
//
// [Plan] is the offline counterpart of the driver: it samples one full pass
// at a fixed frame rate and returns the index of every video frame, which is
// what frame export and the HTTP server use.
package timeline
