// Package pipeline runs staged, simulated processing with progress
// reporting.
//
// A pipeline is an ordered list of labelled steps. For step i of n the
// runner publishes (label, 100*(i+1)/n) to an Observer and then suspends for
// the step's delay. After the last step it calls the caller's produce
// function, which generates the run's results.
//
// # Mutual Exclusion
//
// Only one pipeline may be in flight per session. The runner acquires a Gate
// before the first step and always releases it, whether the run succeeds,
// produce returns an error, produce panics, or the context is cancelled.
// When the gate is already held the run is skipped: no step executes and a
// cverr.KindSkipped error is returned, which callers treat as a silent no-op.
//
// # Suspension
//
// Steps suspend through a SleepFunc. The default waits on a timer and
// returns early if the context is done; tests substitute a function that
// returns immediately.
package pipeline
