package model

// CycleCounters aggregates the outcome of one orchestrator pass over all
// monitored containers. Invariant: Updated + Failed <= Checked.
type CycleCounters struct {
	Checked int
	Updated int
	Failed  int
}
