package service

import "time"

// SetBeforeAssemble installs a hook that runs between the category fan-out
// and plan assembly.
func SetBeforeAssemble(p *PreTripPlanner, fn func()) {
	p.beforeAssemble = fn
}

// SetPlannerClock replaces the planner's clock.
func SetPlannerClock(p *PreTripPlanner, now func() time.Time) {
	p.now = now
}
