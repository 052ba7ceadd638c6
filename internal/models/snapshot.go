package models

import "time"

// IntersectionView is the read-only state of one signalised intersection.
type IntersectionView struct {
	ID          int       `json:"id"`
	Position    Point     `json:"position"`
	Phase       Phase     `json:"phase"`
	PhaseTimer  int       `json:"phase_timer"`
	CycleLength int       `json:"cycle_length"`
	StopLines   StopLines `json:"stop_lines"`
}

// StopLines holds the stop-line coordinate on each approach. Right and Left
// approaches are X coordinates, Up and Down approaches are Y coordinates.
type StopLines struct {
	Right float64 `json:"right"`
	Left  float64 `json:"left"`
	Up    float64 `json:"up"`
	Down  float64 `json:"down"`
}

// AccidentView is the read-only state of a live accident.
type AccidentView struct {
	ID       uint64   `json:"id"`
	Position Point    `json:"position"`
	Vehicles []uint64 `json:"vehicles"`
	Reason   string   `json:"reason"`
	Severity Severity `json:"severity"`
	Timer    int      `json:"timer"`
	Duration int      `json:"duration"`
}

// Stats are running counters of a simulation run.
type Stats struct {
	Tick          uint64 `json:"tick"`
	Active        int    `json:"active"`
	Capacity      int    `json:"capacity"`
	Spawned       uint64 `json:"spawned"`
	Despawned     uint64 `json:"despawned"`
	Accidents     uint64 `json:"accidents"`
	LiveAccidents int    `json:"live_accidents"`
}

// Snapshot is the complete visible state of the world after a tick.
type Snapshot struct {
	RunID         string             `json:"run_id"`
	SimTime       time.Time          `json:"sim_time"`
	Paused        bool               `json:"paused"`
	Stats         Stats              `json:"stats"`
	Vehicles      []VehicleView      `json:"vehicles"`
	Intersections []IntersectionView `json:"intersections"`
	Accidents     []AccidentView     `json:"accidents"`
}
