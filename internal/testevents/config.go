package testevents

import "time"

// Config holds configuration for a fixture run.
type Config struct {
	OutDir         string // Directory receiving the five tables
	NumEvents      int    // Number of events to generate
	Seed           uint64 // Seed of the deterministic generator
	PP             bool   // Write pp trigger columns and pp run numbers
	MC             bool   // Attach non-unit simulation weights
	DuplicateEvery int    // Repeat the previous event id every N events; 0 disables
}

// Stats holds generation statistics.
type Stats struct {
	FixtureID   string        `json:"fixture_id"`
	Seed        uint64        `json:"seed"`
	Events      int           `json:"events"`
	Duplicates  int           `json:"duplicates"`
	Dileptons   int           `json:"dileptons"`
	TotalWeight float64       `json:"total_weight"`
	PP          bool          `json:"pp"`
	MC          bool          `json:"mc"`
	StartTime   time.Time     `json:"start_time"`
	Duration    time.Duration `json:"duration"`
}
