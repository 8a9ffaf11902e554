package service

import "errors"

// Sentinel error kinds for the run orchestrator.
var (
	ErrNoSource = errors.New("no event source configured")
	ErrRunning  = errors.New("run already in progress")
)
