package engine

import "rainet/metrics"

// MaxSteps bounds a single run.
const MaxSteps = 10000

type Engine interface {
	// Run plays until the game is over or the input is exhausted.
	Run() (metrics.MatchRecord, error)
}
