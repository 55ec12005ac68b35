package metrics

import (
	"sync"
	"time"

	"rainet/game"
)

// ActionRecord is one committed action of a match.
type ActionRecord struct {
	Step   int
	Player game.PlayerID
	Action string // protocol form, e.g. "OP MOVE 1 3 2 3"
	Hash   game.StateHash
}

// MatchRecord summarizes a finished match.
type MatchRecord struct {
	ID           string
	Room         string
	Players      [2]string
	Winner       game.PlayerID
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
	TotalActions int
	LinkStacks   [2]int // final stack sizes of P1 and P2
	VirusStacks  [2]int
	Actions      []ActionRecord
}

// Recorder receives finished matches.
type Recorder interface {
	Record(record MatchRecord)
}

type Collector interface {
	Recorder
	Records() []MatchRecord
}

type collector struct {
	mu      sync.Mutex
	records []MatchRecord
}

func NewCollector() Collector {
	return &collector{}
}

func (c *collector) Record(record MatchRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, record)
}

func (c *collector) Records() []MatchRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]MatchRecord(nil), c.records...)
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (c *dummyCollector) Record(record MatchRecord) {}
func (c *dummyCollector) Records() []MatchRecord    { return nil }

// Summarize fills the final stack sizes and winner from a finished state.
func (r *MatchRecord) Summarize(gs *game.GameState) {
	r.Winner = gs.Winner()
	for i, ps := range []*game.PlayerState{&gs.Player1, &gs.Player2} {
		r.LinkStacks[i] = len(ps.LinkStack)
		r.VirusStacks[i] = len(ps.VirusStack)
	}
	r.Duration = r.EndTime.Sub(r.StartTime)
}
