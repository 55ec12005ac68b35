package experiments

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"rainet/engine"
	"rainet/metrics"
)

// ThroughputResult summarizes one throughput run.
type ThroughputResult struct {
	Games      int
	Goroutines int
	Actions    int
	Elapsed    time.Duration
	Records    []metrics.MatchRecord // one per game, in game order
}

func (r ThroughputResult) ActionsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Actions) / r.Elapsed.Seconds()
}

// RunThroughput replays script in games independent matches spread over
// goroutines workers. Every failed game is reported; the result still holds
// the games that finished.
func RunThroughput(script string, games, goroutines int) (ThroughputResult, error) {
	if games < 1 || goroutines < 1 {
		return ThroughputResult{}, errors.Errorf("need at least one game and one goroutine, got %d and %d", games, goroutines)
	}

	log.Info().Msgf("starting throughput experiment: %d games on %d goroutines...", games, goroutines)
	result := ThroughputResult{
		Games:      games,
		Goroutines: goroutines,
		Records:    make([]metrics.MatchRecord, games),
	}

	jobs := make(chan int)
	var (
		mu   sync.Mutex
		errs *multierror.Error
		wg   sync.WaitGroup
	)
	start := time.Now()
	for w := 0; w < goroutines; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for game := range jobs {
				record, err := runGame(game, script)
				mu.Lock()
				result.Records[game] = record
				result.Actions += record.TotalActions
				if err != nil {
					errs = multierror.Append(errs, errors.WithMessagef(err, "game %d", game))
				}
				mu.Unlock()
			}
		}()
	}
	for game := 0; game < games; game++ {
		jobs <- game
	}
	close(jobs)
	wg.Wait()
	result.Elapsed = time.Since(start)

	log.Info().Msgf("completed %d actions in %s (%.0f actions/s)", result.Actions, result.Elapsed, result.ActionsPerSecond())
	return result, errs.ErrorOrNil()
}

func runGame(game int, script string) (metrics.MatchRecord, error) {
	id := fmt.Sprintf("game-%d", game)
	e, err := engine.NewLocalEngine(id, [2]string{id + "-p1", id + "-p2"}, strings.NewReader(script), nil)
	if err != nil {
		return metrics.MatchRecord{ID: id}, err
	}
	return e.Run()
}
