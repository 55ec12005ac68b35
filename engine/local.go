package engine

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"rainet/game"
	"rainet/gamemaster"
	"rainet/meta"
	"rainet/metrics"
	"rainet/protocol"
)

// ErrScript marks a line the replay could not understand.
var ErrScript = errors.New("bad script line")

// LocalEngine replays a recorded match against an in-process Match. Every
// script line is "P1 OP ..." or "P2 OP ..."; blank lines and lines starting
// with # are skipped.
type LocalEngine struct {
	Match *gamemaster.Match
	// Lenient logs rejected actions and keeps going instead of failing.
	Lenient bool

	script  *bufio.Scanner
	clients [2]string
	updates [2]<-chan gamemaster.Update
}

func NewLocalEngine(id string, names [2]string, script io.Reader, recorder metrics.Recorder) (*LocalEngine, error) {
	m := gamemaster.NewMatch(id, "replay", recorder)
	e := &LocalEngine{Match: m}
	for i, name := range names {
		e.clients[i] = id + "/" + game.PlayerID(i+1).String()
		_, updates, err := m.Join(e.clients[i], name)
		if err != nil {
			return nil, errors.Wrapf(err, "seat %s", name)
		}
		e.updates[i] = updates
		go func() {
			for range updates {
			}
		}()
	}
	e.script = bufio.NewScanner(script)
	e.script.Buffer(make([]byte, 0, 4096), meta.MAX_LINE_LENGTH)
	return e, nil
}

func (e *LocalEngine) Run() (metrics.MatchRecord, error) {
	defer e.leave()
	lineNo := 0
	steps := 0
	for e.script.Scan() {
		lineNo++
		line := strings.TrimSpace(e.script.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if steps >= MaxSteps {
			return e.Match.Record(), errors.Errorf("stopped after %d steps", MaxSteps)
		}
		steps++

		player, action, err := parseLine(line)
		if err != nil {
			return e.Match.Record(), errors.WithMessagef(err, "line %d", lineNo)
		}
		u, err := e.Match.Apply(e.clients[player-1], action)
		if err != nil {
			if !e.Lenient {
				return e.Match.Record(), errors.Wrapf(err, "line %d: %s %s", lineNo, player, action.Type)
			}
			log.Warn().Msgf("line %d: %s rejected with %s", lineNo, player, gamemaster.ErrorCode(err))
			continue
		}
		log.Info().Msgf("step %d: %s %s -> %s (hash %x)", u.Step, player, action.Type, u.State.Phase, uint64(u.Hash))
		if u.State.Phase.Kind == game.GameOverPhase {
			log.Info().Msgf("%s wins", u.State.Winner())
			break
		}
	}
	if err := e.script.Err(); err != nil {
		return e.Match.Record(), errors.Wrap(err, "read script")
	}
	return e.Match.Record(), nil
}

func (e *LocalEngine) leave() {
	for i, client := range e.clients {
		e.Match.Leave(client, e.updates[i])
	}
}

func parseLine(line string) (game.PlayerID, game.Action, error) {
	who, rest, ok := strings.Cut(line, " ")
	if !ok {
		return game.NoPlayer, game.Action{}, errors.Wrapf(ErrScript, "%q", line)
	}
	var player game.PlayerID
	switch who {
	case "P1":
		player = game.P1
	case "P2":
		player = game.P2
	default:
		return game.NoPlayer, game.Action{}, errors.Wrapf(ErrScript, "unknown player %q", who)
	}
	cmd, err := protocol.ParseCommand(rest)
	if err != nil {
		return game.NoPlayer, game.Action{}, err
	}
	if cmd.Kind != protocol.OpCommand {
		return game.NoPlayer, game.Action{}, errors.Wrapf(ErrScript, "not an action: %q", rest)
	}
	return player, cmd.Action, nil
}
