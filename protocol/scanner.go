package protocol

import (
	"bufio"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"

	"rainet/game"
	"rainet/meta"
)

type EventType int

const (
	RoleEvent EventType = iota
	RoomsEvent
	ErrorEvent
	StateEvent
)

// Event is one server message, possibly spanning several lines.
type Event struct {
	Type  EventType
	Role  Role
	Rooms []Room
	Code  string
	State *game.GameState
	Names [2]string
}

// Scanner splits a server stream into events.
type Scanner struct {
	next func() (string, error)
}

// NewScanner reads newline-terminated lines from r.
func NewScanner(r io.Reader) *Scanner {
	lines := bufio.NewScanner(r)
	lines.Buffer(make([]byte, 0, 4096), meta.MAX_LINE_LENGTH)
	return NewLineScanner(func() (string, error) {
		if !lines.Scan() {
			if err := lines.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return lines.Text(), nil
	})
}

// NewLineScanner reads from a source that already yields single lines.
// next must return io.EOF once the source is exhausted.
func NewLineScanner(next func() (string, error)) *Scanner {
	return &Scanner{next: next}
}

func (s *Scanner) line() (string, error) {
	line, err := s.next()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r"), nil
}

// Next blocks for the next event. It returns io.EOF once the stream ends
// cleanly between events.
func (s *Scanner) Next() (Event, error) {
	for {
		line, err := s.line()
		if err != nil {
			return Event{}, err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "YOU":
			if len(fields) != 2 {
				return Event{}, malformed("bad YOU line %q", line)
			}
			role, err := parseRole(fields[1])
			return Event{Type: RoleEvent, Role: role}, err
		case "ERROR":
			if len(fields) != 2 {
				return Event{}, malformed("bad ERROR line %q", line)
			}
			return Event{Type: ErrorEvent, Code: fields[1]}, nil
		case "ROOMS":
			return s.rooms(fields)
		case StateBegin:
			return s.state()
		}
		// unknown lines are skipped
	}
}

// roomsPrealloc bounds the up-front allocation for a room listing.
const roomsPrealloc = 64

func (s *Scanner) rooms(fields []string) (Event, error) {
	t := &tokens{args: fields[1:]}
	n, err := t.count(math.MaxInt)
	if err != nil {
		return Event{}, err
	}
	ev := Event{Type: RoomsEvent, Rooms: make([]Room, 0, min(n, roomsPrealloc))}
	for i := 0; i < n; i++ {
		line, err := s.line()
		if err != nil {
			return Event{}, errors.Wrap(unexpected(err), "room listing")
		}
		room, err := parseRoom(line)
		if err != nil {
			return Event{}, err
		}
		ev.Rooms = append(ev.Rooms, room)
	}
	return ev, nil
}

func (s *Scanner) state() (Event, error) {
	var lines []string
	for {
		line, err := s.line()
		if err != nil {
			return Event{}, errors.Wrap(unexpected(err), "snapshot")
		}
		if line == StateEnd {
			break
		}
		lines = append(lines, line)
	}
	gs, names, err := ParseState(lines)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: StateEvent, State: gs, Names: names}, nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
