// Package protocol implements the line-oriented text protocol spoken between
// clients and the server.
package protocol

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"rainet/game"
)

// ErrMalformed is the cause of every parse failure.
var ErrMalformed = errors.New("malformed line")

type CommandKind int

const (
	HelloCommand CommandKind = iota
	ListCommand
	CreateCommand
	JoinCommand
	SpectateCommand
	LeaveCommand
	OpCommand
)

// Command is one client request.
type Command struct {
	Kind     CommandKind
	Name     string // HELLO player name, CREATE room name
	ClientID string // HELLO, optional
	RoomID   string // JOIN, SPECTATE
	Action   game.Action
}

func malformed(format string, args ...interface{}) error {
	return errors.Wrapf(ErrMalformed, format, args...)
}

// ParseCommand parses a client line.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, malformed("empty line")
	}
	args := fields[1:]
	switch fields[0] {
	case "HELLO":
		if len(args) < 1 || len(args) > 2 {
			return Command{}, malformed("HELLO takes a name and an optional client id")
		}
		cmd := Command{Kind: HelloCommand, Name: args[0]}
		if len(args) == 2 {
			cmd.ClientID = args[1]
		}
		return cmd, nil
	case "LIST":
		return Command{Kind: ListCommand}, nil
	case "CREATE":
		if len(args) == 0 {
			return Command{}, malformed("CREATE needs a room name")
		}
		return Command{Kind: CreateCommand, Name: strings.Join(args, " ")}, nil
	case "JOIN", "SPECTATE":
		if len(args) != 1 {
			return Command{}, malformed("%s needs a room id", fields[0])
		}
		kind := JoinCommand
		if fields[0] == "SPECTATE" {
			kind = SpectateCommand
		}
		return Command{Kind: kind, RoomID: args[0]}, nil
	case "LEAVE":
		return Command{Kind: LeaveCommand}, nil
	case "OP":
		action, err := parseAction(args)
		if err != nil {
			return Command{}, errors.WithMessagef(err, "parse %q", line)
		}
		return Command{Kind: OpCommand, Action: action}, nil
	}
	return Command{}, malformed("unknown command %q", fields[0])
}

type tokens struct {
	args []string
}

func (t *tokens) next() (string, error) {
	if len(t.args) == 0 {
		return "", malformed("missing argument")
	}
	tok := t.args[0]
	t.args = t.args[1:]
	return tok, nil
}

func (t *tokens) int() (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, malformed("bad number %q", tok)
	}
	return n, nil
}

// count reads a list length in [0, limit].
func (t *tokens) count(limit int) (int, error) {
	n, err := t.int()
	if err != nil {
		return 0, err
	}
	if n < 0 || n > limit {
		return 0, malformed("count %d outside 0..%d", n, limit)
	}
	return n, nil
}

func (t *tokens) pos() (game.Position, error) {
	row, err := t.int()
	if err != nil {
		return game.Position{}, err
	}
	col, err := t.int()
	if err != nil {
		return game.Position{}, err
	}
	return game.Pos(row, col), nil
}

func (t *tokens) bool() (bool, error) {
	tok, err := t.next()
	if err != nil {
		return false, err
	}
	return parseBool(tok)
}

func (t *tokens) done() error {
	if len(t.args) > 0 {
		return malformed("unexpected %q", strings.Join(t.args, " "))
	}
	return nil
}

func parseAction(args []string) (game.Action, error) {
	t := &tokens{args: args}
	op, err := t.next()
	if err != nil {
		return game.Action{}, err
	}

	var a game.Action
	switch op {
	case "SETUP":
		a.Type = game.SetupAction
		tok, err := t.next()
		if err != nil {
			return a, err
		}
		if a.Kind, err = parseKind(tok); err != nil {
			return a, err
		}
		a.From, err = t.pos()
	case "REMOVE":
		a.Type = game.RemoveAction
		a.From, err = t.pos()
	case "MOVE", "BOOST":
		a.Type = game.MoveAction
		if op == "BOOST" {
			a.Type = game.BoostAction
		}
		if a.From, err = t.pos(); err == nil {
			a.To, err = t.pos()
		}
	case "ENTER":
		a.Type = game.EnterAction
		if a.From, err = t.pos(); err != nil {
			return a, err
		}
		if a.Reveal, err = t.bool(); err != nil {
			return a, err
		}
		tok, err := t.next()
		if err != nil {
			return a, err
		}
		kind, err := parseKind(tok)
		if err != nil {
			return a, err
		}
		a.Stack = game.StackFor(kind)
	case "LINEBOOST", "FIREWALL":
		sub, err := t.next()
		if err != nil {
			return a, err
		}
		switch op + " " + sub {
		case "LINEBOOST ATTACH":
			a.Type = game.LineBoostAttachAction
		case "LINEBOOST DETACH":
			a.Type = game.LineBoostDetachAction
		case "FIREWALL PLACE":
			a.Type = game.FirewallPlaceAction
		case "FIREWALL REMOVE":
			a.Type = game.FirewallRemoveAction
		default:
			return a, malformed("unknown %s action %q", op, sub)
		}
		a.From, err = t.pos()
		if err != nil {
			return a, err
		}
	case "VIRUSCHECK":
		a.Type = game.VirusCheckAction
		a.From, err = t.pos()
	case "NOTFOUND":
		a.Type = game.NotFoundAction
		if a.From, err = t.pos(); err != nil {
			return a, err
		}
		if a.To, err = t.pos(); err != nil {
			return a, err
		}
		a.Swap, err = t.bool()
	case "ENDTURN":
		a.Type = game.EndTurnAction
	default:
		return a, malformed("unknown op %q", op)
	}
	if err != nil {
		return a, err
	}
	return a, t.done()
}

// FormatCommand renders a command as a protocol line without newline.
func FormatCommand(cmd Command) string {
	switch cmd.Kind {
	case HelloCommand:
		if cmd.ClientID != "" {
			return "HELLO " + cmd.Name + " " + cmd.ClientID
		}
		return "HELLO " + cmd.Name
	case ListCommand:
		return "LIST"
	case CreateCommand:
		return "CREATE " + cmd.Name
	case JoinCommand:
		return "JOIN " + cmd.RoomID
	case SpectateCommand:
		return "SPECTATE " + cmd.RoomID
	case LeaveCommand:
		return "LEAVE"
	}
	return FormatAction(cmd.Action)
}

// FormatAction renders an action as an OP line.
func FormatAction(a game.Action) string {
	var b strings.Builder
	b.WriteString("OP ")
	switch a.Type {
	case game.SetupAction:
		b.WriteString("SETUP " + kindToken(a.Kind) + " " + posTokens(a.From))
	case game.RemoveAction:
		b.WriteString("REMOVE " + posTokens(a.From))
	case game.MoveAction:
		b.WriteString("MOVE " + posTokens(a.From) + " " + posTokens(a.To))
	case game.BoostAction:
		b.WriteString("BOOST " + posTokens(a.From) + " " + posTokens(a.To))
	case game.EnterAction:
		kind := game.Link
		if a.Stack == game.VirusStack {
			kind = game.Virus
		}
		b.WriteString("ENTER " + posTokens(a.From) + " " + boolToken(a.Reveal) + " " + kindToken(kind))
	case game.LineBoostAttachAction:
		b.WriteString("LINEBOOST ATTACH " + posTokens(a.From))
	case game.LineBoostDetachAction:
		b.WriteString("LINEBOOST DETACH " + posTokens(a.From))
	case game.VirusCheckAction:
		b.WriteString("VIRUSCHECK " + posTokens(a.From))
	case game.FirewallPlaceAction:
		b.WriteString("FIREWALL PLACE " + posTokens(a.From))
	case game.FirewallRemoveAction:
		b.WriteString("FIREWALL REMOVE " + posTokens(a.From))
	case game.NotFoundAction:
		b.WriteString("NOTFOUND " + posTokens(a.From) + " " + posTokens(a.To) + " " + boolToken(a.Swap))
	default:
		b.WriteString("ENDTURN")
	}
	return b.String()
}

func posTokens(p game.Position) string {
	return strconv.Itoa(p.Row) + " " + strconv.Itoa(p.Col)
}

func kindToken(k game.CardKind) string {
	if k == game.Virus {
		return "V"
	}
	return "L"
}

func parseKind(tok string) (game.CardKind, error) {
	switch tok {
	case "L":
		return game.Link, nil
	case "V":
		return game.Virus, nil
	}
	return game.Link, malformed("bad card kind %q", tok)
}

func boolToken(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func parseBool(tok string) (bool, error) {
	switch tok {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, malformed("bad flag %q", tok)
}
