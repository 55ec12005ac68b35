package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"rainet/game"
)

const (
	StateBegin = "STATE_BEGIN"
	StateEnd   = "STATE_END"
)

// ErrHashMismatch is returned when a snapshot does not match its HASH line.
var ErrHashMismatch = errors.New("snapshot hash mismatch")

// emptyName stands in for an unoccupied seat in the NAMES line.
const emptyName = "-"

// EncodeState writes a full snapshot of gs. names holds the P1 and P2 seat
// names; empty names are sent as "-".
func EncodeState(w io.Writer, gs *game.GameState, names [2]string) error {
	bw := bufio.NewWriter(w)
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(bw, format, args...)
		bw.WriteByte('\n')
	}

	line(StateBegin)
	switch gs.Phase.Kind {
	case game.SetupPhase:
		line("PHASE SETUP %s", gs.Phase.Player)
	case game.PlayingPhase:
		line("PHASE PLAYING")
	default:
		line("PHASE GAMEOVER %s", gs.Phase.Player)
	}
	line("CURRENT %s", gs.CurrentPlayer)
	if gs.PendingBoost.Valid {
		line("PENDING %d %d", gs.PendingBoost.Pos.Row, gs.PendingBoost.Pos.Col)
	} else {
		line("PENDING NONE")
	}

	for _, ps := range []*game.PlayerState{&gs.Player1, &gs.Player2} {
		line("PLAYER %s SETUP_LINKS %d SETUP_VIRUSES %d SETUP_PLACED %d", ps.ID, ps.LinksLeft, ps.VirusesLeft, ps.Placed)
		line("PLAYER %s LINEBOOST %s %s", ps.ID, slotToken(ps.LineBoosts[0]), slotToken(ps.LineBoosts[1]))
		line("PLAYER %s FIREWALL %s %s", ps.ID, slotToken(ps.Firewalls[0]), slotToken(ps.Firewalls[1]))
		line("PLAYER %s VIRUSCHECK %s %s", ps.ID, boolToken(ps.VirusChecksUsed[0]), boolToken(ps.VirusChecksUsed[1]))
		line("PLAYER %s NOTFOUND %s %s", ps.ID, boolToken(ps.NotFoundUsed[0]), boolToken(ps.NotFoundUsed[1]))
	}
	for _, ps := range []*game.PlayerState{&gs.Player1, &gs.Player2} {
		line("STACKS %s LINK %d VIRUS %d", ps.ID, len(ps.LinkStack), len(ps.VirusStack))
	}

	var cards, firewalls []string
	for row := 0; row < game.BoardSize; row++ {
		for col := 0; col < game.BoardSize; col++ {
			if card, ok := gs.Board.Get(game.Pos(row, col)); ok {
				cards = append(cards, fmt.Sprintf("CARD %d %d %s %s %s %s",
					row, col, card.Owner, kindToken(card.Kind), boolToken(card.Revealed), boolToken(card.Boosted)))
			}
			if owner := gs.Board.Firewalls[row][col]; owner != game.NoPlayer {
				firewalls = append(firewalls, fmt.Sprintf("FW %d %d %s", row, col, owner))
			}
		}
	}
	line("CARDS %d", len(cards))
	for _, c := range cards {
		line("%s", c)
	}
	line("FIREWALLS %d", len(firewalls))
	for _, f := range firewalls {
		line("%s", f)
	}

	line("NAMES %s %s", nameToken(names[0]), nameToken(names[1]))
	line("HASH %d", uint64(gs.Hash()))
	line(StateEnd)
	return bw.Flush()
}

// ParseState rebuilds a state from the lines between STATE_BEGIN and
// STATE_END. Stacks are rebuilt from their counts as revealed cards owned by
// the stack holder. Unknown lines are skipped.
func ParseState(lines []string) (*game.GameState, [2]string, error) {
	gs := game.NewGameState()
	var names [2]string
	var hash string

	for i := 0; i < len(lines); i++ {
		fields := strings.Fields(lines[i])
		if len(fields) == 0 {
			continue
		}
		t := &tokens{args: fields[1:]}
		var err error
		switch fields[0] {
		case "PHASE":
			gs.Phase, err = parsePhase(t)
		case "CURRENT":
			gs.CurrentPlayer, err = t.player()
		case "PENDING":
			if len(t.args) == 1 && t.args[0] == "NONE" {
				gs.PendingBoost = game.Slot{}
				break
			}
			var pos game.Position
			if pos, err = t.pos(); err == nil {
				gs.PendingBoost = game.SlotAt(pos)
			}
		case "PLAYER":
			err = parsePlayerLine(gs, t)
		case "STACKS":
			err = parseStacks(gs, t)
		case "CARDS":
			var n int
			if n, err = t.count(game.BoardSize * game.BoardSize); err != nil {
				break
			}
			if n >= len(lines)-i {
				return nil, names, malformed("CARDS %d runs past the snapshot", n)
			}
			for j := 0; j < n && err == nil; j++ {
				i++
				err = parseCard(gs, lines[i])
			}
		case "FIREWALLS":
			var n int
			if n, err = t.count(game.BoardSize * game.BoardSize); err != nil {
				break
			}
			if n >= len(lines)-i {
				return nil, names, malformed("FIREWALLS %d runs past the snapshot", n)
			}
			for j := 0; j < n && err == nil; j++ {
				i++
				err = parseFirewall(gs, lines[i])
			}
		case "NAMES":
			for k := range names {
				var name string
				if name, err = t.next(); err != nil {
					break
				}
				if name != emptyName {
					names[k] = name
				}
			}
		case "HASH":
			hash, err = t.next()
		default:
			continue
		}
		if err != nil {
			return nil, names, errors.WithMessagef(err, "snapshot line %q", lines[i])
		}
	}

	if hash != "" && hash != strconv.FormatUint(uint64(gs.Hash()), 10) {
		return nil, names, errors.Wrapf(ErrHashMismatch, "got %s", hash)
	}
	return gs, names, nil
}

func (t *tokens) player() (game.PlayerID, error) {
	tok, err := t.next()
	if err != nil {
		return game.NoPlayer, err
	}
	switch tok {
	case "P1":
		return game.P1, nil
	case "P2":
		return game.P2, nil
	}
	return game.NoPlayer, malformed("bad player %q", tok)
}

func (t *tokens) slot() (game.Slot, error) {
	tok, err := t.next()
	if err != nil {
		return game.Slot{}, err
	}
	if tok == "-" {
		return game.Slot{}, nil
	}
	parts := strings.Split(tok, ",")
	if len(parts) != 2 {
		return game.Slot{}, malformed("bad slot %q", tok)
	}
	row, rerr := strconv.Atoi(parts[0])
	col, cerr := strconv.Atoi(parts[1])
	if rerr != nil || cerr != nil {
		return game.Slot{}, malformed("bad slot %q", tok)
	}
	return game.SlotAt(game.Pos(row, col)), nil
}

// keyed reads the literal key followed by an integer.
func (t *tokens) keyed(key string) (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	if tok != key {
		return 0, malformed("expected %s, got %q", key, tok)
	}
	return t.int()
}

// keyedCount reads a keyed stack size. A stack holds at most every card of
// one kind from both players.
func (t *tokens) keyedCount(key string) (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, err
	}
	if tok != key {
		return 0, malformed("expected %s, got %q", key, tok)
	}
	return t.count(2 * game.CardsPerKind)
}

func (t *tokens) cell() (game.Position, error) {
	pos, err := t.pos()
	if err != nil {
		return pos, err
	}
	if !pos.InBounds() {
		return pos, malformed("cell %s off the board", pos)
	}
	return pos, nil
}

func parsePhase(t *tokens) (game.Phase, error) {
	kind, err := t.next()
	if err != nil {
		return game.Phase{}, err
	}
	switch kind {
	case "PLAYING":
		return game.Playing(), nil
	case "SETUP", "GAMEOVER":
		p, err := t.player()
		if err != nil {
			return game.Phase{}, err
		}
		if kind == "SETUP" {
			return game.Setup(p), nil
		}
		return game.GameOver(p), nil
	}
	return game.Phase{}, malformed("bad phase %q", kind)
}

func parsePlayerLine(gs *game.GameState, t *tokens) error {
	id, err := t.player()
	if err != nil {
		return err
	}
	ps := gs.Player(id)
	key, err := t.next()
	if err != nil {
		return err
	}
	switch key {
	case "SETUP_LINKS":
		if ps.LinksLeft, err = t.int(); err != nil {
			return err
		}
		if ps.VirusesLeft, err = t.keyed("SETUP_VIRUSES"); err != nil {
			return err
		}
		ps.Placed, err = t.keyed("SETUP_PLACED")
		return err
	case "LINEBOOST", "FIREWALL":
		slots := &ps.LineBoosts
		if key == "FIREWALL" {
			slots = &ps.Firewalls
		}
		for k := range slots {
			if slots[k], err = t.slot(); err != nil {
				return err
			}
		}
		return nil
	case "VIRUSCHECK", "NOTFOUND":
		flags := &ps.VirusChecksUsed
		if key == "NOTFOUND" {
			flags = &ps.NotFoundUsed
		}
		for k := range flags {
			if flags[k], err = t.bool(); err != nil {
				return err
			}
		}
		return nil
	}
	return malformed("unknown player key %q", key)
}

func parseStacks(gs *game.GameState, t *tokens) error {
	id, err := t.player()
	if err != nil {
		return err
	}
	links, err := t.keyedCount("LINK")
	if err != nil {
		return err
	}
	viruses, err := t.keyedCount("VIRUS")
	if err != nil {
		return err
	}
	ps := gs.Player(id)
	ps.LinkStack = rebuildStack(id, game.Link, links)
	ps.VirusStack = rebuildStack(id, game.Virus, viruses)
	return nil
}

func rebuildStack(owner game.PlayerID, kind game.CardKind, n int) []game.Card {
	stack := make([]game.Card, 0, n)
	for i := 0; i < n; i++ {
		stack = append(stack, game.Card{Kind: kind, Owner: owner, Revealed: true})
	}
	return stack
}

func parseCard(gs *game.GameState, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "CARD" {
		return malformed("expected CARD, got %q", line)
	}
	t := &tokens{args: fields[1:]}
	pos, err := t.cell()
	if err != nil {
		return err
	}
	var card game.Card
	if card.Owner, err = t.player(); err != nil {
		return err
	}
	kind, err := t.next()
	if err != nil {
		return err
	}
	if card.Kind, err = parseKind(kind); err != nil {
		return err
	}
	if card.Revealed, err = t.bool(); err != nil {
		return err
	}
	if card.Boosted, err = t.bool(); err != nil {
		return err
	}
	gs.Board.Set(pos, card)
	return t.done()
}

func parseFirewall(gs *game.GameState, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "FW" {
		return malformed("expected FW, got %q", line)
	}
	t := &tokens{args: fields[1:]}
	pos, err := t.cell()
	if err != nil {
		return err
	}
	owner, err := t.player()
	if err != nil {
		return err
	}
	gs.Board.SetFirewall(pos, owner)
	return t.done()
}

func slotToken(s game.Slot) string {
	if !s.Valid {
		return "-"
	}
	return strconv.Itoa(s.Pos.Row) + "," + strconv.Itoa(s.Pos.Col)
}

func nameToken(name string) string {
	if name == "" {
		return emptyName
	}
	return name
}
