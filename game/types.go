package game

import "fmt"

// BoardSize is the number of rows and columns of the board.
const BoardSize = 8

// WinThreshold is the stack size that decides the game.
const WinThreshold = 4

// PlayerID identifies one of the two seats. The zero value means no player.
type PlayerID int

const (
	NoPlayer PlayerID = iota
	P1
	P2
)

// Opponent returns the other seat.
func (p PlayerID) Opponent() PlayerID {
	switch p {
	case P1:
		return P2
	case P2:
		return P1
	}
	return NoPlayer
}

func (p PlayerID) String() string {
	switch p {
	case P1:
		return "P1"
	case P2:
		return "P2"
	}
	return "none"
}

var setupPositions = map[PlayerID][8]Position{
	P1: {Pos(0, 0), Pos(0, 1), Pos(0, 2), Pos(0, 5), Pos(0, 6), Pos(0, 7), Pos(1, 3), Pos(1, 4)},
	P2: {Pos(7, 0), Pos(7, 1), Pos(7, 2), Pos(7, 5), Pos(7, 6), Pos(7, 7), Pos(6, 3), Pos(6, 4)},
}

// SetupPositions returns the eight cells a player deploys onto.
func (p PlayerID) SetupPositions() [8]Position {
	return setupPositions[p]
}

// ExitRow is the row holding the player's own exit cells.
func (p PlayerID) ExitRow() int {
	if p == P2 {
		return BoardSize - 1
	}
	return 0
}

// Position is a board coordinate.
type Position struct {
	Row int
	Col int
}

func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < BoardSize && p.Col >= 0 && p.Col < BoardSize
}

// Distance is the Manhattan distance between two positions.
func (p Position) Distance(other Position) int {
	return abs(p.Row-other.Row) + abs(p.Col-other.Col)
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Slot is an optional position held by a terminal card or a pending move.
type Slot struct {
	Pos   Position
	Valid bool
}

func SlotAt(pos Position) Slot {
	return Slot{Pos: pos, Valid: true}
}

// Holds reports whether the slot is set to pos.
func (s Slot) Holds(pos Position) bool {
	return s.Valid && s.Pos == pos
}

type CardKind int

const (
	Link CardKind = iota
	Virus
)

func (k CardKind) String() string {
	if k == Virus {
		return "Virus"
	}
	return "Link"
}

// StackChoice selects which of a player's stacks receives a card.
type StackChoice int

const (
	LinkStack StackChoice = iota
	VirusStack
)

// StackFor returns the stack matching a card kind.
func StackFor(kind CardKind) StackChoice {
	if kind == Virus {
		return VirusStack
	}
	return LinkStack
}

// Card is an online card. Owner is fixed at creation, captured cards keep it.
type Card struct {
	Kind     CardKind
	Revealed bool
	Boosted  bool
	Owner    PlayerID
}

type PhaseKind int

const (
	SetupPhase PhaseKind = iota
	PlayingPhase
	GameOverPhase
)

// Phase is the game phase. Player is the active setup player during setup
// and the winner once the game is over.
type Phase struct {
	Kind   PhaseKind
	Player PlayerID
}

func Setup(p PlayerID) Phase {
	return Phase{Kind: SetupPhase, Player: p}
}

func Playing() Phase {
	return Phase{Kind: PlayingPhase}
}

func GameOver(winner PlayerID) Phase {
	return Phase{Kind: GameOverPhase, Player: winner}
}

func (ph Phase) String() string {
	switch ph.Kind {
	case SetupPhase:
		return "Setup(" + ph.Player.String() + ")"
	case PlayingPhase:
		return "Playing"
	}
	return "GameOver(" + ph.Player.String() + ")"
}

// MoveOutcome tells the caller whether the mover may continue a boost chain.
type MoveOutcome int

const (
	TurnEnds MoveOutcome = iota
	CanMoveAgain
)

func (o MoveOutcome) String() string {
	if o == CanMoveAgain {
		return "CanMoveAgain"
	}
	return "TurnEnds"
}

// IsExit reports whether pos is one of the four exit cells.
func IsExit(pos Position) bool {
	return ExitOwner(pos) != NoPlayer
}

// ExitOwner returns the player whose exit pos is, or NoPlayer.
func ExitOwner(pos Position) PlayerID {
	if pos.Col != 3 && pos.Col != 4 {
		return NoPlayer
	}
	switch pos.Row {
	case P1.ExitRow():
		return P1
	case P2.ExitRow():
		return P2
	}
	return NoPlayer
}
