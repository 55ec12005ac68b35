package game

import (
	"encoding/binary"
	"hash/fnv"
	"io"
)

// StateHash identifies a game state.
type StateHash uint64

// GameState is the rules state machine. It is not safe for concurrent use;
// callers serialize access per match.
type GameState struct {
	Board         Board
	Player1       PlayerState
	Player2       PlayerState
	CurrentPlayer PlayerID
	Phase         Phase
	PendingBoost  Slot // set between a boosted move and its continuation
}

// NewGameState returns an empty board with P1 to set up first.
func NewGameState() *GameState {
	return &GameState{
		Player1:       NewPlayerState(P1),
		Player2:       NewPlayerState(P2),
		CurrentPlayer: P1,
		Phase:         Setup(P1),
	}
}

// Copy returns a deep copy of the state.
func (gs *GameState) Copy() *GameState {
	return &GameState{
		Board:         gs.Board,
		Player1:       gs.Player1.copy(),
		Player2:       gs.Player2.copy(),
		CurrentPlayer: gs.CurrentPlayer,
		Phase:         gs.Phase,
		PendingBoost:  gs.PendingBoost,
	}
}

// Player returns the state of the given player.
func (gs *GameState) Player(p PlayerID) *PlayerState {
	if p == P2 {
		return &gs.Player2
	}
	return &gs.Player1
}

// EndTurn checks the win condition and hands the turn over. It does nothing
// outside the playing phase.
func (gs *GameState) EndTurn() {
	if gs.Phase.Kind != PlayingPhase {
		return
	}
	if winner := gs.CheckWinner(); winner != NoPlayer {
		gs.Phase = GameOver(winner)
		return
	}
	gs.CurrentPlayer = gs.CurrentPlayer.Opponent()
	gs.PendingBoost = Slot{}
}

// CheckWinner returns the winner or NoPlayer. P1 is checked first, so P1
// wins when both players reach a threshold at once.
func (gs *GameState) CheckWinner() PlayerID {
	p1, p2 := &gs.Player1, &gs.Player2
	if len(p1.LinkStack) >= WinThreshold || len(p2.VirusStack) >= WinThreshold {
		return P1
	}
	if len(p2.LinkStack) >= WinThreshold || len(p1.VirusStack) >= WinThreshold {
		return P2
	}
	return NoPlayer
}

// Winner returns the winner once the game is over.
func (gs *GameState) Winner() PlayerID {
	if gs.Phase.Kind == GameOverPhase {
		return gs.Phase.Player
	}
	return NoPlayer
}

func (gs *GameState) Hash() StateHash {
	hasher := fnv.New64a()

	binary.Write(hasher, binary.LittleEndian, int64(gs.CurrentPlayer))
	binary.Write(hasher, binary.LittleEndian, int64(gs.Phase.Kind))
	binary.Write(hasher, binary.LittleEndian, int64(gs.Phase.Player))
	writeSlot(hasher, gs.PendingBoost)

	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			card := gs.Board.Cards[row][col]
			binary.Write(hasher, binary.LittleEndian, int64(card.Owner))
			binary.Write(hasher, binary.LittleEndian, int64(card.Kind))
			binary.Write(hasher, binary.LittleEndian, card.Revealed)
			binary.Write(hasher, binary.LittleEndian, card.Boosted)
			binary.Write(hasher, binary.LittleEndian, int64(gs.Board.Firewalls[row][col]))
		}
	}

	for _, ps := range []*PlayerState{&gs.Player1, &gs.Player2} {
		binary.Write(hasher, binary.LittleEndian, int64(len(ps.LinkStack)))
		binary.Write(hasher, binary.LittleEndian, int64(len(ps.VirusStack)))
		for i := 0; i < 2; i++ {
			writeSlot(hasher, ps.LineBoosts[i])
			writeSlot(hasher, ps.Firewalls[i])
			binary.Write(hasher, binary.LittleEndian, ps.VirusChecksUsed[i])
			binary.Write(hasher, binary.LittleEndian, ps.NotFoundUsed[i])
		}
		binary.Write(hasher, binary.LittleEndian, int64(ps.LinksLeft))
		binary.Write(hasher, binary.LittleEndian, int64(ps.VirusesLeft))
		binary.Write(hasher, binary.LittleEndian, int64(ps.Placed))
	}

	return StateHash(hasher.Sum64())
}

func writeSlot(hasher io.Writer, slot Slot) {
	binary.Write(hasher, binary.LittleEndian, slot.Valid)
	binary.Write(hasher, binary.LittleEndian, int64(slot.Pos.Row))
	binary.Write(hasher, binary.LittleEndian, int64(slot.Pos.Col))
}

// requireAction checks the preconditions shared by terminal actions.
func (gs *GameState) requireAction(index int) error {
	if gs.Phase.Kind != PlayingPhase {
		return ErrNotInPlayingPhase
	}
	if gs.PendingBoost.Valid {
		return ErrPendingBoostMove
	}
	if index < 0 || index > 1 {
		return ErrInvalidTarget
	}
	return nil
}

// syncBoostFlag recomputes the boost flag of the card at pos from the slots
// of its owner.
func (gs *GameState) syncBoostFlag(player PlayerID, pos Position) {
	card, ok := gs.Board.Get(pos)
	if !ok || card.Owner != player {
		return
	}
	card.Boosted = gs.Player(player).boostedAt(pos)
	gs.Board.Set(pos, card)
}

// detachBoostAt frees every slot of player pointing at pos and clears the
// card flag.
func (gs *GameState) detachBoostAt(player PlayerID, pos Position) {
	ps := gs.Player(player)
	for i, slot := range ps.LineBoosts {
		if slot.Holds(pos) {
			ps.LineBoosts[i] = Slot{}
		}
	}
	gs.syncBoostFlag(player, pos)
}

// moveBoost re-points every slot of player from one cell to another.
func (gs *GameState) moveBoost(player PlayerID, from, to Position) {
	ps := gs.Player(player)
	for i, slot := range ps.LineBoosts {
		if slot.Holds(from) {
			ps.LineBoosts[i] = SlotAt(to)
		}
	}
}
