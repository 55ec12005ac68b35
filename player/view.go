package player

import "rainet/game"

// Redact returns a copy of gs as viewer may see it. The kind of every
// unrevealed card the viewer does not own is masked as Link. NoPlayer views
// as a spectator and sees neither side. Once the game is over nothing is
// hidden. gs itself is never modified.
func Redact(gs *game.GameState, viewer game.PlayerID) *game.GameState {
	out := gs.Copy()
	if gs.Phase.Kind == game.GameOverPhase {
		return out
	}
	for row := 0; row < game.BoardSize; row++ {
		for col := 0; col < game.BoardSize; col++ {
			card := &out.Board.Cards[row][col]
			if card.Owner != game.NoPlayer && card.Owner != viewer && !card.Revealed {
				card.Kind = game.Link
			}
		}
	}
	return out
}

// View is the game from one seat.
type View struct {
	Viewer game.PlayerID
	State  *game.GameState // redacted
	hidden map[game.Position]bool
}

func NewView(gs *game.GameState, viewer game.PlayerID) View {
	v := View{Viewer: viewer, State: Redact(gs, viewer), hidden: make(map[game.Position]bool)}
	if gs.Phase.Kind == game.GameOverPhase {
		return v
	}
	for row := 0; row < game.BoardSize; row++ {
		for col := 0; col < game.BoardSize; col++ {
			card := gs.Board.Cards[row][col]
			if card.Owner != game.NoPlayer && card.Owner != viewer && !card.Revealed {
				v.hidden[game.Pos(row, col)] = true
			}
		}
	}
	return v
}

// Card returns the card at pos and whether its kind is known to the viewer.
func (v View) Card(pos game.Position) (card game.Card, present, known bool) {
	if !pos.InBounds() {
		return game.Card{}, false, false
	}
	card, present = v.State.Board.Get(pos)
	return card, present, present && !v.hidden[pos]
}

// HiddenCount is the number of board cards whose kind the viewer cannot see.
func (v View) HiddenCount() int {
	return len(v.hidden)
}

// Resources summarizes the terminal cards one player has left.
type Resources struct {
	LineBoosts      [2]game.Slot
	Firewalls       [2]game.Slot
	VirusChecksLeft int
	NotFoundLeft    int
}

func (v View) Resources(p game.PlayerID) Resources {
	ps := v.State.Player(p)
	r := Resources{LineBoosts: ps.LineBoosts, Firewalls: ps.Firewalls}
	for i := 0; i < 2; i++ {
		if !ps.VirusChecksUsed[i] {
			r.VirusChecksLeft++
		}
		if !ps.NotFoundUsed[i] {
			r.NotFoundLeft++
		}
	}
	return r
}

// Score returns the stack sizes of p.
func (v View) Score(p game.PlayerID) (links, viruses int) {
	ps := v.State.Player(p)
	return len(ps.LinkStack), len(ps.VirusStack)
}

// YourTurn reports whether the viewer is expected to act.
func (v View) YourTurn() bool {
	switch v.State.Phase.Kind {
	case game.SetupPhase:
		return v.State.Phase.Player == v.Viewer
	case game.PlayingPhase:
		return v.State.CurrentPlayer == v.Viewer
	}
	return false
}
