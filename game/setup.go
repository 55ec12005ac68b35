package game

import "golang.org/x/exp/slices"

// CanPlaceSetup reports whether pos is a free setup cell of player.
func (gs *GameState) CanPlaceSetup(player PlayerID, pos Position) bool {
	cells := player.SetupPositions()
	if !pos.InBounds() || !slices.Contains(cells[:], pos) {
		return false
	}
	_, occupied := gs.Board.Get(pos)
	return !occupied
}

func (gs *GameState) requireSetupTurn(player PlayerID) error {
	if gs.Phase.Kind != SetupPhase {
		return ErrNotInSetupPhase
	}
	if gs.Phase.Player != player {
		return ErrSetupNotCurrentPlayer
	}
	return nil
}

// PlaceSetupCard deploys a face-down card. The eighth placement hands setup
// to P2, or starts play once P2 is done.
func (gs *GameState) PlaceSetupCard(player PlayerID, pos Position, kind CardKind) error {
	if err := gs.requireSetupTurn(player); err != nil {
		return err
	}
	if !pos.InBounds() {
		return ErrOutOfBounds
	}
	if !gs.CanPlaceSetup(player, pos) {
		return ErrInvalidSetupPosition
	}

	ps := gs.Player(player)
	switch {
	case kind == Link && ps.LinksLeft > 0:
		ps.LinksLeft--
	case kind == Virus && ps.VirusesLeft > 0:
		ps.VirusesLeft--
	default:
		return ErrSetupExhausted
	}
	ps.Placed++
	gs.Board.Set(pos, Card{Kind: kind, Owner: player})

	if ps.Placed == 2*CardsPerKind {
		if player == P1 {
			gs.Phase = Setup(P2)
		} else {
			gs.Phase = Playing()
		}
	}
	return nil
}

// RemoveSetupCard takes back one of the player's own placements.
func (gs *GameState) RemoveSetupCard(player PlayerID, pos Position) error {
	if err := gs.requireSetupTurn(player); err != nil {
		return err
	}
	if !pos.InBounds() {
		return ErrOutOfBounds
	}
	card, ok := gs.Board.Get(pos)
	if !ok {
		return ErrNoCard
	}
	if card.Owner != player {
		return ErrNotYourCard
	}

	gs.Board.Clear(pos)
	ps := gs.Player(player)
	if ps.Placed > 0 {
		ps.Placed--
	}
	if card.Kind == Virus {
		ps.VirusesLeft++
	} else {
		ps.LinksLeft++
	}
	return nil
}
