package game

// StartMove moves one of the current player's cards to an adjacent cell.
func (gs *GameState) StartMove(from, to Position) (MoveOutcome, error) {
	if gs.Phase.Kind != PlayingPhase {
		return TurnEnds, ErrNotInPlayingPhase
	}
	if gs.PendingBoost.Valid {
		return TurnEnds, ErrPendingBoostMove
	}
	return gs.moveCard(from, to, false)
}

// ContinueBoostMove performs the second step of a line boost. from must be
// the cell the boosted card stopped on. It always returns TurnEnds, so a
// boosted chain is at most two steps.
func (gs *GameState) ContinueBoostMove(from, to Position) (MoveOutcome, error) {
	if gs.Phase.Kind != PlayingPhase {
		return TurnEnds, ErrNotInPlayingPhase
	}
	if !gs.PendingBoost.Holds(from) {
		return TurnEnds, ErrNoPendingBoostMove
	}
	return gs.moveCard(from, to, true)
}

func (gs *GameState) validateMove(from, to Position) (Card, error) {
	if !from.InBounds() || !to.InBounds() {
		return Card{}, ErrOutOfBounds
	}
	if from.Distance(to) != 1 {
		return Card{}, ErrNotAdjacent
	}
	card, ok := gs.Board.Get(from)
	if !ok {
		return Card{}, ErrNoCard
	}
	mover := gs.CurrentPlayer
	if card.Owner != mover {
		return Card{}, ErrNotYourCard
	}
	if gs.Board.HasOwnCard(to, mover) {
		return Card{}, ErrOccupiedByOwnCard
	}
	if ExitOwner(to) == mover {
		return Card{}, ErrOwnExitBlocked
	}
	if gs.Board.Firewall(to) == mover.Opponent() {
		return Card{}, ErrOpponentFirewall
	}
	return card, nil
}

func (gs *GameState) moveCard(from, to Position, continuation bool) (MoveOutcome, error) {
	card, err := gs.validateMove(from, to)
	if err != nil {
		return TurnEnds, err
	}
	mover := gs.CurrentPlayer

	captured := gs.Board.HasOpponentCard(to, mover)
	if captured {
		target, _ := gs.Board.Get(to)
		if target.Boosted {
			gs.detachBoostAt(target.Owner, to)
		}
		target.Revealed = true
		target.Boosted = false
		gs.Player(mover).AddToStack(target, StackFor(target.Kind))
	}

	gs.Board.Clear(from)
	gs.Board.Set(to, card)
	gs.PendingBoost = Slot{}

	if !card.Boosted {
		return TurnEnds, nil
	}
	// The boost follows the card even when it captured. Only an uncontested
	// first step may chain; the continuation ends the turn.
	gs.moveBoost(mover, from, to)
	if captured || continuation {
		return TurnEnds, nil
	}
	gs.PendingBoost = SlotAt(to)
	return CanMoveAgain, nil
}

// EnterServerCenter scores a card standing on the opponent's exit into the
// stack the mover picks, regardless of the card's kind.
func (gs *GameState) EnterServerCenter(from Position, reveal bool, stack StackChoice) error {
	if gs.Phase.Kind != PlayingPhase {
		return ErrNotInPlayingPhase
	}
	if gs.PendingBoost.Valid {
		return ErrCannotEnterServerWithBoost
	}
	if !from.InBounds() {
		return ErrOutOfBounds
	}
	card, ok := gs.Board.Get(from)
	if !ok {
		return ErrNoCard
	}
	mover := gs.CurrentPlayer
	if card.Owner != mover {
		return ErrNotYourCard
	}
	if ExitOwner(from) != mover.Opponent() {
		return ErrNotOnOpponentExit
	}

	if card.Boosted {
		gs.detachBoostAt(mover, from)
	}
	gs.Board.Clear(from)
	card.Boosted = false
	if reveal {
		card.Revealed = true
	}
	gs.Player(mover).AddToStack(card, stack)
	return nil
}
