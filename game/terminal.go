package game

// Terminal cards. Every action addresses one of two slots by index and is
// rejected while a boost move is pending.

// UseLineBoostAttach puts the line boost of slot index on one of the current
// player's cards. Re-attaching a slot moves the boost off its previous card.
func (gs *GameState) UseLineBoostAttach(index int, pos Position) error {
	if err := gs.requireAction(index); err != nil {
		return err
	}
	if !pos.InBounds() {
		return ErrOutOfBounds
	}
	card, ok := gs.Board.Get(pos)
	if !ok {
		return ErrNoCard
	}
	player := gs.CurrentPlayer
	if card.Owner != player {
		return ErrNotYourCard
	}
	ps := gs.Player(player)
	if ps.LineBoosts[1-index].Holds(pos) {
		return ErrInvalidTarget
	}

	previous := ps.LineBoosts[index]
	ps.LineBoosts[index] = SlotAt(pos)
	if previous.Valid && previous.Pos != pos {
		gs.syncBoostFlag(player, previous.Pos)
	}
	gs.syncBoostFlag(player, pos)
	return nil
}

// UseLineBoostDetach frees slot index.
func (gs *GameState) UseLineBoostDetach(index int) error {
	if err := gs.requireAction(index); err != nil {
		return err
	}
	player := gs.CurrentPlayer
	ps := gs.Player(player)
	slot := ps.LineBoosts[index]
	if !slot.Valid {
		return ErrInvalidTarget
	}
	ps.LineBoosts[index] = Slot{}
	gs.syncBoostFlag(player, slot.Pos)
	return nil
}

// UseVirusCheck reveals an unrevealed opponent card. Each slot works once.
func (gs *GameState) UseVirusCheck(index int, pos Position) error {
	if err := gs.requireAction(index); err != nil {
		return err
	}
	player := gs.CurrentPlayer
	ps := gs.Player(player)
	if ps.VirusChecksUsed[index] {
		return ErrTerminalCardUsed
	}
	if !pos.InBounds() {
		return ErrOutOfBounds
	}
	card, ok := gs.Board.Get(pos)
	if !ok {
		return ErrNoCard
	}
	if card.Owner == player || card.Revealed {
		return ErrInvalidTarget
	}

	card.Revealed = true
	gs.Board.Set(pos, card)
	ps.VirusChecksUsed[index] = true
	return nil
}

// UseFirewallPlace puts the firewall of an unused slot on a free, non-exit
// cell.
func (gs *GameState) UseFirewallPlace(index int, pos Position) error {
	if err := gs.requireAction(index); err != nil {
		return err
	}
	if !pos.InBounds() {
		return ErrOutOfBounds
	}
	if IsExit(pos) {
		return ErrFirewallOnExit
	}
	player := gs.CurrentPlayer
	ps := gs.Player(player)
	if ps.Firewalls[index].Valid || gs.Board.Firewall(pos) != NoPlayer {
		return ErrInvalidTarget
	}

	ps.Firewalls[index] = SlotAt(pos)
	gs.Board.SetFirewall(pos, player)
	return nil
}

// UseFirewallRemove lifts the firewall held by slot index, if any.
func (gs *GameState) UseFirewallRemove(index int) error {
	if err := gs.requireAction(index); err != nil {
		return err
	}
	ps := gs.Player(gs.CurrentPlayer)
	if slot := ps.Firewalls[index]; slot.Valid {
		gs.Board.ClearFirewall(slot.Pos)
	}
	ps.Firewalls[index] = Slot{}
	return nil
}

// Use404 hides two of the current player's cards again and optionally swaps
// them. Line boosts travel with the swapped cards and the flags of both cells
// are recomputed from the slots afterwards.
func (gs *GameState) Use404(index int, first, second Position, swap bool) error {
	if err := gs.requireAction(index); err != nil {
		return err
	}
	player := gs.CurrentPlayer
	ps := gs.Player(player)
	if ps.NotFoundUsed[index] {
		return ErrTerminalCardUsed
	}
	if !first.InBounds() || !second.InBounds() {
		return ErrOutOfBounds
	}
	if first == second {
		return ErrInvalidTarget
	}
	a, okA := gs.Board.Get(first)
	b, okB := gs.Board.Get(second)
	if !okA || !okB {
		return ErrNoCard
	}
	if a.Owner != player || b.Owner != player {
		return ErrNotYourCard
	}

	a.Revealed = false
	b.Revealed = false
	if swap {
		a, b = b, a
		for i, slot := range ps.LineBoosts {
			switch {
			case slot.Holds(first):
				ps.LineBoosts[i] = SlotAt(second)
			case slot.Holds(second):
				ps.LineBoosts[i] = SlotAt(first)
			}
		}
	}
	gs.Board.Set(first, a)
	gs.Board.Set(second, b)
	gs.syncBoostFlag(player, first)
	gs.syncBoostFlag(player, second)

	ps.NotFoundUsed[index] = true
	return nil
}
