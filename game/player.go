package game

// CardsPerKind is how many Link and Virus cards each player deploys.
const CardsPerKind = 4

// PlayerState holds the resources of one player.
type PlayerState struct {
	ID              PlayerID
	LinkStack       []Card  // resolved Link-side cards, append-only
	VirusStack      []Card  // resolved Virus-side cards, append-only
	LineBoosts      [2]Slot // positions carrying this player's line boosts
	Firewalls       [2]Slot // positions of this player's firewalls
	VirusChecksUsed [2]bool
	NotFoundUsed    [2]bool
	LinksLeft       int // setup cards still to place
	VirusesLeft     int
	Placed          int
}

func NewPlayerState(id PlayerID) PlayerState {
	return PlayerState{
		ID:          id,
		LinkStack:   []Card{},
		VirusStack:  []Card{},
		LinksLeft:   CardsPerKind,
		VirusesLeft: CardsPerKind,
	}
}

// AddToStack appends a card to the chosen stack.
func (ps *PlayerState) AddToStack(card Card, stack StackChoice) {
	if stack == VirusStack {
		ps.VirusStack = append(ps.VirusStack, card)
		return
	}
	ps.LinkStack = append(ps.LinkStack, card)
}

// boostedAt reports whether one of the player's line boosts sits on pos.
func (ps *PlayerState) boostedAt(pos Position) bool {
	for _, slot := range ps.LineBoosts {
		if slot.Holds(pos) {
			return true
		}
	}
	return false
}

func (ps PlayerState) copy() PlayerState {
	out := ps
	out.LinkStack = append([]Card{}, ps.LinkStack...)
	out.VirusStack = append([]Card{}, ps.VirusStack...)
	return out
}
