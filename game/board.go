package game

// Board stores cards and firewalls. It knows nothing about the rules; callers
// check bounds with InBounds before touching a cell.
type Board struct {
	Cards     [BoardSize][BoardSize]Card     // Owner == NoPlayer marks an empty cell
	Firewalls [BoardSize][BoardSize]PlayerID // NoPlayer marks a cell without firewall
}

func (b *Board) InBounds(pos Position) bool {
	return pos.InBounds()
}

// Get returns the card at pos and whether the cell is occupied.
func (b *Board) Get(pos Position) (Card, bool) {
	card := b.Cards[pos.Row][pos.Col]
	return card, card.Owner != NoPlayer
}

func (b *Board) Set(pos Position, card Card) {
	b.Cards[pos.Row][pos.Col] = card
}

func (b *Board) Clear(pos Position) {
	b.Cards[pos.Row][pos.Col] = Card{}
}

func (b *Board) HasOwnCard(pos Position, player PlayerID) bool {
	card, ok := b.Get(pos)
	return ok && card.Owner == player
}

func (b *Board) HasOpponentCard(pos Position, player PlayerID) bool {
	card, ok := b.Get(pos)
	return ok && card.Owner == player.Opponent()
}

// Firewall returns the owner of the firewall at pos, or NoPlayer.
func (b *Board) Firewall(pos Position) PlayerID {
	return b.Firewalls[pos.Row][pos.Col]
}

func (b *Board) SetFirewall(pos Position, owner PlayerID) {
	b.Firewalls[pos.Row][pos.Col] = owner
}

func (b *Board) ClearFirewall(pos Position) {
	b.Firewalls[pos.Row][pos.Col] = NoPlayer
}
