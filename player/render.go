package player

import (
	"fmt"
	"strings"

	"rainet/game"
)

// Render draws the board as the viewer sees it. Known cards are L or V,
// upper case for P1 and lower case for P2; a card of unknown kind is ?,
// an empty firewalled cell is #, an empty exit is = and other empty cells
// are dots. Boosted cards are followed by +.
func (v View) Render(names [2]string) string {
	var b strings.Builder
	gs := v.State
	fmt.Fprintf(&b, "%s", gs.Phase)
	if gs.Phase.Kind == game.PlayingPhase {
		fmt.Fprintf(&b, ", %s to move", gs.CurrentPlayer)
		if gs.PendingBoost.Valid {
			fmt.Fprintf(&b, " (boost pending at %s)", gs.PendingBoost.Pos)
		}
	}
	b.WriteString("\n   ")
	for col := 0; col < game.BoardSize; col++ {
		fmt.Fprintf(&b, " %d ", col)
	}
	b.WriteString("\n")
	for row := 0; row < game.BoardSize; row++ {
		fmt.Fprintf(&b, "%d  ", row)
		for col := 0; col < game.BoardSize; col++ {
			b.WriteString(v.cell(game.Pos(row, col)))
		}
		b.WriteString("\n")
	}
	for _, p := range []game.PlayerID{game.P1, game.P2} {
		links, viruses := v.Score(p)
		r := v.Resources(p)
		name := names[p-1]
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(&b, "%s %s: links %d viruses %d, virus checks %d, 404 %d\n",
			p, name, links, viruses, r.VirusChecksLeft, r.NotFoundLeft)
	}
	return b.String()
}

func (v View) cell(pos game.Position) string {
	card, present, known := v.Card(pos)
	if !present {
		switch {
		case v.State.Board.Firewall(pos) != game.NoPlayer:
			return " # "
		case game.IsExit(pos):
			return " = "
		}
		return " . "
	}
	symbol := "?"
	if known {
		symbol = card.Kind.String()[:1]
	}
	if card.Owner == game.P2 {
		symbol = strings.ToLower(symbol)
	}
	if card.Boosted {
		return " " + symbol + "+"
	}
	return " " + symbol + " "
}
