package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineBoost(t *testing.T) {
	t.Run("attach and detach", func(t *testing.T) {
		gs := playing()
		put(gs, Pos(2, 2), P1, Link)

		require.NoError(t, gs.UseLineBoostAttach(0, Pos(2, 2)))
		require.Equal(t, SlotAt(Pos(2, 2)), gs.Player1.LineBoosts[0])
		card, _ := gs.Board.Get(Pos(2, 2))
		require.True(t, card.Boosted)

		require.NoError(t, gs.UseLineBoostDetach(0))
		require.False(t, gs.Player1.LineBoosts[0].Valid)
		card, _ = gs.Board.Get(Pos(2, 2))
		require.False(t, card.Boosted)
	})

	t.Run("re-attaching moves the boost", func(t *testing.T) {
		gs := playing()
		put(gs, Pos(2, 2), P1, Link)
		put(gs, Pos(2, 3), P1, Virus)

		require.NoError(t, gs.UseLineBoostAttach(1, Pos(2, 2)))
		require.NoError(t, gs.UseLineBoostAttach(1, Pos(2, 3)))

		first, _ := gs.Board.Get(Pos(2, 2))
		second, _ := gs.Board.Get(Pos(2, 3))
		require.False(t, first.Boosted)
		require.True(t, second.Boosted)
	})

	t.Run("rejections", func(t *testing.T) {
		gs := playing()
		put(gs, Pos(2, 2), P1, Link)
		put(gs, Pos(5, 5), P2, Link)
		require.NoError(t, gs.UseLineBoostAttach(0, Pos(2, 2)))
		before := gs.Copy()

		require.ErrorIs(t, gs.UseLineBoostAttach(1, Pos(2, 2)), ErrInvalidTarget)
		require.ErrorIs(t, gs.UseLineBoostAttach(2, Pos(2, 2)), ErrInvalidTarget)
		require.ErrorIs(t, gs.UseLineBoostAttach(-1, Pos(2, 2)), ErrInvalidTarget)
		require.ErrorIs(t, gs.UseLineBoostAttach(1, Pos(5, 5)), ErrNotYourCard)
		require.ErrorIs(t, gs.UseLineBoostAttach(1, Pos(4, 4)), ErrNoCard)
		require.ErrorIs(t, gs.UseLineBoostAttach(1, Pos(2, 8)), ErrOutOfBounds)
		require.ErrorIs(t, gs.UseLineBoostDetach(1), ErrInvalidTarget)
		require.ErrorIs(t, gs.UseLineBoostDetach(5), ErrInvalidTarget)
		require.Equal(t, before, gs)
	})
}

func TestVirusCheck(t *testing.T) {
	t.Run("reveals once per slot", func(t *testing.T) {
		gs := playing()
		put(gs, Pos(5, 5), P2, Virus)
		put(gs, Pos(5, 6), P2, Link)

		require.NoError(t, gs.UseVirusCheck(0, Pos(5, 5)))
		card, _ := gs.Board.Get(Pos(5, 5))
		require.True(t, card.Revealed)
		require.True(t, gs.Player1.VirusChecksUsed[0])
		require.False(t, gs.Player1.VirusChecksUsed[1])

		require.ErrorIs(t, gs.UseVirusCheck(0, Pos(5, 6)), ErrTerminalCardUsed)
		require.NoError(t, gs.UseVirusCheck(1, Pos(5, 6)))
	})

	t.Run("rejections", func(t *testing.T) {
		gs := playing()
		put(gs, Pos(2, 2), P1, Link)
		put(gs, Pos(5, 5), P2, Virus)
		gs.Board.Cards[5][5].Revealed = true
		before := gs.Copy()

		require.ErrorIs(t, gs.UseVirusCheck(0, Pos(2, 2)), ErrInvalidTarget)
		require.ErrorIs(t, gs.UseVirusCheck(0, Pos(5, 5)), ErrInvalidTarget)
		require.ErrorIs(t, gs.UseVirusCheck(0, Pos(4, 4)), ErrNoCard)
		require.ErrorIs(t, gs.UseVirusCheck(0, Pos(-1, 4)), ErrOutOfBounds)
		require.ErrorIs(t, gs.UseVirusCheck(3, Pos(5, 5)), ErrInvalidTarget)
		require.Equal(t, before, gs)
	})
}

func TestFirewall(t *testing.T) {
	t.Run("place and remove", func(t *testing.T) {
		gs := playing()
		require.NoError(t, gs.UseFirewallPlace(1, Pos(4, 4)))
		require.Equal(t, SlotAt(Pos(4, 4)), gs.Player1.Firewalls[1])
		require.Equal(t, P1, gs.Board.Firewall(Pos(4, 4)))

		require.NoError(t, gs.UseFirewallRemove(1))
		require.False(t, gs.Player1.Firewalls[1].Valid)
		require.Equal(t, NoPlayer, gs.Board.Firewall(Pos(4, 4)))

		require.NoError(t, gs.UseFirewallRemove(0), "removing an empty slot is allowed")
	})

	t.Run("firewall may share a cell with a card", func(t *testing.T) {
		gs := playing()
		put(gs, Pos(4, 4), P2, Link)
		require.NoError(t, gs.UseFirewallPlace(0, Pos(4, 4)))
		card, ok := gs.Board.Get(Pos(4, 4))
		require.True(t, ok)
		require.Equal(t, P2, card.Owner)
	})

	t.Run("rejections", func(t *testing.T) {
		gs := playing()
		require.NoError(t, gs.UseFirewallPlace(0, Pos(4, 4)))
		gs.Board.SetFirewall(Pos(3, 3), P2)
		before := gs.Copy()

		require.ErrorIs(t, gs.UseFirewallPlace(0, Pos(4, 5)), ErrInvalidTarget)
		require.ErrorIs(t, gs.UseFirewallPlace(1, Pos(3, 3)), ErrInvalidTarget)
		require.ErrorIs(t, gs.UseFirewallPlace(1, Pos(7, 3)), ErrFirewallOnExit)
		require.ErrorIs(t, gs.UseFirewallPlace(1, Pos(0, 4)), ErrFirewallOnExit)
		require.ErrorIs(t, gs.UseFirewallPlace(1, Pos(8, 8)), ErrOutOfBounds)
		require.ErrorIs(t, gs.UseFirewallPlace(2, Pos(5, 5)), ErrInvalidTarget)
		require.ErrorIs(t, gs.UseFirewallRemove(2), ErrInvalidTarget)
		require.Equal(t, before, gs)
	})
}

func TestUse404(t *testing.T) {
	t.Run("swap moves the boost with the card", func(t *testing.T) {
		gs := playing()
		put(gs, Pos(1, 0), P1, Link)
		put(gs, Pos(1, 1), P1, Virus)
		boost(gs, P1, 0, Pos(1, 0))
		gs.Board.Cards[1][0].Revealed = true
		gs.Board.Cards[1][1].Revealed = true

		require.NoError(t, gs.Use404(0, Pos(1, 0), Pos(1, 1), true))

		first, _ := gs.Board.Get(Pos(1, 0))
		second, _ := gs.Board.Get(Pos(1, 1))
		require.Equal(t, Card{Kind: Virus, Owner: P1}, first)
		require.Equal(t, Card{Kind: Link, Owner: P1, Boosted: true}, second)
		require.Equal(t, SlotAt(Pos(1, 1)), gs.Player1.LineBoosts[0])
		require.True(t, gs.Player1.NotFoundUsed[0])
	})

	t.Run("without swap only hides", func(t *testing.T) {
		gs := playing()
		put(gs, Pos(1, 0), P1, Link)
		put(gs, Pos(1, 1), P1, Virus)
		boost(gs, P1, 1, Pos(1, 1))
		gs.Board.Cards[1][0].Revealed = true

		require.NoError(t, gs.Use404(1, Pos(1, 0), Pos(1, 1), false))

		first, _ := gs.Board.Get(Pos(1, 0))
		second, _ := gs.Board.Get(Pos(1, 1))
		require.Equal(t, Card{Kind: Link, Owner: P1}, first)
		require.Equal(t, Card{Kind: Virus, Owner: P1, Boosted: true}, second)
		require.True(t, gs.Player1.NotFoundUsed[1])
	})

	t.Run("rejections", func(t *testing.T) {
		gs := playing()
		put(gs, Pos(1, 0), P1, Link)
		put(gs, Pos(1, 1), P1, Virus)
		put(gs, Pos(6, 6), P2, Virus)
		gs.Player1.NotFoundUsed[1] = true
		before := gs.Copy()

		require.ErrorIs(t, gs.Use404(1, Pos(1, 0), Pos(1, 1), true), ErrTerminalCardUsed)
		require.ErrorIs(t, gs.Use404(0, Pos(1, 0), Pos(6, 6), true), ErrNotYourCard)
		require.ErrorIs(t, gs.Use404(0, Pos(1, 0), Pos(2, 2), true), ErrNoCard)
		require.ErrorIs(t, gs.Use404(0, Pos(1, 0), Pos(1, 0), true), ErrInvalidTarget)
		require.ErrorIs(t, gs.Use404(0, Pos(1, 0), Pos(1, 8), true), ErrOutOfBounds)
		require.ErrorIs(t, gs.Use404(2, Pos(1, 0), Pos(1, 1), true), ErrInvalidTarget)
		require.Equal(t, before, gs)
	})
}
