package game

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func fill(stack *[]Card, n int, owner PlayerID, kind CardKind) {
	for i := 0; i < n; i++ {
		*stack = append(*stack, Card{Kind: kind, Owner: owner, Revealed: true})
	}
}

func TestEndTurn(t *testing.T) {
	t.Run("hands the turn over", func(t *testing.T) {
		gs := playing()
		gs.EndTurn()
		require.Equal(t, P2, gs.CurrentPlayer)
		gs.EndTurn()
		require.Equal(t, P1, gs.CurrentPlayer)
	})

	t.Run("no-op outside playing", func(t *testing.T) {
		gs := NewGameState()
		before := gs.Copy()
		gs.EndTurn()
		require.Equal(t, before, gs)
	})

	t.Run("game over freezes the state", func(t *testing.T) {
		gs := playing()
		put(gs, Pos(3, 3), P1, Link)
		fill(&gs.Player2.LinkStack, WinThreshold, P1, Link)

		gs.EndTurn()
		require.Equal(t, GameOver(P2), gs.Phase)
		require.Equal(t, P2, gs.Winner())
		require.Equal(t, P1, gs.CurrentPlayer)

		before := gs.Copy()
		gs.EndTurn()
		_, err := gs.StartMove(Pos(3, 3), Pos(3, 4))
		require.ErrorIs(t, err, ErrNotInPlayingPhase)
		require.ErrorIs(t, gs.UseFirewallPlace(0, Pos(4, 4)), ErrNotInPlayingPhase)
		require.ErrorIs(t, gs.PlaceSetupCard(P1, Pos(0, 0), Link), ErrNotInSetupPhase)
		require.Equal(t, before, gs)
	})
}

func TestCheckWinner(t *testing.T) {
	cases := []struct {
		name            string
		p1Link, p1Virus int
		p2Link, p2Virus int
		want            PlayerID
	}{
		{"nobody", 3, 3, 3, 3, NoPlayer},
		{"p1 links", 4, 0, 0, 0, P1},
		{"p2 viruses", 0, 0, 0, 4, P1},
		{"p2 links", 0, 0, 4, 0, P2},
		{"p1 viruses", 0, 4, 0, 0, P2},
		{"both thresholds favour p1", 4, 0, 0, 4, P1},
		{"p1 wins ties against p2 links", 4, 0, 4, 0, P1},
		{"p1 wins ties against own viruses", 0, 4, 0, 4, P1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gs := playing()
			fill(&gs.Player1.LinkStack, tc.p1Link, P2, Link)
			fill(&gs.Player1.VirusStack, tc.p1Virus, P2, Virus)
			fill(&gs.Player2.LinkStack, tc.p2Link, P1, Link)
			fill(&gs.Player2.VirusStack, tc.p2Virus, P1, Virus)
			require.Equal(t, tc.want, gs.CheckWinner())
		})
	}

	t.Run("end turn declares p1 on simultaneous thresholds", func(t *testing.T) {
		gs := playing()
		gs.CurrentPlayer = P2
		fill(&gs.Player1.LinkStack, 4, P2, Link)
		fill(&gs.Player2.VirusStack, 4, P1, Virus)
		gs.EndTurn()
		require.Equal(t, GameOver(P1), gs.Phase)
	})
}

func TestBoundsSafety(t *testing.T) {
	gs := playing()
	put(gs, Pos(7, 7), P1, Link)
	put(gs, Pos(6, 6), P1, Virus)
	before := gs.Copy()

	for _, pos := range []Position{Pos(8, 0), Pos(0, 8), Pos(8, 8), Pos(100, 3), Pos(-1, 0)} {
		t.Run(pos.String(), func(t *testing.T) {
			_, err := gs.StartMove(pos, Pos(7, 7))
			require.ErrorIs(t, err, ErrOutOfBounds)
			_, err = gs.StartMove(Pos(7, 7), pos)
			require.ErrorIs(t, err, ErrOutOfBounds)
			require.ErrorIs(t, gs.EnterServerCenter(pos, true, LinkStack), ErrOutOfBounds)
			require.ErrorIs(t, gs.UseLineBoostAttach(0, pos), ErrOutOfBounds)
			require.ErrorIs(t, gs.UseVirusCheck(0, pos), ErrOutOfBounds)
			require.ErrorIs(t, gs.UseFirewallPlace(0, pos), ErrOutOfBounds)
			require.ErrorIs(t, gs.Use404(0, pos, Pos(7, 7), true), ErrOutOfBounds)
			require.ErrorIs(t, gs.Use404(0, Pos(6, 6), pos, false), ErrOutOfBounds)
			require.Equal(t, before, gs)
		})
	}

	setup := NewGameState()
	require.ErrorIs(t, setup.PlaceSetupCard(P1, Pos(8, 1), Virus), ErrOutOfBounds)
	require.ErrorIs(t, setup.RemoveSetupCard(P1, Pos(1, 8)), ErrOutOfBounds)
}

func TestCopy(t *testing.T) {
	gs := playing()
	put(gs, Pos(3, 3), P1, Link)
	fill(&gs.Player1.LinkStack, 2, P2, Link)

	c := gs.Copy()
	require.Equal(t, gs, c)

	c.Player1.LinkStack[0].Revealed = false
	c.Player1.LinkStack = append(c.Player1.LinkStack, Card{})
	c.Board.Clear(Pos(3, 3))
	require.Len(t, gs.Player1.LinkStack, 2)
	require.True(t, gs.Player1.LinkStack[0].Revealed)
	require.True(t, gs.Board.HasOwnCard(Pos(3, 3), P1))
}

func TestHash(t *testing.T) {
	gs := playing()
	put(gs, Pos(3, 3), P1, Link)
	require.Equal(t, gs.Hash(), gs.Copy().Hash())

	before := gs.Hash()
	_, err := gs.StartMove(Pos(3, 3), Pos(3, 4))
	require.NoError(t, err)
	require.NotEqual(t, before, gs.Hash())
}

func TestGameError(t *testing.T) {
	for e := ErrOutOfBounds; e <= ErrCannotEnterServerWithBoost; e++ {
		t.Run(e.Code(), func(t *testing.T) {
			require.NotEqual(t, "UNKNOWN", e.Code())
			parsed, ok := ParseGameError(e.Code())
			require.True(t, ok)
			require.Equal(t, e, parsed)

			var err error = fmt.Errorf("wrapped: %w", e)
			var target GameError
			require.True(t, errors.As(err, &target))
			require.Equal(t, e, target)
		})
	}

	_, ok := ParseGameError("NOPE")
	require.False(t, ok)
	require.Equal(t, ExclusivityError, ErrPendingBoostMove.Class())
	require.Equal(t, ResourceError, ErrSetupExhausted.Class())
}
