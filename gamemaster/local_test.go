package gamemaster

import (
	"testing"

	"github.com/stretchr/testify/require"

	"rainet/game"
	"rainet/metrics"
)

func setupAction(kind game.CardKind, pos game.Position) game.Action {
	return game.Action{Type: game.SetupAction, Kind: kind, From: pos}
}

func move(from, to game.Position) game.Action {
	return game.Action{Type: game.MoveAction, From: from, To: to}
}

// seatedMatch returns a match with alice on P1 and bob on P2.
func seatedMatch(t *testing.T, recorder metrics.Recorder) *Match {
	t.Helper()
	m := NewMatch("room-1", "test room", recorder)
	p, _, err := m.Join("alice-id", "alice")
	require.NoError(t, err)
	require.Equal(t, game.P1, p)
	p, _, err = m.Join("bob-id", "bob")
	require.NoError(t, err)
	require.Equal(t, game.P2, p)
	return m
}

// playingMatch deploys Links on the first four setup cells of both players.
func playingMatch(t *testing.T, recorder metrics.Recorder) *Match {
	t.Helper()
	m := seatedMatch(t, recorder)
	deployVia(t, m, "alice-id", game.P1)
	deployVia(t, m, "bob-id", game.P2)
	require.Equal(t, game.Playing(), m.Snapshot().State.Phase)
	return m
}

func deployVia(t *testing.T, m *Match, client string, player game.PlayerID) {
	t.Helper()
	for i, pos := range player.SetupPositions() {
		kind := game.Link
		if i >= game.CardsPerKind {
			kind = game.Virus
		}
		_, err := m.Apply(client, setupAction(kind, pos))
		require.NoError(t, err)
	}
}

func TestMatchJoin(t *testing.T) {
	t.Run("seats fill in order", func(t *testing.T) {
		m := seatedMatch(t, nil)
		_, _, err := m.Join("carol-id", "carol")
		require.ErrorIs(t, err, ErrRoomFull)

		players, spectators := m.Counts()
		require.Equal(t, 2, players)
		require.Zero(t, spectators)
		require.Equal(t, [2]string{"alice", "bob"}, m.Snapshot().Names)
	})

	t.Run("reconnect takes the seat back", func(t *testing.T) {
		m := seatedMatch(t, nil)
		_, err := m.Apply("alice-id", setupAction(game.Link, game.Pos(0, 0)))
		require.NoError(t, err)
		leave(m, "alice-id")

		players, _ := m.Counts()
		require.Equal(t, 1, players)
		_, _, err = m.Join("carol-id", "carol")
		require.ErrorIs(t, err, ErrRoomFull, "seat is held for reconnection")

		p, _, err := m.Join("alice-id", "alice2")
		require.NoError(t, err)
		require.Equal(t, game.P1, p)
		require.Equal(t, "alice2", m.Snapshot().Names[0])
	})

	t.Run("untouched seat is released", func(t *testing.T) {
		m := seatedMatch(t, nil)
		leave(m, "bob-id")
		p, _, err := m.Join("carol-id", "carol")
		require.NoError(t, err)
		require.Equal(t, game.P2, p)
	})

	t.Run("rejoining replaces the update channel", func(t *testing.T) {
		m := NewMatch("r", "r", nil)
		_, first, err := m.Join("alice-id", "alice")
		require.NoError(t, err)
		_, second, err := m.Join("alice-id", "alice")
		require.NoError(t, err)

		for range first {
		}
		u := <-second
		require.Equal(t, PresenceUpdate, u.Kind)

		m.Leave("alice-id", first)
		players, _ := m.Counts()
		require.Equal(t, 1, players, "stale leave is ignored")
		require.False(t, m.Empty())

		m.Leave("alice-id", second)
		require.True(t, m.Empty())
	})

	t.Run("spectators", func(t *testing.T) {
		m := seatedMatch(t, nil)
		updates, err := m.Spectate("eve-id", "eve")
		require.NoError(t, err)
		_, spectators := m.Counts()
		require.Equal(t, 1, spectators)

		u := <-updates
		require.Equal(t, PresenceUpdate, u.Kind)
		require.Equal(t, [2]string{"alice", "bob"}, u.Names)

		_, err = m.Apply("eve-id", setupAction(game.Link, game.Pos(0, 0)))
		require.ErrorIs(t, err, ErrNotSeated)

		_, err = m.Spectate("alice-id", "alice")
		require.ErrorIs(t, err, ErrInRoom)

		m.Leave("eve-id", updates)
		_, ok := <-drain(updates)
		require.False(t, ok)
	})

	t.Run("empty once everyone left", func(t *testing.T) {
		m := seatedMatch(t, nil)
		require.False(t, m.Empty())
		leave(m, "alice-id")
		leave(m, "bob-id")
		require.True(t, m.Empty())
	})
}

// leave detaches clientID through its current subscription.
func leave(m *Match, clientID string) {
	m.mu.Lock()
	ch := m.subscribers[clientID]
	m.mu.Unlock()
	m.Leave(clientID, ch)
}

// drain discards buffered updates and returns the channel for a final read.
func drain(ch <-chan Update) <-chan Update {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return ch
			}
		default:
			return ch
		}
	}
}

func TestMatchApply(t *testing.T) {
	t.Run("setup is open to both seats", func(t *testing.T) {
		m := seatedMatch(t, nil)
		_, err := m.Apply("bob-id", setupAction(game.Link, game.Pos(7, 0)))
		require.ErrorIs(t, err, game.ErrSetupNotCurrentPlayer)

		_, err = m.Apply("stranger", setupAction(game.Link, game.Pos(0, 0)))
		require.ErrorIs(t, err, ErrNotSeated)
	})

	t.Run("turn order while playing", func(t *testing.T) {
		m := playingMatch(t, nil)
		before := m.Snapshot().Hash

		_, err := m.Apply("bob-id", move(game.Pos(6, 3), game.Pos(5, 3)))
		require.ErrorIs(t, err, ErrNotYourTurn)
		require.Equal(t, before, m.Snapshot().Hash)

		u, err := m.Apply("alice-id", move(game.Pos(1, 3), game.Pos(2, 3)))
		require.NoError(t, err)
		require.Equal(t, ActionUpdate, u.Kind)
		require.Equal(t, game.P1, u.Actor)
		require.Equal(t, game.P2, u.State.CurrentPlayer, "plain move ends the turn")
		require.Equal(t, u.State.Hash(), u.Hash)
	})

	t.Run("rejections leave the turn alone", func(t *testing.T) {
		m := playingMatch(t, nil)
		_, err := m.Apply("alice-id", move(game.Pos(1, 3), game.Pos(3, 3)))
		require.ErrorIs(t, err, game.ErrNotAdjacent)
		require.Equal(t, game.P1, m.Snapshot().State.CurrentPlayer)
	})

	t.Run("boost chain keeps the turn", func(t *testing.T) {
		m := playingMatch(t, nil)
		_, err := m.Apply("alice-id", game.Action{Type: game.LineBoostAttachAction, From: game.Pos(1, 3)})
		require.NoError(t, err)
		_, err = m.Apply("bob-id", game.Action{Type: game.EndTurnAction})
		require.NoError(t, err)

		u, err := m.Apply("alice-id", move(game.Pos(1, 3), game.Pos(2, 3)))
		require.NoError(t, err)
		require.Equal(t, game.P1, u.State.CurrentPlayer)
		require.True(t, u.State.PendingBoost.Holds(game.Pos(2, 3)))

		u, err = m.Apply("alice-id", game.Action{Type: game.BoostAction, From: game.Pos(2, 3), To: game.Pos(3, 3)})
		require.NoError(t, err)
		require.Equal(t, game.P2, u.State.CurrentPlayer)
		require.False(t, u.State.PendingBoost.Valid)
		require.Equal(t, game.SlotAt(game.Pos(3, 3)), u.State.Player1.LineBoosts[0])
	})

	t.Run("terminal slots are picked for the player", func(t *testing.T) {
		m := playingMatch(t, nil)
		pass := func() {
			_, err := m.Apply("bob-id", game.Action{Type: game.EndTurnAction})
			require.NoError(t, err)
		}

		_, err := m.Apply("alice-id", game.Action{Type: game.FirewallPlaceAction, From: game.Pos(4, 4)})
		require.NoError(t, err)
		pass()
		u, err := m.Apply("alice-id", game.Action{Type: game.FirewallPlaceAction, From: game.Pos(4, 5)})
		require.NoError(t, err)
		require.Equal(t, [2]game.Slot{game.SlotAt(game.Pos(4, 4)), game.SlotAt(game.Pos(4, 5))}, u.State.Player1.Firewalls)
		pass()

		_, err = m.Apply("alice-id", game.Action{Type: game.FirewallPlaceAction, From: game.Pos(4, 6)})
		require.ErrorIs(t, err, game.ErrInvalidTarget, "both firewalls are down")
		_, err = m.Apply("alice-id", game.Action{Type: game.FirewallRemoveAction, From: game.Pos(3, 3)})
		require.ErrorIs(t, err, game.ErrInvalidTarget)

		u, err = m.Apply("alice-id", game.Action{Type: game.FirewallRemoveAction, From: game.Pos(4, 5)})
		require.NoError(t, err)
		require.Equal(t, [2]game.Slot{game.SlotAt(game.Pos(4, 4)), {}}, u.State.Player1.Firewalls)
		pass()

		u, err = m.Apply("alice-id", game.Action{Type: game.VirusCheckAction, From: game.Pos(7, 0)})
		require.NoError(t, err)
		require.Equal(t, [2]bool{true, false}, u.State.Player1.VirusChecksUsed)
		pass()
		u, err = m.Apply("alice-id", game.Action{Type: game.VirusCheckAction, From: game.Pos(7, 1)})
		require.NoError(t, err)
		require.Equal(t, [2]bool{true, true}, u.State.Player1.VirusChecksUsed)
		pass()
		_, err = m.Apply("alice-id", game.Action{Type: game.VirusCheckAction, From: game.Pos(7, 2)})
		require.ErrorIs(t, err, game.ErrTerminalCardUsed)

		u, err = m.Apply("alice-id", game.Action{Type: game.NotFoundAction, From: game.Pos(0, 0), To: game.Pos(0, 1), Swap: true})
		require.NoError(t, err)
		require.Equal(t, [2]bool{true, false}, u.State.Player1.NotFoundUsed)
		pass()

		_, err = m.Apply("alice-id", game.Action{Type: game.LineBoostAttachAction, From: game.Pos(0, 0)})
		require.NoError(t, err)
		pass()
		_, err = m.Apply("alice-id", game.Action{Type: game.LineBoostDetachAction, From: game.Pos(0, 1)})
		require.ErrorIs(t, err, game.ErrInvalidTarget)
		u, err = m.Apply("alice-id", game.Action{Type: game.LineBoostDetachAction, From: game.Pos(0, 0)})
		require.NoError(t, err)
		require.Equal(t, [2]game.Slot{}, u.State.Player1.LineBoosts)
	})

	t.Run("end turn outside play", func(t *testing.T) {
		m := seatedMatch(t, nil)
		_, err := m.Apply("alice-id", game.Action{Type: game.EndTurnAction})
		require.ErrorIs(t, err, game.ErrNotInPlayingPhase)
	})

	t.Run("subscribers see every commit", func(t *testing.T) {
		m := NewMatch("r", "r", nil)
		_, alice, err := m.Join("alice-id", "alice")
		require.NoError(t, err)
		_, bob, err := m.Join("bob-id", "bob")
		require.NoError(t, err)
		drain(alice)
		drain(bob)

		u, err := m.Apply("alice-id", setupAction(game.Virus, game.Pos(0, 0)))
		require.NoError(t, err)
		for _, ch := range []<-chan Update{alice, bob} {
			got := <-ch
			require.Equal(t, u.Hash, got.Hash)
			require.Equal(t, 1, got.Step)
			require.Equal(t, game.SetupAction, got.Action.Type)
		}
	})

	t.Run("lagging subscriber keeps the latest update", func(t *testing.T) {
		m := NewMatch("r", "r", nil)
		_, alice, err := m.Join("alice-id", "alice")
		require.NoError(t, err)

		var last Update
		for i := 0; i < 20; i++ {
			_, err = m.Apply("alice-id", setupAction(game.Link, game.Pos(0, 0)))
			require.NoError(t, err)
			last, err = m.Apply("alice-id", game.Action{Type: game.RemoveAction, From: game.Pos(0, 0)})
			require.NoError(t, err)
		}
		require.Len(t, alice, cap(alice))

		var got Update
		for len(alice) > 0 {
			got = <-alice
		}
		require.Equal(t, last.Step, got.Step)
		require.Equal(t, 40, got.Step)
	})
}

func TestMatchRecord(t *testing.T) {
	collector := metrics.NewCollector()
	m := playingMatch(t, collector)

	m.mu.Lock()
	gs := m.state
	for i := 0; i < game.WinThreshold-1; i++ {
		gs.Player1.AddToStack(game.Card{Kind: game.Link, Owner: game.P2, Revealed: true}, game.LinkStack)
	}
	gs.Board.Set(game.Pos(7, 3), game.Card{Kind: game.Link, Owner: game.P1})
	m.mu.Unlock()

	u, err := m.Apply("alice-id", game.Action{Type: game.EnterAction, From: game.Pos(7, 3), Stack: game.LinkStack})
	require.NoError(t, err)
	require.Equal(t, game.GameOver(game.P1), u.State.Phase)

	records := collector.Records()
	require.Len(t, records, 1)
	r := records[0]
	require.Equal(t, "room-1", r.ID)
	require.Equal(t, "test room", r.Room)
	require.Equal(t, [2]string{"alice", "bob"}, r.Players)
	require.Equal(t, game.P1, r.Winner)
	require.Equal(t, 17, r.TotalActions)
	require.Len(t, r.Actions, 17)
	require.Equal(t, "OP ENTER 7 3 0 L", r.Actions[16].Action)
	require.Equal(t, u.Hash, r.Actions[16].Hash)
	require.Equal(t, [2]int{4, 0}, r.LinkStacks)

	_, err = m.Apply("alice-id", game.Action{Type: game.EndTurnAction})
	require.ErrorIs(t, err, game.ErrNotInPlayingPhase)
	require.Len(t, collector.Records(), 1)
}
