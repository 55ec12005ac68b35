package gamemaster

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"rainet/game"
	"rainet/meta"
	"rainet/metrics"
	"rainet/protocol"
)

type UpdateKind int

const (
	// PresenceUpdate follows a join or leave; the state is unchanged.
	PresenceUpdate UpdateKind = iota
	ActionUpdate
)

// Update is what subscribers of a match receive after every change.
type Update struct {
	Kind   UpdateKind
	Step   int
	Actor  game.PlayerID
	Action game.Action
	State  *game.GameState // private copy
	Hash   game.StateHash
	Names  [2]string
}

type seat struct {
	clientID  string
	name      string
	connected bool
}

// Match owns one game. All access to the state goes through its mutex, so
// every operation is applied atomically with respect to the others.
type Match struct {
	ID   string
	Name string

	mu          sync.Mutex
	state       *game.GameState
	seats       [2]seat
	spectators  map[string]string // client id -> name
	subscribers map[string]chan Update
	recorder    metrics.Recorder
	record      metrics.MatchRecord
}

func NewMatch(id, name string, recorder metrics.Recorder) *Match {
	if recorder == nil {
		recorder = metrics.NewDummyCollector()
	}
	return &Match{
		ID:          id,
		Name:        name,
		state:       game.NewGameState(),
		spectators:  make(map[string]string),
		subscribers: make(map[string]chan Update),
		recorder:    recorder,
		record:      metrics.MatchRecord{ID: id, Room: name, StartTime: time.Now()},
	}
}

// Join seats a client. A client id already holding a seat takes it back,
// otherwise the first free seat is given.
func (m *Match) Join(clientID, name string) (game.PlayerID, <-chan Update, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	player := m.seatOf(clientID)
	if player == game.NoPlayer {
		for i := range m.seats {
			if m.seats[i].clientID == "" {
				player = game.PlayerID(i + 1)
				break
			}
		}
	}
	if player == game.NoPlayer {
		return game.NoPlayer, nil, ErrRoomFull
	}

	m.seats[player-1] = seat{clientID: clientID, name: name, connected: true}
	delete(m.spectators, clientID)
	ch := m.subscribe(clientID)
	log.Info().Str("room", m.ID).Msgf("%s joined as %s", name, player)
	m.publish(m.update(PresenceUpdate))
	return player, ch, nil
}

// Spectate attaches a read-only client.
func (m *Match) Spectate(clientID, name string) (<-chan Update, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.seatOf(clientID) != game.NoPlayer {
		return nil, ErrInRoom
	}
	m.spectators[clientID] = name
	ch := m.subscribe(clientID)
	log.Info().Str("room", m.ID).Msgf("%s is spectating", name)
	m.publish(m.update(PresenceUpdate))
	return ch, nil
}

// Leave detaches a client and closes its update channel. updates must be
// the channel the client got from Join or Spectate; a stale one, replaced by
// a later join of the same client, is ignored. A seat whose player has not
// placed any card is released, otherwise it is kept for reconnection.
func (m *Match) Leave(clientID string, updates <-chan Update) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.subscribers[clientID]
	if !ok || (<-chan Update)(ch) != updates {
		return
	}
	close(ch)
	delete(m.subscribers, clientID)

	if player := m.seatOf(clientID); player != game.NoPlayer {
		if m.state.Phase.Kind == game.SetupPhase && m.state.Player(player).Placed == 0 {
			m.seats[player-1] = seat{}
		} else {
			m.seats[player-1].connected = false
		}
		log.Info().Str("room", m.ID).Msgf("%s left", player)
	}
	delete(m.spectators, clientID)
	m.publish(m.update(PresenceUpdate))
}

// Empty reports whether nobody is attached any more.
func (m *Match) Empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers) == 0
}

// Counts returns the number of connected players and spectators.
func (m *Match) Counts() (players, spectators int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.seats {
		if s.connected {
			players++
		}
	}
	return players, len(m.spectators)
}

// Snapshot returns the current state without changing anything.
func (m *Match) Snapshot() Update {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.update(PresenceUpdate)
}

// Record returns the record so far, summarized against the current state.
func (m *Match) Record() metrics.MatchRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.record
	r.Actions = append([]metrics.ActionRecord(nil), m.record.Actions...)
	r.Players = m.names()
	if r.EndTime.IsZero() {
		r.EndTime = time.Now()
	}
	r.Summarize(m.state)
	return r
}

// Apply runs one action for the client. Terminal slots are picked for the
// player and the turn ends after every committed action except a move that
// may continue.
func (m *Match) Apply(clientID string, action game.Action) (Update, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	player := m.seatOf(clientID)
	if player == game.NoPlayer {
		return Update{}, ErrNotSeated
	}
	gs := m.state
	if gs.Phase.Kind != game.SetupPhase && player != gs.CurrentPlayer {
		return Update{}, ErrNotYourTurn
	}

	endTurn, err := m.dispatch(player, action)
	if err != nil {
		log.Debug().Str("room", m.ID).Err(err).Msgf("%s rejected %s", player, action.Type)
		return Update{}, err
	}
	if endTurn {
		gs.EndTurn()
	}

	m.record.TotalActions++
	u := m.update(ActionUpdate)
	u.Actor = player
	u.Action = action
	m.record.Actions = append(m.record.Actions, metrics.ActionRecord{
		Step:   u.Step,
		Player: player,
		Action: protocol.FormatAction(action),
		Hash:   u.Hash,
	})
	log.Debug().Str("room", m.ID).Msgf("%s played %s (hash %x)", player, action.Type, uint64(u.Hash))

	if gs.Phase.Kind == game.GameOverPhase {
		m.finish()
	}
	m.publish(u)
	return u, nil
}

// dispatch calls into the engine and reports whether the turn ends.
func (m *Match) dispatch(player game.PlayerID, a game.Action) (bool, error) {
	gs := m.state
	ps := gs.Player(player)

	switch a.Type {
	case game.SetupAction:
		return false, gs.PlaceSetupCard(player, a.From, a.Kind)
	case game.RemoveAction:
		return false, gs.RemoveSetupCard(player, a.From)
	case game.MoveAction:
		outcome, err := gs.StartMove(a.From, a.To)
		return outcome == game.TurnEnds, err
	case game.BoostAction:
		_, err := gs.ContinueBoostMove(a.From, a.To)
		return true, err
	case game.EnterAction:
		return true, gs.EnterServerCenter(a.From, a.Reveal, a.Stack)
	case game.LineBoostAttachAction:
		return true, gs.UseLineBoostAttach(freeSlot(ps.LineBoosts), a.From)
	case game.LineBoostDetachAction:
		index, ok := slotHolding(ps.LineBoosts, a.From)
		if !ok {
			return false, game.ErrInvalidTarget
		}
		return true, gs.UseLineBoostDetach(index)
	case game.VirusCheckAction:
		return true, gs.UseVirusCheck(unusedCard(ps.VirusChecksUsed), a.From)
	case game.FirewallPlaceAction:
		return true, gs.UseFirewallPlace(freeSlot(ps.Firewalls), a.From)
	case game.FirewallRemoveAction:
		index, ok := slotHolding(ps.Firewalls, a.From)
		if !ok {
			return false, game.ErrInvalidTarget
		}
		return true, gs.UseFirewallRemove(index)
	case game.NotFoundAction:
		return true, gs.Use404(unusedCard(ps.NotFoundUsed), a.From, a.To, a.Swap)
	case game.EndTurnAction:
		if gs.Phase.Kind != game.PlayingPhase {
			return false, game.ErrNotInPlayingPhase
		}
		return true, nil
	}
	return false, game.ErrInvalidTarget
}

// freeSlot returns the first empty slot. With none free, slot 0 is returned
// and the engine reports the conflict.
func freeSlot(slots [2]game.Slot) int {
	for i, s := range slots {
		if !s.Valid {
			return i
		}
	}
	return 0
}

func slotHolding(slots [2]game.Slot, pos game.Position) (int, bool) {
	for i, s := range slots {
		if s.Holds(pos) {
			return i, true
		}
	}
	return 0, false
}

func unusedCard(used [2]bool) int {
	for i, u := range used {
		if !u {
			return i
		}
	}
	return 0
}

func (m *Match) seatOf(clientID string) game.PlayerID {
	if clientID == "" {
		return game.NoPlayer
	}
	for i, s := range m.seats {
		if s.clientID == clientID {
			return game.PlayerID(i + 1)
		}
	}
	return game.NoPlayer
}

func (m *Match) names() [2]string {
	return [2]string{m.seats[0].name, m.seats[1].name}
}

func (m *Match) update(kind UpdateKind) Update {
	return Update{
		Kind:  kind,
		Step:  m.record.TotalActions,
		State: m.state.Copy(),
		Hash:  m.state.Hash(),
		Names: m.names(),
	}
}

func (m *Match) subscribe(clientID string) <-chan Update {
	if old, ok := m.subscribers[clientID]; ok {
		close(old)
	}
	ch := make(chan Update, meta.UPDATE_BUFFER)
	m.subscribers[clientID] = ch
	return ch
}

// publish hands u to every subscriber. A subscriber that fell behind loses
// its oldest pending update; snapshots are complete so only the latest
// matters.
func (m *Match) publish(u Update) {
	for id, ch := range m.subscribers {
		select {
		case ch <- u:
			continue
		default:
		}
		// only publish sends, and it holds the lock, so one receive frees a slot
		select {
		case <-ch:
			log.Warn().Str("room", m.ID).Msgf("subscriber %s is lagging, dropped an update", id)
		default:
		}
		select {
		case ch <- u:
		default:
		}
	}
}

func (m *Match) finish() {
	m.record.EndTime = time.Now()
	m.record.Players = m.names()
	m.record.Summarize(m.state)
	log.Info().Str("room", m.ID).Msgf("game over, %s wins after %d actions", m.record.Winner, m.record.TotalActions)
	m.recorder.Record(m.record)
}
