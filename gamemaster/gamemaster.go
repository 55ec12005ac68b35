package gamemaster

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"rainet/game"
	"rainet/metrics"
	"rainet/protocol"
)

// GameMaster keeps the open rooms, each running its own Match.
type GameMaster struct {
	mu       sync.Mutex
	rooms    map[string]*Match
	maxRooms int
	recorder metrics.Recorder
}

// NewGameMaster initializes an empty lobby. Finished matches go to
// recorder, which may be nil.
func NewGameMaster(maxRooms int, recorder metrics.Recorder) *GameMaster {
	return &GameMaster{
		rooms:    make(map[string]*Match),
		maxRooms: maxRooms,
		recorder: recorder,
	}
}

// Create opens a room. Nobody is seated yet.
func (gm *GameMaster) Create(name string) (*Match, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if len(gm.rooms) >= gm.maxRooms {
		return nil, ErrTooManyRooms
	}
	id := uuid.NewString()
	m := NewMatch(id, name, gm.recorder)
	gm.rooms[id] = m
	log.Info().Str("room", id).Msgf("created room %q", name)
	return m, nil
}

// Room looks a room up by id.
func (gm *GameMaster) Room(id string) (*Match, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	m, ok := gm.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return m, nil
}

func (gm *GameMaster) Join(roomID, clientID, name string) (*Match, game.PlayerID, <-chan Update, error) {
	m, err := gm.Room(roomID)
	if err != nil {
		return nil, game.NoPlayer, nil, err
	}
	player, updates, err := m.Join(clientID, name)
	if err != nil {
		return nil, game.NoPlayer, nil, err
	}
	return m, player, updates, nil
}

func (gm *GameMaster) Spectate(roomID, clientID, name string) (*Match, <-chan Update, error) {
	m, err := gm.Room(roomID)
	if err != nil {
		return nil, nil, err
	}
	updates, err := m.Spectate(clientID, name)
	if err != nil {
		return nil, nil, err
	}
	return m, updates, nil
}

// Leave detaches the client from the room and drops the room once nobody is
// left in it. See Match.Leave for updates.
func (gm *GameMaster) Leave(roomID, clientID string, updates <-chan Update) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	m, ok := gm.rooms[roomID]
	if !ok {
		return
	}
	m.Leave(clientID, updates)
	if m.Empty() {
		delete(gm.rooms, roomID)
		log.Info().Str("room", roomID).Msg("closed empty room")
	}
}

// Rooms lists the open rooms ordered by name, then id.
func (gm *GameMaster) Rooms() []protocol.Room {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	rooms := make([]protocol.Room, 0, len(gm.rooms))
	for id, m := range gm.rooms {
		players, spectators := m.Counts()
		rooms = append(rooms, protocol.Room{ID: id, Name: m.Name, Players: players, Spectators: spectators})
	}
	slices.SortFunc(rooms, func(a, b protocol.Room) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return rooms
}
