package player

import (
	"github.com/rs/zerolog/log"

	"rainet/game"
	"rainet/protocol"
)

// Player follows one connection's event stream and keeps the latest
// picture of the game.
type Player struct {
	Name      string
	Role      protocol.Role
	Rooms     []protocol.Room
	Names     [2]string
	View      View
	LastError string
	synced    bool
}

// NewPlayer creates a new Player instance.
func NewPlayer(name string) *Player {
	return &Player{Name: name}
}

// Handle folds one server event into the player.
func (p *Player) Handle(ev protocol.Event) {
	switch ev.Type {
	case protocol.RoleEvent:
		p.Role = ev.Role
		if ev.Role == protocol.RoleLobby {
			p.synced = false
		}
	case protocol.RoomsEvent:
		p.Rooms = ev.Rooms
	case protocol.ErrorEvent:
		p.LastError = ev.Code
		log.Debug().Msgf("%s: server rejected a command with %s", p.Name, ev.Code)
	case protocol.StateEvent:
		p.SyncGameState(ev.State, ev.Names)
	}
}

// SyncGameState replaces the local view with a fresh snapshot.
func (p *Player) SyncGameState(gs *game.GameState, names [2]string) {
	p.View = NewView(gs, p.Role.Seat())
	p.Names = names
	p.LastError = ""
	p.synced = true
}

// Synced reports whether a snapshot arrived since the last room change.
func (p *Player) Synced() bool {
	return p.synced
}

// Seat is the player's seat, or NoPlayer for spectators and the lobby.
func (p *Player) Seat() game.PlayerID {
	return p.Role.Seat()
}
