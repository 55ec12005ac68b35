package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"rainet/game"
)

// Role is what a connection is attached to.
type Role int

const (
	RoleLobby Role = iota
	RolePlayer1
	RolePlayer2
	RoleSpectator
)

var roleNames = map[Role]string{
	RoleLobby:     "LOBBY",
	RolePlayer1:   "P1",
	RolePlayer2:   "P2",
	RoleSpectator: "SPECTATOR",
}

func (r Role) String() string {
	return roleNames[r]
}

// RoleFor maps a seat to its role. NoPlayer is a spectator.
func RoleFor(p game.PlayerID) Role {
	switch p {
	case game.P1:
		return RolePlayer1
	case game.P2:
		return RolePlayer2
	}
	return RoleSpectator
}

// Seat returns the seat of a player role, or NoPlayer.
func (r Role) Seat() game.PlayerID {
	switch r {
	case RolePlayer1:
		return game.P1
	case RolePlayer2:
		return game.P2
	}
	return game.NoPlayer
}

func parseRole(tok string) (Role, error) {
	for role, name := range roleNames {
		if name == tok {
			return role, nil
		}
	}
	return RoleLobby, malformed("bad role %q", tok)
}

// Room is one line of a room listing.
type Room struct {
	ID         string
	Name       string
	Players    int
	Spectators int
}

func FormatRole(r Role) string {
	return "YOU " + r.String()
}

func FormatError(code string) string {
	return "ERROR " + code
}

// EncodeRooms writes a ROOMS block.
func EncodeRooms(w io.Writer, rooms []Room) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ROOMS %d\n", len(rooms))
	for _, r := range rooms {
		fmt.Fprintf(bw, "ROOM %s %d %d %s\n", r.ID, r.Players, r.Spectators, r.Name)
	}
	return bw.Flush()
}

func parseRoom(line string) (Room, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 || fields[0] != "ROOM" {
		return Room{}, malformed("expected ROOM, got %q", line)
	}
	t := &tokens{args: fields[2:4]}
	players, err := t.int()
	if err != nil {
		return Room{}, err
	}
	spectators, err := t.int()
	if err != nil {
		return Room{}, err
	}
	return Room{
		ID:         fields[1],
		Players:    players,
		Spectators: spectators,
		Name:       strings.Join(fields[4:], " "),
	}, nil
}
