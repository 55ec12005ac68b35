package server

import (
	"bytes"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"rainet/communication"
	"rainet/game"
	"rainet/gamemaster"
	"rainet/player"
	"rainet/protocol"
)

// session is the server side of one connection. Its fields are only touched
// by the goroutine running run; the forwarder only writes to conn.
type session struct {
	gm   *gamemaster.GameMaster
	conn communication.Conn

	clientID string
	name     string
	match    *gamemaster.Match
	role     protocol.Role
	updates  <-chan gamemaster.Update
	done     chan struct{} // closed when the forwarder exits
}

func newSession(gm *gamemaster.GameMaster, conn communication.Conn) *session {
	return &session{gm: gm, conn: conn, role: protocol.RoleLobby}
}

// run reads commands until the connection fails. A clean EOF returns nil.
func (s *session) run() error {
	for {
		line, err := s.conn.ReadLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		cmd, err := protocol.ParseCommand(line)
		if err == nil {
			err = s.handle(cmd)
		}
		if err != nil {
			code := gamemaster.ErrorCode(err)
			log.Debug().Str("client", s.clientID).Err(err).Msgf("rejected %q with %s", line, code)
			if werr := s.conn.Write(protocol.FormatError(code) + "\n"); werr != nil {
				return werr
			}
		}
	}
}

func (s *session) handle(cmd protocol.Command) error {
	if cmd.Kind != protocol.HelloCommand && s.name == "" {
		return gamemaster.ErrNameRequired
	}

	switch cmd.Kind {
	case protocol.HelloCommand:
		if s.match != nil {
			return gamemaster.ErrInRoom
		}
		s.name = cmd.Name
		s.clientID = cmd.ClientID
		if s.clientID == "" {
			s.clientID = uuid.NewString()
		}
		log.Info().Str("client", s.clientID).Msgf("hello %s", s.name)
		if err := s.conn.Write(protocol.FormatRole(protocol.RoleLobby) + "\n"); err != nil {
			return err
		}
		return s.sendRooms()
	case protocol.ListCommand:
		return s.sendRooms()
	case protocol.CreateCommand:
		if s.match != nil {
			return gamemaster.ErrInRoom
		}
		m, err := s.gm.Create(cmd.Name)
		if err != nil {
			return err
		}
		return s.join(m.ID)
	case protocol.JoinCommand:
		if s.match != nil {
			return gamemaster.ErrInRoom
		}
		return s.join(cmd.RoomID)
	case protocol.SpectateCommand:
		if s.match != nil {
			return gamemaster.ErrInRoom
		}
		m, updates, err := s.gm.Spectate(cmd.RoomID, s.clientID, s.name)
		if err != nil {
			return err
		}
		return s.attach(m, protocol.RoleSpectator, updates)
	case protocol.LeaveCommand:
		if s.match == nil {
			return gamemaster.ErrNotInRoom
		}
		s.leave()
		if err := s.conn.Write(protocol.FormatRole(protocol.RoleLobby) + "\n"); err != nil {
			return err
		}
		return s.sendRooms()
	case protocol.OpCommand:
		if s.match == nil {
			return gamemaster.ErrNotInRoom
		}
		_, err := s.match.Apply(s.clientID, cmd.Action)
		return err
	}
	return nil
}

func (s *session) join(roomID string) error {
	m, seat, updates, err := s.gm.Join(roomID, s.clientID, s.name)
	if err != nil {
		return err
	}
	return s.attach(m, protocol.RoleFor(seat), updates)
}

// attach announces the role and starts forwarding snapshots. The join
// already queued the first one.
func (s *session) attach(m *gamemaster.Match, role protocol.Role, updates <-chan gamemaster.Update) error {
	s.match = m
	s.role = role
	s.updates = updates
	if err := s.conn.Write(protocol.FormatRole(role) + "\n"); err != nil {
		return err
	}
	s.done = make(chan struct{})
	go s.forward(updates, role.Seat(), s.done)
	return nil
}

// forward writes a snapshot, redacted for seat, for every update until the
// channel closes.
func (s *session) forward(updates <-chan gamemaster.Update, seat game.PlayerID, done chan struct{}) {
	defer close(done)
	var buf bytes.Buffer
	for u := range updates {
		buf.Reset()
		if err := protocol.EncodeState(&buf, player.Redact(u.State, seat), u.Names); err != nil {
			log.Error().Err(err).Msg("encode snapshot")
			continue
		}
		if err := s.conn.Write(buf.String()); err != nil {
			log.Debug().Err(err).Str("client", s.clientID).Msg("snapshot not delivered")
		}
	}
}

// leave detaches from the current room, if any, and waits for the forwarder
// to flush. When a newer connection of the same client took the seat over,
// the forwarder has already stopped and the room is left alone.
func (s *session) leave() {
	if s.match == nil {
		return
	}
	s.gm.Leave(s.match.ID, s.clientID, s.updates)
	<-s.done
	s.match = nil
	s.updates = nil
	s.role = protocol.RoleLobby
}

func (s *session) sendRooms() error {
	var buf bytes.Buffer
	if err := protocol.EncodeRooms(&buf, s.gm.Rooms()); err != nil {
		return err
	}
	return s.conn.Write(buf.String())
}
