package client

import (
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"rainet/communication"
	"rainet/game"
	"rainet/protocol"
)

// Client is one protocol connection to a server. Server messages arrive on
// Events in order.
type Client struct {
	ClientID string
	Name     string

	conn   communication.Conn
	events chan protocol.Event
	done   chan struct{}
	once   sync.Once

	mu  sync.Mutex
	err error
}

// Dial connects over "tcp" or "unix" and says hello. An empty clientID gets
// a fresh one; reuse it to take a seat back after a disconnect.
func Dial(network, addr, name, clientID string) (*Client, error) {
	conn, err := net.Dial(network, addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s %s", network, addr)
	}
	return NewClient(communication.NewStreamConn(conn), name, clientID)
}

// DialWebSocket connects to a ws:// or wss:// endpoint.
func DialWebSocket(url, name, clientID string) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}
	return NewClient(communication.NewWebSocketConn(ws), name, clientID)
}

// NewClient starts reading from conn and sends HELLO.
func NewClient(conn communication.Conn, name, clientID string) (*Client, error) {
	if clientID == "" {
		clientID = uuid.NewString()
	}
	c := &Client{
		ClientID: clientID,
		Name:     name,
		conn:     conn,
		events:   make(chan protocol.Event),
		done:     make(chan struct{}),
	}
	go c.read()
	if err := c.Send(protocol.Command{Kind: protocol.HelloCommand, Name: name, ClientID: clientID}); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) read() {
	defer close(c.events)
	scanner := protocol.NewLineScanner(c.conn.ReadLine)
	for {
		ev, err := scanner.Next()
		if err != nil {
			c.fail(err)
			return
		}
		select {
		case c.events <- ev:
		case <-c.done:
			return
		}
	}
}

func (c *Client) fail(err error) {
	select {
	case <-c.done:
		return
	default:
	}
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	log.Debug().Err(err).Str("client", c.ClientID).Msg("connection closed")
}

// Events is closed when the connection ends; Err tells why.
func (c *Client) Events() <-chan protocol.Event {
	return c.events
}

// Err returns the read error that ended the stream, or nil for a clean
// close.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if errors.Is(c.err, io.EOF) {
		return nil
	}
	return c.err
}

func (c *Client) Send(cmd protocol.Command) error {
	return errors.Wrap(c.conn.Write(protocol.FormatCommand(cmd)+"\n"), "send")
}

func (c *Client) SendAction(action game.Action) error {
	return c.Send(protocol.Command{Kind: protocol.OpCommand, Action: action})
}

func (c *Client) List() error {
	return c.Send(protocol.Command{Kind: protocol.ListCommand})
}

// Create opens a room and takes its first seat.
func (c *Client) Create(room string) error {
	return c.Send(protocol.Command{Kind: protocol.CreateCommand, Name: room})
}

func (c *Client) Join(roomID string) error {
	return c.Send(protocol.Command{Kind: protocol.JoinCommand, RoomID: roomID})
}

func (c *Client) Spectate(roomID string) error {
	return c.Send(protocol.Command{Kind: protocol.SpectateCommand, RoomID: roomID})
}

func (c *Client) Leave() error {
	return c.Send(protocol.Command{Kind: protocol.LeaveCommand})
}

// Close ends the connection. Events is closed shortly after.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}
