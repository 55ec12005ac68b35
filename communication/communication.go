package communication

import (
	"bufio"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"rainet/meta"
)

// Conn abstracts the transport under a protocol session. Lines carry no
// trailing newline; Write takes one or more newline-terminated lines.
type Conn interface {
	ReadLine() (string, error)
	Write(text string) error
	Close() error
	RemoteAddr() string
}

type streamConn struct {
	conn    net.Conn
	lines   *bufio.Scanner
	writeMu sync.Mutex
}

// NewStreamConn wraps a TCP or Unix socket.
func NewStreamConn(conn net.Conn) Conn {
	lines := bufio.NewScanner(conn)
	lines.Buffer(make([]byte, 0, 4096), meta.MAX_LINE_LENGTH)
	return &streamConn{conn: conn, lines: lines}
}

func (c *streamConn) ReadLine() (string, error) {
	if !c.lines.Scan() {
		if err := c.lines.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(c.lines.Text(), "\r"), nil
}

func (c *streamConn) Write(text string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := io.WriteString(c.conn, text)
	return err
}

func (c *streamConn) Close() error {
	return c.conn.Close()
}

func (c *streamConn) RemoteAddr() string {
	if addr := c.conn.RemoteAddr(); addr != nil && addr.String() != "" {
		return addr.String()
	}
	return c.conn.LocalAddr().Network()
}

type wsConn struct {
	conn    *websocket.Conn
	pending []string
	writeMu sync.Mutex
}

// NewWebSocketConn wraps a websocket. Every text message holds one or more
// lines.
func NewWebSocketConn(conn *websocket.Conn) Conn {
	conn.SetReadLimit(meta.MAX_LINE_LENGTH)
	return &wsConn{conn: conn}
}

func (c *wsConn) ReadLine() (string, error) {
	for len(c.pending) == 0 {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return "", io.EOF
			}
			return "", err
		}
		if kind != websocket.TextMessage {
			return "", errors.Errorf("unexpected websocket message type %d", kind)
		}
		c.pending = strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	}
	line := c.pending[0]
	c.pending = c.pending[1:]
	return strings.TrimRight(line, "\r"), nil
}

func (c *wsConn) Write(text string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (c *wsConn) Close() error {
	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.conn.WriteMessage(websocket.CloseMessage, msg)
	c.writeMu.Unlock()
	return c.conn.Close()
}

func (c *wsConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
