package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"rainet/communication"
	"rainet/gamemaster"
	"rainet/meta"
)

// Server accepts protocol clients over TCP, a Unix socket and websockets
// and hands their commands to the game master.
type Server struct {
	cfg meta.Config
	gm  *gamemaster.GameMaster

	upgrader websocket.Upgrader

	mu        sync.Mutex
	listeners []net.Listener
	http      *http.Server
	conns     map[communication.Conn]struct{}
	closed    bool
	wg        sync.WaitGroup
}

func NewServer(cfg meta.Config, gm *gamemaster.GameMaster) *Server {
	return &Server{
		cfg:      cfg,
		gm:       gm,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		conns:    make(map[communication.Conn]struct{}),
	}
}

// Start opens every listener the configuration asks for and serves them in
// the background. Nothing is left open when it fails.
func (s *Server) Start() error {
	var opened []net.Listener
	fail := func(err error) error {
		for _, l := range opened {
			l.Close()
		}
		return err
	}

	if s.cfg.ListenTCP() {
		l, err := net.Listen("tcp", s.cfg.TCPAddr)
		if err != nil {
			return fail(errors.Wrap(err, "listen tcp"))
		}
		opened = append(opened, l)
	}
	if s.cfg.ListenUnix() {
		if err := os.Remove(s.cfg.UnixPath); err != nil && !os.IsNotExist(err) {
			return fail(errors.Wrap(err, "remove stale socket"))
		}
		l, err := net.Listen("unix", s.cfg.UnixPath)
		if err != nil {
			return fail(errors.Wrap(err, "listen unix"))
		}
		opened = append(opened, l)
	}
	var wsListener net.Listener
	if s.cfg.WSAddr != "" {
		l, err := net.Listen("tcp", s.cfg.WSAddr)
		if err != nil {
			return fail(errors.Wrap(err, "listen websocket"))
		}
		wsListener = l
	}

	for _, l := range opened {
		s.Serve(l)
	}
	if wsListener != nil {
		s.mu.Lock()
		s.http = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
		srv := s.http
		s.mu.Unlock()
		log.Info().Msgf("websocket endpoint on ws://%s/ws", wsListener.Addr())
		go func() {
			if err := srv.Serve(wsListener); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("websocket server stopped")
			}
		}()
	}
	return nil
}

// Serve accepts connections from l in the background until the server is
// closed.
func (s *Server) Serve(l net.Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
	log.Info().Msgf("listening on %s %s", l.Addr().Network(), l.Addr())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := l.Accept()
			if err != nil {
				if s.isClosed() {
					return
				}
				log.Error().Err(err).Msg("accept failed")
				return
			}
			go s.ServeConn(communication.NewStreamConn(conn))
		}
	}()
}

// Handler serves the websocket endpoint at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		s.ServeConn(communication.NewWebSocketConn(ws))
	})
	return mux
}

// Addrs returns the addresses of the stream listeners.
func (s *Server) Addrs() []net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	addrs := make([]net.Addr, 0, len(s.listeners))
	for _, l := range s.listeners {
		addrs = append(addrs, l.Addr())
	}
	return addrs
}

// ServeConn runs one client session until the connection drops.
func (s *Server) ServeConn(conn communication.Conn) {
	if !s.track(conn) {
		conn.Close()
		return
	}
	defer s.untrack(conn)

	sess := newSession(s.gm, conn)
	log.Info().Msgf("client connected from %s", conn.RemoteAddr())
	err := sess.run()
	sess.leave()
	conn.Close()
	if err != nil && !s.isClosed() {
		log.Warn().Err(err).Msgf("session %s ended", conn.RemoteAddr())
		return
	}
	log.Info().Msgf("client %s disconnected", conn.RemoteAddr())
}

func (s *Server) track(conn communication.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn communication.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops every listener and session and waits for them to finish.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	listeners := s.listeners
	httpServer := s.http
	conns := make([]communication.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	var result *multierror.Error
	for _, l := range listeners {
		if err := l.Close(); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "close %s listener", l.Addr().Network()))
		}
	}
	if httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := httpServer.Shutdown(ctx); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "shutdown websocket server"))
		}
		cancel()
	}
	for _, c := range conns {
		c.Close()
	}
	s.wg.Wait()

	if s.cfg.ListenUnix() {
		if err := os.Remove(s.cfg.UnixPath); err != nil && !os.IsNotExist(err) {
			result = multierror.Append(result, errors.Wrap(err, "remove socket"))
		}
	}
	return result.ErrorOrNil()
}
