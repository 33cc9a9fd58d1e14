package observer

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"evolution.game/internal/observerproto"
	"evolution.game/internal/sim/game"
)

// Server fans turn summaries out to spectators. It is a game.TurnLogger, so
// the dealer feeds it directly. A spectator that falls behind loses turns
// rather than slowing the game.
type Server struct {
	gameID string
	log    *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	dropped  atomic.Uint64

	mu      sync.Mutex
	turn    int
	history [][]byte
	subs    map[uint64]chan []byte
	closed  bool
}

var _ game.TurnLogger = (*Server)(nil)

func NewServer(gameID string, logger *log.Logger) *Server {
	return &Server{
		gameID: gameID,
		log:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		subs: map[uint64]chan []byte{},
	}
}

func (s *Server) LogTurn(e game.TurnLogEntry) error {
	b, err := json.Marshal(observerproto.TurnMsg{
		Type:            observerproto.TypeTurn,
		ProtocolVersion: observerproto.Version,
		GameID:          s.gameID,
		Entry:           e,
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turn = e.Turn
	s.history = append(s.history, b)
	for _, ch := range s.subs {
		select {
		case ch <- b:
		default:
			s.dropped.Add(1)
		}
	}
	return nil
}

// Dropped counts turn messages not delivered to slow spectators.
func (s *Server) Dropped() uint64 { return s.dropped.Load() }

// Close disconnects every spectator.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		s.mu.Lock()
		resp := observerproto.BootstrapResponse{
			ProtocolVersion: observerproto.Version,
			GameID:          s.gameID,
			Turn:            s.turn,
			Spectators:      len(s.subs),
		}
		s.mu.Unlock()

		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(resp)
	}
}

func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send SUBSCRIBE first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var sub observerproto.SubscribeMsg
		if err := json.Unmarshal(msg, &sub); err != nil {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad subscribe"), time.Now().Add(time.Second))
			return
		}
		if sub.Type != observerproto.TypeSubscribe || sub.ProtocolVersion != observerproto.Version {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"), time.Now().Add(time.Second))
			return
		}

		sid := s.nextID.Add(1)
		out := make(chan []byte, 64)
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "game over"), time.Now().Add(time.Second))
			return
		}
		var backlog [][]byte
		if sub.FromTurn > 0 && sub.FromTurn <= len(s.history) {
			backlog = append(backlog, s.history[sub.FromTurn-1:]...)
		}
		s.subs[sid] = out
		s.mu.Unlock()
		s.log.Printf("spectator %d subscribed from %s (from_turn=%d)", sid, r.RemoteAddr, sub.FromTurn)
		defer s.unsubscribe(sid)

		// Writer goroutine.
		writeErr := make(chan error, 1)
		go func() {
			for _, b := range backlog {
				if err := write(conn, b); err != nil {
					writeErr <- err
					return
				}
			}
			for b := range out {
				if err := write(conn, b); err != nil {
					writeErr <- err
					return
				}
			}
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game over"), time.Now().Add(time.Second))
			writeErr <- nil
		}()

		// Reader loop: spectators send nothing after SUBSCRIBE; this only
		// notices the peer going away.
		_ = conn.SetReadDeadline(time.Time{})
		readErr := make(chan error, 1)
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					readErr <- err
					return
				}
			}
		}()

		select {
		case <-writeErr:
		case <-readErr:
		}
	}
}

func (s *Server) unsubscribe(sid uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch, ok := s.subs[sid]; ok {
		close(ch)
		delete(s.subs, sid)
		s.log.Printf("spectator %d left", sid)
	}
}

func write(conn *websocket.Conn, b []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
