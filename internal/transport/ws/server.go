package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"evolution.game/internal/protocol"
	"evolution.game/internal/sim/game"
	"evolution.game/internal/sim/tuning"
)

var ErrLobbyClosed = errors.New("lobby closed before the table filled")

// Lobby seats remote players for a single game. Seats are numbered in
// arrival order from 1, which matches the dealer's player ids.
type Lobby struct {
	gameID    string
	seats     int
	transport tuning.Transport
	log       *log.Logger

	upgrader websocket.Upgrader

	mu       sync.Mutex
	players  []*RemotePlayer
	welcomed int
	started  bool
	full     chan struct{}
}

func NewLobby(gameID string, seats int, t tuning.Transport, logger *log.Logger) *Lobby {
	return &Lobby{
		gameID:    gameID,
		seats:     seats,
		transport: t,
		log:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		full: make(chan struct{}),
	}
}

func (l *Lobby) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := l.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if l.transport.MaxFrameBytes > 0 {
			conn.SetReadLimit(int64(l.transport.MaxFrameBytes))
		}

		p := l.handshake(conn)
		if p == nil {
			return
		}
		// The dealer drives the connection from here on.
		select {
		case <-p.done:
		case <-r.Context().Done():
			p.Close()
		}
	}
}

func (l *Lobby) handshake(conn *websocket.Conn) *RemotePlayer {
	_ = conn.SetReadDeadline(time.Now().Add(ms(l.transport.HandshakeTimeoutMs)))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return nil
	}
	if base.ProtocolVersion != protocol.Version {
		_ = writeJSON(conn, errorMsg(protocol.ErrProtoVersion, "protocol_version "+protocol.Version+" required"))
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return nil
	}
	if err := protocol.Validate(protocol.TypeHello, msg); err != nil {
		_ = writeJSON(conn, errorMsg(protocol.ErrProtoBadRequest, err.Error()))
		return nil
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil
	}

	l.mu.Lock()
	if l.started || len(l.players) >= l.seats {
		l.mu.Unlock()
		code := protocol.ErrGameFull
		if l.started {
			code = protocol.ErrGameStarted
		}
		_ = writeJSON(conn, errorMsg(code, "no free seat in game "+l.gameID))
		return nil
	}
	p := newRemotePlayer(conn, len(l.players)+1, hello.PlayerName, l.transport, l.log)
	l.players = append(l.players, p)
	if len(l.players) == l.seats {
		l.started = true
	}
	l.mu.Unlock()

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        p.id,
		GameID:          l.gameID,
		SessionID:       uuid.NewString(),
	}
	if err := p.send(welcome); err != nil {
		l.log.Printf("game %s: welcome to %q failed: %v", l.gameID, p.name, err)
	} else {
		l.log.Printf("game %s: seated %q as player %d of %d", l.gameID, p.name, p.id, l.seats)
	}

	// The welcome must be on the wire before the dealer may write.
	l.mu.Lock()
	l.welcomed++
	if l.welcomed == l.seats {
		close(l.full)
	}
	l.mu.Unlock()
	return p
}

// Wait blocks until every seat is taken and returns the players in seat order.
func (l *Lobby) Wait(ctx context.Context) ([]*RemotePlayer, error) {
	select {
	case <-l.full:
	case <-ctx.Done():
		l.mu.Lock()
		l.started = true
		l.mu.Unlock()
		return nil, errors.Join(ErrLobbyClosed, ctx.Err())
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*RemotePlayer(nil), l.players...), nil
}

// Close drops every seated player.
func (l *Lobby) Close() {
	l.mu.Lock()
	l.started = true
	ps := append([]*RemotePlayer(nil), l.players...)
	l.mu.Unlock()
	for _, p := range ps {
		p.Close()
	}
}

// Players adapts seats for the dealer.
func Players(rs []*RemotePlayer) []game.Player {
	out := make([]game.Player, len(rs))
	for i, r := range rs {
		out[i] = r
	}
	return out
}

func errorMsg(code, message string) protocol.ErrorMsg {
	return protocol.ErrorMsg{Type: protocol.TypeError, ProtocolVersion: protocol.Version, Code: code, Message: message}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
