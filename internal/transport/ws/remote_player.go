package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"evolution.game/internal/protocol"
	"evolution.game/internal/sim/game"
	"evolution.game/internal/sim/tuning"
)

var ErrClosed = errors.New("remote player connection closed")

// RemotePlayer proxies game.Player calls over a websocket. Calls are made
// from the dealer goroutine only. Any transport or protocol fault closes the
// connection and every later call fails with that fault.
type RemotePlayer struct {
	conn      *websocket.Conn
	id        int
	name      string
	transport tuning.Transport
	log       *log.Logger

	mu    sync.Mutex
	fault error
	done  chan struct{}
}

var _ game.Player = (*RemotePlayer)(nil)

func newRemotePlayer(conn *websocket.Conn, id int, name string, t tuning.Transport, logger *log.Logger) *RemotePlayer {
	return &RemotePlayer{conn: conn, id: id, name: name, transport: t, log: logger, done: make(chan struct{})}
}

func (p *RemotePlayer) ID() int      { return p.id }
func (p *RemotePlayer) Name() string { return p.name }

func (p *RemotePlayer) Start(_ context.Context, pool int, self game.PlayerSnapshot) error {
	return p.send(protocol.StartMsg{
		Type:            protocol.TypeStart,
		ProtocolVersion: protocol.Version,
		WateringHole:    pool,
		Self:            protocol.SelfToJSON(self),
	})
}

func (p *RemotePlayer) Choose(ctx context.Context, left, right []game.PublicPlayer) (game.Action4, error) {
	req := protocol.ChooseMsg{
		Type:            protocol.TypeChoose,
		ProtocolVersion: protocol.Version,
		Left:            protocol.PublicToJSON(left),
		Right:           protocol.PublicToJSON(right),
	}
	raw, err := p.call(ctx, req, protocol.TypeAction4, ms(p.transport.ChooseTimeoutMs))
	if err != nil {
		return game.Action4{}, err
	}
	var m protocol.Action4Msg
	if err := json.Unmarshal(raw, &m); err != nil {
		return game.Action4{}, p.fail(protocol.ErrProtoBadRequest, err)
	}
	return protocol.Action4FromMsg(m), nil
}

func (p *RemotePlayer) NextFeeding(ctx context.Context, self game.PlayerSnapshot, pool int, others []game.PublicPlayer) (game.FeedingChoice, error) {
	req := protocol.FeedMsg{
		Type:            protocol.TypeFeed,
		ProtocolVersion: protocol.Version,
		Self:            protocol.SelfToJSON(self),
		WateringHole:    pool,
		Others:          protocol.PublicToJSON(others),
	}
	raw, err := p.call(ctx, req, protocol.TypeFeeding, ms(p.transport.FeedTimeoutMs))
	if err != nil {
		return nil, err
	}
	var m protocol.FeedingMsg
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, p.fail(protocol.ErrProtoBadRequest, err)
	}
	choice, err := protocol.FeedingFromMsg(m)
	if err != nil {
		return nil, p.fail(protocol.ErrProtoBadRequest, err)
	}
	return choice, nil
}

// SendResult reports the final scoreboard. Disqualified players are told so first.
func (p *RemotePlayer) SendResult(scores []game.Score, disqualified bool) error {
	if disqualified {
		_ = p.send(errorMsg(protocol.ErrDisqualified, fmt.Sprintf("player %d was disqualified", p.id)))
	}
	return p.send(protocol.ScoresToMsg(scores))
}

// Close ends the session. It is safe to call more than once.
func (p *RemotePlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked(ErrClosed)
}

func (p *RemotePlayer) closeLocked(cause error) {
	if p.fault != nil {
		return
	}
	p.fault = cause
	_ = p.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	_ = p.conn.Close()
	close(p.done)
}

func (p *RemotePlayer) err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fault
}

func (p *RemotePlayer) send(v any) error {
	if err := p.err(); err != nil {
		return err
	}
	if err := writeJSON(p.conn, v); err != nil {
		return p.fail("", err)
	}
	return nil
}

// call sends req and waits for a reply of type want. Replies are checked
// against the message schema before decoding.
func (p *RemotePlayer) call(ctx context.Context, req any, want string, timeout time.Duration) ([]byte, error) {
	if err := p.send(req); err != nil {
		return nil, err
	}
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = p.conn.SetReadDeadline(deadline)
	stop := context.AfterFunc(ctx, func() { _ = p.conn.SetReadDeadline(time.Now()) })
	defer stop()

	_, raw, err := p.conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return nil, p.fail("", ctx.Err())
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, p.fail(protocol.ErrTimeout, fmt.Errorf("no %s within %s", want, timeout))
		}
		return nil, p.fail("", err)
	}
	base, err := protocol.DecodeBase(raw)
	if err != nil {
		return nil, p.fail(protocol.ErrProtoBadRequest, err)
	}
	if base.Type != want {
		return nil, p.fail(protocol.ErrProtoBadRequest, fmt.Errorf("expected %s, got %q", want, base.Type))
	}
	if base.ProtocolVersion != protocol.Version {
		return nil, p.fail(protocol.ErrProtoVersion, fmt.Errorf("protocol_version %q", base.ProtocolVersion))
	}
	if err := protocol.Validate(want, raw); err != nil {
		return nil, p.fail(protocol.ErrProtoBadRequest, err)
	}
	return raw, nil
}

// fail records a fault, tells the peer when a code is given, and closes.
func (p *RemotePlayer) fail(code string, cause error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fault != nil {
		return p.fault
	}
	err := fmt.Errorf("player %d (%s): %w", p.id, p.name, cause)
	if code != "" {
		_ = writeJSON(p.conn, errorMsg(code, cause.Error()))
		err = fmt.Errorf("%s: %w", code, err)
	}
	p.log.Printf("%v", err)
	p.closeLocked(err)
	return err
}
