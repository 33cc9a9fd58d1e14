package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/gorilla/websocket"

	"evolution.game/internal/protocol"
	"evolution.game/internal/sim/game"
)

// play answers dealer requests with p until the game result arrives.
func play(ctx context.Context, conn *websocket.Conn, p game.Player, logger *log.Logger) (protocol.ResultMsg, error) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return protocol.ResultMsg{}, fmt.Errorf("read: %w", err)
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME player_id=%d game_id=%s", w.PlayerID, w.GameID)

		case protocol.TypeStart:
			var m protocol.StartMsg
			if err := json.Unmarshal(msg, &m); err != nil {
				return protocol.ResultMsg{}, err
			}
			self, err := protocol.SelfFromJSON(m.Self)
			if err != nil {
				return protocol.ResultMsg{}, err
			}
			if err := p.Start(ctx, m.WateringHole, self); err != nil {
				return protocol.ResultMsg{}, err
			}

		case protocol.TypeChoose:
			var m protocol.ChooseMsg
			if err := json.Unmarshal(msg, &m); err != nil {
				return protocol.ResultMsg{}, err
			}
			left, err := protocol.PublicFromJSON(m.Left)
			if err != nil {
				return protocol.ResultMsg{}, err
			}
			right, err := protocol.PublicFromJSON(m.Right)
			if err != nil {
				return protocol.ResultMsg{}, err
			}
			a, err := p.Choose(ctx, left, right)
			if err != nil {
				return protocol.ResultMsg{}, err
			}
			if err := conn.WriteJSON(protocol.Action4ToMsg(a)); err != nil {
				return protocol.ResultMsg{}, err
			}

		case protocol.TypeFeed:
			var m protocol.FeedMsg
			if err := json.Unmarshal(msg, &m); err != nil {
				return protocol.ResultMsg{}, err
			}
			self, err := protocol.SelfFromJSON(m.Self)
			if err != nil {
				return protocol.ResultMsg{}, err
			}
			others, err := protocol.PublicFromJSON(m.Others)
			if err != nil {
				return protocol.ResultMsg{}, err
			}
			choice, err := p.NextFeeding(ctx, self, m.WateringHole, others)
			if err != nil {
				return protocol.ResultMsg{}, err
			}
			reply, err := protocol.FeedingToMsg(choice)
			if err != nil {
				return protocol.ResultMsg{}, err
			}
			if err := conn.WriteJSON(reply); err != nil {
				return protocol.ResultMsg{}, err
			}

		case protocol.TypeError:
			var m protocol.ErrorMsg
			if err := json.Unmarshal(msg, &m); err != nil {
				continue
			}
			logger.Printf("ERROR code=%s message=%s", m.Code, m.Message)

		case protocol.TypeResult:
			var m protocol.ResultMsg
			if err := json.Unmarshal(msg, &m); err != nil {
				return m, err
			}
			return m, nil
		}
	}
}
