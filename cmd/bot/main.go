package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"evolution.game/internal/protocol"
	"evolution.game/internal/sim/tuning"
	"evolution.game/internal/strategy"
)

func main() {
	var (
		url  = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name = flag.String("name", "bot", "player name")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	p := strategy.NewGreedy(tuning.Defaults().HardShellThreshold)
	res, err := play(ctx, conn, p, logger)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	for _, s := range res.Scores {
		logger.Printf("#%d player %d score=%d", s.Rank, s.PlayerID, s.Score)
	}
}
