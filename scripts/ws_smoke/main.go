package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/trinetra/chatsim-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws/bot", "WebSocket address")
	user := flag.String("user", "tester", "display name to announce with hello")
	token := flag.String("token", "", "optional JWT")
	text := flag.String("text", "Hello", "message text to send")
	timeout := flag.Duration("timeout", 10*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) error {
		var raw json.RawMessage
		if data != nil {
			b, err := json.Marshal(data)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", typ, err)
			}
			raw = b
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: raw}); err != nil {
			return fmt.Errorf("send %s: %w", typ, err)
		}
		return nil
	}

	if err := send(proto.InboundTypeHello, proto.HelloData{User: *user, Token: *token, Protocol: proto.ProtocolVersion}); err != nil {
		return err
	}

	sent, accepted := false, false
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("type=%s event=%s", outbound.Type, outbound.Event)
		if outbound.Error != nil {
			fmt.Printf(" error=%s:%s", outbound.Error.Code, outbound.Error.Msg)
		}
		fmt.Println()

		if outbound.Type == proto.OutboundTypeError {
			return fmt.Errorf("server error: %s", outbound.Error.Code)
		}

		switch outbound.Event {
		case proto.EventSnapshot, proto.EventState:
			if sent {
				continue
			}
			var st proto.StateData
			if err := decode(outbound.Data, &st); err != nil {
				return err
			}
			if st.State != "idle" {
				continue
			}
			if err := send(proto.InboundTypeSubmit, proto.TextData{Text: *text}); err != nil {
				return err
			}
			sent = true
		case proto.EventAccepted:
			var ack proto.AcceptedData
			if err := decode(outbound.Data, &ack); err != nil {
				return err
			}
			if !ack.Accepted {
				return fmt.Errorf("message was not accepted")
			}
			accepted = true
		case proto.EventMessage:
			var msg proto.Message
			if err := decode(outbound.Data, &msg); err != nil {
				return err
			}
			if accepted && msg.Sender == "counterpart" {
				fmt.Printf("reply from %s: %s\n", msg.Author, msg.Text)
				return nil
			}
		}
	}
}

func decode(data any, v any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	return nil
}
