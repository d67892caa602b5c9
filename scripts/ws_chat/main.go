package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/trinetra/chatsim-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws/chat", "WebSocket address (/ws/chat or /ws/bot)")
	user := flag.String("user", "cli-user", "display name")
	token := flag.String("token", "", "optional JWT")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, conn, proto.InboundTypeHello, proto.HelloData{User: *user, Token: *token, Protocol: proto.ProtocolVersion}); err != nil {
		return err
	}

	fmt.Printf("Connected to %s as %s\n", *addr, *user)
	fmt.Println("Type messages and press Enter to send. Commands: /quick, /suggest, /upload, /dismiss <id>, /clear, /reset, /connect, /disconnect. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func send(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
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

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if outbound.Type == proto.OutboundTypeError && outbound.Error != nil {
			fmt.Printf("! %s: %s\n", outbound.Error.Code, outbound.Error.Msg)
			continue
		}

		switch outbound.Event {
		case proto.EventSnapshot:
			var snap proto.SnapshotData
			if !decode(outbound.Data, &snap) {
				continue
			}
			fmt.Printf("session %s (%s) state=%s\n", snap.SessionID, snap.Kind, snap.State)
			for _, m := range snap.Messages {
				printMessage(m)
			}
			for _, p := range snap.Roster {
				fmt.Printf("  %-16s %s\n", p.Name, p.Status)
			}
		case proto.EventMessage:
			var m proto.Message
			if decode(outbound.Data, &m) {
				printMessage(m)
			}
		case proto.EventStatus:
			var st proto.StatusData
			if decode(outbound.Data, &st) {
				fmt.Printf("  (%s %s)\n", st.ID, st.Status)
			}
		case proto.EventNotification:
			var n proto.Notification
			if decode(outbound.Data, &n) {
				fmt.Printf("* [%s] %s: %s (id=%s)\n", n.Severity, n.Title, n.Body, n.ID)
			}
		case proto.EventState:
			var st proto.StateData
			if decode(outbound.Data, &st) {
				fmt.Printf("-- %s --\n", st.State)
			}
		case proto.EventPresence:
			var p proto.Presence
			if decode(outbound.Data, &p) {
				fmt.Printf("~ %s is %s\n", p.Name, p.Status)
			}
		case proto.EventReset:
			fmt.Println("-- conversation cleared --")
		case proto.EventNotificationRemoved, proto.EventAccepted, proto.EventHello:
		default:
			fmt.Printf("event=%s data=%v\n", outbound.Event, outbound.Data)
		}
	}
}

func printMessage(m proto.Message) {
	from := m.Author
	if from == "" {
		from = m.Sender
	}
	fmt.Printf("%s: %s\n", from, m.Text)
	if len(m.QuickReplies) > 0 {
		fmt.Printf("  quick: %s\n", strings.Join(m.QuickReplies, " | "))
	}
	if len(m.Suggestions) > 0 {
		fmt.Printf("  suggest: %s\n", strings.Join(m.Suggestions, " | "))
	}
}

func decode(data any, v any) bool {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("marshal outbound data: %v", err)
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		log.Printf("unmarshal outbound data: %v", err)
		return false
	}
	return true
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			typ, data := parseLine(strings.TrimSpace(line))
			if typ == "" {
				continue
			}
			if err := send(ctx, conn, typ, data); err != nil {
				log.Print(err)
				return
			}
		}
	}
}

func parseLine(line string) (string, any) {
	if line == "" {
		return "", nil
	}
	if !strings.HasPrefix(line, "/") {
		return proto.InboundTypeSubmit, proto.TextData{Text: line}
	}
	cmd, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "quick":
		return proto.InboundTypeQuickReply, proto.TextData{Text: arg}
	case "suggest":
		return proto.InboundTypeSuggestion, proto.TextData{Text: arg}
	case "upload":
		return proto.InboundTypeUpload, proto.UploadData{Name: arg}
	case "dismiss":
		return proto.InboundTypeDismiss, proto.DismissData{ID: arg}
	case "clear":
		return proto.InboundTypeClearNotifications, nil
	case "reset":
		return proto.InboundTypeReset, nil
	case "connect":
		return proto.InboundTypeConnect, nil
	case "disconnect":
		return proto.InboundTypeDisconnect, nil
	default:
		fmt.Printf("unknown command /%s\n", cmd)
		return "", nil
	}
}
