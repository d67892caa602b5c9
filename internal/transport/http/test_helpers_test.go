package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/trinetra/chatsim-server/internal/auth"
	"github.com/trinetra/chatsim-server/internal/catalog"
	"github.com/trinetra/chatsim-server/internal/config"
	"github.com/trinetra/chatsim-server/internal/core"
	"github.com/trinetra/chatsim-server/internal/proto"
)

const testSecret = "test-secret"

// fastChatbot keeps the chatbot behavior with delays short enough for real-clock tests.
func fastChatbot() core.Profile {
	p := core.DefaultChatbotProfile()
	p.Delivery = core.DeliveryDelays{Sending: 0, Sent: 10 * time.Millisecond, Delivered: 20 * time.Millisecond, Read: 30 * time.Millisecond}
	p.ReplyDelayMin = 80 * time.Millisecond
	p.ReplyDelayMax = 80 * time.Millisecond
	p.TypingDelay = 40 * time.Millisecond
	p.ClearedWelcomeDelay = 10 * time.Millisecond
	return p
}

func fastChatRoom() core.Profile {
	p := core.DefaultChatRoomProfile()
	p.ConnectDelay = 10 * time.Millisecond
	p.Delivery = fastChatbot().Delivery
	p.PresenceInterval = 0
	p.ChatterInterval = 0
	return p
}

type testEnv struct {
	server *httptest.Server
	hub    *core.Hub
	auth   *auth.Service
	cfg    *config.Config
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.JWTSecret = testSecret
	if mutate != nil {
		mutate(&cfg)
	}

	logger := zerolog.Nop()
	hub := core.NewHub(core.HubConfig{
		ChatRoom: fastChatRoom(),
		Chatbot:  fastChatbot(),
		Seed:     1,
		Logger:   logger,
	})
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	authService := auth.NewService(&auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	})
	projects, err := catalog.Load()
	require.NoError(t, err)

	server := httptest.NewServer(NewHandler(Deps{Hub: hub, Auth: authService, Catalog: projects}, &cfg, &logger))
	t.Cleanup(func() {
		server.Close()
		cancel()
		hub.Shutdown()
	})

	return &testEnv{server: server, hub: hub, auth: authService, cfg: &cfg}
}

func (e *testEnv) dial(t *testing.T, path string) (*websocket.Conn, context.Context) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	wsURL := strings.Replace(e.server.URL, "http", "ws", 1) + path
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn, ctx
}

func (e *testEnv) postJSON(t *testing.T, path string, body any) *stdhttp.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := e.server.Client().Post(e.server.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, path, token string) *stdhttp.Response {
	t.Helper()

	req, err := stdhttp.NewRequest(stdhttp.MethodGet, e.server.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	in := proto.Inbound{Type: typ}
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		in.Data = raw
	}
	require.NoError(t, wsjson.Write(ctx, conn, in))
}

// readUntil reads outbound frames until match returns true and returns every frame read.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, match func(proto.Outbound) bool) []proto.Outbound {
	t.Helper()

	var seen []proto.Outbound
	for {
		var out proto.Outbound
		require.NoError(t, wsjson.Read(ctx, conn, &out), "frames so far: %+v", seen)
		seen = append(seen, out)
		if match(out) {
			return seen
		}
	}
}

func isEvent(name string) func(proto.Outbound) bool {
	return func(o proto.Outbound) bool { return o.Type == proto.OutboundTypeEvent && o.Event == name }
}

func isError(code string) func(proto.Outbound) bool {
	return func(o proto.Outbound) bool {
		return o.Type == proto.OutboundTypeError && o.Error != nil && o.Error.Code == code
	}
}

// decodeInto converts the untyped Data of a decoded frame into v.
func decodeInto(t *testing.T, data any, v any) {
	t.Helper()

	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}
