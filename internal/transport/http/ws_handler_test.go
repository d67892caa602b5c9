package http

import (
	stdhttp "net/http"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trinetra/chatsim-server/internal/config"
	"github.com/trinetra/chatsim-server/internal/proto"
)

func TestWebSocketChatbotConversation(t *testing.T) {
	env := newTestEnv(t, nil)
	conn, ctx := env.dial(t, "/ws/bot")

	frames := readUntil(t, ctx, conn, isEvent(proto.EventSnapshot))
	var snap proto.SnapshotData
	decodeInto(t, frames[0].Data, &snap)
	assert.Equal(t, "bot", snap.Kind)
	assert.Equal(t, "idle", snap.State)
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, "counterpart", snap.Messages[0].Sender)
	assert.NotEmpty(t, snap.Messages[0].QuickReplies)

	send(t, ctx, conn, proto.InboundTypeHello, proto.HelloData{User: "Dana", Protocol: proto.ProtocolVersion})
	frames = readUntil(t, ctx, conn, isEvent(proto.EventHello))
	var ack proto.HelloAckData
	decodeInto(t, lo.LastOrEmpty(frames).Data, &ack)
	assert.Equal(t, "Dana", ack.User)
	assert.Equal(t, snap.SessionID, ack.SessionID)
	assert.False(t, ack.Authenticated)

	send(t, ctx, conn, proto.InboundTypeSubmit, proto.TextData{Text: "Hello"})
	frames = readUntil(t, ctx, conn, func(o proto.Outbound) bool {
		if !isEvent(proto.EventMessage)(o) {
			return false
		}
		var m proto.Message
		decodeInto(t, o.Data, &m)
		return m.Sender == "counterpart"
	})

	events := lo.Map(frames, func(o proto.Outbound, _ int) string { return o.Event })
	assert.Contains(t, events, proto.EventAccepted)
	assert.Contains(t, events, proto.EventStatus)

	states := lo.FilterMap(frames, func(o proto.Outbound, _ int) (string, bool) {
		if o.Event != proto.EventState {
			return "", false
		}
		var st proto.StateData
		decodeInto(t, o.Data, &st)
		return st.State, true
	})
	assert.Equal(t, []string{"awaiting_reply", "typing", "idle"}, states)

	var user proto.Message
	decodeInto(t, lo.FindOrElse(frames, proto.Outbound{}, isEvent(proto.EventMessage)).Data, &user)
	assert.Equal(t, "Hello", user.Text)
	assert.Equal(t, "Dana", user.Author)
	assert.Equal(t, "sending", user.Status)
}

func TestWebSocketChatRoomConnects(t *testing.T) {
	env := newTestEnv(t, nil)
	conn, ctx := env.dial(t, "/ws/chat")

	frames := readUntil(t, ctx, conn, isEvent(proto.EventSnapshot))
	var snap proto.SnapshotData
	decodeInto(t, frames[0].Data, &snap)
	assert.Equal(t, "connecting", snap.State)

	frames = readUntil(t, ctx, conn, isEvent(proto.EventMessage))
	var welcome proto.Message
	decodeInto(t, lo.LastOrEmpty(frames).Data, &welcome)
	assert.Equal(t, "system", welcome.Sender)

	presence := lo.Filter(frames, func(o proto.Outbound, _ int) bool { return o.Event == proto.EventPresence })
	assert.Len(t, presence, 4)
	notifications := lo.Filter(frames, func(o proto.Outbound, _ int) bool { return o.Event == proto.EventNotification })
	require.Len(t, notifications, 1)
	var toast proto.Notification
	decodeInto(t, notifications[0].Data, &toast)
	assert.Equal(t, "Connected", toast.Title)
	assert.Equal(t, "success", toast.Severity)
	assert.Equal(t, int64(3000), toast.DurationMS)
}

func TestWebSocketDisconnectedSubmitIsRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	conn, ctx := env.dial(t, "/ws/bot")
	readUntil(t, ctx, conn, isEvent(proto.EventSnapshot))

	send(t, ctx, conn, proto.InboundTypeDisconnect, nil)
	var sawState, sawAck bool
	readUntil(t, ctx, conn, func(o proto.Outbound) bool {
		sawState = sawState || isEvent(proto.EventState)(o)
		sawAck = sawAck || isEvent(proto.EventAccepted)(o)
		return sawState && sawAck
	})

	send(t, ctx, conn, proto.InboundTypeSubmit, proto.TextData{Text: "anyone?"})
	// The reply and the toast travel on different goroutines, so either may come first.
	var sawAccepted, sawToast bool
	frames := readUntil(t, ctx, conn, func(o proto.Outbound) bool {
		sawAccepted = sawAccepted || isEvent(proto.EventAccepted)(o)
		sawToast = sawToast || isEvent(proto.EventNotification)(o)
		return sawAccepted && sawToast
	})
	acceptedFrame, _ := lo.Find(frames, isEvent(proto.EventAccepted))
	var accepted proto.AcceptedData
	decodeInto(t, acceptedFrame.Data, &accepted)
	assert.False(t, accepted.Accepted)
	assert.False(t, lo.ContainsBy(frames, isEvent(proto.EventMessage)))

	toast, ok := lo.Find(frames, isEvent(proto.EventNotification))
	require.True(t, ok)
	var n proto.Notification
	decodeInto(t, toast.Data, &n)
	assert.Equal(t, "error", n.Severity)
	assert.Equal(t, "Connection Error", n.Title)
}

func TestProtocolVersionMismatch(t *testing.T) {
	env := newTestEnv(t, nil)
	conn, ctx := env.dial(t, "/ws/bot")
	readUntil(t, ctx, conn, isEvent(proto.EventSnapshot))

	send(t, ctx, conn, proto.InboundTypeHello, proto.HelloData{User: "alice", Protocol: proto.ProtocolVersion + 1})
	readUntil(t, ctx, conn, isError(proto.ErrCodeUnsupportedVersion))
}

func TestWebSocketRejectsBadInbound(t *testing.T) {
	env := newTestEnv(t, nil)
	conn, ctx := env.dial(t, "/ws/bot")
	readUntil(t, ctx, conn, isEvent(proto.EventSnapshot))

	send(t, ctx, conn, "bogus", nil)
	readUntil(t, ctx, conn, isError(proto.ErrCodeInvalidMessage))

	send(t, ctx, conn, proto.InboundTypeSubmit, nil)
	readUntil(t, ctx, conn, isError(proto.ErrCodeBadRequest))

	send(t, ctx, conn, proto.InboundTypeSubmit, proto.TextData{Text: "<i></i>"})
	readUntil(t, ctx, conn, isError("empty_message"))
}

func TestWebSocketJWTRequired(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) { cfg.JWTRequired = true })
	conn, ctx := env.dial(t, "/ws/bot")
	readUntil(t, ctx, conn, isEvent(proto.EventSnapshot))

	send(t, ctx, conn, proto.InboundTypeSubmit, proto.TextData{Text: "hi"})
	readUntil(t, ctx, conn, isError(proto.ErrCodeUnauthorized))

	send(t, ctx, conn, proto.InboundTypeHello, proto.HelloData{User: "x", Token: "garbage"})
	readUntil(t, ctx, conn, isError(proto.ErrCodeUnauthorized))

	user, token, err := env.auth.Signup(ctx, "Jane Roe", "jane@example.com", "secret")
	require.NoError(t, err)
	send(t, ctx, conn, proto.InboundTypeHello, proto.HelloData{Token: token})
	frames := readUntil(t, ctx, conn, isEvent(proto.EventHello))
	var ack proto.HelloAckData
	decodeInto(t, lo.LastOrEmpty(frames).Data, &ack)
	assert.True(t, ack.Authenticated)
	assert.Equal(t, user.Name, ack.User)

	send(t, ctx, conn, proto.InboundTypeSubmit, proto.TextData{Text: "hi"})
	readUntil(t, ctx, conn, isEvent(proto.EventAccepted))
}

func TestWebSocketRateLimit(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) { cfg.SubmitsPerMinute = 1 })
	conn, ctx := env.dial(t, "/ws/bot")
	readUntil(t, ctx, conn, isEvent(proto.EventSnapshot))

	send(t, ctx, conn, proto.InboundTypeSubmit, proto.TextData{Text: "one"})
	readUntil(t, ctx, conn, isEvent(proto.EventAccepted))
	send(t, ctx, conn, proto.InboundTypeUpload, proto.UploadData{Name: "two.txt"})
	readUntil(t, ctx, conn, isError(proto.ErrCodeRateLimited))

	// Non-submit commands are not limited.
	send(t, ctx, conn, proto.InboundTypeReset, nil)
	readUntil(t, ctx, conn, isEvent(proto.EventReset))
}

func TestSessionClosedWithConnection(t *testing.T) {
	env := newTestEnv(t, nil)
	conn, ctx := env.dial(t, "/ws/bot")
	readUntil(t, ctx, conn, isEvent(proto.EventSnapshot))
	require.Equal(t, 1, env.hub.Len())

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "bye"))
	require.Eventually(t, func() bool { return env.hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWebSocketAnswersEveryCommand(t *testing.T) {
	env := newTestEnv(t, nil)
	conn, ctx := env.dial(t, "/ws/bot")
	readUntil(t, ctx, conn, isEvent(proto.EventSnapshot))

	send(t, ctx, conn, proto.InboundTypeReset, nil)
	var sawReset bool
	var ack proto.Outbound
	readUntil(t, ctx, conn, func(o proto.Outbound) bool {
		sawReset = sawReset || isEvent(proto.EventReset)(o)
		if isEvent(proto.EventAccepted)(o) {
			ack = o
		}
		return sawReset && ack.Event != ""
	})
	var accepted proto.AcceptedData
	decodeInto(t, ack.Data, &accepted)
	assert.True(t, accepted.Accepted)
	assert.Empty(t, accepted.MessageID)

	send(t, ctx, conn, proto.InboundTypeDismiss, proto.DismissData{ID: "missing"})
	readUntil(t, ctx, conn, isEvent(proto.EventAccepted))
}

func TestWebSocketClearNotifications(t *testing.T) {
	env := newTestEnv(t, nil)
	conn, ctx := env.dial(t, "/ws/bot")
	readUntil(t, ctx, conn, isEvent(proto.EventSnapshot))

	send(t, ctx, conn, proto.InboundTypeDisconnect, nil)
	send(t, ctx, conn, proto.InboundTypeSubmit, proto.TextData{Text: "anyone?"})
	frames := readUntil(t, ctx, conn, isEvent(proto.EventNotification))
	toast, _ := lo.Find(frames, isEvent(proto.EventNotification))
	var n proto.Notification
	decodeInto(t, toast.Data, &n)

	send(t, ctx, conn, proto.InboundTypeClearNotifications, nil)
	frames = readUntil(t, ctx, conn, isEvent(proto.EventNotificationRemoved))
	var removed proto.NotificationRemovedData
	decodeInto(t, lo.LastOrEmpty(frames).Data, &removed)
	assert.Equal(t, n.ID, removed.ID)
	assert.Equal(t, "dismissed", removed.Reason)
}

func TestServerHandlerUpgradesWebSockets(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/ws/chat", "/ws/bot"} {
		conn, ctx := env.dial(t, path)
		frames := readUntil(t, ctx, conn, isEvent(proto.EventSnapshot))
		require.Len(t, frames, 1)
	}

	resp := env.get(t, "/health", "")
	assert.Equal(t, stdhttp.StatusOK, resp.StatusCode)
}
