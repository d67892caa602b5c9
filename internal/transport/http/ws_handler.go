package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/trinetra/chatsim-server/internal/auth"
	"github.com/trinetra/chatsim-server/internal/config"
	"github.com/trinetra/chatsim-server/internal/content"
	"github.com/trinetra/chatsim-server/internal/core"
	"github.com/trinetra/chatsim-server/internal/proto"
)

const subscriberBuffer = 64

// WSHandler upgrades HTTP connections and bridges each one to its own core.Session.
type WSHandler struct {
	hub   *core.Hub
	kind  core.Kind
	auth  *auth.Service
	cfg   *config.Config
	clock clock.Clock
	log   *zerolog.Logger
}

// NewWSHandler builds a WebSocket handler that opens sessions of the given kind.
func NewWSHandler(hub *core.Hub, kind core.Kind, authService *auth.Service, cfg *config.Config, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:   hub,
		kind:  kind,
		auth:  authService,
		cfg:   cfg,
		clock: clock.New(),
		log:   logger,
	}
}

// connState is owned by the read loop of one connection.
type connState struct {
	session       *core.Session
	limiter       *rateLimiter
	authenticated bool
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	if h.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	session, err := h.hub.Open(h.kind, "")
	if err != nil {
		h.log.Warn().Err(err).Str("kind", string(h.kind)).Msg("open session")
		_ = wsjson.Write(ctx, conn, outboundFromError(err))
		conn.Close(websocket.StatusTryAgainLater, "session unavailable")
		return
	}
	defer func() {
		if closeErr := h.hub.Close(session.ID()); closeErr != nil && !errors.Is(closeErr, core.ErrSessionNotFound) {
			h.log.Warn().Err(closeErr).Str("session_id", session.ID()).Msg("close session")
		}
	}()

	sub, view, err := session.Attach(subscriberBuffer)
	if err != nil {
		h.log.Error().Err(err).Str("session_id", session.ID()).Msg("attach session")
		return
	}
	if err := wsjson.Write(ctx, conn, eventOutbound(proto.EventSnapshot, snapshotToProto(view))); err != nil {
		h.log.Warn().Err(err).Str("session_id", session.ID()).Msg("write snapshot")
		return
	}

	state := &connState{
		session: session,
		limiter: newRateLimiter(h.clock, h.cfg.SubmitsPerMinute, time.Minute),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, state)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, session.ID(), sub)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("session_id", session.ID()).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, state *connState) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		out := h.handleInbound(state, inbound)
		if out == nil {
			continue
		}
		if err := wsjson.Write(ctx, conn, out); err != nil {
			return err
		}
	}
}

func (h *WSHandler) handleInbound(state *connState, inbound proto.Inbound) *proto.Outbound {
	if inbound.Type == proto.InboundTypeHello {
		return h.handleHello(state, inbound)
	}
	if h.cfg.JWTRequired && !state.authenticated {
		return lo.ToPtr(errorOutbound(proto.ErrCodeUnauthorized, "hello with a valid token required"))
	}

	cmd, protoErr := inboundToCommand(inbound)
	if protoErr != nil {
		return &proto.Outbound{Type: proto.OutboundTypeError, Error: protoErr}
	}
	if isSubmit(cmd.Kind) && !state.limiter.allow() {
		return lo.ToPtr(errorOutbound(proto.ErrCodeRateLimited, "too many messages"))
	}

	res, err := state.session.Execute(*cmd)
	if err != nil {
		h.log.Debug().Err(err).Str("session_id", state.session.ID()).Str("type", inbound.Type).Msg("command failed")
		return lo.ToPtr(outboundFromError(err))
	}
	if res == nil {
		return lo.ToPtr(eventOutbound(proto.EventAccepted, proto.AcceptedData{Accepted: true}))
	}
	return lo.ToPtr(eventOutbound(proto.EventAccepted, proto.AcceptedData{
		Accepted:  res.Accepted,
		MessageID: res.Message.ID,
	}))
}

func (h *WSHandler) handleHello(state *connState, inbound proto.Inbound) *proto.Outbound {
	var hello proto.HelloData
	if protoErr := decodeData(inbound.Data, &hello); protoErr != nil {
		return &proto.Outbound{Type: proto.OutboundTypeError, Error: protoErr}
	}
	if hello.Protocol != 0 && hello.Protocol != proto.ProtocolVersion {
		return lo.ToPtr(errorOutbound(proto.ErrCodeUnsupportedVersion, "unsupported protocol version"))
	}

	name := hello.User
	switch {
	case hello.Token != "":
		claims, err := h.auth.ValidateToken(hello.Token)
		if err != nil {
			h.log.Debug().Err(err).Msg("invalid hello token")
			return lo.ToPtr(errorOutbound(proto.ErrCodeUnauthorized, "invalid token"))
		}
		state.authenticated = true
		if name == "" {
			name = claims.Name
		}
	case h.cfg.JWTRequired:
		return lo.ToPtr(errorOutbound(proto.ErrCodeUnauthorized, "token required"))
	}

	if name = strings.TrimSpace(content.Sanitize(name)); name != "" {
		if err := content.ValidateDisplayName(name); err != nil {
			return lo.ToPtr(errorOutbound(proto.ErrCodeBadRequest, err.Error()))
		}
		if err := state.session.SetLocalName(name); err != nil {
			return lo.ToPtr(outboundFromError(err))
		}
	} else {
		name = core.DefaultLocalName
	}

	return lo.ToPtr(eventOutbound(proto.EventHello, proto.HelloAckData{
		SessionID:     state.session.ID(),
		User:          name,
		Protocol:      proto.ProtocolVersion,
		Authenticated: state.authenticated,
	}))
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, sessionID string, sub *core.Subscriber) error {
	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("session_id", sessionID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func outboundFromError(err error) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeError, Error: coreErrorToProto(err)}
}
