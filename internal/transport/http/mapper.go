package http

import (
	"encoding/json"

	"github.com/samber/lo"

	"github.com/trinetra/chatsim-server/internal/core"
	"github.com/trinetra/chatsim-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeSubmit, proto.InboundTypeQuickReply, proto.InboundTypeSuggestion:
		var data proto.TextData
		if err := decodeData(inbound.Data, &data); err != nil {
			return nil, err
		}
		if data.Text == "" {
			return nil, &proto.Error{Code: proto.ErrCodeBadRequest, Msg: "text is required"}
		}
		kind := core.CommandSubmit
		switch inbound.Type {
		case proto.InboundTypeQuickReply:
			kind = core.CommandQuickReply
		case proto.InboundTypeSuggestion:
			kind = core.CommandSuggestion
		}
		return &core.Command{Kind: kind, Text: data.Text}, nil
	case proto.InboundTypeUpload:
		var data proto.UploadData
		if err := decodeData(inbound.Data, &data); err != nil {
			return nil, err
		}
		if data.Name == "" {
			return nil, &proto.Error{Code: proto.ErrCodeBadRequest, Msg: "name is required"}
		}
		return &core.Command{Kind: core.CommandUpload, Text: data.Name}, nil
	case proto.InboundTypeDismiss:
		var data proto.DismissData
		if err := decodeData(inbound.Data, &data); err != nil {
			return nil, err
		}
		if data.ID == "" {
			return nil, &proto.Error{Code: proto.ErrCodeBadRequest, Msg: "id is required"}
		}
		return &core.Command{Kind: core.CommandDismiss, ID: data.ID}, nil
	case proto.InboundTypeReset:
		return &core.Command{Kind: core.CommandReset}, nil
	case proto.InboundTypeConnect:
		return &core.Command{Kind: core.CommandConnect}, nil
	case proto.InboundTypeDisconnect:
		return &core.Command{Kind: core.CommandDisconnect}, nil
	case proto.InboundTypeClearNotifications:
		return &core.Command{Kind: core.CommandClearNotifications}, nil
	default:
		return nil, &proto.Error{Code: proto.ErrCodeInvalidMessage, Msg: "unknown message type"}
	}
}

func decodeData(raw json.RawMessage, v any) *proto.Error {
	if len(raw) == 0 {
		return &proto.Error{Code: proto.ErrCodeBadRequest, Msg: "data is required"}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &proto.Error{Code: proto.ErrCodeBadRequest, Msg: "malformed data"}
	}
	return nil
}

// isSubmit reports whether the command appends a user message and counts against the rate limit.
func isSubmit(kind core.CommandKind) bool {
	switch kind {
	case core.CommandSubmit, core.CommandQuickReply, core.CommandSuggestion, core.CommandUpload:
		return true
	default:
		return false
	}
}

func errorOutbound(code, msg string) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: code, Msg: msg}}
}

func eventOutbound(event string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: event, Data: data}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventMessageAppended:
		return eventOutbound(proto.EventMessage, messageToProto(*event.Message))
	case core.EventMessageStatus:
		return eventOutbound(proto.EventStatus, proto.StatusData{ID: event.MessageID, Status: string(event.Status)})
	case core.EventConversationReset:
		return eventOutbound(proto.EventReset, nil)
	case core.EventNotificationPushed:
		return eventOutbound(proto.EventNotification, notificationToProto(*event.Notification))
	case core.EventNotificationRemoved:
		return eventOutbound(proto.EventNotificationRemoved, proto.NotificationRemovedData{
			ID:     event.Notification.ID,
			Reason: string(event.Removal),
		})
	case core.EventPresenceChanged:
		return eventOutbound(proto.EventPresence, presenceToProto(*event.Presence))
	case core.EventStateChanged:
		return eventOutbound(proto.EventState, proto.StateData{State: string(event.State)})
	default:
		return errorOutbound(proto.ErrCodeInvalidMessage, "unknown event")
	}
}

func snapshotToProto(v core.View) proto.SnapshotData {
	return proto.SnapshotData{
		SessionID:     v.ID,
		Kind:          string(v.Kind),
		State:         string(v.State),
		LocalName:     v.LocalName,
		Messages:      lo.Map(v.Messages, func(m core.Message, _ int) proto.Message { return messageToProto(m) }),
		Notifications: lo.Map(v.Notifications, func(n core.Notification, _ int) proto.Notification { return notificationToProto(n) }),
		Roster:        lo.Map(v.Roster, func(e core.PresenceEntry, _ int) proto.Presence { return presenceToProto(e) }),
	}
}

func messageToProto(m core.Message) proto.Message {
	return proto.Message{
		ID:           m.ID,
		Text:         m.Text,
		Sender:       string(m.Sender),
		Author:       m.Author,
		TS:           m.CreatedAt.UnixMilli(),
		Status:       string(m.Status),
		QuickReplies: m.QuickReplies,
		Suggestions:  m.Suggestions,
	}
}

func notificationToProto(n core.Notification) proto.Notification {
	return proto.Notification{
		ID:         n.ID,
		Severity:   string(n.Severity),
		Title:      n.Title,
		Body:       n.Body,
		Position:   string(n.Position),
		TS:         n.CreatedAt.UnixMilli(),
		DurationMS: n.Duration.Milliseconds(),
	}
}

func presenceToProto(e core.PresenceEntry) proto.Presence {
	p := proto.Presence{UserID: e.UserID, Name: e.Name, Status: string(e.Status)}
	if e.LastSeen != nil {
		p.LastSeen = lo.ToPtr(e.LastSeen.UnixMilli())
	}
	return p
}

func coreErrorToProto(err error) *proto.Error {
	ce := core.AsCoreError(err)
	if ce == nil {
		return nil
	}
	return &proto.Error{Code: ce.Code, Msg: ce.Message}
}
