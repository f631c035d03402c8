package realtime

import (
	"encoding/json"

	"apitutor/internal/pkg/errs"
)

// Dispatch decodes one inbound frame from p and performs the requested operation.
// Malformed frames and failed operations are answered with an EventError frame to p.
func (h *Hub) Dispatch(p Peer, raw []byte) {
	var frame Frame
	if err := json.Unmarshal(raw, &frame); err != nil {
		h.logger.Warn().Err(err).Str("socket_id", p.ID()).Msg("Client sent invalid JSON.")
		h.SendError(p, errs.NewError(errs.ErrUnsupportedEvent))
		return
	}

	if err := h.handle(p, frame); err != nil {
		h.logger.Debug().
			Str("socket_id", p.ID()).
			Str("event", frame.Event).
			Int("code", err.Code).
			Msg("Frame rejected.")
		h.SendError(p, err)
	}
}

func (h *Hub) handle(p Peer, frame Frame) *errs.CustomError {
	switch frame.Event {
	case EventJoinRoom:
		var room string
		if err := json.Unmarshal(frame.Data, &room); err != nil {
			return errs.NewError(errs.ErrRoomNameInvalid, MaxRoomNameBytes)
		}
		return h.Join(p, room)

	case EventLeaveRoom:
		var room string
		if err := json.Unmarshal(frame.Data, &room); err != nil {
			return errs.NewError(errs.ErrRoomNameInvalid, MaxRoomNameBytes)
		}
		return h.Leave(p, room)

	case EventRoomMessage:
		var in RoomMessageInput
		if err := json.Unmarshal(frame.Data, &in); err != nil {
			return errs.NewError(errs.ErrUnsupportedEvent)
		}
		_, err := h.SendToRoom(p, in.RoomName, in.Message)
		return err

	case EventSendMessage:
		var in TextInput
		if err := json.Unmarshal(frame.Data, &in); err != nil {
			return errs.NewError(errs.ErrUnsupportedEvent)
		}
		return h.Echo(p, in.Message)

	case EventBroadcast:
		var in TextInput
		if err := json.Unmarshal(frame.Data, &in); err != nil {
			return errs.NewError(errs.ErrUnsupportedEvent)
		}
		_, err := h.BroadcastExcludingSelf(p, in.Message)
		return err

	default:
		return errs.NewError(errs.ErrUnsupportedEvent)
	}
}
