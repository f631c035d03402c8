/*
Package realtime implements the WebSocket side of the tutorial: connections, named rooms,
room-scoped messages and broadcasts.

Every frame on the wire, in both directions, is a JSON object {"event": "...", "data": ...}.
*/
package realtime

import (
	"encoding/json"
	"time"
)

// Inbound events sent by clients.
const (
	EventJoinRoom    = "joinRoom"
	EventLeaveRoom   = "leaveRoom"
	EventRoomMessage = "roomMessage"
	EventSendMessage = "sendMessage"
	EventBroadcast   = "broadcast"
)

// Outbound events emitted by the server. EventRoomMessage is used in both directions.
const (
	EventMessage      = "message"
	EventNotification = "notification"
	EventError        = "error"
)

// Message types carried in EventMessage payloads.
const (
	TypeWelcome   = "WELCOME"
	TypeEcho      = "ECHO"
	TypeBroadcast = "BROADCAST"
)

const (
	// MaxRoomNameBytes is the longest accepted room name.
	MaxRoomNameBytes = 64

	// MaxMessageBytes is the longest accepted message text.
	MaxMessageBytes = 5000
)

// TimestampFormat is ISO-8601 UTC with milliseconds, matching the REST envelope.
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Frame is a decoded inbound frame; Data is decoded per event.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// OutFrame is an outbound frame.
type OutFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// MessagePayload is the data of an EventMessage frame.
type MessagePayload struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	SocketID  string `json:"socketId,omitempty"`
	SenderID  string `json:"senderId,omitempty"`
	Timestamp string `json:"timestamp"`
}

// NotificationPayload is the data of an EventNotification frame.
type NotificationPayload struct {
	Message   string `json:"message"`
	RoomName  string `json:"roomName"`
	SocketID  string `json:"socketId"`
	Timestamp string `json:"timestamp"`
}

// RoomMessagePayload is the data of an outbound EventRoomMessage frame.
type RoomMessagePayload struct {
	ID        string `json:"id"`
	RoomName  string `json:"roomName"`
	Message   string `json:"message"`
	SenderID  string `json:"senderId"`
	Timestamp string `json:"timestamp"`
}

// ErrorPayload is the data of an EventError frame.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RoomMessageInput is the data of an inbound EventRoomMessage frame.
type RoomMessageInput struct {
	RoomName string `json:"roomName"`
	Message  string `json:"message"`
}

// TextInput is the data of inbound EventSendMessage and EventBroadcast frames.
type TextInput struct {
	Message string `json:"message"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}
