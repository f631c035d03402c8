/*
Package realtime implements the WebSocket side of the tutorial: connections, named rooms,
room-scoped messages and broadcasts.

This file defines the Hub, which tracks every live connection and its room memberships and
performs all deliveries. The Hub only sees the Peer interface, so room logic is exercised in
tests without a network connection.
*/
package realtime

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"apitutor/internal/pkg/errs"
	"apitutor/internal/pkg/logx"
	"apitutor/internal/pkg/randx"
)

// Peer is a connection as seen by the Hub.
type Peer interface {
	// ID is the connection id, unique for the lifetime of the Hub.
	ID() string

	// Enqueue queues one serialized frame for delivery without blocking.
	// It returns false when the peer is closed or its queue is full.
	Enqueue(frame []byte) bool

	// Close stops delivery to the peer. It must be safe to call more than once.
	Close()
}

// Hub owns connection registration and room membership.
type Hub struct {
	// mu protects peers, rooms, memberships and closed.
	mu sync.RWMutex

	// peers holds every registered connection by id.
	peers map[string]Peer

	// rooms maps a room name to the ids of its members. Empty rooms are removed.
	rooms map[string]map[string]Peer

	// memberships maps a connection id to the names of the rooms it is in.
	memberships map[string]map[string]struct{}

	closed bool

	now func() time.Time

	logger zerolog.Logger
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		peers:       make(map[string]Peer),
		rooms:       make(map[string]map[string]Peer),
		memberships: make(map[string]map[string]struct{}),
		now:         time.Now,
		logger:      logx.Component("hub"),
	}
}

// Register adds p to the Hub and sends it the WELCOME message.
// It returns false, and closes p, once the Hub has been shut down.
func (h *Hub) Register(p Peer) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		p.Close()
		return false
	}
	h.peers[p.ID()] = p
	total := len(h.peers)
	h.mu.Unlock()

	h.logger.Info().Str("socket_id", p.ID()).Int("connections", total).Msg("Connection registered.")

	h.deliver([]Peer{p}, EventMessage, MessagePayload{
		ID:        randx.MessageID(),
		Type:      TypeWelcome,
		Message:   "WebSocket connection established.",
		SocketID:  p.ID(),
		Timestamp: formatTime(h.now()),
	})
	return true
}

// Unregister removes p and drops all of its room memberships, then closes p.
func (h *Hub) Unregister(p Peer) {
	h.mu.Lock()
	current, ok := h.peers[p.ID()]
	if !ok || current != p {
		h.mu.Unlock()
		p.Close()
		return
	}

	delete(h.peers, p.ID())
	for room := range h.memberships[p.ID()] {
		h.removeMemberLocked(room, p.ID())
	}
	delete(h.memberships, p.ID())
	total := len(h.peers)
	h.mu.Unlock()

	p.Close()
	h.logger.Info().Str("socket_id", p.ID()).Int("connections", total).Msg("Connection unregistered.")
}

// Join adds p to room and notifies the room's other members. Joining a room twice is a no-op.
func (h *Hub) Join(p Peer, room string) *errs.CustomError {
	if err := validateRoomName(room); err != nil {
		return err
	}

	h.mu.Lock()
	if _, ok := h.peers[p.ID()]; !ok {
		h.mu.Unlock()
		return errs.NewError(errs.ErrUnsupportedEvent)
	}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]Peer)
		h.rooms[room] = members
	}
	if _, already := members[p.ID()]; already {
		h.mu.Unlock()
		return nil
	}

	members[p.ID()] = p
	if h.memberships[p.ID()] == nil {
		h.memberships[p.ID()] = make(map[string]struct{})
	}
	h.memberships[p.ID()][room] = struct{}{}

	others := snapshot(members, p.ID())
	h.mu.Unlock()

	h.logger.Info().Str("socket_id", p.ID()).Str("room", room).Msg("Joined room.")

	h.deliver(others, EventNotification, NotificationPayload{
		Message:   "A new user joined the room.",
		RoomName:  room,
		SocketID:  p.ID(),
		Timestamp: formatTime(h.now()),
	})
	return nil
}

// Leave removes p from room. Leaving a room p is not in is a no-op.
func (h *Hub) Leave(p Peer, room string) *errs.CustomError {
	if err := validateRoomName(room); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if rooms, ok := h.memberships[p.ID()]; ok {
		delete(rooms, room)
	}
	h.removeMemberLocked(room, p.ID())

	h.logger.Info().Str("socket_id", p.ID()).Str("room", room).Msg("Left room.")
	return nil
}

// SendToRoom delivers message to every current member of room, the sender included when it is a member.
// It returns the number of members the frame was queued for.
func (h *Hub) SendToRoom(sender Peer, room, message string) (int, *errs.CustomError) {
	if err := validateRoomName(room); err != nil {
		return 0, err
	}
	if len(message) > MaxMessageBytes {
		return 0, errs.NewError(errs.ErrMessageTooLong)
	}

	h.mu.RLock()
	members := snapshot(h.rooms[room], "")
	h.mu.RUnlock()

	delivered := h.deliver(members, EventRoomMessage, RoomMessagePayload{
		ID:        randx.MessageID(),
		RoomName:  room,
		Message:   message,
		SenderID:  sender.ID(),
		Timestamp: formatTime(h.now()),
	})
	return delivered, nil
}

// BroadcastExcludingSelf delivers message to every registered connection except sender.
func (h *Hub) BroadcastExcludingSelf(sender Peer, message string) (int, *errs.CustomError) {
	if len(message) > MaxMessageBytes {
		return 0, errs.NewError(errs.ErrMessageTooLong)
	}

	h.mu.RLock()
	others := snapshot(h.peers, sender.ID())
	h.mu.RUnlock()

	delivered := h.deliver(others, EventMessage, MessagePayload{
		ID:        randx.MessageID(),
		Type:      TypeBroadcast,
		Message:   message,
		SenderID:  sender.ID(),
		Timestamp: formatTime(h.now()),
	})
	return delivered, nil
}

// Echo sends message back to sender only.
func (h *Hub) Echo(sender Peer, message string) *errs.CustomError {
	if len(message) > MaxMessageBytes {
		return errs.NewError(errs.ErrMessageTooLong)
	}

	h.deliver([]Peer{sender}, EventMessage, MessagePayload{
		ID:        randx.MessageID(),
		Type:      TypeEcho,
		Message:   "Server received: " + message,
		Timestamp: formatTime(h.now()),
	})
	return nil
}

// SendError delivers an EventError frame describing err to p.
func (h *Hub) SendError(p Peer, err *errs.CustomError) {
	if err == nil {
		err = errs.NewError(errs.ErrUnknown)
	}
	h.deliver([]Peer{p}, EventError, ErrorPayload{Code: err.Code, Message: err.Message})
}

// Rooms returns the sorted names of the rooms p is in.
func (h *Hub) Rooms(p Peer) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.memberships[p.ID()]))
	for room := range h.memberships[p.ID()] {
		out = append(out, room)
	}
	sort.Strings(out)
	return out
}

// Members returns the sorted connection ids in room.
func (h *Hub) Members(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.rooms[room]))
	for id := range h.rooms[room] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ConnectionCount returns the number of registered connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.peers)
}

// RoomCount returns the number of non-empty rooms.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms)
}

// Shutdown closes every connection and rejects later registrations.
func (h *Hub) Shutdown() {
	h.logger.Info().Msg("Shutting down hub...")

	h.mu.Lock()
	h.closed = true
	peers := snapshot(h.peers, "")
	h.peers = make(map[string]Peer)
	h.rooms = make(map[string]map[string]Peer)
	h.memberships = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, p := range peers {
		p.Close()
	}

	h.logger.Info().Int("closed_connections", len(peers)).Msg("Hub shutdown complete.")
}

// deliver marshals one frame and queues it for every peer in targets.
// Peers that are closed or too slow miss the frame; that is logged and not reported to the sender.
func (h *Hub) deliver(targets []Peer, event string, data any) int {
	if len(targets) == 0 {
		return 0
	}

	frame, err := json.Marshal(OutFrame{Event: event, Data: data})
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Error marshaling frame.")
		return 0
	}

	delivered := 0
	for _, p := range targets {
		if p.Enqueue(frame) {
			delivered++
			continue
		}
		h.logger.Warn().Str("socket_id", p.ID()).Str("event", event).Msg("Peer unavailable, frame dropped.")
	}
	return delivered
}

// removeMemberLocked removes id from room, deleting the room when it becomes empty. Callers hold mu.
func (h *Hub) removeMemberLocked(room, id string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// snapshot copies the peers of set, skipping exclude. Callers hold mu.
func snapshot(set map[string]Peer, exclude string) []Peer {
	out := make([]Peer, 0, len(set))
	for id, p := range set {
		if id != exclude {
			out = append(out, p)
		}
	}
	return out
}

func validateRoomName(room string) *errs.CustomError {
	if room == "" || len(room) > MaxRoomNameBytes {
		return errs.NewError(errs.ErrRoomNameInvalid, MaxRoomNameBytes)
	}
	return nil
}
