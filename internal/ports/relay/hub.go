package relay

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"wordcircuit/internal/app"
	"wordcircuit/internal/domain"
)

const peerSendBuffer = 16

// ErrSideTaken is returned when a side of a room already has a connection.
var ErrSideTaken = errors.New("side already connected")

// Hub tracks rooms of two peers and forwards snapshots between them.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*room
	log   zerolog.Logger
}

type room struct {
	peers  [app.Seats]*Peer
	latest [app.Seats][]byte
}

// Peer is one connection seated on a side of a room.
type Peer struct {
	ID   string
	Room string
	Side domain.Side

	send chan []byte
}

// RoomStatus describes which sides of a room are connected and which have
// published a snapshot.
type RoomStatus struct {
	Room      string          `json:"room"`
	Connected [app.Seats]bool `json:"connected"`
	Published [app.Seats]bool `json:"published"`
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]*room),
		log:   logger,
	}
}

// Join seats a new peer on side. The latest snapshot published by the other
// side, if any, is queued for it.
func (h *Hub) Join(roomID string, side domain.Side) (*Peer, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok {
		r = &room{}
		h.rooms[roomID] = r
	}
	if r.peers[side] != nil {
		return nil, ErrSideTaken
	}

	p := &Peer{
		ID:   uuid.NewString(),
		Room: roomID,
		Side: side,
		send: make(chan []byte, peerSendBuffer),
	}
	r.peers[side] = p
	replay := r.latest[side.Other()]
	if replay != nil {
		p.send <- replay
	}

	h.log.Info().
		Str("room", roomID).
		Str("peer", p.ID).
		Str("side", side.String()).
		Bool("replayed", replay != nil).
		Msg("peer joined")
	return p, nil
}

// Leave unseats p and closes its send channel. A room is dropped once both
// sides have left.
func (h *Hub) Leave(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[p.Room]
	if !ok || r.peers[p.Side] != p {
		return
	}
	r.peers[p.Side] = nil
	close(p.send)
	if r.peers[domain.SideA] == nil && r.peers[domain.SideB] == nil {
		delete(h.rooms, p.Room)
	}
	h.log.Info().Str("room", p.Room).Str("peer", p.ID).Msg("peer left")
}

// Forward records payload as the latest snapshot of p's side and queues it for
// the other side. It reports whether the other side received it.
func (h *Hub) Forward(p *Peer, payload []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[p.Room]
	if !ok || r.peers[p.Side] != p {
		return false
	}
	r.latest[p.Side] = payload

	other := r.peers[p.Side.Other()]
	if other == nil {
		return false
	}
	select {
	case other.send <- payload:
		return true
	default:
		h.log.Warn().Str("room", p.Room).Str("peer", other.ID).Msg("send buffer full, snapshot dropped")
		return false
	}
}

// Status reports the state of a room.
func (h *Hub) Status(roomID string) (RoomStatus, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok {
		return RoomStatus{}, false
	}
	st := RoomStatus{Room: roomID}
	for i := range r.peers {
		st.Connected[i] = r.peers[i] != nil
		st.Published[i] = r.latest[i] != nil
	}
	return st, true
}
