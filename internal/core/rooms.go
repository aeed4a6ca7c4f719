package core

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Rooms is the Room Registry (C2): owns active two-party rooms, routes
// signaling messages between the two members, and reaps rooms that never
// connect. Pairing, next and disconnect reach it while the Matchmaker
// holds its own lock; signaling relay and stale-room reaping call it
// directly and are serialized by the registry's own mutex — mirrors the
// teacher's nested `Mutex`/`room.Mutex` layering.
type Rooms struct {
	mu     sync.Mutex
	rooms  map[RoomId]*Room
	byPeer map[PeerId]RoomId
	emit   Emitter
}

// NewRooms constructs an empty Room Registry. emit is used to deliver
// outbound events; it must not block (§5).
func NewRooms(emit Emitter) *Rooms {
	return &Rooms{
		rooms:  make(map[RoomId]*Room),
		byPeer: make(map[PeerId]RoomId),
		emit:   emit,
	}
}

// createRoom allocates a fresh room with a as offerer and b as answerer.
func (r *Rooms) createRoom(a, b Peer) RoomId {
	r.mu.Lock()
	id := RoomId("room_" + uuid.NewString())
	room := &Room{
		Id:        id,
		A:         a.Id,
		B:         b.Id,
		CreatedAt: time.Now(),
	}
	r.rooms[id] = room
	r.byPeer[a.Id] = id
	r.byPeer[b.Id] = id
	r.mu.Unlock()

	r.emit.Emit(a.Id, EventSendOffer, SendOfferPayload{RoomId: id, PartnerName: b.Name})
	r.emit.Emit(b.Id, EventWaitOffer, WaitOfferPayload{RoomId: id, PartnerName: a.Name})
	return id
}

// onOffer forwards an offer from sender to its partner in roomId.
func (r *Rooms) onOffer(roomId RoomId, sdp string, sender PeerId) {
	r.mu.Lock()
	room, ok := r.rooms[roomId]
	if !ok {
		r.mu.Unlock()
		return
	}
	partner, ok := otherMember(room, sender)
	if ok {
		room.OfferSent = true
	}
	r.mu.Unlock()
	if ok {
		r.emit.Emit(partner, EventOutOffer, SDPPayload{RoomId: roomId, SDP: sdp})
	}
}

// onAnswer forwards an answer from sender to its partner in roomId.
func (r *Rooms) onAnswer(roomId RoomId, sdp string, sender PeerId) {
	r.mu.Lock()
	room, ok := r.rooms[roomId]
	if !ok {
		r.mu.Unlock()
		return
	}
	partner, ok := otherMember(room, sender)
	if ok {
		room.AnswerSent = true
	}
	r.mu.Unlock()
	if ok {
		r.emit.Emit(partner, EventOutAnswer, SDPPayload{RoomId: roomId, SDP: sdp})
	}
}

// onIceCandidate forwards an ICE candidate from sender to its partner.
func (r *Rooms) onIceCandidate(roomId RoomId, sender PeerId, candidate, kind string) {
	r.mu.Lock()
	room, ok := r.rooms[roomId]
	if !ok {
		r.mu.Unlock()
		return
	}
	partner, ok := otherMember(room, sender)
	r.mu.Unlock()
	if ok {
		r.emit.Emit(partner, EventOutIceCandidate, IceCandidatePayload{Candidate: candidate, Type: kind})
	}
}

// onConnectionEstablished marks roomId connected.
func (r *Rooms) onConnectionEstablished(roomId RoomId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[roomId]; ok {
		room.Connected = true
	}
}

// roomOf returns the room a peer currently belongs to, if any.
func (r *Rooms) roomOf(peerId PeerId) (RoomId, Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byPeer[peerId]
	if !ok {
		return "", Room{}, false
	}
	room, ok := r.rooms[id]
	if !ok {
		return "", Room{}, false
	}
	return id, *room, true
}

// destroy deletes roomId from the registry without notifying peers.
func (r *Rooms) destroy(roomId RoomId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.destroyLocked(roomId)
}

func (r *Rooms) destroyLocked(roomId RoomId) {
	room, ok := r.rooms[roomId]
	if !ok {
		return
	}
	delete(r.byPeer, room.A)
	delete(r.byPeer, room.B)
	delete(r.rooms, roomId)
}

// handlePeerDisconnect destroys peerId's room (if any), emits
// partner-disconnected to the other member, and returns that member.
func (r *Rooms) handlePeerDisconnect(peerId PeerId) (PeerId, bool) {
	r.mu.Lock()
	id, ok := r.byPeer[peerId]
	if !ok {
		r.mu.Unlock()
		return "", false
	}
	room := r.rooms[id]
	partner, ok := otherMember(room, peerId)
	r.destroyLocked(id)
	r.mu.Unlock()

	if ok {
		r.emit.Emit(partner, EventPartnerDisconnected, nil)
		return partner, true
	}
	return "", false
}

// reapStale destroys every room that has not connected within timeoutSec
// of its creation, emitting connection-timeout to both members.
func (r *Rooms) reapStale(now time.Time, timeoutSec int) {
	timeout := time.Duration(timeoutSec) * time.Second

	r.mu.Lock()
	var stale []*Room
	for _, room := range r.rooms {
		if !room.Connected && now.Sub(room.CreatedAt) > timeout {
			stale = append(stale, room)
		}
	}
	for _, room := range stale {
		r.destroyLocked(room.Id)
	}
	r.mu.Unlock()

	for _, room := range stale {
		r.emit.Emit(room.A, EventConnectionTimeout, nil)
		r.emit.Emit(room.B, EventConnectionTimeout, nil)
	}
}

// count returns the number of live rooms.
func (r *Rooms) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// stats returns aggregate room counts for a Snapshot.
func (r *Rooms) stats() RoomStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := RoomStats{Total: len(r.rooms)}
	for _, room := range r.rooms {
		if room.Connected {
			stats.Connected++
		} else {
			stats.Pending++
		}
	}
	return stats
}

func otherMember(room *Room, peerId PeerId) (PeerId, bool) {
	switch peerId {
	case room.A:
		return room.B, true
	case room.B:
		return room.A, true
	default:
		return "", false
	}
}
