package core

// Controller is the typed facade the Transport Adapter (C1) calls into.
// It owns a Matchmaker and a Room Registry and translates each inbound
// event (spec.md §6) into the right sequence of C2/C3 calls — replacing
// the duck-typed dispatch a JS/Python original would use with a small set
// of named handler methods (SPEC_FULL.md §9).
type Controller struct {
	Matchmaker *Matchmaker
	Rooms      *Rooms
	emit       Emitter
}

// NewController wires a Matchmaker, Room Registry and Emitter together.
func NewController(matchmaker *Matchmaker, rooms *Rooms, emit Emitter) *Controller {
	return &Controller{Matchmaker: matchmaker, Rooms: rooms, emit: emit}
}

// OnConnect has nothing to do until the peer identifies itself with join;
// the Transport Adapter only needs a PeerId to exist by then.
func (c *Controller) OnConnect(PeerId) {}

// OnJoin admits a peer under the given display name.
func (c *Controller) OnJoin(peerId PeerId, name string) {
	if ok, reason := c.Matchmaker.admit(peerId, name); !ok {
		c.emit.Emit(peerId, EventError, ErrorPayload{Message: reason.Message()})
	}
}

// OnNext handles a next request.
func (c *Controller) OnNext(peerId PeerId) {
	c.Matchmaker.next(peerId)
}

// OnReadyForNew handles a peer asking to re-enter the queue, e.g. after a
// stale-room timeout left it idle.
func (c *Controller) OnReadyForNew(peerId PeerId) {
	if ok, reason := c.Matchmaker.enqueue(peerId); !ok && reason == ReasonAbsent {
		c.emit.Emit(peerId, EventError, ErrorPayload{Message: "not admitted"})
	}
}

// OnOffer relays an offer and refreshes the sender's activity timestamp.
func (c *Controller) OnOffer(peerId PeerId, roomId RoomId, sdp string) {
	c.Matchmaker.touch(peerId)
	c.Rooms.onOffer(roomId, sdp, peerId)
}

// OnAnswer relays an answer and refreshes the sender's activity timestamp.
func (c *Controller) OnAnswer(peerId PeerId, roomId RoomId, sdp string) {
	c.Matchmaker.touch(peerId)
	c.Rooms.onAnswer(roomId, sdp, peerId)
}

// OnIceCandidate relays an ICE candidate and refreshes activity.
func (c *Controller) OnIceCandidate(peerId PeerId, roomId RoomId, candidate, kind string) {
	c.Matchmaker.touch(peerId)
	c.Rooms.onIceCandidate(roomId, peerId, candidate, kind)
}

// OnConnectionEstablished marks a room connected and refreshes activity.
func (c *Controller) OnConnectionEstablished(peerId PeerId, roomId RoomId) {
	c.Matchmaker.touch(peerId)
	c.Rooms.onConnectionEstablished(roomId)
}

// OnDisconnect handles both transport-detected disconnects and explicit
// manual-disconnect events — they are equivalent per spec.md §6.
func (c *Controller) OnDisconnect(peerId PeerId) {
	c.Matchmaker.remove(peerId)
}
