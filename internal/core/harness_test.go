package core

import (
	"sync"
)

// emitted is one event captured by recordingEmitter.
type emitted struct {
	Peer    PeerId
	Event   OutboundEvent
	Payload any
}

// recordingEmitter collects every emitted event, in emission order, and
// additionally buckets them per peer for assertions like "A never
// receives its own echoed offer".
type recordingEmitter struct {
	mu     sync.Mutex
	all    []emitted
	byPeer map[PeerId][]emitted
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{byPeer: make(map[PeerId][]emitted)}
}

func (r *recordingEmitter) Emit(peer PeerId, event OutboundEvent, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := emitted{Peer: peer, Event: event, Payload: payload}
	r.all = append(r.all, e)
	r.byPeer[peer] = append(r.byPeer[peer], e)
}

func (r *recordingEmitter) events(peer PeerId) []emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]emitted, len(r.byPeer[peer]))
	copy(out, r.byPeer[peer])
	return out
}

func (r *recordingEmitter) last(peer PeerId) (emitted, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	evs := r.byPeer[peer]
	if len(evs) == 0 {
		return emitted{}, false
	}
	return evs[len(evs)-1], true
}

func (r *recordingEmitter) countOf(peer PeerId, event OutboundEvent) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.byPeer[peer] {
		if e.Event == event {
			n++
		}
	}
	return n
}

// testSystem bundles a Matchmaker + Rooms + Controller sharing one
// recordingEmitter, the shape every scenario test in this package needs.
type testSystem struct {
	emit       *recordingEmitter
	rooms      *Rooms
	matchmaker *Matchmaker
	controller *Controller
}

func newTestSystem(limits Limits) *testSystem {
	emit := newRecordingEmitter()
	rooms := NewRooms(emit)
	matchmaker := NewMatchmaker(rooms, emit, limits)
	controller := NewController(matchmaker, rooms, emit)
	return &testSystem{emit: emit, rooms: rooms, matchmaker: matchmaker, controller: controller}
}

func defaultLimits() Limits {
	return Limits{MaxPeers: 200, MaxRooms: 100, MaxAttempts: 3}
}
