package core

import (
	"sync"
	"time"
)

// Limits holds the capacity and fairness bounds supplied at construction
// (spec.md §3, §6).
type Limits struct {
	MaxPeers    int
	MaxRooms    int
	MaxAttempts int
}

// Matchmaker is C3: it owns the peer directory and the waiting queue,
// maintains each peer's lifecycle state, pairs peers FIFO, and hands
// pairing results to the Room Registry. All operations are externally
// serialized by mu — the single exclusive lock described in §5.
type Matchmaker struct {
	mu        sync.Mutex
	directory map[PeerId]*Peer
	queue     *queue
	rooms     *Rooms
	limits    Limits
	emit      Emitter
	now       func() time.Time
}

// NewMatchmaker constructs a Matchmaker bound to a Room Registry, emitter,
// and capacity limits.
func NewMatchmaker(rooms *Rooms, emit Emitter, limits Limits) *Matchmaker {
	return &Matchmaker{
		directory: make(map[PeerId]*Peer),
		queue:     newQueue(),
		rooms:     rooms,
		limits:    limits,
		emit:      emit,
		now:       time.Now,
	}
}

// admit performs admission for a newly connected peer.
func (m *Matchmaker) admit(peerId PeerId, name string) (ok bool, reason RejectReason) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.directory[peerId]; exists {
		return false, ReasonDuplicate
	}
	if len(m.directory) >= m.limits.MaxPeers || m.rooms.count() >= m.limits.MaxRooms {
		return false, ReasonAtCapacity
	}

	now := m.now()
	m.directory[peerId] = &Peer{
		Id:             peerId,
		Name:           name,
		State:          StateWaiting,
		CreatedAt:      now,
		LastActivityAt: now,
		Attempts:       0,
	}
	m.queue.pushTail(peerId)
	m.emit.Emit(peerId, EventLobby, nil)
	m.pair()
	return true, ""
}

// enqueue transitions a peer back into Waiting, e.g. after its partner
// disconnected or on explicit ready-for-new.
func (m *Matchmaker) enqueue(peerId PeerId) (ok bool, reason IgnoreReason) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enqueueLocked(peerId)
}

func (m *Matchmaker) enqueueLocked(peerId PeerId) (bool, IgnoreReason) {
	peer, exists := m.directory[peerId]
	if !exists {
		return false, ReasonAbsent
	}
	switch peer.State {
	case StateWaiting:
		return false, ReasonAlreadyWaiting
	case StatePaired:
		// A Paired peer with no actual room is a stale-reap leftover
		// (§4.2's reapStale destroys the room without touching peer
		// state) rather than a genuine active session; self-heal it
		// into the queue instead of rejecting, per the self-healing
		// philosophy for internal invariant violations (spec.md §7).
		if _, _, inRoom := m.rooms.roomOf(peerId); inRoom {
			return false, ReasonPaired
		}
	}

	peer.State = StateWaiting
	peer.Attempts = 0
	m.queue.pushTail(peerId)
	m.emit.Emit(peerId, EventLobby, nil)
	m.pair()
	return true, ""
}

// next handles a peer's request for a new partner. A no-op unless the
// peer is currently Paired. pair() runs only when other peers were
// already waiting, so the two are not put straight back into a room
// together.
func (m *Matchmaker) next(peerId PeerId) {
	m.mu.Lock()
	defer m.mu.Unlock()

	peer, exists := m.directory[peerId]
	if !exists || peer.State != StatePaired {
		return
	}

	_, room, ok := m.rooms.roomOf(peerId)
	if !ok {
		return
	}
	partnerId, _ := otherMember(&room, peerId)
	m.rooms.destroy(room.Id)
	m.emit.Emit(partnerId, EventPartnerDisconnected, nil)

	othersWaiting := m.queue.len() > 0

	peer.State = StateWaiting
	peer.Attempts = 0
	m.queue.pushTail(peerId)

	if partner, ok := m.directory[partnerId]; ok {
		partner.State = StateWaiting
		partner.Attempts = 0
		m.queue.pushTail(partnerId)
	}

	if othersWaiting {
		m.pair()
	}
}

// remove is the transport-initiated disconnect path.
func (m *Matchmaker) remove(peerId PeerId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(peerId)
}

func (m *Matchmaker) removeLocked(peerId PeerId) {
	if partnerId, ok := m.rooms.handlePeerDisconnect(peerId); ok {
		if partner, ok := m.directory[partnerId]; ok {
			partner.State = StateWaiting
			partner.Attempts = 0
			m.queue.pushTail(partnerId)
		}
	}
	delete(m.directory, peerId)
	m.queue.remove(peerId)
	m.pair()
}

// touch refreshes a peer's last-activity timestamp.
func (m *Matchmaker) touch(peerId PeerId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if peer, ok := m.directory[peerId]; ok {
		peer.LastActivityAt = m.now()
	}
}

// reapInactive removes every peer whose last activity predates now by
// more than timeoutSec.
func (m *Matchmaker) reapInactive(now time.Time, timeoutSec int) {
	timeout := time.Duration(timeoutSec) * time.Second

	m.mu.Lock()
	var stale []PeerId
	for id, peer := range m.directory {
		if now.Sub(peer.LastActivityAt) > timeout {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		m.removeLocked(id)
	}
	m.mu.Unlock()
}

// pair runs the FIFO pairing algorithm (spec.md §4.3). Callers must hold
// mu.
func (m *Matchmaker) pair() {
	// demoted tracks peers already pushed to the tail for exceeding
	// MaxAttempts during this call, so two mutually-exhausted peers
	// can't bounce off each other forever — once both have been
	// demoted once, nothing further can resolve this round and the
	// loop exits instead of cycling.
	demoted := make(map[PeerId]bool)

	for m.queue.len() >= 2 {
		id1, _ := m.queue.popHead()
		id2, _ := m.queue.popHead()

		p1, ok1 := m.directory[id1]
		p2, ok2 := m.directory[id2]
		if !ok1 && !ok2 {
			continue
		}
		if !ok1 {
			m.queue.pushFront(id2)
			continue
		}
		if !ok2 {
			m.queue.pushFront(id1)
			continue
		}

		if p1.State != StateWaiting || p2.State != StateWaiting {
			// Queue is temporarily inconsistent; restore order and
			// revisit on the next event.
			m.queue.pushFront(id2)
			m.queue.pushFront(id1)
			break
		}

		if p1.Attempts >= m.limits.MaxAttempts || p2.Attempts >= m.limits.MaxAttempts {
			offender, other := id1, id2
			if p1.Attempts < m.limits.MaxAttempts {
				offender, other = id2, id1
			}
			if demoted[offender] {
				// This offender was already demoted once in this
				// call; demoting it again would only cycle, so no
				// progress is possible this round.
				m.queue.pushFront(id2)
				m.queue.pushFront(id1)
				break
			}
			demoted[offender] = true
			m.queue.pushTail(offender)
			m.queue.pushFront(other)
			continue
		}

		p1.State = StatePaired
		p2.State = StatePaired
		p1.Attempts++
		p2.Attempts++
		m.rooms.createRoom(*p1, *p2)
	}
}

// Snapshot produces a lock-consistent operational snapshot for the
// Housekeeper / HTTP surface.
func (m *Matchmaker) Snapshot(takenAt time.Time) Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	peers := len(m.directory)
	waiting := m.queue.len()
	// rooms.stats() takes Rooms' own (distinct) mutex, never m.mu, so
	// calling it while still holding m.mu cannot deadlock; it does keep
	// the peer/queue and room counts a true single-instant snapshot
	// instead of two reads straddling an intervening admit/pair.
	stats := m.rooms.stats()

	var loadPct, roomPct float64
	if m.limits.MaxPeers > 0 {
		loadPct = 100 * float64(peers) / float64(m.limits.MaxPeers)
	}
	if m.limits.MaxRooms > 0 {
		roomPct = 100 * float64(stats.Total) / float64(m.limits.MaxRooms)
	}

	return Snapshot{
		Peers:              peers,
		Waiting:            waiting,
		RoomsTotal:         stats.Total,
		RoomsConnected:     stats.Connected,
		RoomsPending:       stats.Pending,
		MaxPeers:           m.limits.MaxPeers,
		MaxRooms:           m.limits.MaxRooms,
		LoadPct:            loadPct,
		RoomUtilizationPct: roomPct,
		TakenAt:            takenAt,
	}
}

// PeerState exposes a single peer's state for tests and diagnostics.
func (m *Matchmaker) PeerState(peerId PeerId) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	peer, ok := m.directory[peerId]
	if !ok {
		return StateIdle, false
	}
	return peer.State, true
}

// QueueSnapshot exposes the current waiting-queue order for tests.
func (m *Matchmaker) QueueSnapshot() []PeerId {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.snapshot()
}

// DirectorySize exposes |Directory| for tests and invariant checks.
func (m *Matchmaker) DirectorySize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.directory)
}
