// Package core implements the matchmaking & signaling controller: the
// concurrent state machine that owns connected peers, the waiting queue,
// and the set of active two-party rooms.
package core

import (
	"time"

	"github.com/google/uuid"
)

// PeerId is the opaque stable identifier a transport adapter assigns to a
// connection for its lifetime.
type PeerId string

// NewPeerId mints a fresh peer identifier, grounded on the teacher's
// generatePeerID.
func NewPeerId() PeerId {
	return PeerId("peer_" + uuid.NewString())
}

// RoomId is a freshly generated identifier minted when a pair is formed.
type RoomId string

// State is where a Peer currently sits in the matchmaking lifecycle.
type State int

const (
	// StateIdle is a transient state never persisted between operations;
	// a peer is always Waiting or Paired once admitted.
	StateIdle State = iota
	StateWaiting
	StatePaired
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StatePaired:
		return "paired"
	default:
		return "idle"
	}
}

// Peer is a connected client endpoint tracked by the Matchmaker.
type Peer struct {
	Id             PeerId
	Name           string
	State          State
	CreatedAt      time.Time
	LastActivityAt time.Time
	Attempts       int
}

// Room is a two-peer signaling session. A is the offerer, B is the
// answerer — the asymmetry is the glare-avoidance mechanism.
type Room struct {
	Id         RoomId
	A          PeerId
	B          PeerId
	CreatedAt  time.Time
	OfferSent  bool
	AnswerSent bool
	Connected  bool
}

// Snapshot is a read-only, lock-consistent view of operational state,
// produced by the Housekeeper and served over the HTTP surface.
type Snapshot struct {
	Peers              int       `json:"peers"`
	Waiting            int       `json:"waiting"`
	RoomsTotal         int       `json:"roomsTotal"`
	RoomsConnected     int       `json:"roomsConnected"`
	RoomsPending       int       `json:"roomsPending"`
	MaxPeers           int       `json:"maxPeers"`
	MaxRooms           int       `json:"maxRooms"`
	LoadPct            float64   `json:"loadPct"`
	RoomUtilizationPct float64   `json:"roomUtilizationPct"`
	TakenAt            time.Time `json:"takenAt"`
}

// RoomStats is the Room Registry's own contribution to a Snapshot.
type RoomStats struct {
	Total     int
	Connected int
	Pending   int
}
