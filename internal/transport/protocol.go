package transport

import "pairsignal/internal/core"

// inboundMessage is the wire shape for every client->server event
// (spec.md §6). Not every field applies to every event; unused fields
// are simply left zero.
type inboundMessage struct {
	Event     core.InboundEvent `json:"event"`
	Name      string            `json:"name,omitempty"`
	RoomId    core.RoomId       `json:"roomId,omitempty"`
	SDP       string            `json:"sdp,omitempty"`
	Candidate string            `json:"candidate,omitempty"`
	Type      string            `json:"type,omitempty"`
}

// outboundMessage is the wire envelope for every server->client event:
// the event name plus its (possibly nil) payload.
type outboundMessage struct {
	Event   core.OutboundEvent `json:"event"`
	Payload any                `json:"payload,omitempty"`
}
