package protocol

import (
	"bytes"
	"maps"
)

// Direction is the flow of a packet relative to the server.
type Direction uint8

const (
	// Serverbound packets are sent by the client to the server.
	Serverbound Direction = iota + 1
	// Clientbound packets are sent by the server to the client.
	Clientbound
)

func (d Direction) String() string {
	switch d {
	case Serverbound:
		return "serverbound"
	case Clientbound:
		return "clientbound"
	}
	return "unknown"
}

// Outcome records what the last translation did to a packet.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	// OutcomePassthrough: source and target protocol were the same.
	OutcomePassthrough
	// OutcomeTranslated: same packet name, ID and fields adapted to the target.
	OutcomeTranslated
	// OutcomeDowngraded: replaced by the nearest equivalent packet the target knows.
	OutcomeDowngraded
)

func (o Outcome) String() string {
	switch o {
	case OutcomePassthrough:
		return "passthrough"
	case OutcomeTranslated:
		return "translated"
	case OutcomeDowngraded:
		return "downgraded"
	}
	return "none"
}

// Packet is the version-neutral envelope handed between the network layer,
// the router and gameplay handlers. Fields carries the decoded body; Payload
// holds raw bytes the bridge does not interpret.
type Packet struct {
	Name      string
	ID        uint32
	Protocol  int32
	Direction Direction
	Fields    map[string]any
	Payload   []byte
	Outcome   Outcome
}

// NewPacket builds a packet for the descriptor's protocol, resolving the ID
// from its packet table.
func NewPacket(d Descriptor, name string, dir Direction, fields map[string]any) (*Packet, error) {
	id, ok := d.PacketID(name)
	if !ok {
		return nil, ErrUnknownPacket
	}
	return &Packet{
		Name:      name,
		ID:        id,
		Protocol:  d.ProtocolVersion(),
		Direction: dir,
		Fields:    fields,
	}, nil
}

// Clone returns a copy that shares no mutable state with p.
func (p *Packet) Clone() *Packet {
	if p == nil {
		return nil
	}
	c := *p
	c.Fields = maps.Clone(p.Fields)
	c.Payload = bytes.Clone(p.Payload)
	return &c
}
