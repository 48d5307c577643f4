package protocol

import (
	"fmt"
	"maps"
	"slices"
)

// Translate converts pkt, authored against this descriptor's protocol, into
// the target protocol. The input packet is never modified.
//
// Policy, in order:
//   - target equals this protocol: a copy is returned with OutcomePassthrough.
//   - target unknown to the catalog: ErrUnsupportedProtocol.
//   - packet gated by a feature the target lacks: *GapError, ReasonFeatureUnsupported.
//   - target knows the packet name: ID remapped, fields fitted to the target
//     schema, OutcomeTranslated.
//   - otherwise the first listed Equivalent the target knows is used, with
//     renamed fields, OutcomeDowngraded.
//   - nothing fits: *GapError, ReasonNoEquivalent.
//
// Every gap error matches ErrTranslationGap; the caller drops the packet.
func (d *VersionDescriptor) Translate(pkt *Packet, target int32) (*Packet, error) {
	if pkt == nil {
		return nil, fmt.Errorf("%w: nil packet", ErrUnknownPacket)
	}
	if pkt.Protocol != 0 && pkt.Protocol != d.data.Protocol {
		return nil, fmt.Errorf("%w: packet %q authored for %d, not %d",
			ErrUnsupportedProtocol, pkt.Name, pkt.Protocol, d.data.Protocol)
	}
	if _, ok := d.data.Packets[pkt.Name]; !ok {
		return nil, fmt.Errorf("%w: %q in protocol %d", ErrUnknownPacket, pkt.Name, d.data.Protocol)
	}

	if target == d.data.Protocol {
		out := pkt.Clone()
		out.Protocol = target
		out.Outcome = OutcomePassthrough
		return out, nil
	}

	to, ok := d.lookup(target)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedProtocol, target)
	}

	if feature, gated := d.data.PacketFeatures[pkt.Name]; gated && !to.HasFeature(feature) {
		return nil, &GapError{
			Packet:  pkt.Name,
			From:    d.data.Protocol,
			To:      target,
			Reason:  ReasonFeatureUnsupported,
			Feature: feature,
		}
	}

	if id, ok := to.PacketID(pkt.Name); ok {
		out := pkt.Clone()
		out.ID = id
		out.Protocol = target
		out.Fields = to.fitFields(pkt.Name, out.Fields)
		out.Outcome = OutcomeTranslated
		return out, nil
	}

	for _, eq := range d.data.Equivalents[pkt.Name] {
		id, ok := to.PacketID(eq.Name)
		if !ok {
			continue
		}
		out := pkt.Clone()
		out.Name = eq.Name
		out.ID = id
		out.Protocol = target
		out.Fields = to.fitFields(eq.Name, renameFields(pkt.Fields, eq.Fields))
		out.Outcome = OutcomeDowngraded
		return out, nil
	}

	return nil, &GapError{
		Packet: pkt.Name,
		From:   d.data.Protocol,
		To:     target,
		Reason: ReasonNoEquivalent,
	}
}

func (d *VersionDescriptor) lookup(v int32) (*VersionDescriptor, bool) {
	if d.resolve == nil {
		return nil, false
	}
	return d.resolve(v)
}

// fitFields drops fields the schema of the named packet does not declare.
// Packets without a schema keep every field. fields must already be a copy.
func (d *VersionDescriptor) fitFields(name string, fields map[string]any) map[string]any {
	schema, ok := d.schemas[name]
	if !ok || fields == nil {
		return fields
	}
	for k := range fields {
		if _, keep := schema[k]; !keep {
			delete(fields, k)
		}
	}
	return fields
}

// renameFields applies renames. A renamed field overwrites a field already
// carrying the target name; sources sharing a target apply in sorted order.
func renameFields(fields map[string]any, renames map[string]string) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if _, ok := renames[k]; !ok {
			out[k] = v
		}
	}
	for _, k := range slices.Sorted(maps.Keys(renames)) {
		if v, ok := fields[k]; ok {
			out[renames[k]] = v
		}
	}
	return out
}
