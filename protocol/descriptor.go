// Package protocol describes the client protocol versions the bridge can speak.
//
// Every supported version is one VersionData record: its packet table, feature
// flags, valid block/item/entity ID ranges, chunk format range and transport
// parameters. NewDescriptor validates a record and turns it into an immutable
// VersionDescriptor; a Catalog groups the descriptors of one server and lets
// them translate packets to each other. Adding a version means adding a record,
// never new control flow.
package protocol

import (
	"fmt"
	"maps"
	"slices"
)

// Descriptor is the read-only contract of one protocol version.
type Descriptor interface {
	ProtocolVersion() int32
	VersionLabel() string

	// PacketID and PacketName are inverse lookups over the packet table.
	// A miss is reported through the boolean, never as an error.
	PacketID(name string) (uint32, bool)
	PacketName(id uint32) (string, bool)

	// HasFeature is false for every name absent from the feature table.
	HasFeature(name string) bool
	FeatureFlags() map[string]bool

	EncodeBlockRuntimeID(blockID, data uint32) uint32
	DecodeBlockRuntimeID(id uint32) (blockID, data uint32)

	IsBlockSupported(id int32) bool
	IsItemSupported(id int32) bool
	IsEntitySupported(id int32) bool
	MaxBlockID() int32
	MaxItemID() int32
	MaxEntityID() int32

	SupportsChunkVersion(v int32) bool
	CanonicalChunkVersion() int32

	SupportsEncryption() bool
	SupportsCompression() bool
	CompressionThreshold() int

	// Translate converts a packet authored against this protocol into the
	// target protocol. See VersionDescriptor.Translate for the gap policy.
	Translate(pkt *Packet, target int32) (*Packet, error)
}

// Transport holds the connection level parameters of a version.
type Transport struct {
	Encryption           bool
	Compression          bool
	CompressionThreshold int
}

// Equivalent names a packet of another protocol that can carry the content
// of a packet missing from that protocol's table.
type Equivalent struct {
	// Name of the packet in the target table.
	Name string
	// Fields renames source fields to target fields. Unlisted fields keep
	// their name.
	Fields map[string]string
}

// VersionData is the table-driven definition of one protocol version.
type VersionData struct {
	Protocol int32
	Label    string

	Packets  map[string]uint32
	Features map[string]bool

	Blocks   Range
	Items    Range
	Entities Range

	ChunkVersions         Range
	CanonicalChunkVersion int32

	Transport Transport

	// Equivalents lists, per packet of this table, the ordered replacements
	// to try when a target protocol does not know the packet.
	Equivalents map[string][]Equivalent
	// PacketFeatures marks packets whose content requires a feature; they
	// are never sent to a protocol lacking it.
	PacketFeatures map[string]string
	// PacketFields is the field schema of packets in this table. Fields
	// outside the schema are stripped from packets translated into it.
	PacketFields map[string][]string
}

// VersionDescriptor is the immutable descriptor built from VersionData.
type VersionDescriptor struct {
	data    VersionData
	names   map[uint32]string
	schemas map[string]map[string]struct{}
	resolve func(int32) (*VersionDescriptor, bool)
}

var _ Descriptor = (*VersionDescriptor)(nil)

// NewDescriptor validates data and builds its descriptor. The packet table
// must be injective: the first ID claimed by two names fails construction
// with ErrAmbiguousPacketTable.
func NewDescriptor(data VersionData) (*VersionDescriptor, error) {
	if data.Protocol <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedProtocol, data.Protocol)
	}
	for name, r := range map[string]Range{
		"blocks":   data.Blocks,
		"items":    data.Items,
		"entities": data.Entities,
		"chunks":   data.ChunkVersions,
	} {
		if err := r.validate(name); err != nil {
			return nil, fmt.Errorf("protocol %d: %w", data.Protocol, err)
		}
	}
	if !data.ChunkVersions.Contains(data.CanonicalChunkVersion) {
		return nil, fmt.Errorf("%w: protocol %d canonical chunk version %d outside %s",
			ErrInvalidRange, data.Protocol, data.CanonicalChunkVersion, data.ChunkVersions)
	}

	d := &VersionDescriptor{data: cloneData(data)}

	// Walk names in sorted order so the reported conflict is deterministic.
	d.names = make(map[uint32]string, len(d.data.Packets))
	for _, name := range slices.Sorted(maps.Keys(d.data.Packets)) {
		id := d.data.Packets[name]
		if prev, dup := d.names[id]; dup {
			return nil, fmt.Errorf("%w: protocol %d id %d claimed by %q and %q",
				ErrAmbiguousPacketTable, data.Protocol, id, prev, name)
		}
		d.names[id] = name
	}

	for name := range d.data.Equivalents {
		if _, ok := d.data.Packets[name]; !ok {
			return nil, fmt.Errorf("%w: protocol %d equivalents for %q", ErrUnknownPacket, data.Protocol, name)
		}
	}
	for name := range d.data.PacketFeatures {
		if _, ok := d.data.Packets[name]; !ok {
			return nil, fmt.Errorf("%w: protocol %d feature gate for %q", ErrUnknownPacket, data.Protocol, name)
		}
	}

	d.schemas = make(map[string]map[string]struct{}, len(d.data.PacketFields))
	for name, fields := range d.data.PacketFields {
		if _, ok := d.data.Packets[name]; !ok {
			return nil, fmt.Errorf("%w: protocol %d field schema for %q", ErrUnknownPacket, data.Protocol, name)
		}
		set := make(map[string]struct{}, len(fields))
		for _, f := range fields {
			set[f] = struct{}{}
		}
		d.schemas[name] = set
	}

	return d, nil
}

// cloneData copies every table so later mutation of the caller's record
// cannot reach the descriptor.
func cloneData(data VersionData) VersionData {
	c := data
	c.Packets = maps.Clone(data.Packets)
	c.Features = maps.Clone(data.Features)
	c.PacketFeatures = maps.Clone(data.PacketFeatures)
	c.Equivalents = make(map[string][]Equivalent, len(data.Equivalents))
	for name, eqs := range data.Equivalents {
		cp := make([]Equivalent, len(eqs))
		for i, eq := range eqs {
			cp[i] = Equivalent{Name: eq.Name, Fields: maps.Clone(eq.Fields)}
		}
		c.Equivalents[name] = cp
	}
	c.PacketFields = make(map[string][]string, len(data.PacketFields))
	for name, fields := range data.PacketFields {
		c.PacketFields[name] = slices.Clone(fields)
	}
	return c
}

func (d *VersionDescriptor) ProtocolVersion() int32 { return d.data.Protocol }
func (d *VersionDescriptor) VersionLabel() string   { return d.data.Label }

func (d *VersionDescriptor) PacketID(name string) (uint32, bool) {
	id, ok := d.data.Packets[name]
	return id, ok
}

func (d *VersionDescriptor) PacketName(id uint32) (string, bool) {
	name, ok := d.names[id]
	return name, ok
}

// PacketNames returns the names of the packet table in ID order.
func (d *VersionDescriptor) PacketNames() []string {
	ids := slices.Sorted(maps.Keys(d.names))
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = d.names[id]
	}
	return names
}

func (d *VersionDescriptor) HasFeature(name string) bool {
	return d.data.Features[name]
}

func (d *VersionDescriptor) FeatureFlags() map[string]bool {
	return maps.Clone(d.data.Features)
}

func (d *VersionDescriptor) EncodeBlockRuntimeID(blockID, data uint32) uint32 {
	return EncodeBlockRuntimeID(blockID, data)
}

func (d *VersionDescriptor) DecodeBlockRuntimeID(id uint32) (blockID, data uint32) {
	return DecodeBlockRuntimeID(id)
}

func (d *VersionDescriptor) IsBlockSupported(id int32) bool  { return d.data.Blocks.Contains(id) }
func (d *VersionDescriptor) IsItemSupported(id int32) bool   { return d.data.Items.Contains(id) }
func (d *VersionDescriptor) IsEntitySupported(id int32) bool { return d.data.Entities.Contains(id) }
func (d *VersionDescriptor) MaxBlockID() int32               { return d.data.Blocks.Max }
func (d *VersionDescriptor) MaxItemID() int32                { return d.data.Items.Max }
func (d *VersionDescriptor) MaxEntityID() int32              { return d.data.Entities.Max }

// BlockRange, ItemRange and EntityRange return the valid id intervals.
func (d *VersionDescriptor) BlockRange() Range  { return d.data.Blocks }
func (d *VersionDescriptor) ItemRange() Range   { return d.data.Items }
func (d *VersionDescriptor) EntityRange() Range { return d.data.Entities }

func (d *VersionDescriptor) SupportsChunkVersion(v int32) bool {
	return d.data.ChunkVersions.Contains(v)
}

func (d *VersionDescriptor) CanonicalChunkVersion() int32 {
	return d.data.CanonicalChunkVersion
}

// ChunkVersions returns the accepted chunk format interval.
func (d *VersionDescriptor) ChunkVersions() Range {
	return d.data.ChunkVersions
}

func (d *VersionDescriptor) SupportsEncryption() bool  { return d.data.Transport.Encryption }
func (d *VersionDescriptor) SupportsCompression() bool { return d.data.Transport.Compression }
func (d *VersionDescriptor) CompressionThreshold() int { return d.data.Transport.CompressionThreshold }
