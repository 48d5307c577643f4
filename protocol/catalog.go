package protocol

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// ServerProtocol is the protocol the server natively speaks.
const ServerProtocol int32 = 621

// Catalog is the closed set of descriptors a server supports. It is built once
// at startup and never mutated; descriptors in the same catalog can translate
// packets to each other.
type Catalog struct {
	descriptors map[int32]*VersionDescriptor
	versions    []int32
}

// NewCatalog builds a descriptor for every record. Any invalid record or a
// protocol number used twice fails the whole catalog.
func NewCatalog(records ...VersionData) (*Catalog, error) {
	c := &Catalog{descriptors: make(map[int32]*VersionDescriptor, len(records))}
	for _, r := range records {
		d, err := NewDescriptor(r)
		if err != nil {
			return nil, err
		}
		if _, dup := c.descriptors[d.ProtocolVersion()]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateVersion, d.ProtocolVersion())
		}
		d.resolve = c.Get
		c.descriptors[d.ProtocolVersion()] = d
	}
	c.versions = lo.Keys(c.descriptors)
	slices.Sort(c.versions)
	return c, nil
}

// NewReferenceCatalog builds the catalog of every built-in version.
func NewReferenceCatalog() (*Catalog, error) {
	return NewCatalog(ReferenceVersions()...)
}

// ReferenceVersions returns fresh copies of the built-in version records.
func ReferenceVersions() []VersionData {
	return []VersionData{v527(), v589(), v621()}
}

// Get returns the descriptor of protocol v.
func (c *Catalog) Get(v int32) (*VersionDescriptor, bool) {
	d, ok := c.descriptors[v]
	return d, ok
}

// Contains reports whether protocol v is in the catalog.
func (c *Catalog) Contains(v int32) bool {
	_, ok := c.descriptors[v]
	return ok
}

// Versions returns the supported protocol numbers in ascending order.
func (c *Catalog) Versions() []int32 {
	return slices.Clone(c.versions)
}

// Len returns the number of descriptors.
func (c *Catalog) Len() int {
	return len(c.descriptors)
}
