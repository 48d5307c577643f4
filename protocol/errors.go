package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedProtocol  = errors.New("protocol: unsupported protocol version")
	ErrAmbiguousPacketTable = errors.New("protocol: ambiguous packet table")
	ErrInvalidRange         = errors.New("protocol: invalid range")
	ErrUnknownPacket        = errors.New("protocol: unknown packet")
	ErrTranslationGap       = errors.New("protocol: translation gap")
	ErrDuplicateVersion     = errors.New("protocol: duplicate protocol version")
)

// GapReason says why a packet could not be represented in the target protocol.
type GapReason uint8

const (
	// ReasonNoEquivalent: the target table has neither the packet nor any
	// listed equivalent.
	ReasonNoEquivalent GapReason = iota + 1
	// ReasonFeatureUnsupported: the packet carries content gated by a feature
	// the target protocol does not have.
	ReasonFeatureUnsupported
)

func (r GapReason) String() string {
	switch r {
	case ReasonNoEquivalent:
		return "no_equivalent"
	case ReasonFeatureUnsupported:
		return "feature_unsupported"
	}
	return "unknown"
}

// GapError is returned by Translate when the packet has no representation in
// the target protocol. The packet must be dropped by the caller; it is never
// forwarded untranslated.
type GapError struct {
	Packet  string
	From    int32
	To      int32
	Reason  GapReason
	Feature string
}

func (e *GapError) Error() string {
	if e.Reason == ReasonFeatureUnsupported {
		return fmt.Sprintf("protocol: translation gap: %s %d->%d requires feature %q",
			e.Packet, e.From, e.To, e.Feature)
	}
	return fmt.Sprintf("protocol: translation gap: %s %d->%d has no equivalent", e.Packet, e.From, e.To)
}

func (e *GapError) Unwrap() error {
	return ErrTranslationGap
}
