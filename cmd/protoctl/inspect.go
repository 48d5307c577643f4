package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lcx/polyproto/codec"
	"github.com/lcx/polyproto/protocol"
)

func newVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List supported protocol versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := protocol.NewReferenceCatalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, v := range c.Versions() {
				d, _ := c.Get(v)
				marker := ""
				if v == protocol.ServerProtocol {
					marker = " (canonical)"
				}
				fmt.Fprintf(out, "%d\t%s\t%d packets%s\n", v, d.VersionLabel(), len(d.PacketNames()), marker)
			}
			return nil
		},
	}
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <version>",
		Short: "Show the descriptor of one protocol version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := protocol.NewReferenceCatalog()
			if err != nil {
				return err
			}
			d, err := descriptorFor(c, args[0])
			if err != nil {
				return err
			}
			describe(cmd.OutOrStdout(), d)
			return nil
		},
	}
}

func describe(w io.Writer, d *protocol.VersionDescriptor) {
	features := lo.Keys(lo.PickBy(d.FeatureFlags(), func(_ string, on bool) bool { return on }))
	slices.Sort(features)

	fmt.Fprintf(w, "protocol:    %d (%s)\n", d.ProtocolVersion(), d.VersionLabel())
	fmt.Fprintf(w, "packets:     %d\n", len(d.PacketNames()))
	fmt.Fprintf(w, "features:    %s\n", strings.Join(features, ", "))
	fmt.Fprintf(w, "blocks:      %s\n", d.BlockRange())
	fmt.Fprintf(w, "items:       %s\n", d.ItemRange())
	fmt.Fprintf(w, "entities:    %s\n", d.EntityRange())
	fmt.Fprintf(w, "chunks:      %s canonical %d\n", d.ChunkVersions(), d.CanonicalChunkVersion())
	fmt.Fprintf(w, "encryption:  %t\n", d.SupportsEncryption())
	fmt.Fprintf(w, "compression: %t threshold %d\n", d.SupportsCompression(), d.CompressionThreshold())
}

func newPacketCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "packet <version> <name|id>",
		Short: "Look up a packet by name or numeric ID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := protocol.NewReferenceCatalog()
			if err != nil {
				return err
			}
			d, err := descriptorFor(c, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if id, perr := strconv.ParseUint(args[1], 10, 32); perr == nil {
				name, ok := d.PacketName(uint32(id))
				if !ok {
					return fmt.Errorf("%w: id %d in protocol %d", protocol.ErrUnknownPacket, id, d.ProtocolVersion())
				}
				fmt.Fprintf(out, "%d\t%s\n", id, name)
				return nil
			}
			id, ok := d.PacketID(args[1])
			if !ok {
				return fmt.Errorf("%w: %q in protocol %d", protocol.ErrUnknownPacket, args[1], d.ProtocolVersion())
			}
			fmt.Fprintf(out, "%d\t%s\n", id, args[1])
			return nil
		},
	}
}

func newTranslateCmd() *cobra.Command {
	var (
		fields    []string
		direction string
	)
	cmd := &cobra.Command{
		Use:   "translate <from> <to> <packet>",
		Short: "Translate a sample packet between two protocol versions",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := protocol.NewReferenceCatalog()
			if err != nil {
				return err
			}
			from, err := descriptorFor(c, args[0])
			if err != nil {
				return err
			}
			to, err := parseVersion(args[1])
			if err != nil {
				return err
			}
			dir, err := parseDirection(direction)
			if err != nil {
				return err
			}
			body, err := parseFields(fields)
			if err != nil {
				return err
			}

			pkt, err := protocol.NewPacket(from, args[2], dir, body)
			if err != nil {
				return fmt.Errorf("%w: %q in protocol %d", err, args[2], from.ProtocolVersion())
			}
			out, err := from.Translate(pkt, to)
			if err != nil {
				return err
			}
			return printPacket(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "Packet field as key=value, repeatable")
	cmd.Flags().StringVarP(&direction, "direction", "d", "clientbound", "Packet direction (clientbound, serverbound)")
	return cmd
}

func parseDirection(raw string) (protocol.Direction, error) {
	switch strings.ToLower(raw) {
	case "clientbound", "c":
		return protocol.Clientbound, nil
	case "serverbound", "s":
		return protocol.Serverbound, nil
	}
	return 0, fmt.Errorf("invalid direction %q", raw)
}

// parseFields reads key=value pairs. Values that parse as bool or number
// keep that type.
func parseFields(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid field %q, want key=value", pair)
		}
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			out[k] = n
		} else if b, err := strconv.ParseBool(v); err == nil {
			out[k] = b
		} else {
			out[k] = v
		}
	}
	return out, nil
}

func printPacket(w io.Writer, pkt *protocol.Packet) error {
	fmt.Fprintf(w, "outcome:  %s\n", pkt.Outcome)
	fmt.Fprintf(w, "packet:   %s (id %d, protocol %d, %s)\n", pkt.Name, pkt.ID, pkt.Protocol, pkt.Direction)
	if len(pkt.Fields) == 0 {
		return nil
	}
	s, err := structpb.NewStruct(pkt.Fields)
	if err != nil {
		return err
	}
	b, err := (&codec.JSONCodec{Indent: "  "}).Encode(s)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "fields:   %s\n", b)
	return nil
}
