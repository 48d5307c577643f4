package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lcx/polyproto/protocol"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "protoctl",
		Short: "Multi-protocol bridge tooling",
		Long: `protoctl inspects the protocol versions the bridge supports, translates
sample packets between them and runs the bridge services.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newVersionsCmd(),
		newDescribeCmd(),
		newPacketCmd(),
		newTranslateCmd(),
		newServeCmd(),
	)
	return root
}

func parseVersion(raw string) (int32, error) {
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid protocol version %q", raw)
	}
	return int32(v), nil
}

func descriptorFor(c *protocol.Catalog, raw string) (*protocol.VersionDescriptor, error) {
	v, err := parseVersion(raw)
	if err != nil {
		return nil, err
	}
	d, ok := c.Get(v)
	if !ok {
		return nil, fmt.Errorf("%w: %d", protocol.ErrUnsupportedProtocol, v)
	}
	return d, nil
}
