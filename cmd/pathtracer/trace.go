package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/malbeclabs/pathtracer/internal/walker"
)

type TraceCmd struct {
	startDevice string
	vrf         string
}

func NewTraceCmd() *TraceCmd { return &TraceCmd{} }

func (c *TraceCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <prefix>",
		Short: "Walk a prefix hop by hop from a starting device to its origin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildCoreDeps()
			if err != nil {
				return err
			}
			result, err := deps.walker.Trace(context.Background(), args[0], c.startDevice, c.vrf, nil)
			if err != nil {
				return err
			}
			return printTraceResult(result)
		},
	}
	cmd.Flags().StringVar(&c.startDevice, "start-device", "", "device to begin the walk at (required)")
	cmd.Flags().StringVar(&c.vrf, "vrf", "", "VRF to trace within")
	_ = cmd.MarkFlagRequired("start-device")
	return cmd
}

func printTraceResult(result *walker.TraceResult) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("prefix=%s start=%s vrf=%s origin=%s(%s) paths=%d truncated=%t\n",
		result.Prefix, result.Start, result.VRF, result.OriginType, result.OriginRouter,
		len(result.Paths), result.Truncated)
	for i, p := range result.Paths {
		fmt.Printf("  path %d (end_reason=%s, complete=%t):\n", i, p.EndReason, p.Complete)
		for _, hop := range p.Hops {
			fmt.Printf("    %-16s role=%-12s next_hop=%-15s %s\n", hop.Device, hop.Role, hop.NextHop, hop.Note)
		}
	}
	return nil
}
