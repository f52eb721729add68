package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type OriginCmd struct {
	startDevice string
	vrf         string
}

func NewOriginCmd() *OriginCmd { return &OriginCmd{} }

func (c *OriginCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "origin <prefix>",
		Short: "Classify where a prefix originates: connected, static, or eBGP",
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
			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"prefix":        args[0],
					"origin_type":   result.OriginType,
					"origin_router": result.OriginRouter,
				})
			}
			fmt.Printf("prefix=%s origin_type=%s origin_router=%s\n", args[0], result.OriginType, result.OriginRouter)
			return nil
		},
	}
	cmd.Flags().StringVar(&c.startDevice, "start-device", "", "device to begin the walk at (required)")
	cmd.Flags().StringVar(&c.vrf, "vrf", "", "VRF to trace within")
	_ = cmd.MarkFlagRequired("start-device")
	return cmd
}
