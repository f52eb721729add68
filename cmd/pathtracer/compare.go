package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/malbeclabs/pathtracer/internal/reverse"
)

type CompareCmd struct {
	vrf string
}

func NewCompareCmd() *CompareCmd { return &CompareCmd{} }

func (c *CompareCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <source> <destination>",
		Short: "Trace both directions between two devices and report asymmetry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildCoreDeps()
			if err != nil {
				return err
			}
			result, err := reverse.TraceReverse(context.Background(), deps.walker, args[0], args[1], c.vrf)
			if err != nil {
				return err
			}
			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Printf("symmetric=%t divergence_indices=%v\n", result.Symmetric, result.DivergenceIndices)
			return nil
		},
	}
	cmd.Flags().StringVar(&c.vrf, "vrf", "", "VRF to trace within")
	return cmd
}
