package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/malbeclabs/pathtracer/internal/failsim"
)

type SimulateFailureCmd struct {
	vrf string
}

func NewSimulateFailureCmd() *SimulateFailureCmd { return &SimulateFailureCmd{} }

func (c *SimulateFailureCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate-failure <source> <destination> <failed-node>",
		Short: "Compare a baseline trace against the same trace with one device excluded",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildCoreDeps()
			if err != nil {
				return err
			}
			result, err := failsim.SimulateFailure(context.Background(), deps.walker, args[0], args[1], args[2], c.vrf)
			if err != nil {
				return err
			}
			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Println(result.Summary)
			return nil
		},
	}
	cmd.Flags().StringVar(&c.vrf, "vrf", "", "VRF to trace within")
	return cmd
}
