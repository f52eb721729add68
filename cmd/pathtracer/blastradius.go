package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/malbeclabs/pathtracer/internal/blastradius"
)

type BlastRadiusCmd struct{}

func NewBlastRadiusCmd() *BlastRadiusCmd { return &BlastRadiusCmd{} }

func (c *BlastRadiusCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "blast-radius <failed-node>",
		Short: "Enumerate every (source, destination) pair isolated or rerouted by a device failure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := buildCoreDeps()
			if err != nil {
				return err
			}
			graph := blastradius.Build(deps.inv)
			result, err := blastradius.Calculate(context.Background(), graph, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Println(result.Summary)
			if result.SkippedPairs > 0 {
				fmt.Printf("skipped %d dense pair(s) without enumerating paths\n", result.SkippedPairs)
			}
			return nil
		},
	}
}
