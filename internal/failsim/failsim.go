// Package failsim implements single-node failure simulation (spec.md
// §4.F): it compares a baseline trace against the same trace with one
// device excluded and summarizes the impact.
package failsim

import (
	"context"
	"fmt"

	"github.com/malbeclabs/pathtracer/internal/walker"
)

// Tracer is the subset of Walker that failure simulation needs.
type Tracer interface {
	Trace(ctx context.Context, prefix, start, vrf string, excluded []string) (*walker.TraceResult, error)
}

// Result is the outcome of SimulateFailure.
type Result struct {
	Baseline     *walker.TraceResult `json:"baseline"`
	Failover     *walker.TraceResult `json:"failover"`
	FailedNode   string              `json:"failed_node"`
	AffectedHops []string            `json:"affected_hops"`
	Summary      string              `json:"summary"`
}

// SimulateFailure runs Trace(destination, source) twice: once as a
// baseline and once with failedNode excluded, then diffs the device
// sets at the hop level.
func SimulateFailure(ctx context.Context, w Tracer, source, destination, failedNode, vrf string) (*Result, error) {
	baseline, err := w.Trace(ctx, destination, source, vrf, nil)
	if err != nil {
		return nil, fmt.Errorf("baseline trace: %w", err)
	}
	failover, err := w.Trace(ctx, destination, source, vrf, []string{failedNode})
	if err != nil {
		return nil, fmt.Errorf("failover trace: %w", err)
	}

	affected := affectedHops(baseline, failover)
	summary := summarize(failedNode, baseline, failover, affected)

	return &Result{
		Baseline:     baseline,
		Failover:     failover,
		FailedNode:   failedNode,
		AffectedHops: affected,
		Summary:      summary,
	}, nil
}

// affectedHops returns the devices present in baseline but absent from
// failover (set difference at the device level, spec.md §4.F).
func affectedHops(baseline, failover *walker.TraceResult) []string {
	failoverDevices := make(map[string]struct{})
	for _, p := range failover.Paths {
		for _, h := range p.Hops {
			failoverDevices[h.Device] = struct{}{}
		}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, p := range baseline.Paths {
		for _, h := range p.Hops {
			if _, ok := failoverDevices[h.Device]; ok {
				continue
			}
			if _, dup := seen[h.Device]; dup {
				continue
			}
			seen[h.Device] = struct{}{}
			out = append(out, h.Device)
		}
	}
	return out
}

func hasCompletePath(r *walker.TraceResult) bool {
	for _, p := range r.Paths {
		if p.Complete {
			return true
		}
	}
	return false
}

func summarize(failedNode string, baseline, failover *walker.TraceResult, affected []string) string {
	if !hasCompletePath(failover) {
		return "no failover path"
	}
	if len(affected) == 0 {
		return fmt.Sprintf("failover succeeded around %s", failedNode)
	}
	return fmt.Sprintf("failover degraded after removing %s", failedNode)
}
