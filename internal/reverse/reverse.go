// Package reverse implements reverse-path tracing and asymmetry
// detection (spec.md §4.E): it runs a forward and a reverse Trace and
// diffs the device sequence of their first published path.
package reverse

import (
	"context"
	"fmt"

	"github.com/malbeclabs/pathtracer/internal/walker"
)

// Tracer is the subset of Walker that reverse tracing needs.
type Tracer interface {
	Trace(ctx context.Context, prefix, start, vrf string, excluded []string) (*walker.TraceResult, error)
}

// Result is the outcome of TraceReverse.
type Result struct {
	Forward          *walker.TraceResult `json:"forward"`
	Reverse          *walker.TraceResult `json:"reverse"`
	Symmetric        bool                `json:"symmetric"`
	DivergenceIndices []int              `json:"divergence_indices"`
}

// TraceReverse runs Trace(destination, source) as the forward path and
// Trace(source, destination) as the reverse path, then compares the
// first published Trace-Path from each.
func TraceReverse(ctx context.Context, w Tracer, source, destination, vrf string) (*Result, error) {
	fwd, err := w.Trace(ctx, destination, source, vrf, nil)
	if err != nil {
		return nil, fmt.Errorf("forward trace: %w", err)
	}
	rev, err := w.Trace(ctx, source, destination, vrf, nil)
	if err != nil {
		return nil, fmt.Errorf("reverse trace: %w", err)
	}

	fwdSeq := deviceSequence(fwd)
	revSeq := deviceSequence(rev)
	reversed := reverseStrings(revSeq)

	divergence := diverge(fwdSeq, reversed)

	return &Result{
		Forward:           fwd,
		Reverse:           rev,
		Symmetric:         len(divergence) == 0,
		DivergenceIndices: divergence,
	}, nil
}

func deviceSequence(r *walker.TraceResult) []string {
	if r == nil || len(r.Paths) == 0 {
		return nil
	}
	p := r.Paths[0]
	out := make([]string, len(p.Hops))
	for i, h := range p.Hops {
		out[i] = h.Device
	}
	return out
}

func reverseStrings(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[len(ss)-1-i] = s
	}
	return out
}

// diverge computes per-index divergence between a and b. If the lengths
// differ, the shorter length is added as a final divergence index
// (spec.md §4.E).
func diverge(a, b []string) []int {
	var out []int
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			out = append(out, i)
		}
	}
	if len(a) != len(b) {
		out = append(out, n)
	}
	return out
}
