// Package collector defines the Collector contract (§6.1) — the
// Walker's only way to ask "what does this device's FIB say about this
// prefix" — plus a reference adapter reading the on-disk collected-data
// cache described in spec.md §6.4.
package collector

import (
	"context"

	"github.com/malbeclabs/pathtracer/internal/routeentry"
)

// Collector returns all Route-Entries a device has for prefix in vrf.
// Implementations must:
//   - return entries ordered by device preference (entry 0 is the
//     vendor's "best");
//   - return the longest covering match's entries when no exact-prefix
//     entry exists;
//   - return an empty, non-error slice for "no route" (blackhole);
//   - return an error only for a transport/auth/timeout failure — the
//     Walker maps any error to an "unreachable" hop and keeps going
//     (spec.md §6.1, §7).
type Collector interface {
	Collect(ctx context.Context, device, prefix, vrf string) ([]routeentry.Entry, error)
}

// Func adapts a plain function to the Collector interface, the way
// http.HandlerFunc adapts a function to http.Handler — convenient for
// tests and small in-memory fixtures.
type Func func(ctx context.Context, device, prefix, vrf string) ([]routeentry.Entry, error)

func (f Func) Collect(ctx context.Context, device, prefix, vrf string) ([]routeentry.Entry, error) {
	return f(ctx, device, prefix, vrf)
}
