package walker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/malbeclabs/pathtracer/internal/collector"
	"github.com/malbeclabs/pathtracer/internal/inventory"
	"github.com/malbeclabs/pathtracer/internal/plugin"
	"github.com/malbeclabs/pathtracer/internal/routeentry"
)

const (
	defaultMaxHops          = 20
	defaultMaxECMPBranches  = 8
	defaultECMPPoolSize     = 16
)

// Config tunes the walker's guardrails. All fields have spec-mandated
// defaults (spec.md §4.D) when left zero.
type Config struct {
	// MaxHops bounds a single Trace-Path's length. Default 20.
	MaxHops int
	// MaxECMPBranches bounds how many siblings are followed per branch
	// depth. Default 8.
	MaxECMPBranches int
	// MaxTotalPaths bounds the total number of published Trace-Paths
	// across an entire Trace call. 0 means unlimited. Once the cap is
	// reached, every further path is dropped at publish time and
	// TraceResult.Truncated is set; branches already being walked still
	// run to their end (an adopted resolution of the "global per-trace
	// path cap" open question — see SPEC_FULL.md §13).
	MaxTotalPaths int
	// ECMPPoolSize bounds concurrent Collector calls across sibling
	// ECMP branches. Default 16.
	ECMPPoolSize int
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.MaxHops <= 0 {
		out.MaxHops = defaultMaxHops
	}
	if out.MaxECMPBranches <= 0 {
		out.MaxECMPBranches = defaultMaxECMPBranches
	}
	if out.ECMPPoolSize <= 0 {
		out.ECMPPoolSize = defaultECMPPoolSize
	}
	return out
}

// Walker runs Trace over a Collector and an Inventory.
type Walker struct {
	collector collector.Collector
	inv       inventory.Inventory
	plugins   *plugin.Registry
	log       *slog.Logger
	cfg       Config

	sessionMu sync.Mutex
	sessions  map[string]*sync.Mutex
}

// New builds a Walker. plugins may be nil (no community decoding).
func New(coll collector.Collector, inv inventory.Inventory, plugins *plugin.Registry, log *slog.Logger, cfg Config) *Walker {
	if log == nil {
		log = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Walker{
		collector: coll,
		inv:       inv,
		plugins:   plugins,
		log:       log,
		cfg:       cfg,
		sessions:  make(map[string]*sync.Mutex),
	}
}

// deviceSession returns the per-device mutex that serializes Collector
// calls against that device (spec.md §5: "serialize per device").
func (w *Walker) deviceSession(device string) *sync.Mutex {
	w.sessionMu.Lock()
	defer w.sessionMu.Unlock()
	m, ok := w.sessions[device]
	if !ok {
		m = &sync.Mutex{}
		w.sessions[device] = m
	}
	return m
}

// traceState is shared, mutation-guarded state across an entire Trace
// call: the accumulated ECMP-branch records, domain crossings, and a
// counter enforcing MaxTotalPaths.
type traceState struct {
	mu        sync.Mutex
	branches  []ECMPBranch
	crossings []inventory.Boundary
	pathCount int
	truncated bool

	cfg Config
}

func (s *traceState) recordBranch(b ECMPBranch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.branches = append(s.branches, b)
}

func (s *traceState) recordCrossing(b inventory.Boundary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crossings = append(s.crossings, b)
}

// reservePath claims a slot for one more published Trace-Path. It
// returns false once MaxTotalPaths has been reached.
func (s *traceState) reservePath() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.MaxTotalPaths > 0 && s.pathCount >= s.cfg.MaxTotalPaths {
		s.truncated = true
		return false
	}
	s.pathCount++
	return true
}

// Trace reconstructs the forwarding path(s) for prefix starting at
// start, honoring vrf and treating every device in excluded as already
// failed (spec.md §4.D).
func (w *Walker) Trace(ctx context.Context, prefix, start, vrf string, excluded []string) (*TraceResult, error) {
	begin := time.Now()

	excludedSet := make(map[string]struct{}, len(excluded))
	for _, d := range excluded {
		excludedSet[d] = struct{}{}
	}

	state := &traceState{cfg: w.cfg}
	paths, err := w.walk(ctx, prefix, vrf, start, excludedSet, deviceVisit{visited: map[string]struct{}{}}, 0, state)
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}

	result := &TraceResult{
		Prefix:       prefix,
		Start:        start,
		VRF:          vrf,
		Paths:        paths,
		TotalTimeMs:  time.Since(begin).Milliseconds(),
		ECMPBranches: state.branches,
		Crossings:    state.crossings,
		Truncated:    state.truncated,
	}
	result.OriginType, result.OriginRouter = classifyOrigin(paths)
	return result, nil
}

// classifyOrigin inspects every published path's terminal hop and
// returns the first origin it can classify (spec.md §4.D "Origin
// classification").
func classifyOrigin(paths []TracePath) (OriginType, string) {
	for _, p := range paths {
		if len(p.Hops) == 0 {
			continue
		}
		terminal := p.Hops[len(p.Hops)-1]
		switch {
		case p.EndReason == EndOrigin:
			return OriginConnected, terminal.Device
		case terminal.Protocol == routeentry.ProtocolStatic:
			return OriginStatic, terminal.Device
		case terminal.Protocol == routeentry.ProtocolBGP:
			return OriginEBGP, terminal.Device
		}
	}
	return OriginUnknown, ""
}

// walk is one recursive frame of the algorithm in spec.md §4.D. It
// extends visit by exactly one device and returns every Trace-Path
// published from this frame onward (one for a linear continuation,
// several for an ECMP branch).
func (w *Walker) walk(ctx context.Context, prefix, vrf, device string, excluded map[string]struct{}, visit deviceVisit, branchDepth int, state *traceState) ([]TracePath, error) {
	// Step 1: excluded node.
	if _, ok := excluded[device]; ok {
		return w.publish(visit, stubHop(device, "excluded"), EndFailedNode, state), nil
	}

	// Step 2: loop.
	if _, ok := visit.visited[device]; ok {
		return w.publish(visit, stubHop(device, "loop"), EndLoop, state), nil
	}

	// Step 3: max hops.
	if len(visit.hops) >= w.cfg.MaxHops {
		return w.publish(visit, HopResult{}, EndMaxHops, state), nil
	}

	// Step 4.
	visit = visit.withDevice(device)

	// Step 5: collect.
	start := time.Now()
	entries, err := w.collectSerialized(ctx, device, prefix, vrf)
	queryMs := time.Since(start).Milliseconds()
	if err != nil {
		h := stubHop(device, fmt.Sprintf("unreachable: %v", err))
		h.QueryTimeMs = queryMs
		return w.publish(visit, h, EndUnreachable, state), nil
	}

	// Step 6: no route.
	if len(entries) == 0 {
		h := stubHop(device, "no route")
		h.QueryTimeMs = queryMs
		return w.publish(visit, h, EndBlackhole, state), nil
	}

	// Step 7: selection rules.
	isFW := w.inv.IsFirewall(device)
	sel, ok := routeentry.Select(entries, isFW)
	if !ok {
		h := stubHop(device, "no eligible route")
		h.QueryTimeMs = queryMs
		return w.publish(visit, h, EndBlackhole, state), nil
	}

	role := ""
	if dev, ok := w.inv.GetDevice(device); ok {
		role = dev.Role
	}

	hop := w.buildHop(device, role, sel, entries, queryMs)

	if sel.IsOrigin {
		hop.RouteType = ""
		nextVisit := visit.withHop(hop)
		return w.publish(nextVisit, HopResult{}, EndOrigin, state), nil
	}

	// Step 8: label-ops + domain crossing + route type.
	hop.LabelOps = w.inv.GetLabelOps(device, sel.Best.NextHop)
	if boundary, ok := w.inv.GetDomainCrossing(device, sel.Best.NextHop); ok {
		hop.Crossing = &boundary
		state.recordCrossing(boundary)
	}
	if sel.Best.Protocol == routeentry.ProtocolPolicy {
		hop.RouteType = "policy"
	} else {
		hop.RouteType = "static"
	}

	// Step 9: append hop.
	visit = visit.withHop(hop)

	// Step 10: ECMP next-hop set.
	nextHops := routeentry.NextHops(sel)

	// Step 11: blackhole.
	if len(nextHops) == 0 {
		return w.publish(visit, HopResult{}, EndBlackhole, state), nil
	}

	// Step 12: single next-hop.
	if len(nextHops) == 1 {
		nextDevice, ok := w.inv.ResolveIP(nextHops[0])
		if !ok {
			return w.publish(visit, stubHop(fmt.Sprintf("unknown (%s)", nextHops[0]), ""), EndNotInInventory, state), nil
		}
		return w.walk(ctx, prefix, vrf, nextDevice, excluded, visit, branchDepth, state)
	}

	// Step 13: ECMP branch.
	if branchDepth >= w.cfg.MaxECMPBranches {
		return w.publish(visit, HopResult{}, EndECMPDepthExceeded, state), nil
	}

	followed := nextHops
	if len(followed) > w.cfg.MaxECMPBranches {
		followed = followed[:w.cfg.MaxECMPBranches]
	}
	state.recordBranch(ECMPBranch{
		ParentDevice: device,
		Observed:     nextHops,
		Followed:     followed,
	})

	// Each branch runs on its own goroutine rather than a shared
	// fixed-size worker pool: a sibling branch that itself hits ECMP
	// recurses into another fresh group, so a bounded pool shared across
	// recursion depths can deadlock once nested fan-out blocks on Wait
	// while its own children sit queued behind it. SetLimit still caps
	// how many Collector calls this one fan-out issues concurrently.
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(w.cfg.ECMPPoolSize)
	results := make([][]TracePath, len(followed))
	for i, nh := range followed {
		i, nh := i, nh
		grp.Go(func() error {
			nextDevice, ok := w.inv.ResolveIP(nh)
			if !ok {
				results[i] = w.publish(visit, stubHop(fmt.Sprintf("unknown (%s)", nh), ""), EndNotInInventory, state)
				return nil
			}
			r, err := w.walk(gctx, prefix, vrf, nextDevice, excluded, visit, branchDepth+1, state)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	var out []TracePath
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// publish finalizes one Trace-Path: it appends the terminal hop (if
// non-empty), sets complete/end_reason, and reserves a slot against
// MaxTotalPaths.
func (w *Walker) publish(visit deviceVisit, terminal HopResult, reason EndReason, state *traceState) []TracePath {
	if !state.reservePath() {
		return nil
	}
	hops := visit.hops
	if terminal.Device != "" || terminal.Note != "" {
		hops = append(append([]HopResult{}, hops...), terminal)
	}
	return []TracePath{{
		Hops:      hops,
		Complete:  reason == EndOrigin,
		EndReason: reason,
	}}
}

// buildHop constructs a HopResult from a selection, attaching the
// all_entries snapshot and plugin labels (spec.md §4.D step 8). The
// all_entries snapshot is built over allEntries — the full, unfiltered
// list the device returned — not sel.Filtered, so inactive alternates
// and (at a firewall) the BGP entries rule 1 strips from selection still
// surface to the UI (spec.md §3, §4.A).
func (w *Walker) buildHop(device, role string, sel routeentry.Selection, allEntries []routeentry.Entry, queryMs int64) HopResult {
	best := sel.Best
	hop := HopResult{
		Device:      device,
		Role:        role,
		NextHop:     best.NextHop,
		Protocol:    best.Protocol,
		Communities: best.Communities,
		LocalPref:   best.LocalPref,
		ASPath:      best.ASPath,
		Metric:      best.Metric,
		Interface:   best.Interface,
		VRF:         best.VRF,
		QueryTimeMs: queryMs,
		AllEntries:  routeentry.Summarize(allEntries),
	}
	if w.plugins != nil {
		if labels := w.plugins.Decode(best.Communities, best.LocalPref); labels != nil {
			hop.PluginLabels = labels
		}
	}
	return hop
}

func (w *Walker) collectSerialized(ctx context.Context, device, prefix, vrf string) ([]routeentry.Entry, error) {
	mu := w.deviceSession(device)
	mu.Lock()
	defer mu.Unlock()
	return w.collector.Collect(ctx, device, prefix, vrf)
}

func stubHop(device, note string) HopResult {
	return HopResult{Device: device, Note: note}
}
