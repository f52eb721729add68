// Package walker implements the Path Walker (spec.md §4.D): the
// recursive next-hop follower that reconstructs a forwarding path one
// device at a time, branching on ECMP, annotating MPLS label operations
// and firewall domain crossings, and terminating at a route's true
// origin.
package walker

import (
	"github.com/malbeclabs/pathtracer/internal/inventory"
	"github.com/malbeclabs/pathtracer/internal/plugin"
	"github.com/malbeclabs/pathtracer/internal/routeentry"
)

// EndReason is why a Trace-Path stopped extending.
type EndReason string

const (
	EndOrigin             EndReason = "origin"
	EndBlackhole          EndReason = "blackhole"
	EndUnreachable        EndReason = "unreachable"
	EndNotInInventory     EndReason = "not_in_inventory"
	EndLoop               EndReason = "loop"
	EndMaxHops            EndReason = "max_hops"
	EndECMPDepthExceeded  EndReason = "ecmp_depth_exceeded"
	EndFailedNode         EndReason = "failed_node"
)

// OriginType classifies where a complete Trace-Path terminated.
type OriginType string

const (
	OriginConnected OriginType = "connected"
	OriginStatic    OriginType = "static"
	OriginEBGP      OriginType = "ebgp"
	OriginUnknown   OriginType = "unknown"
)

// HopResult is one step in a trace.
type HopResult struct {
	Device      string                            `json:"device"`
	Role        string                             `json:"role"`
	NextHop     string                             `json:"next_hop,omitempty"`
	Protocol    routeentry.Protocol                `json:"protocol"`
	Communities []string                           `json:"communities"`
	LocalPref   *int                               `json:"local_pref,omitempty"`
	ASPath      []string                           `json:"as_path"`
	Metric      *int                               `json:"metric,omitempty"`
	Interface   string                             `json:"interface"`
	VRF         string                             `json:"vrf"`
	PluginLabels map[string]map[string]plugin.Value `json:"plugin_labels,omitempty"`
	LabelOps    []inventory.LabelOp                `json:"label_ops,omitempty"`
	Crossing    *inventory.Boundary                `json:"domain_crossing,omitempty"`
	RouteType   string                             `json:"route_type,omitempty"`
	QueryTimeMs int64                              `json:"query_time_ms"`
	AllEntries  []routeentry.Summary               `json:"all_entries"`
	Note        string                             `json:"note,omitempty"`
}

// ECMPBranch records one branching decision: every next-hop observed at
// a hop and the subset the walker actually followed (spec.md §4.D step
// 13, §8 boundary behavior).
type ECMPBranch struct {
	ParentDevice string   `json:"parent_device"`
	Observed     []string `json:"observed_next_hops"`
	Followed     []string `json:"followed_next_hops"`
}

// TracePath is one linear walk from the start device to a termination.
type TracePath struct {
	Hops      []HopResult `json:"hops"`
	Complete  bool        `json:"complete"`
	EndReason EndReason   `json:"end_reason"`
}

// TraceResult is the full output of Trace: every branch flattened,
// origin classification, and every crossing/ECMP-branch observed along
// the way.
type TraceResult struct {
	Prefix        string        `json:"prefix"`
	Start         string        `json:"start"`
	VRF           string        `json:"vrf"`
	Paths         []TracePath   `json:"paths"`
	TotalTimeMs   int64         `json:"total_time_ms"`
	ECMPBranches  []ECMPBranch  `json:"ecmp_branches"`
	Crossings     []inventory.Boundary `json:"crossings"`
	OriginType    OriginType    `json:"origin_type"`
	OriginRouter  string        `json:"origin_router"`
	Truncated     bool          `json:"truncated"`
}

// deviceVisit is the per-branch state threaded through recursion:
// visited-device set (for loop detection) and the immutable hop prefix
// built so far.
type deviceVisit struct {
	visited map[string]struct{}
	hops    []HopResult
}

func (v deviceVisit) withDevice(device string) deviceVisit {
	next := make(map[string]struct{}, len(v.visited)+1)
	for d := range v.visited {
		next[d] = struct{}{}
	}
	next[device] = struct{}{}
	return deviceVisit{visited: next, hops: v.hops}
}

func (v deviceVisit) withHop(h HopResult) deviceVisit {
	hops := make([]HopResult, len(v.hops)+1)
	copy(hops, v.hops)
	hops[len(v.hops)] = h
	return deviceVisit{visited: v.visited, hops: hops}
}
