// Package blastradius implements the all-pairs blast-radius analysis
// over the inventory graph (spec.md §4.G): an undirected graph of
// devices, connected by the interface-peer relation, used to classify
// every (source, destination) pair's exposure to a single node failure.
package blastradius

import (
	"sort"
	"strings"

	"github.com/malbeclabs/pathtracer/internal/inventory"
)

// GraphSource is the subset of the Inventory surface needed to build a
// topology graph: every device, and each device's interface-peer
// neighbors (spec.md §9 "edges derived once from the inventory
// IP-index").
type GraphSource interface {
	Devices() []inventory.Device
	Neighbors(hostname string) []string
}

// Graph is an undirected adjacency-list graph keyed by integer index
// with a parallel hostname table, chosen over a map-of-maps to keep
// path enumeration allocation-light (spec.md §9).
type Graph struct {
	nodes   []string
	index   map[string]int
	adj     [][]int
	devices map[string]inventory.Device
}

// Build constructs a Graph from src: one node per device, one
// undirected edge per neighbor relation.
func Build(src GraphSource) *Graph {
	devices := src.Devices()
	g := &Graph{
		index:   make(map[string]int, len(devices)),
		devices: make(map[string]inventory.Device, len(devices)),
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].Hostname < devices[j].Hostname })

	for _, d := range devices {
		g.index[d.Hostname] = len(g.nodes)
		g.nodes = append(g.nodes, d.Hostname)
		g.devices[d.Hostname] = d
	}
	g.adj = make([][]int, len(g.nodes))

	seen := make(map[[2]int]struct{})
	for _, d := range devices {
		u, ok := g.index[d.Hostname]
		if !ok {
			continue
		}
		for _, neighbor := range src.Neighbors(d.Hostname) {
			v, ok := g.index[neighbor]
			if !ok || u == v {
				continue
			}
			key := edgeKey(u, v)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			g.adj[u] = append(g.adj[u], v)
			g.adj[v] = append(g.adj[v], u)
		}
	}

	return g
}

func edgeKey(u, v int) [2]int {
	if u < v {
		return [2]int{u, v}
	}
	return [2]int{v, u}
}

// Nodes returns every hostname in the graph.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Has reports whether hostname is a node in the graph.
func (g *Graph) Has(hostname string) bool {
	_, ok := g.index[hostname]
	return ok
}

// VisNode is one vis.js-compatible graph node.
type VisNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
	Shape string `json:"shape"`
	Title string `json:"title"`
	Group string `json:"group"`
}

// VisEdge is one vis.js-compatible graph edge.
type VisEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// VisGraph is the full vis.js export payload (SPEC_FULL.md §12,
// grounded on original_source/backend/graph_engine.py's to_vis_json).
type VisGraph struct {
	Nodes []VisNode `json:"nodes"`
	Edges []VisEdge `json:"edges"`
}

// ToVisJSON exports the graph for the frontend's topology view.
func (g *Graph) ToVisJSON() VisGraph {
	out := VisGraph{}
	for _, hostname := range g.nodes {
		dev := g.devices[hostname]
		out.Nodes = append(out.Nodes, VisNode{
			ID:    hostname,
			Label: hostname,
			Color: roleColor(dev.Role),
			Shape: roleShape(dev.Role),
			Title: hostname + " (" + dev.Domain + ")",
			Group: dev.Domain,
		})
	}

	seen := make(map[[2]int]struct{})
	for u, neighbors := range g.adj {
		for _, v := range neighbors {
			key := edgeKey(u, v)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out.Edges = append(out.Edges, VisEdge{From: g.nodes[u], To: g.nodes[v]})
		}
	}
	return out
}

func roleColor(role string) string {
	lower := strings.ToLower(role)
	switch {
	case inventory.IsFirewallRole(role):
		return "#F44336"
	case strings.Contains(lower, "pe"):
		return "#4CAF50"
	case strings.Contains(lower, "edge"):
		return "#FF9800"
	default:
		return "#2196F3"
	}
}

func roleShape(role string) string {
	lower := strings.ToLower(role)
	switch {
	case inventory.IsFirewallRole(role):
		return "triangle"
	case strings.Contains(lower, "edge"):
		return "square"
	default:
		return "dot"
	}
}
