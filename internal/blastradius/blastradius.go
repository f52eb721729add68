package blastradius

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

const (
	pathHopCutoff  = 15
	maxPathsToTake = 51
	denseThreshold = 50
)

// AffectedPair is one (source, destination) pair whose connectivity
// changes when failedNode goes down.
type AffectedPair struct {
	Source        string   `json:"source"`
	Destination   string   `json:"destination"`
	OriginalPath  []string `json:"original_path"`
	AlternatePath []string `json:"alternate_path"`
	Status        string   `json:"status"`
}

// Result is the outcome of Calculate.
type Result struct {
	FailedNode          string         `json:"failed_node"`
	IsolatedPairs       []AffectedPair `json:"isolated_pairs"`
	ReroutedPairs       []AffectedPair `json:"rerouted_pairs"`
	UnaffectedNodeCount int            `json:"unaffected_node_count"`
	SkippedPairs        int            `json:"skipped_pairs"`
	SkippedPairList     [][2]string    `json:"skipped_pair_list"`
	Summary             string         `json:"summary"`
}

// InvalidNodeError reports that failedNode isn't a node in the graph
// (spec.md §4.G).
type InvalidNodeError struct {
	Node string
}

func (e *InvalidNodeError) Error() string {
	return fmt.Sprintf("invalid node: %s", e.Node)
}

// Calculate classifies every ordered (source, destination) pair in g
// (excluding failedNode) as unaffected, rerouted, or isolated by
// failedNode going down (spec.md §4.G).
func Calculate(ctx context.Context, g *Graph, failedNode string) (*Result, error) {
	if !g.Has(failedNode) {
		return nil, &InvalidNodeError{Node: failedNode}
	}

	nodes := g.Nodes()

	var (
		mu       sync.Mutex
		isolated []AffectedPair
		rerouted []AffectedPair
		skipped  int
		skippedList [][2]string
	)

	grp, gctx := errgroup.WithContext(ctx)
	for _, src := range nodes {
		if src == failedNode {
			continue
		}
		for _, dst := range nodes {
			if dst == failedNode || dst == src {
				continue
			}
			src, dst := src, dst
			grp.Go(func() error {
				res := evaluatePair(gctx, g, src, dst, failedNode)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case res.skipped:
					skipped++
					skippedList = append(skippedList, [2]string{src, dst})
				case res.ok:
					if res.pair.Status == "rerouted" {
						rerouted = append(rerouted, res.pair)
					} else {
						isolated = append(isolated, res.pair)
					}
				}
				return nil
			})
		}
	}
	// Per spec.md §7: "Blast-Radius tolerates per-pair enumeration
	// errors ... and continues" — evaluatePair never returns an error,
	// so grp.Wait() only ever surfaces a context cancellation.
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	affectedNodes := make(map[string]struct{})
	for _, p := range append(append([]AffectedPair{}, isolated...), rerouted...) {
		affectedNodes[p.Source] = struct{}{}
		affectedNodes[p.Destination] = struct{}{}
	}
	unaffected := 0
	for _, n := range nodes {
		if n == failedNode {
			continue
		}
		if _, ok := affectedNodes[n]; !ok {
			unaffected++
		}
	}

	summary := fmt.Sprintf("Failing %s breaks %d path(s) with no alternate and reroutes %d path(s).",
		failedNode, len(isolated), len(rerouted))
	if skipped > 0 {
		summary += fmt.Sprintf(" Skipped %d dense pair(s) with >50 simple paths.", skipped)
	}

	return &Result{
		FailedNode:          failedNode,
		IsolatedPairs:       isolated,
		ReroutedPairs:       rerouted,
		UnaffectedNodeCount: unaffected,
		SkippedPairs:        skipped,
		SkippedPairList:     skippedList,
		Summary:             summary,
	}, nil
}

type evalResult struct {
	pair    AffectedPair
	skipped bool
	ok      bool
}

func evaluatePair(ctx context.Context, g *Graph, src, dst, failedNode string) evalResult {
	paths := allSimplePaths(g, src, dst, pathHopCutoff, maxPathsToTake)
	if len(paths) > denseThreshold {
		return evalResult{skipped: true}
	}

	var original []string
	for _, p := range paths {
		if containsNode(p, failedNode) {
			original = p
			break
		}
	}
	if original == nil {
		return evalResult{}
	}

	alternate := shortestPathExcluding(g, src, dst, failedNode)
	if len(alternate) > 0 {
		return evalResult{ok: true, pair: AffectedPair{
			Source: src, Destination: dst,
			OriginalPath: original, AlternatePath: alternate,
			Status: "rerouted",
		}}
	}
	return evalResult{ok: true, pair: AffectedPair{
		Source: src, Destination: dst,
		OriginalPath: original, AlternatePath: nil,
		Status: "isolated",
	}}
}

func containsNode(path []string, node string) bool {
	for _, n := range path {
		if n == node {
			return true
		}
	}
	return false
}

// allSimplePaths enumerates simple paths from src to dst via DFS,
// cutting off at maxHops edges and stopping once limit paths are found
// (spec.md §4.G step 1).
func allSimplePaths(g *Graph, src, dst string, maxHops, limit int) [][]string {
	srcIdx, ok := g.index[src]
	if !ok {
		return nil
	}
	dstIdx, ok := g.index[dst]
	if !ok {
		return nil
	}

	var out [][]string
	visited := make([]bool, len(g.nodes))
	path := make([]int, 0, maxHops+1)

	var dfs func(u int)
	dfs = func(u int) {
		if len(out) >= limit {
			return
		}
		path = append(path, u)
		visited[u] = true

		if u == dstIdx {
			out = append(out, indicesToNames(g, path))
		} else if len(path)-1 < maxHops {
			for _, v := range g.adj[u] {
				if len(out) >= limit {
					break
				}
				if !visited[v] {
					dfs(v)
				}
			}
		}

		visited[u] = false
		path = path[:len(path)-1]
	}
	dfs(srcIdx)
	return out
}

func indicesToNames(g *Graph, idxs []int) []string {
	out := make([]string, len(idxs))
	for i, idx := range idxs {
		out[i] = g.nodes[idx]
	}
	return out
}

// shortestPathExcluding runs a BFS from src to dst over g with excluded
// removed (spec.md §4.G step 4).
func shortestPathExcluding(g *Graph, src, dst, excluded string) []string {
	srcIdx, ok := g.index[src]
	if !ok {
		return nil
	}
	dstIdx, ok := g.index[dst]
	if !ok {
		return nil
	}
	excludedIdx, hasExcluded := g.index[excluded]

	prev := make(map[int]int)
	visited := make(map[int]bool)
	queue := []int{srcIdx}
	visited[srcIdx] = true

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		if u == dstIdx {
			break
		}
		for _, v := range g.adj[u] {
			if hasExcluded && v == excludedIdx {
				continue
			}
			if visited[v] {
				continue
			}
			visited[v] = true
			prev[v] = u
			queue = append(queue, v)
		}
	}

	if !visited[dstIdx] {
		return nil
	}

	var revPath []int
	for at := dstIdx; ; {
		revPath = append(revPath, at)
		if at == srcIdx {
			break
		}
		at = prev[at]
	}
	out := make([]string, len(revPath))
	for i, idx := range revPath {
		out[len(revPath)-1-i] = g.nodes[idx]
	}
	return out
}
