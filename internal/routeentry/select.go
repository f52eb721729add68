package routeentry

import "sort"

// Selection is the outcome of applying §4.A's selection rules to the
// entries a device returned for a prefix.
type Selection struct {
	// Filtered is the entry set after firewall restriction and active
	// filtering (rule 1-3).
	Filtered []Entry
	// Best is Filtered[0], the winner of rule 4. Zero value if Filtered
	// is empty.
	Best Entry
	// IsOrigin is true when Best's protocol is connected/direct/local —
	// the walk terminates here (rule 5).
	IsOrigin bool
}

// Select applies the Walker's selection rules for the entries returned at
// a device. isFirewall reports whether the device's role marks it as a
// firewall (spec.md §4.A rule 1 / §6.2 IsFirewall).
func Select(entries []Entry, isFirewall bool) (Selection, bool) {
	if len(entries) == 0 {
		return Selection{}, false
	}

	working := entries
	if isFirewall {
		// Firewalls never carry a dynamic RIB along the path: restrict to
		// static/policy entries only.
		var restricted []Entry
		for _, e := range entries {
			if e.Protocol == ProtocolStatic || e.Protocol == ProtocolPolicy {
				restricted = append(restricted, e)
			}
		}
		working = restricted
	}
	if len(working) == 0 {
		return Selection{}, false
	}

	var active []Entry
	for _, e := range working {
		if e.Active {
			active = append(active, e)
		}
	}
	filtered := active
	if len(filtered) == 0 {
		// No active entry: fall back to the vendor's best (index 0 of the
		// post-restriction set).
		filtered = working[:1]
	}

	best := filtered[0]
	return Selection{
		Filtered: filtered,
		Best:     best,
		IsOrigin: best.Protocol.Origin(),
	}, true
}

// NextHops computes the ECMP next-hop set for a selection: the union of
// best.NextHop, every sibling in best.Paths with a non-empty next-hop, and
// every remaining active entry's next-hop — sorted lexicographically so
// equal inputs always produce equal outputs (spec.md §4.A).
func NextHops(sel Selection) []string {
	seen := make(map[string]struct{})
	add := func(ip string) {
		if ip != "" {
			seen[ip] = struct{}{}
		}
	}

	add(sel.Best.NextHop)
	for _, sib := range sel.Best.Paths {
		add(sib.NextHop)
	}
	for _, e := range sel.Filtered {
		add(e.NextHop)
	}

	out := make([]string, 0, len(seen))
	for ip := range seen {
		out = append(out, ip)
	}
	sort.Strings(out)
	return out
}
