package routeentry

import "net/netip"

// Table groups collected Route-Entries by the exact prefix string the
// device reported them under — the raw shape a Collector adapter reads
// off its cache or a live device before doing longest-prefix match for a
// specific query (spec.md §4.A, §6.1).
type Table map[string][]Entry

// LongestMatch returns the entries for the longest prefix in t that
// covers query: a candidate must contain the query's address and be no
// more specific than the query itself. Among covers, the most specific
// (largest mask length) wins, so an exact match wins when present. Invalid
// query or table prefixes are ignored rather than erroring (spec.md
// §4.A: "invalid inputs yield an empty list, not an error").
func LongestMatch(t Table, query string) []Entry {
	qAddr, qPrefix, ok := parseNetwork(query)
	if !ok {
		return nil
	}

	var bestBits = -1
	var best []Entry
	for prefixStr, entries := range t {
		_, candidate, ok := parseNetwork(prefixStr)
		if !ok {
			continue
		}
		if !candidate.Contains(qAddr) || candidate.Bits() > qPrefix.Bits() {
			continue
		}
		if candidate.Bits() > bestBits {
			bestBits = candidate.Bits()
			best = entries
		}
	}
	return best
}

// parseNetwork accepts either a bare host IP, a host prefix (/32 or
// /128), or a network prefix, and returns the network's base address plus
// its netip.Prefix form.
func parseNetwork(s string) (netip.Addr, netip.Prefix, bool) {
	if p, err := netip.ParsePrefix(s); err == nil {
		return p.Masked().Addr(), p.Masked(), true
	}
	if a, err := netip.ParseAddr(s); err == nil {
		bits := 32
		if a.Is6() {
			bits = 128
		}
		p := netip.PrefixFrom(a, bits)
		return p.Addr(), p, true
	}
	return netip.Addr{}, netip.Prefix{}, false
}
