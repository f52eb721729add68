package inventory

import "strings"

// Inventory is the contract the Walker depends on for device metadata,
// IP resolution, label operations, and domain-crossing detection (§6.2).
// Implementations must be safe for concurrent reads; a reload must swap
// the underlying state atomically so readers never observe a mix of old
// and new data (§5).
type Inventory interface {
	// ResolveIP returns the hostname owning ip, or ("", false) if no
	// device is known by that IP.
	ResolveIP(ip string) (hostname string, ok bool)
	// GetDevice returns device metadata, or (Device{}, false) if unknown.
	GetDevice(hostname string) (Device, bool)
	// IsFirewall reports whether hostname's role substring-contains "fw"
	// or "firewall" (case-insensitive).
	IsFirewall(hostname string) bool
	// GetLabelOps returns the ordered label operations hostname applies
	// for traffic toward nextHop. Possibly empty.
	GetLabelOps(hostname, nextHop string) []LabelOp
	// GetDomainCrossing returns the Boundary crossed when traffic moves
	// from hostname toward the device resolved at nextHop, or (Boundary{},
	// false) if no crossing applies. Must detect crossings in both
	// directions and fall back to a boundary-less crossing detection
	// whenever hostname's domain differs from the resolved next-hop
	// device's domain but no explicit Boundary record names the pair
	// (see decision recorded in SPEC_FULL.md §13.1).
	GetDomainCrossing(hostname, nextHop string) (Boundary, bool)
}

// IsFirewallRole implements the §6.2 substring match shared by every
// Inventory implementation: role is deliberately loosely matched so
// operators can tag devices "edge-fw", "t2_fw", "inet-firewall" without a
// controlled vocabulary.
func IsFirewallRole(role string) bool {
	lower := strings.ToLower(role)
	return strings.Contains(lower, "fw") || strings.Contains(lower, "firewall")
}
