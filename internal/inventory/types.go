// Package inventory defines the Device/Label-Op/Boundary model and the
// Inventory contract (§6.2) that the Walker depends on, plus a reference
// YAML-backed implementation (§3 Device, §4 graph construction).
package inventory

// LabelAction is an MPLS header operation.
type LabelAction string

const (
	LabelPush LabelAction = "push"
	LabelSwap LabelAction = "swap"
	LabelPop  LabelAction = "pop"
)

// LabelOp is a single MPLS label operation applied at the device that owns
// the route entry: push on ingress, swap mid-LSP, pop at egress.
type LabelOp struct {
	Action  LabelAction `json:"action" yaml:"action"`
	Label   int         `json:"label" yaml:"label"`
	LSPName string      `json:"lsp_name,omitempty" yaml:"lsp_name,omitempty"`
}

// Boundary is a firewall that sits between two named routing domains. The
// labels are directional but the crossing relation itself is symmetric:
// traversing the firewall in either direction counts as a crossing.
type Boundary struct {
	Firewall         string `json:"firewall" yaml:"firewall"`
	UpstreamDomain   string `json:"upstream_domain" yaml:"upstream_domain"`
	DownstreamDomain string `json:"downstream_domain" yaml:"downstream_domain"`
}

// Crosses reports whether moving from one domain to another crosses this
// boundary, in either direction.
func (b Boundary) Crosses(fromDomain, toDomain string) bool {
	return (b.UpstreamDomain == fromDomain && b.DownstreamDomain == toDomain) ||
		(b.UpstreamDomain == toDomain && b.DownstreamDomain == fromDomain)
}

// Interface is a single physical/logical interface on a device: its IP
// and, if statically known, the hostname of the device wired to its far
// end (grounded on original_source/backend/graph_engine.py's
// Interface.neighbor).
type Interface struct {
	IP       string `json:"ip,omitempty" yaml:"ip,omitempty"`
	Neighbor string `json:"neighbor,omitempty" yaml:"neighbor,omitempty"`
}

// Device is a single router/firewall/switch as described by the
// inventory. Role and Domain are free-form operator vocabulary (spec.md
// §3).
type Device struct {
	Hostname   string               `json:"hostname" yaml:"hostname"`
	Role       string               `json:"role" yaml:"role"`
	Domain     string               `json:"domain" yaml:"domain"`
	MgmtIP     string               `json:"mgmt_ip" yaml:"mgmt_ip"`
	Loopbacks  []string             `json:"loopbacks,omitempty" yaml:"loopbacks,omitempty"`
	Interfaces map[string]Interface `json:"interfaces,omitempty" yaml:"interfaces,omitempty"` // name -> Interface
	// LabelOps maps a next-hop IP to the ordered label operations applied
	// on traffic heading toward it.
	LabelOps map[string][]LabelOp `json:"label_ops,omitempty" yaml:"label_ops,omitempty"`
}

// AllIPs returns every IP this device is known by: management, loopbacks,
// and interface addresses.
func (d Device) AllIPs() []string {
	ips := make([]string, 0, 2+len(d.Loopbacks)+len(d.Interfaces))
	if d.MgmtIP != "" {
		ips = append(ips, d.MgmtIP)
	}
	ips = append(ips, d.Loopbacks...)
	for _, iface := range d.Interfaces {
		if iface.IP != "" {
			ips = append(ips, iface.IP)
		}
	}
	return ips
}

// Domain describes a named routing domain (spec.md §9 / graph_engine.py
// RoutingDomain).
type Domain struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Protocol string `json:"protocol" yaml:"protocol"`
}
