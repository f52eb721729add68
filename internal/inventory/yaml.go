package inventory

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// file is the on-disk shape of the inventory YAML (spec.md §3 Device,
// §6.2). Grounded on original_source/backend/graph_engine.py's
// load_inventory.
type file struct {
	Domains map[string]struct {
		Type     string `yaml:"type"`
		Protocol string `yaml:"protocol"`
	} `yaml:"domains"`
	Devices map[string]struct {
		Role       string               `yaml:"role"`
		Domain     string               `yaml:"domain"`
		MgmtIP     string               `yaml:"mgmt_ip"`
		Loopbacks  []string             `yaml:"loopbacks"`
		Interfaces map[string]Interface `yaml:"interfaces"`
		LabelOps   map[string][]LabelOp `yaml:"label_ops"`
	} `yaml:"devices"`
	Boundaries []Boundary `yaml:"boundaries"`
}

type snapshot struct {
	devices    map[string]Device
	domains    map[string]Domain
	boundaries []Boundary
	ipIndex    map[string]string // ip -> hostname
}

// Store is a reference Inventory implementation loaded from YAML. It is
// safe for concurrent use: Reload builds a new snapshot and swaps it in
// atomically, so in-flight traces always see a single consistent
// generation (spec.md §5).
type Store struct {
	snap atomic.Pointer[snapshot]
}

// NewStore loads an inventory from path and returns a ready Store.
// Duplicate IPs across devices are an InvariantViolation and fail the
// load (spec.md §3 invariant, §7).
func NewStore(path string) (*Store, error) {
	s := &Store{}
	if err := s.Reload(path); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads path and atomically swaps in the new snapshot. Existing
// readers keep observing the prior snapshot until this call returns.
func (s *Store) Reload(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read inventory %s: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse inventory %s: %w", path, err)
	}

	snap := &snapshot{
		devices: make(map[string]Device, len(f.Devices)),
		domains: make(map[string]Domain, len(f.Domains)),
		ipIndex: make(map[string]string),
	}

	for name, d := range f.Domains {
		snap.domains[name] = Domain{Name: name, Type: d.Type, Protocol: d.Protocol}
	}

	for hostname, d := range f.Devices {
		dev := Device{
			Hostname:   hostname,
			Role:       d.Role,
			Domain:     d.Domain,
			MgmtIP:     d.MgmtIP,
			Loopbacks:  d.Loopbacks,
			Interfaces: d.Interfaces,
			LabelOps:   d.LabelOps,
		}
		snap.devices[hostname] = dev

		for _, ip := range dev.AllIPs() {
			if existing, ok := snap.ipIndex[ip]; ok && existing != hostname {
				return fmt.Errorf("invariant violation: IP %s maps to both %s and %s", ip, existing, hostname)
			}
			snap.ipIndex[ip] = hostname
		}
	}

	snap.boundaries = append([]Boundary(nil), f.Boundaries...)

	s.snap.Store(snap)
	return nil
}

func (s *Store) current() *snapshot {
	snap := s.snap.Load()
	if snap == nil {
		return &snapshot{}
	}
	return snap
}

func (s *Store) ResolveIP(ip string) (string, bool) {
	host, ok := s.current().ipIndex[ip]
	return host, ok
}

func (s *Store) GetDevice(hostname string) (Device, bool) {
	d, ok := s.current().devices[hostname]
	return d, ok
}

func (s *Store) IsFirewall(hostname string) bool {
	d, ok := s.current().devices[hostname]
	if !ok {
		return false
	}
	return IsFirewallRole(d.Role)
}

func (s *Store) GetLabelOps(hostname, nextHop string) []LabelOp {
	d, ok := s.current().devices[hostname]
	if !ok {
		return nil
	}
	return d.LabelOps[nextHop]
}

// GetDomainCrossing resolves nextHop to a device and checks every
// Boundary for a match in either direction; if none names the (fromDomain,
// toDomain) pair but the domains differ anyway, it synthesizes a fallback
// crossing so a policy change at an undocumented boundary is still
// visible (decision recorded in SPEC_FULL.md §13.1).
func (s *Store) GetDomainCrossing(hostname, nextHop string) (Boundary, bool) {
	snap := s.current()
	from, ok := snap.devices[hostname]
	if !ok {
		return Boundary{}, false
	}
	toHost, ok := snap.ipIndex[nextHop]
	if !ok {
		return Boundary{}, false
	}
	to, ok := snap.devices[toHost]
	if !ok {
		return Boundary{}, false
	}
	if from.Domain == to.Domain {
		return Boundary{}, false
	}
	for _, b := range snap.boundaries {
		if b.Crosses(from.Domain, to.Domain) {
			return b, true
		}
	}
	return Boundary{
		Firewall:         hostname,
		UpstreamDomain:   from.Domain,
		DownstreamDomain: to.Domain,
	}, true
}

// Domains returns the loaded routing domains (§12 supplemented GET
// /api/domains).
func (s *Store) Domains() []Domain {
	snap := s.current()
	out := make([]Domain, 0, len(snap.domains))
	for _, d := range snap.domains {
		out = append(out, d)
	}
	return out
}

// Boundaries returns the loaded domain boundaries.
func (s *Store) Boundaries() []Boundary {
	return append([]Boundary(nil), s.current().boundaries...)
}

// Devices returns every loaded device, for graph construction
// (internal/blastradius) and listing endpoints.
func (s *Store) Devices() []Device {
	snap := s.current()
	out := make([]Device, 0, len(snap.devices))
	for _, d := range snap.devices {
		out = append(out, d)
	}
	return out
}

// Neighbors returns the hostnames directly wired to hostname via an
// interface's configured neighbor, the edge relation
// original_source/backend/graph_engine.py's build_graph uses
// (iface.neighbor). Used by internal/blastradius to build the topology
// graph.
func (s *Store) Neighbors(hostname string) []string {
	snap := s.current()
	dev, ok := snap.devices[hostname]
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	for _, iface := range dev.Interfaces {
		n := strings.TrimSpace(iface.Neighbor)
		if n == "" || n == hostname {
			continue
		}
		if _, ok := snap.devices[n]; ok {
			seen[n] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for h := range seen {
		out = append(out, h)
	}
	return out
}
