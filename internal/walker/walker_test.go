package walker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malbeclabs/pathtracer/internal/collector"
	"github.com/malbeclabs/pathtracer/internal/inventory"
	"github.com/malbeclabs/pathtracer/internal/routeentry"
)

// fakeInventory is an in-memory Inventory fixture for walker tests.
type fakeInventory struct {
	devices   map[string]inventory.Device
	ipIndex   map[string]string
	firewalls map[string]bool
	labelOps  map[string]map[string][]inventory.LabelOp
	domains   map[string]string
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		devices:   map[string]inventory.Device{},
		ipIndex:   map[string]string{},
		firewalls: map[string]bool{},
		labelOps:  map[string]map[string][]inventory.LabelOp{},
		domains:   map[string]string{},
	}
}

func (f *fakeInventory) addDevice(hostname, ip, domain string) {
	f.devices[hostname] = inventory.Device{Hostname: hostname, Domain: domain}
	f.ipIndex[ip] = hostname
	f.domains[hostname] = domain
}

func (f *fakeInventory) ResolveIP(ip string) (string, bool) {
	h, ok := f.ipIndex[ip]
	return h, ok
}

func (f *fakeInventory) GetDevice(hostname string) (inventory.Device, bool) {
	d, ok := f.devices[hostname]
	return d, ok
}

func (f *fakeInventory) IsFirewall(hostname string) bool { return f.firewalls[hostname] }

func (f *fakeInventory) GetLabelOps(hostname, nextHop string) []inventory.LabelOp {
	return f.labelOps[hostname][nextHop]
}

func (f *fakeInventory) setLabelOps(hostname, nextHop string, ops []inventory.LabelOp) {
	if f.labelOps[hostname] == nil {
		f.labelOps[hostname] = map[string][]inventory.LabelOp{}
	}
	f.labelOps[hostname][nextHop] = ops
}

func (f *fakeInventory) GetDomainCrossing(hostname, nextHop string) (inventory.Boundary, bool) {
	toDevice, ok := f.ipIndex[nextHop]
	if !ok {
		return inventory.Boundary{}, false
	}
	fromDomain, toDomain := f.domains[hostname], f.domains[toDevice]
	if fromDomain == toDomain {
		return inventory.Boundary{}, false
	}
	return inventory.Boundary{Firewall: hostname, UpstreamDomain: fromDomain, DownstreamDomain: toDomain}, true
}

func routeFunc(routes map[string][]routeentry.Entry) collector.Func {
	return func(ctx context.Context, device, prefix, vrf string) ([]routeentry.Entry, error) {
		return routes[device], nil
	}
}

func deviceNames(hops []HopResult) []string {
	var out []string
	for _, h := range hops {
		out = append(out, h.Device)
	}
	return out
}

func TestTrace_LinearFourHop(t *testing.T) {
	inv := newFakeInventory()
	inv.addDevice("A", "10.0.0.1", "edge")
	inv.addDevice("B", "10.0.0.2", "core")
	inv.addDevice("C", "10.0.0.3", "pe")
	inv.addDevice("D", "10.0.0.4", "pe")
	inv.ipIndex["10.1.1.2"] = "B"
	inv.ipIndex["10.2.1.2"] = "C"
	inv.ipIndex["10.3.1.2"] = "D"

	routes := map[string][]routeentry.Entry{
		"A": {{Prefix: "192.0.2.0/24", Protocol: routeentry.ProtocolBGP, NextHop: "10.1.1.2", Active: true}},
		"B": {{Prefix: "192.0.2.0/24", Protocol: routeentry.ProtocolBGP, NextHop: "10.2.1.2", Active: true}},
		"C": {{Prefix: "192.0.2.0/24", Protocol: routeentry.ProtocolBGP, NextHop: "10.3.1.2", Active: true}},
		"D": {{Prefix: "192.0.2.0/24", Protocol: routeentry.ProtocolConnected, Active: true}},
	}

	w := New(routeFunc(routes), inv, nil, nil, Config{})
	result, err := w.Trace(context.Background(), "192.0.2.0/24", "A", "", nil)
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)

	p := result.Paths[0]
	require.Equal(t, EndOrigin, p.EndReason)
	require.True(t, p.Complete)
	require.Equal(t, []string{"A", "B", "C", "D"}, deviceNames(p.Hops))
	require.Equal(t, OriginConnected, result.OriginType)
	require.Equal(t, "D", result.OriginRouter)
}

func TestTrace_ECMPSplit(t *testing.T) {
	inv := newFakeInventory()
	inv.addDevice("A", "10.0.0.1", "edge")
	inv.addDevice("B", "10.0.0.2", "core")
	inv.addDevice("C", "10.0.0.3", "core")
	inv.ipIndex["10.1.1.2"] = "B"
	inv.ipIndex["10.2.1.2"] = "C"

	routes := map[string][]routeentry.Entry{
		"A": {{
			Prefix: "192.0.2.0/24", Protocol: routeentry.ProtocolBGP, NextHop: "10.1.1.2", Active: true,
			Paths: []routeentry.Entry{{Protocol: routeentry.ProtocolBGP, NextHop: "10.2.1.2", Active: true}},
		}},
		"B": {{Prefix: "192.0.2.0/24", Protocol: routeentry.ProtocolConnected, Active: true}},
		"C": {{Prefix: "192.0.2.0/24", Protocol: routeentry.ProtocolConnected, Active: true}},
	}

	w := New(routeFunc(routes), inv, nil, nil, Config{})
	result, err := w.Trace(context.Background(), "192.0.2.0/24", "A", "", nil)
	require.NoError(t, err)
	require.Len(t, result.Paths, 2)

	var seqs [][]string
	for _, p := range result.Paths {
		require.Equal(t, EndOrigin, p.EndReason)
		seqs = append(seqs, deviceNames(p.Hops))
	}
	require.ElementsMatch(t, [][]string{{"A", "B"}, {"A", "C"}}, seqs)

	require.Len(t, result.ECMPBranches, 1)
	require.Equal(t, []string{"10.1.1.2", "10.2.1.2"}, result.ECMPBranches[0].Observed)
}

func TestTrace_Loop(t *testing.T) {
	inv := newFakeInventory()
	inv.addDevice("A", "10.0.0.1", "edge")
	inv.addDevice("B", "10.0.0.2", "core")
	inv.ipIndex["10.1.1.2"] = "B"
	inv.ipIndex["10.1.1.1"] = "A"

	routes := map[string][]routeentry.Entry{
		"A": {{Prefix: "192.0.2.0/24", Protocol: routeentry.ProtocolBGP, NextHop: "10.1.1.2", Active: true}},
		"B": {{Prefix: "192.0.2.0/24", Protocol: routeentry.ProtocolBGP, NextHop: "10.1.1.1", Active: true}},
	}

	w := New(routeFunc(routes), inv, nil, nil, Config{})
	result, err := w.Trace(context.Background(), "192.0.2.0/24", "A", "", nil)
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	require.Equal(t, EndLoop, result.Paths[0].EndReason)
	require.Equal(t, []string{"A", "B", "A"}, deviceNames(result.Paths[0].Hops))
}

func TestTrace_FirewallCrossingWithMPLSLabels(t *testing.T) {
	inv := newFakeInventory()
	inv.addDevice("PE1", "10.0.0.1", "pe")
	inv.addDevice("FW1", "10.0.0.2", "dc")
	inv.addDevice("AGG1", "10.0.0.3", "dc")
	inv.addDevice("FW2", "10.0.0.4", "backbone")
	inv.addDevice("EDGE1", "10.0.0.5", "backbone")
	inv.firewalls["FW1"] = true
	inv.firewalls["FW2"] = true
	inv.ipIndex["10.1.1.2"] = "FW1"
	inv.ipIndex["10.2.1.2"] = "AGG1"
	inv.ipIndex["10.3.1.2"] = "FW2"
	inv.ipIndex["10.4.1.2"] = "EDGE1"

	inv.setLabelOps("PE1", "10.1.1.2", []inventory.LabelOp{{Action: inventory.LabelPush, Label: 1001}})
	inv.setLabelOps("AGG1", "10.3.1.2", []inventory.LabelOp{{Action: inventory.LabelSwap, Label: 2002}})

	routes := map[string][]routeentry.Entry{
		"PE1":   {{Prefix: "192.0.2.0/24", Protocol: routeentry.ProtocolBGP, NextHop: "10.1.1.2", Active: true}},
		"FW1":   {{Prefix: "192.0.2.0/24", Protocol: routeentry.ProtocolStatic, NextHop: "10.2.1.2", Active: true}},
		"AGG1":  {{Prefix: "192.0.2.0/24", Protocol: routeentry.ProtocolBGP, NextHop: "10.3.1.2", Active: true}},
		"FW2":   {{Prefix: "192.0.2.0/24", Protocol: routeentry.ProtocolPolicy, NextHop: "10.4.1.2", Active: true}},
		"EDGE1": {{Prefix: "192.0.2.0/24", Protocol: routeentry.ProtocolConnected, Active: true}},
	}

	w := New(routeFunc(routes), inv, nil, nil, Config{})
	result, err := w.Trace(context.Background(), "192.0.2.0/24", "PE1", "", nil)
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)

	p := result.Paths[0]
	require.Len(t, p.Hops, 5)
	require.Len(t, result.Crossings, 2)

	var actions []string
	for _, h := range p.Hops {
		for _, op := range h.LabelOps {
			actions = append(actions, string(op.Action))
		}
	}
	require.ElementsMatch(t, []string{"push", "swap"}, actions)
}

func TestTrace_NoRouteAtStartIsBlackhole(t *testing.T) {
	inv := newFakeInventory()
	inv.addDevice("A", "10.0.0.1", "edge")

	w := New(routeFunc(nil), inv, nil, nil, Config{})
	result, err := w.Trace(context.Background(), "192.0.2.0/24", "A", "", nil)
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	require.Equal(t, EndBlackhole, result.Paths[0].EndReason)
	require.False(t, result.Paths[0].Complete)
	require.Len(t, result.Paths[0].Hops, 1)
}

func TestTrace_UnknownNextHopIsNotInInventory(t *testing.T) {
	inv := newFakeInventory()
	inv.addDevice("A", "10.0.0.1", "edge")

	routes := map[string][]routeentry.Entry{
		"A": {{Prefix: "192.0.2.0/24", Protocol: routeentry.ProtocolBGP, NextHop: "99.99.99.99", Active: true}},
	}

	w := New(routeFunc(routes), inv, nil, nil, Config{})
	result, err := w.Trace(context.Background(), "192.0.2.0/24", "A", "", nil)
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	require.Equal(t, EndNotInInventory, result.Paths[0].EndReason)
	require.Len(t, result.Paths[0].Hops, 2)
}

func TestTrace_CollectorErrorIsUnreachable(t *testing.T) {
	inv := newFakeInventory()
	inv.addDevice("A", "10.0.0.1", "edge")

	fails := collector.Func(func(ctx context.Context, device, prefix, vrf string) ([]routeentry.Entry, error) {
		return nil, context.DeadlineExceeded
	})

	w := New(fails, inv, nil, nil, Config{})
	result, err := w.Trace(context.Background(), "192.0.2.0/24", "A", "", nil)
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	require.Equal(t, EndUnreachable, result.Paths[0].EndReason)
}

func TestTrace_ExcludedNodeIsFailedNode(t *testing.T) {
	inv := newFakeInventory()
	inv.addDevice("A", "10.0.0.1", "edge")

	w := New(routeFunc(nil), inv, nil, nil, Config{})
	result, err := w.Trace(context.Background(), "192.0.2.0/24", "A", "", []string{"A"})
	require.NoError(t, err)
	require.Equal(t, EndFailedNode, result.Paths[0].EndReason)
}

func TestTrace_ECMPCapExploresOnlyMaxBranches(t *testing.T) {
	inv := newFakeInventory()
	inv.addDevice("A", "10.0.0.1", "edge")

	var paths []routeentry.Entry
	for i := 1; i <= 10; i++ {
		paths = append(paths, routeentry.Entry{Protocol: routeentry.ProtocolBGP, NextHop: ipFor(i), Active: true})
	}
	for i := 1; i <= 10; i++ {
		inv.ipIndex[ipFor(i)] = deviceFor(i)
		inv.addDevice(deviceFor(i), mgmtIPFor(i), "core")
	}

	routes := map[string][]routeentry.Entry{"A": {paths[0]}}
	routes["A"][0].Paths = paths[1:]
	for i := 1; i <= 10; i++ {
		routes[deviceFor(i)] = []routeentry.Entry{{Protocol: routeentry.ProtocolConnected, Active: true}}
	}

	w := New(routeFunc(routes), inv, nil, nil, Config{MaxECMPBranches: 8})
	result, err := w.Trace(context.Background(), "192.0.2.0/24", "A", "", nil)
	require.NoError(t, err)
	require.Len(t, result.Paths, 8)
	require.Len(t, result.ECMPBranches, 1)
	require.Len(t, result.ECMPBranches[0].Observed, 10)
	require.Len(t, result.ECMPBranches[0].Followed, 8)
}

func ipFor(i int) string      { return "10.9." + itoa(i) + ".2" }
func mgmtIPFor(i int) string  { return "10.8." + itoa(i) + ".1" }
func deviceFor(i int) string  { return "D" + itoa(i) }

func itoa(i int) string {
	digits := "0123456789"
	if i < 10 {
		return string(digits[i])
	}
	return string(digits[i/10]) + string(digits[i%10])
}
