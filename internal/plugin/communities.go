package plugin

import (
	"fmt"
	"regexp"
	"strconv"
)

// Community marker values (X:1594 = OID for site X, X:194 = AID for site
// X). Grounded on
// original_source/backend/plugins/fis_community_decoder.py.
const (
	oidMarker = 1594
	aidMarker = 194

	lpPrimary   = 200
	lpSecondary = 150
	lpTertiary  = 50
)

var siteRegions = map[int]string{
	1: "americas", 2: "americas", 3: "americas", 4: "americas",
	7: "emea", 8: "emea",
	17: "apac", 18: "apac", 19: "apac",
}

var communityRE = regexp.MustCompile(`^(\d+):(\d+)$`)

// OIDAIDDecoder decodes the OID/AID origin-site community convention
// carried by this network's route-reflector templates into human-readable
// labels: origin/advertising site, region, and a primary/secondary/
// tertiary preference derived from local-pref.
type OIDAIDDecoder struct{}

func (OIDAIDDecoder) Name() string { return "oid-aid-community-decoder" }

func (OIDAIDDecoder) Decode(communities []string, localPref *int) map[string]Value {
	out := make(map[string]Value)

	for _, c := range communities {
		m := communityRE.FindStringSubmatch(c)
		if m == nil {
			continue
		}
		left, err1 := strconv.Atoi(m[1])
		right, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			continue
		}

		switch right {
		case oidMarker:
			out["origin_site"] = String(fmt.Sprintf("Site-%d", left))
			if region, ok := siteRegions[left]; ok {
				out["region"] = String(region)
			} else {
				out["region"] = String("unknown")
			}
		case aidMarker:
			out["advertising_site"] = String(fmt.Sprintf("Site-%d", left))
		}
	}

	if localPref != nil {
		switch {
		case *localPref >= lpPrimary:
			out["preference"] = String("primary")
		case *localPref >= lpSecondary:
			out["preference"] = String("secondary")
		case *localPref <= lpTertiary:
			out["preference"] = String("tertiary")
		}
	}

	return out
}
