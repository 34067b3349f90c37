package analysis

import (
	"github.com/miekg/dns"
	"github.com/dnssec-analysis/engine/status"
)

// TrustGraph is the narrow interface the externally produced trust-chain
// graph exposes to the colorer: a per-(name, rdtype) node color, and the
// set of DNSKEY RRsets the graph has already forced secure regardless of
// their node's color (because they are trust anchors themselves).
type TrustGraph interface {
	Color(name string, rdtype uint16) RRsetColor
	IsSecureDNSKEYRRset(name string) bool
}

// RRsetColor is the trust-chain graph's verdict for one node.
type RRsetColor uint8

const (
	ColorBogus RRsetColor = iota
	ColorInsecure
	ColorSecure
)

func colorToRRsetStatus(c RRsetColor) status.RRset {
	switch c {
	case ColorSecure:
		return status.RRsetSecure
	case ColorInsecure:
		return status.RRsetInsecure
	default:
		return status.RRsetBogus
	}
}

// ColorComponentStatus implements C8: given an external trust graph, it
// back-propagates secure/insecure/bogus to every RRset, DNSKEY, and
// negative-response artifact of na, applying the opt-out and DNSKEY
// negative-response special cases.
func ColorComponentStatus(na *NameAnalysis, graph TrustGraph) {
	colorRRsets(na, graph)
	colorDNSKEYs(na, graph)
	colorNegativeResponses(na, graph)
}

func colorRRsets(na *NameAnalysis, graph TrustGraph) {
	for key, q := range na.Queries {
		color := colorToRRsetStatus(graph.Color(key.QName, key.RDType))
		for _, info := range q.AnswerInfo {
			info.Status = color
		}
	}
}

func colorDNSKEYs(na *NameAnalysis, graph TrustGraph) {
	if na.DNSKEYIndex == nil {
		return
	}
	color := colorToRRsetStatus(graph.Color(na.Name, dns.TypeDNSKEY))
	forced := graph.IsSecureDNSKEYRRset(na.Name)

	for _, set := range na.DNSKEYIndex.Sets {
		if forced {
			set.Info.Status = status.RRsetSecure
			continue
		}
		set.Info.Status = color
	}
}

func colorNegativeResponses(na *NameAnalysis, graph TrustGraph) {
	for key, q := range na.Queries {
		color := colorToRRsetStatus(graph.Color(key.QName, key.RDType))

		for _, nd := range q.NoDataInfo {
			colorSOA(nd, graph)
			applyNegativeColoring(nd, key.RDType, color)
		}
		for _, nx := range q.NXDomainInfo {
			colorSOA(nx, graph)
			applyNegativeColoring(nx, key.RDType, color)
		}
	}
}

// colorSOA paints the SOA RRsetInfo accompanying a negative response from
// the trust graph, the same way colorRRsets paints a query's own answer: the
// accompanying SOA is itself a graph node (the zone apex's SOA RRset), not a
// derived artifact, so its status must come from the graph rather than stay
// at its zero value.
func colorSOA(info *NegativeResponseInfo, graph TrustGraph) {
	for _, soa := range info.SOA {
		soa.Status = colorToRRsetStatus(graph.Color(soa.Name(), dns.TypeSOA))
	}
}

// applyNegativeColoring implements the DS-upgrade, DNSKEY-downgrade,
// opt-out-authentication, and final SOA-secure gate special cases of C8.
func applyNegativeColoring(info *NegativeResponseInfo, rdtype uint16, color status.RRset) {
	st := color

	switch rdtype {
	case dns.TypeDS:
		if st == status.RRsetInsecure {
			st = status.RRsetSecure
		}
	case dns.TypeDNSKEY:
		if st == status.RRsetSecure {
			st = status.RRsetBogus
			for _, soa := range info.SOA {
				soa.Status = st
			}
		}
	}

	if st == status.RRsetInsecure && hasOptOutProof(info) {
		st = status.RRsetSecure
	}

	if st == status.RRsetSecure && len(info.SOA) > 0 {
		secureSOA := false
		for _, soa := range info.SOA {
			if soa.Status == status.RRsetSecure {
				secureSOA = true
			}
		}
		if !secureSOA {
			st = status.RRsetBogus
		}
	}

	info.Status = st
}

// hasOptOutProof reports whether any NSEC3 record in info's NSEC3 bundles
// has the opt-out flag set. Whether that record covers the queried name, or
// whether its signature validated, is not checked here.
func hasOptOutProof(info *NegativeResponseInfo) bool {
	for _, set := range info.NSECSets {
		if !set.UseNSEC3 {
			continue
		}
		for _, n := range set.NSEC3 {
			if n.Flags == 1 {
				return true
			}
		}
	}
	return false
}
