package analysis

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/dnssec-analysis/engine/status"
)

type fakeGraph struct {
	colors map[QueryKey]RRsetColor
	secure map[string]bool
}

func (g *fakeGraph) Color(name string, rdtype uint16) RRsetColor {
	if c, ok := g.colors[QueryKey{QName: name, RDType: rdtype}]; ok {
		return c
	}
	return ColorBogus
}

func (g *fakeGraph) IsSecureDNSKEYRRset(name string) bool { return g.secure[name] }

func TestColorComponentStatus_PaintsRRsetsFromGraph(t *testing.T) {
	na := NewNameAnalysis(testZone, AnalysisTypeAuthoritative)
	key := QueryKey{QName: testZone, RDType: dns.TypeA}
	info := &RRsetInfo{RRset: []dns.RR{newRR(testZone + " 300 IN A 192.0.2.1")}}
	na.Queries[key] = &Query{QName: testZone, RDType: dns.TypeA, AnswerInfo: []*RRsetInfo{info}}

	graph := &fakeGraph{colors: map[QueryKey]RRsetColor{key: ColorSecure}}
	ColorComponentStatus(na, graph)

	assert.Equal(t, status.RRsetSecure, info.Status)
}

func TestColorComponentStatus_DSNegativeInsecureUpgradesToSecure(t *testing.T) {
	na := NewNameAnalysis(testZone, AnalysisTypeAuthoritative)
	dsKey := QueryKey{QName: testZone, RDType: dns.TypeDS}
	neg := &NegativeResponseInfo{Owner: testZone, RDType: dns.TypeDS}
	na.Queries[dsKey] = &Query{QName: testZone, RDType: dns.TypeDS, NoDataInfo: []*NegativeResponseInfo{neg}}

	graph := &fakeGraph{colors: map[QueryKey]RRsetColor{dsKey: ColorInsecure}}
	ColorComponentStatus(na, graph)

	assert.Equal(t, status.RRsetSecure, neg.Status, "authenticated denial of DS upgrades insecure to secure")
}

func TestColorComponentStatus_DNSKEYNegativeSecureDowngradesToBogus(t *testing.T) {
	na := NewNameAnalysis(testZone, AnalysisTypeAuthoritative)
	dnskeyKey := QueryKey{QName: testZone, RDType: dns.TypeDNSKEY}
	soaKey := QueryKey{QName: testZone, RDType: dns.TypeSOA}
	soa := &RRsetInfo{RRset: []dns.RR{newRR(testZone + " 300 IN SOA ns1." + testZone + " hostmaster." + testZone + " 1 3600 900 1209600 300")}}
	neg := &NegativeResponseInfo{Owner: testZone, RDType: dns.TypeDNSKEY, SOA: []*RRsetInfo{soa}}
	na.Queries[dnskeyKey] = &Query{QName: testZone, RDType: dns.TypeDNSKEY, NoDataInfo: []*NegativeResponseInfo{neg}}

	graph := &fakeGraph{colors: map[QueryKey]RRsetColor{dnskeyKey: ColorSecure, soaKey: ColorSecure}}
	ColorComponentStatus(na, graph)

	assert.Equal(t, status.RRsetBogus, neg.Status)
	assert.Equal(t, status.RRsetBogus, soa.Status, "SOA status must follow the DNSKEY-negative downgrade even though the graph painted it SECURE")
}

func TestColorComponentStatus_SecureNegativeWithoutSecureSOAIsBogus(t *testing.T) {
	na := NewNameAnalysis(testZone, AnalysisTypeAuthoritative)
	key := QueryKey{QName: testZone, RDType: dns.TypeA}
	soaKey := QueryKey{QName: testZone, RDType: dns.TypeSOA}
	soa := &RRsetInfo{RRset: []dns.RR{newRR(testZone + " 300 IN SOA ns1." + testZone + " hostmaster." + testZone + " 1 3600 900 1209600 300")}}
	neg := &NegativeResponseInfo{Owner: testZone, RDType: dns.TypeA, SOA: []*RRsetInfo{soa}}
	na.Queries[key] = &Query{QName: testZone, RDType: dns.TypeA, NoDataInfo: []*NegativeResponseInfo{neg}}

	graph := &fakeGraph{colors: map[QueryKey]RRsetColor{key: ColorSecure, soaKey: ColorInsecure}}
	ColorComponentStatus(na, graph)

	assert.Equal(t, status.RRsetBogus, neg.Status, "a SECURE negative response needs at least one SECURE SOA")
}

func TestColorComponentStatus_SecureNegativeWithSecureSOAStaysSecure(t *testing.T) {
	na := NewNameAnalysis(testZone, AnalysisTypeAuthoritative)
	key := QueryKey{QName: testZone, RDType: dns.TypeA}
	soaKey := QueryKey{QName: testZone, RDType: dns.TypeSOA}
	soa := &RRsetInfo{RRset: []dns.RR{newRR(testZone + " 300 IN SOA ns1." + testZone + " hostmaster." + testZone + " 1 3600 900 1209600 300")}}
	neg := &NegativeResponseInfo{Owner: testZone, RDType: dns.TypeA, SOA: []*RRsetInfo{soa}}
	na.Queries[key] = &Query{QName: testZone, RDType: dns.TypeA, NoDataInfo: []*NegativeResponseInfo{neg}}

	graph := &fakeGraph{colors: map[QueryKey]RRsetColor{key: ColorSecure, soaKey: ColorSecure}}
	ColorComponentStatus(na, graph)

	assert.Equal(t, status.RRsetSecure, soa.Status, "the accompanying SOA must be painted from the graph, not left at its zero value")
	assert.Equal(t, status.RRsetSecure, neg.Status, "a SECURE negative response with a graph-confirmed SECURE SOA must stay SECURE")
}
