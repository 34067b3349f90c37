package analysis

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/dnssec-analysis/engine/errs"
	"github.com/dnssec-analysis/engine/status"
)

func TestQueryID_BuildsOwnerClassTypeTriple(t *testing.T) {
	assert.Equal(t, "example.com./IN/DNSKEY", queryID("example.com.", dns.TypeDNSKEY))
}

func TestSerialize_OrdersDNSKEYsByAlgorithmThenKeyTag(t *testing.T) {
	na := NewNameAnalysis(testZone, AnalysisTypeAuthoritative)
	na.NameStatus = status.NameNoError
	na.DelegationStatus = status.DelegationSecure

	ksk := testDNSKEY(testZone, 257)
	zsk := testDNSKEY(testZone, 256)
	na.Queries[QueryKey{QName: testZone, RDType: dns.TypeDNSKEY}] = dnskeyQuery(testZone, ksk, ksk.key, zsk.key)
	na.DNSKEYIndex = BuildDNSKEYIndex(na)
	na.KSKs = []*DNSKEYMeta{na.DNSKEYIndex.All()[0]}

	out := Serialize(na, LogLevelInfo)

	require.Len(t, out.DNSKEY, 2)
	for i := 1; i < len(out.DNSKEY); i++ {
		prev, cur := out.DNSKEY[i-1], out.DNSKEY[i]
		less := prev.Algorithm < cur.Algorithm ||
			(prev.Algorithm == cur.Algorithm && prev.KeyTag <= cur.KeyTag)
		assert.True(t, less, "DNSKEYs must be ordered by algorithm then key tag")
	}
}

func TestSerialize_KeyRoleStatusReflectsKSKRole(t *testing.T) {
	na := NewNameAnalysis(testZone, AnalysisTypeAuthoritative)
	ksk := testDNSKEY(testZone, 257)
	na.Queries[QueryKey{QName: testZone, RDType: dns.TypeDNSKEY}] = dnskeyQuery(testZone, ksk, ksk.key)
	na.DNSKEYIndex = BuildDNSKEYIndex(na)
	na.KSKs = na.DNSKEYIndex.All()

	out := Serialize(na, LogLevelInfo)

	require.Len(t, out.DNSKEY, 1)
	assert.Equal(t, "ksk", out.DNSKEY[0].Status)
}

func TestSerialize_SeverityGateDropsWarningsBelowErrorOnlyLevel(t *testing.T) {
	na := NewNameAnalysis(testZone, AnalysisTypeAuthoritative)
	na.NameStatus = status.NameNoError
	na.DelegationStatus = status.DelegationInsecure

	info := &RRsetInfo{
		RRset:     []dns.RR{newRR("example.com. 300 IN A 192.0.2.1")},
		Witnesses: []errs.Witness{witness("ns1.example.com.")},
		Status:    status.RRsetInsecure,
	}
	key := QueryKey{QName: testZone, RDType: dns.TypeA}
	na.Queries[key] = &Query{QName: testZone, RDType: dns.TypeA, AnswerInfo: []*RRsetInfo{info}}
	na.Errors.Insert(errs.New(errs.KindMissingRRSIG, witness("ns1.example.com.")))

	allOut := Serialize(na, LogLevelInfo)
	require.Len(t, allOut.Queries, 1)
	require.Len(t, allOut.Queries[0].Answer, 1)
	assert.Contains(t, allOut.Queries[0].Answer[0].Errors, string(errs.KindMissingRRSIG),
		"an unsigned zone downgrades MissingRRSIG to Warning, which still passes at LogLevelInfo")

	errorOnly := Serialize(na, LogLevelError)
	assert.NotContains(t, errorOnly.Queries[0].Answer[0].Errors, string(errs.KindMissingRRSIG),
		"an unsigned (DSStatus empty) zone downgrades MissingRRSIG to Warning, which is gated out at LogLevelError")
}

func TestSerializeAll_OrdersNamesCanonically(t *testing.T) {
	a := NewNameAnalysis("b.example.com.", AnalysisTypeAuthoritative)
	b := NewNameAnalysis("a.example.com.", AnalysisTypeAuthoritative)

	report := SerializeAll("run-1", []*NameAnalysis{a, b}, LogLevelInfo)

	require.Len(t, report.Names, 2)
	assert.Equal(t, "a.example.com.", report.Names[0].Name)
	assert.Equal(t, "b.example.com.", report.Names[1].Name)
	assert.Equal(t, "run-1", report.RunID)
}
