package analysis

import (
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/dnssec-analysis/engine/errs"
	"github.com/dnssec-analysis/engine/status"
)

func nsecFixture() []*dns.NSEC {
	return []*dns.NSEC{
		newRR("example.com. 3600 IN NSEC d.example.com. SOA RRSIG NSEC").(*dns.NSEC),
		newRR("s.example.com. 3600 IN NSEC u.example.com. A RRSIG NSEC").(*dns.NSEC),
	}
}

func TestProveNegativeResponse_NXDOMAINValidProof(t *testing.T) {
	soa := &RRsetInfo{
		RRset:     []dns.RR{newRR("example.com. 3600 IN SOA a. b. 1 2 3 4 5")},
		Witnesses: []errs.Witness{witness("ns1")},
	}
	info := &NegativeResponseInfo{
		Owner:     "test.example.com.",
		RDType:    dns.TypeA,
		SOA:       []*RRsetInfo{soa},
		Witnesses: []errs.Witness{witness("ns1")},
		NSECSets: []*NSECSetInfo{{
			Zone:      "example.com.",
			NSEC:      nsecFixture(),
			Witnesses: []errs.Witness{witness("ns1")},
		}},
	}

	result := ProveNegativeResponse(info, status.ProofNXDOMAIN, "example.com.", nil, defaultOracle(), time.Now())

	require.Len(t, result.Statuses, 1)
	assert.Equal(t, status.ValidationValid, result.Statuses[0].Validation)
	assert.Empty(t, result.Errors)
}

func TestProveNegativeResponse_MissingNSECRaisesError(t *testing.T) {
	soa := &RRsetInfo{
		RRset:     []dns.RR{newRR("example.com. 3600 IN SOA a. b. 1 2 3 4 5")},
		Witnesses: []errs.Witness{witness("ns1")},
	}
	info := &NegativeResponseInfo{
		Owner:     "test.example.com.",
		RDType:    dns.TypeA,
		SOA:       []*RRsetInfo{soa},
		Witnesses: []errs.Witness{witness("ns1")},
	}

	result := ProveNegativeResponse(info, status.ProofNXDOMAIN, "example.com.", nil, defaultOracle(), time.Now())

	require.Len(t, result.Errors, 1)
	assert.Equal(t, errs.KindMissingNSECForNXDOMAIN, result.Errors[0].Kind)
}

func TestProveNegativeResponse_WrongSOAOwnerRaisesError(t *testing.T) {
	soa := &RRsetInfo{
		RRset:     []dns.RR{newRR("sub.example.com. 3600 IN SOA a. b. 1 2 3 4 5")},
		Witnesses: []errs.Witness{witness("ns1")},
	}
	info := &NegativeResponseInfo{
		Owner:     "test.example.com.",
		RDType:    dns.TypeA,
		SOA:       []*RRsetInfo{soa},
		Witnesses: []errs.Witness{witness("ns1")},
		NSECSets: []*NSECSetInfo{{
			Zone:      "example.com.",
			NSEC:      nsecFixture(),
			Witnesses: []errs.Witness{witness("ns1")},
		}},
	}

	result := ProveNegativeResponse(info, status.ProofNXDOMAIN, "example.com.", nil, defaultOracle(), time.Now())

	found := false
	for _, e := range result.Errors {
		if e.Kind == errs.KindSOAOwnerNotZoneForNXDOMAIN {
			found = true
		}
	}
	assert.True(t, found)
}

func TestInconsistentNXDOMAIN_FlagsOverlappingWitness(t *testing.T) {
	na := NewNameAnalysis(testZone, AnalysisTypeAuthoritative)
	w := witness("ns1")

	aKey := QueryKey{QName: "sub.example.com.", RDType: dns.TypeA}
	na.Queries[aKey] = &Query{
		QName: "sub.example.com.", RDType: dns.TypeA,
		AnswerInfo: []*RRsetInfo{{RRset: []dns.RR{newRR("sub.example.com. 300 IN A 192.0.2.1")}, Witnesses: []errs.Witness{w}}},
	}

	nxKey := QueryKey{QName: "sub.example.com.", RDType: dns.TypeAAAA}
	nxInfo := &NegativeResponseInfo{Owner: "sub.example.com.", RDType: dns.TypeAAAA, Witnesses: []errs.Witness{w}}
	na.Queries[nxKey] = &Query{QName: "sub.example.com.", RDType: dns.TypeAAAA, NXDomainInfo: []*NegativeResponseInfo{nxInfo}}

	out := InconsistentNXDOMAIN(na, nxKey, nxInfo)
	require.Len(t, out, 1)
	assert.Equal(t, errs.KindInconsistentNXDOMAIN, out[0].Kind)
}
