package analysis

import (
	"context"
	"time"

	"github.com/miekg/dns"
	"github.com/dnssec-analysis/engine/dnssec"
	"github.com/dnssec-analysis/engine/dnssec/doe"
	"github.com/dnssec-analysis/engine/errs"
	"github.com/dnssec-analysis/engine/status"
)

// NegativeResult is the outcome of proving one NegativeResponseInfo: the
// per-proof-kind statuses computed, plus the errors/warnings raised while
// doing so.
type NegativeResult struct {
	Statuses []status.NegativeProofStatus
	Errors   errs.List
	Warnings errs.List
}

// witnessSet is a small helper tracking "still outstanding" witnesses.
type witnessSet map[errs.Witness]bool

func newWitnessSet(witnesses []errs.Witness) witnessSet {
	s := make(witnessSet, len(witnesses))
	for _, w := range witnesses {
		s[w] = true
	}
	return s
}

func (s witnessSet) remove(witnesses []errs.Witness) {
	for _, w := range witnesses {
		delete(s, w)
	}
}

func (s witnessSet) list() []errs.Witness {
	out := make([]errs.Witness, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	return out
}

// ProveNegativeResponse implements C5: it validates the accompanying SOA,
// then proves the requested claim (NXDOMAIN, NODATA, or wildcard-expansion
// non-existence of the QNAME) over whichever NSEC or NSEC3 records were
// offered.
func ProveNegativeResponse(info *NegativeResponseInfo, kind status.NegativeProofKind, zoneName string, dnskeys *DNSKEYIndex, oracle *dnssec.Oracle, analysisEnd time.Time) *NegativeResult {
	result := &NegativeResult{}

	withoutSOA := newWitnessSet(info.Witnesses)
	missingNSEC := newWitnessSet(info.Witnesses)

	soaErrKind := errs.KindSOAOwnerNotZoneForNODATA
	missingSOAKind := errs.KindMissingSOAForNODATA
	missingNSECKind := errs.KindMissingNSECForNODATA
	if kind == status.ProofNXDOMAIN {
		soaErrKind = errs.KindSOAOwnerNotZoneForNXDOMAIN
		missingSOAKind = errs.KindMissingSOAForNXDOMAIN
		missingNSECKind = errs.KindMissingNSECForNXDOMAIN
	} else if kind == status.ProofWildcard {
		missingNSECKind = errs.KindMissingNSECForWildcard
	}

	if info.RDType != dns.TypeDNSKEY {
		for _, soa := range info.SOA {
			withoutSOA.remove(soa.Witnesses)
			if soa.Name() != zoneName {
				result.Errors.Insert(errs.New(soaErrKind, soa.Witnesses...))
			}
			rrsigStatuses, warn := ValidateRRset(soa, zoneName, dnskeys, oracle, analysisEnd)
			result.Warnings = append(result.Warnings, warn...)
			_ = rrsigStatuses
		}
		for _, w := range withoutSOA.list() {
			result.Errors.Insert(errs.New(missingSOAKind, w))
		}
	}

	for _, set := range info.NSECSets {
		st := proveOneNSECSet(set, info.Owner, info.RDType, kind, zoneName, dnskeys, oracle, analysisEnd)
		result.Statuses = append(result.Statuses, st)
		if st.Validation == status.ValidationValid {
			missingNSEC.remove(set.Witnesses)
		}
	}

	for _, w := range missingNSEC.list() {
		result.Errors.Insert(errs.New(missingNSECKind, w))
	}

	return result
}

func proveOneNSECSet(set *NSECSetInfo, owner string, rdtype uint16, kind status.NegativeProofKind, zoneName string, dnskeys *DNSKEYIndex, oracle *dnssec.Oracle, analysisEnd time.Time) status.NegativeProofStatus {
	st := status.NegativeProofStatus{Kind: kind, UsesNSEC3: set.UseNSEC3, Validation: status.ValidationIndeterminate}

	// Validate the RRSIGs covering the NSEC/NSEC3 RRset itself: a set that
	// carries RRSIGs needs at least one VALID one. A set with no RRSIGs at
	// all is not rejected here.
	rrsetOK := len(set.RRSIGs) == 0
	for _, sig := range set.RRSIGs {
		info := &RRsetInfo{RRSIGs: []*RRSIGInfo{sig}}
		if set.UseNSEC3 {
			for _, r := range set.NSEC3 {
				info.RRset = append(info.RRset, r)
			}
		} else {
			for _, r := range set.NSEC {
				info.RRset = append(info.RRset, r)
			}
		}
		statuses, _ := ValidateRRset(info, zoneName, dnskeys, oracle, analysisEnd)
		for _, s := range statuses {
			if s.Validation == status.ValidationValid {
				rrsetOK = true
			}
		}
	}
	if !rrsetOK {
		st.Validation = status.ValidationInvalidSig
		return st
	}

	if set.UseNSEC3 {
		d := doe.NewDenialOfExistenceNSEC3(context.Background(), zoneName, set.NSEC3)
		proved := false
		switch kind {
		case status.ProofNXDOMAIN:
			optedOut, ce, ncn, wc := d.PerformClosestEncloserProof(owner)
			proved = ce && ncn && wc
			st.OptOut = optedOut
		case status.ProofNoData, status.ProofMissingDS:
			nameSeen, typeSeen := d.TypeBitMapContainsAnyOf(owner, []uint16{rdtype})
			proved = nameSeen && !typeSeen
		case status.ProofWildcard:
			labels := dns.CountLabel(owner)
			proved = d.PerformExpandedWildcardProof(owner, uint8(labels))
		}
		if proved {
			st.Validation = status.ValidationValid
		} else {
			st.Validation = status.ValidationInvalidSig
		}
		return st
	}

	d := doe.NewDenialOfExistenceNSEC(context.Background(), zoneName, set.NSEC)
	proved := false
	switch kind {
	case status.ProofNXDOMAIN:
		proved = d.PerformQNameDoesNotExistProof(owner)
	case status.ProofNoData, status.ProofMissingDS:
		nameSeen, typeSeen := d.TypeBitMapContainsAnyOf(owner, []uint16{rdtype})
		proved = nameSeen && !typeSeen
	case status.ProofWildcard:
		proved = d.PerformExpandedWildcardProof(owner)
	}
	if proved {
		st.Validation = status.ValidationValid
	} else {
		st.Validation = status.ValidationInvalidSig
	}
	return st
}

// InconsistentNXDOMAIN scans every other (non-DS/DLV) query at the same
// qname for an answer or NODATA whose witnesses overlap the NXDOMAIN's
// witnesses. It returns one InconsistentNXDOMAIN entry per conflicting query,
// bound to the overlapping witnesses; it is not attached separately to the
// NXDOMAIN and the conflicting answer.
func InconsistentNXDOMAIN(na *NameAnalysis, nxKey QueryKey, nxInfo *NegativeResponseInfo) errs.List {
	var out errs.List

	nxWitnesses := newWitnessSet(nxInfo.Witnesses)

	for key, q := range na.Queries {
		if key == nxKey || key.RDType == dns.TypeDS || key.RDType == 32769 /* DLV */ {
			continue
		}
		if key.QName != nxKey.QName {
			continue
		}

		var overlap []errs.Witness
		for _, ans := range q.AnswerInfo {
			for _, w := range ans.Witnesses {
				if nxWitnesses[w] {
					overlap = append(overlap, w)
				}
			}
		}
		for _, nd := range q.NoDataInfo {
			for _, w := range nd.Witnesses {
				if nxWitnesses[w] {
					overlap = append(overlap, w)
				}
			}
		}

		if len(overlap) > 0 {
			out.Insert(errs.New(errs.KindInconsistentNXDOMAIN, overlap...))
		}
	}

	return out
}
