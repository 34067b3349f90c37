package analysis

import (
	"time"

	"github.com/miekg/dns"
	"github.com/dnssec-analysis/engine/dnssec"
	"github.com/dnssec-analysis/engine/errs"
	"github.com/dnssec-analysis/engine/status"
)

// DelegationInput gathers everything EvaluateDelegation needs about the
// child's DS query and the parent's signedness, keeping the function
// itself a pure decision over already-computed material.
type DelegationInput struct {
	ChildName string

	// DSAnswers are the RRsetInfo(s) observed at queries[(child, DS)].
	DSAnswers []*RRsetInfo

	// DSNoDataProofs are the already-computed C5 proofs for a NODATA
	// response to the DS query (authenticated denial of DS).
	DSNoDataProofs []status.NegativeProofStatus

	DSIsNXDomain bool

	ParentSigned  bool
	ZoneResponsive bool

	ChildDNSKEYs   *DNSKEYIndex
	ChildDNSKEYSig map[uint16][]status.RRSIGStatus // key tag -> RRSIG statuses where that key validated the DNSKEY RRset

	Oracle       *dnssec.Oracle
	AnalysisEnd  time.Time
}

// DelegationResult is C6's output: the per-DS digest statuses plus the
// resolved overall delegation status and any errors/warnings raised.
type DelegationResult struct {
	DSStatuses []status.DSStatus
	Status     status.Delegation
	Errors     errs.List
	Warnings   errs.List
}

// EvaluateDelegation implements C6: it ties DS rdata to DNSKEYs, computes
// per-key SEP validation, and assigns the overall delegation status.
func EvaluateDelegation(in DelegationInput) *DelegationResult {
	result := &DelegationResult{}

	if in.DSIsNXDomain {
		result.Status = status.DelegationIncomplete
		var witnesses []errs.Witness
		for _, ds := range in.DSAnswers {
			witnesses = append(witnesses, ds.Witnesses...)
		}
		result.Errors.Insert(errs.New(errs.KindNoNSInParent, witnesses...))
		return result
	}

	dsRdatas := collectDS(in.DSAnswers)

	if len(dsRdatas) == 0 {
		if !in.ParentSigned {
			result.Status = degradeInsecureIfUnresponsive(status.DelegationInsecure, in.ZoneResponsive)
			return result
		}
		if negativeProofValid(in.DSNoDataProofs) {
			result.Status = degradeInsecureIfUnresponsive(status.DelegationInsecure, in.ZoneResponsive)
			return result
		}
		result.Status = status.DelegationBogus
		return result
	}

	securePath := false
	algsSigningSEP := make(map[uint8]bool)
	algsValidatingSEP := make(map[uint8]bool)

	for _, ds := range dsRdatas {
		if in.Oracle.DigestAlgorithmSupported(ds.rr.DigestType) {
			securePath = true
		}

		key, ok := in.ChildDNSKEYs.Lookup(ds.rr.KeyTag, ds.rr.Algorithm)
		if !ok {
			continue
		}

		dsStatus := dnssec.ValidateDS(ds.rr, key.RR, in.Oracle)
		result.DSStatuses = append(result.DSStatuses, dsStatus)

		selfSigned := rrsigValidatesWithKey(in.ChildDNSKEYSig[key.KeyTag])

		if selfSigned {
			algsSigningSEP[ds.rr.Algorithm] = true
			if dsStatus.Validation == status.ValidationValid {
				algsValidatingSEP[ds.rr.Algorithm] = true
			}
		}

		if dsStatus.Validation == status.ValidationValid && !selfSigned {
			// DS digest is correct but the key never validly signs its own
			// RRset: not a SEP. algsSigningSEP is left as it was, so this DS
			// alone raises no MissingSEPForAlg.
			algsSigningSEP[ds.rr.Algorithm] = algsSigningSEP[ds.rr.Algorithm] || false
		}

		for _, w := range ds.witnesses {
			if algsSigningSEP[ds.rr.Algorithm] && !algsValidatingSEP[ds.rr.Algorithm] {
				result.Warnings.Insert(errs.New(errs.KindMissingSEPForAlg, w).WithAlgorithm(ds.rr.Algorithm))
			}
		}
	}

	if !securePath {
		result.Status = degradeInsecureIfUnresponsive(status.DelegationInsecure, in.ZoneResponsive)
		return result
	}

	if len(algsValidatingSEP) == 0 {
		var witnesses []errs.Witness
		for _, ds := range in.DSAnswers {
			witnesses = append(witnesses, ds.Witnesses...)
		}
		result.Errors.Insert(errs.New(errs.KindNoSEP, witnesses...))
		result.Status = status.DelegationBogus
		return result
	}

	result.Status = status.DelegationSecure
	return result
}

// degradeInsecureIfUnresponsive applies the LAME degrade: an unresponsive
// zone can only ever pull an otherwise-INSECURE delegation down to LAME, a
// SECURE or BOGUS outcome is left alone, since unresponsiveness casts doubt
// on an absence of DS, not on a cryptographic result already reached.
func degradeInsecureIfUnresponsive(s status.Delegation, responsive bool) status.Delegation {
	if s == status.DelegationInsecure && !responsive {
		return status.DelegationLame
	}
	return s
}

type dsRdata struct {
	rr        *dns.DS
	witnesses []errs.Witness
}

func collectDS(infos []*RRsetInfo) []dsRdata {
	var out []dsRdata
	for _, info := range infos {
		for _, rr := range info.RRset {
			if ds, ok := rr.(*dns.DS); ok {
				out = append(out, dsRdata{rr: ds, witnesses: info.Witnesses})
			}
		}
	}
	return out
}

func negativeProofValid(proofs []status.NegativeProofStatus) bool {
	for _, p := range proofs {
		if p.Validation == status.ValidationValid {
			return true
		}
	}
	return false
}

func rrsigValidatesWithKey(statuses []status.RRSIGStatus) bool {
	for _, st := range statuses {
		if st.Validation == status.ValidationValid {
			return true
		}
	}
	return false
}
