package analysis

import (
	"time"

	"github.com/dnssec-analysis/engine/dnssec"
	"github.com/dnssec-analysis/engine/errs"
	"github.com/dnssec-analysis/engine/status"
)

// ValidateRRset runs the RRSIG validator (C3) for every RRSIG attached to
// info against every DNSKEY in dnskeys whose tag and algorithm the RRSIG
// claims, keeping the best candidate status per RRSIG (prefer valid, else
// invalid, else indeterminate). If info carries no RRSIGs at all, a
// MissingRRSIG error is raised against its witnesses.
func ValidateRRset(info *RRsetInfo, zone string, dnskeys *DNSKEYIndex, oracle *dnssec.Oracle, analysisEnd time.Time) ([]status.RRSIGStatus, errs.List) {
	var warnings errs.List

	if len(info.RRSIGs) == 0 {
		warnings.Insert(errs.New(errs.KindMissingRRSIG, info.Witnesses...))
		return nil, warnings
	}

	results := make([]status.RRSIGStatus, 0, len(info.RRSIGs))
	for _, sigInfo := range info.RRSIGs {
		var candidates []status.RRSIGStatus

		if dnskeys != nil {
			for _, key := range dnskeys.All() {
				if key.RR.Algorithm != sigInfo.RRSIG.Algorithm || !dnssec.KeyTagMatches(key.RR, sigInfo.RRSIG.KeyTag) {
					continue
				}
				candidates = append(candidates, dnssec.ValidateRRSIG(info.RRset, sigInfo.RRSIG, key.RR, zone, analysisEnd, oracle))
			}
		}

		if len(candidates) == 0 {
			results = append(results, status.RRSIGStatus{RRSIG: sigInfo.RRSIG, Validation: status.ValidationKeyUnavailable})
			continue
		}

		results = append(results, dnssec.BestRRSIGStatus(candidates))
	}

	return results, warnings
}

// MissingRRSIGForAlg raises kind for every algorithm in signingAlgorithms
// that none of signedAlgorithms covers: the "algorithm rollover gap" case,
// where a DNSKEY/DS/DLV RRset advertises an algorithm no RRSIG covers.
func MissingRRSIGForAlg(signingAlgorithms, signedAlgorithms []uint8, kind errs.Kind, witnesses []errs.Witness) errs.List {
	signed := make(map[uint8]bool, len(signedAlgorithms))
	for _, a := range signedAlgorithms {
		signed[a] = true
	}

	var out errs.List
	for _, a := range signingAlgorithms {
		if !signed[a] {
			out.Insert(errs.New(kind, witnesses...).WithAlgorithm(a))
		}
	}
	return out
}

// signedAlgorithms returns the distinct set of algorithms with at least one
// RRSIG among statuses, whatever that RRSIG's validation outcome.
func signedAlgorithms(statuses []status.RRSIGStatus) []uint8 {
	seen := make(map[uint8]bool)
	var out []uint8
	for _, st := range statuses {
		if st.RRSIG == nil {
			continue
		}
		if !seen[st.RRSIG.Algorithm] {
			seen[st.RRSIG.Algorithm] = true
			out = append(out, st.RRSIG.Algorithm)
		}
	}
	return out
}
