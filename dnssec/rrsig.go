package dnssec

import (
	"time"

	"github.com/miekg/dns"
	"github.com/dnssec-analysis/engine/status"
)

// serialBefore implements the RFC 1982 serial-number comparison DNSSEC
// timestamps rely on, so inception/expiration checks are correct across the
// 2106 wraparound.
func serialBefore(a, b uint32) bool {
	return int32(a-b) < 0
}

// ValidateRRSIG implements the per-(RRset, RRSIG, DNSKEY) decision sequence:
// applicability, the DNSKEY-apex self-signature predicate, algorithm
// support, temporal validity, signer/label consistency, and finally
// delegated cryptographic verification.
func ValidateRRSIG(rrset []dns.RR, rrsig *dns.RRSIG, key *dns.DNSKEY, zone string, analysisEnd time.Time, oracle *Oracle) status.RRSIGStatus {
	st := status.RRSIGStatus{RRSIG: rrsig, DNSKey: key, Validation: status.ValidationIndeterminate}

	if len(rrset) == 0 {
		return st
	}

	// 1. Applicability.
	if key.Protocol != 3 {
		return st
	}
	if rrsig.Algorithm != key.Algorithm {
		return st
	}
	if !KeyTagMatches(key, rrsig.KeyTag) {
		return st
	}

	// 2. Self-signature predicate: a DNSKEY RRset at the zone apex must be
	// verified by a member of that very RRset.
	owner := dns.CanonicalName(rrset[0].Header().Name)
	if rrset[0].Header().Rrtype == dns.TypeDNSKEY && owner == dns.CanonicalName(zone) {
		if !dnskeyInRRset(key, rrset) {
			return st
		}
	}

	// 3. Algorithm support is advisory, not bogus.
	if !oracle.AlgorithmSupported(rrsig.Algorithm) {
		st.Validation = status.ValidationAlgUnsupported
		return st
	}

	// 4. Temporal validity.
	now := uint32(analysisEnd.Unix())
	if serialBefore(now, rrsig.Inception) {
		st.Validation = status.ValidationPremature
		return st
	}
	if serialBefore(rrsig.Expiration, now) {
		st.Validation = status.ValidationExpired
		return st
	}

	// 5. Signer / labels consistency (RFC 4034 section 3.1).
	if dns.CanonicalName(rrsig.SignerName) != dns.CanonicalName(zone) {
		return st
	}
	if !dns.IsSubDomain(rrsig.SignerName, owner) {
		return st
	}
	if int(rrsig.Labels) > dns.CountLabel(owner) {
		st.Validation = status.ValidationInvalidSig
		return st
	}

	// 6. Cryptographic verification, delegated to the oracle (miekg/dns).
	if err := rrsig.Verify(key, rrset); err != nil {
		st.Validation = status.ValidationInvalidSig
		return st
	}
	st.Validation = status.ValidationValid
	return st
}

func dnskeyInRRset(key *dns.DNSKEY, rrset []dns.RR) bool {
	for _, rr := range rrset {
		if candidate, ok := rr.(*dns.DNSKEY); ok {
			if candidate.Flags == key.Flags && candidate.Protocol == key.Protocol &&
				candidate.Algorithm == key.Algorithm && candidate.PublicKey == key.PublicKey {
				return true
			}
		}
	}
	return false
}

// BestRRSIGStatus reduces a set of per-candidate statuses to the single
// status the validator reports for a (RRset, RRSIG) pair tried against
// several DNSKEYs: prefer a valid one, else an invalid one, else
// indeterminate.
func BestRRSIGStatus(candidates []status.RRSIGStatus) status.RRSIGStatus {
	var best status.RRSIGStatus
	haveBest := false
	rank := func(v status.Validation) int {
		switch v {
		case status.ValidationValid:
			return 3
		case status.ValidationInvalidSig, status.ValidationInvalidDigest,
			status.ValidationExpired, status.ValidationPremature,
			status.ValidationAlgUnsupported, status.ValidationKeyUnavailable:
			return 2
		default:
			return 1
		}
	}
	for _, c := range candidates {
		if !haveBest || rank(c.Validation) > rank(best.Validation) {
			best = c
			haveBest = true
		}
	}
	return best
}
