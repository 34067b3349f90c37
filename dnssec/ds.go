package dnssec

import (
	"strings"

	"github.com/miekg/dns"
	"github.com/dnssec-analysis/engine/status"
)

// ValidateDS recomputes the digest a DS record claims to carry over a
// candidate DNSKEY, per RFC 4509 / RFC 4035 section 5.2.
func ValidateDS(ds *dns.DS, key *dns.DNSKEY, oracle *Oracle) status.DSStatus {
	st := status.DSStatus{DS: ds, DNSKey: key, Validation: status.ValidationIndeterminate}

	if ds.Algorithm != key.Algorithm {
		return st
	}
	if !KeyTagMatches(key, ds.KeyTag) {
		return st
	}

	if !oracle.DigestAlgorithmSupported(ds.DigestType) {
		st.Validation = status.ValidationAlgUnsupported
		st.DigestAlgorithmUnsupported = true
		return st
	}

	computed := key.ToDS(ds.DigestType)
	if computed == nil || !strings.EqualFold(computed.Digest, ds.Digest) {
		st.Validation = status.ValidationInvalidDigest
		return st
	}
	st.Validation = status.ValidationValid
	return st
}
