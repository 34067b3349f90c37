// Package status defines the tagged-variant status records the analysis
// engine computes: validation outcomes for signatures and digests, proof
// outcomes for negative responses, and the name/delegation/rrset status
// enums used throughout serialization.
package status

import "github.com/miekg/dns"

// Validation is the common outcome of verifying a single cryptographic
// artifact (an RRSIG over an RRset, or a DS digest over a DNSKEY).
type Validation uint8

const (
	ValidationIndeterminate Validation = iota
	ValidationValid
	ValidationInvalidSig
	ValidationInvalidDigest
	ValidationExpired
	ValidationPremature
	ValidationAlgUnsupported
	ValidationKeyUnavailable
)

func (v Validation) String() string {
	switch v {
	case ValidationValid:
		return "VALID"
	case ValidationInvalidSig:
		return "INVALID_SIG"
	case ValidationInvalidDigest:
		return "INVALID_DIGEST"
	case ValidationExpired:
		return "EXPIRED"
	case ValidationPremature:
		return "PREMATURE"
	case ValidationAlgUnsupported:
		return "ALG_UNSUPPORTED"
	case ValidationKeyUnavailable:
		return "KEY_UNAVAILABLE"
	default:
		return "INDETERMINATE"
	}
}

// Name is the outcome of resolving a single owner name.
type Name uint8

const (
	NameIndeterminate Name = iota
	NameNoError
	NameNXDomain
)

var nameStatusMapping = map[Name]string{
	NameNoError:       "NOERROR",
	NameNXDomain:      "NXDOMAIN",
	NameIndeterminate: "INDETERMINATE",
}

func (n Name) String() string { return nameStatusMapping[n] }

// Delegation is the overall status assigned to a child zone's delegation.
type Delegation uint8

const (
	DelegationIncomplete Delegation = iota
	DelegationSecure
	DelegationInsecure
	DelegationBogus
	DelegationLame
)

var delegationStatusMapping = map[Delegation]string{
	DelegationSecure:     "SECURE",
	DelegationInsecure:   "INSECURE",
	DelegationBogus:      "BOGUS",
	DelegationIncomplete: "INCOMPLETE",
	DelegationLame:       "LAME",
}

func (d Delegation) String() string { return delegationStatusMapping[d] }

// RRset is the final, post-coloring status of an RRset or negative-response
// artifact.
type RRset uint8

const (
	RRsetIndeterminate RRset = iota
	RRsetSecure
	RRsetInsecure
	RRsetBogus
	RRsetNonExistent
)

var rrsetStatusMapping = map[RRset]string{
	RRsetSecure:      "SECURE",
	RRsetInsecure:    "INSECURE",
	RRsetBogus:       "BOGUS",
	RRsetNonExistent: "NON_EXISTENT",
}

func (r RRset) String() string { return rrsetStatusMapping[r] }

// RRSIGStatus is the result of C3 for one (RRset, RRSIG, DNSKEY) triple.
type RRSIGStatus struct {
	RRSIG      *dns.RRSIG
	DNSKey     *dns.DNSKEY
	Validation Validation
}

// DSStatus is the result of recomputing a DS digest over a candidate DNSKEY.
type DSStatus struct {
	DS                        *dns.DS
	DNSKey                    *dns.DNSKEY
	Validation                Validation
	DigestAlgorithmUnsupported bool
}

// NegativeProofKind distinguishes which negative-response claim an
// NSEC/NSEC3 status bundle is proving.
type NegativeProofKind uint8

const (
	ProofNXDOMAIN NegativeProofKind = iota
	ProofNoData
	ProofWildcard
	ProofMissingDS
)

// NegativeProofStatus is the tagged-variant result of C5: one NSEC or NSEC3
// bundle evaluated against one of the four proof kinds above.
type NegativeProofStatus struct {
	Kind       NegativeProofKind
	Validation Validation
	UsesNSEC3  bool
	OptOut     bool
}
