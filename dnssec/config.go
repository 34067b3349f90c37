package dnssec

import "github.com/nsmithuk/dnssec-root-anchors-go/anchors"

const (
	DefaultRequireAllSignaturesValid = false
)

var (
	// RootTrustAnchors is the configured root trust anchor set. The walker's
	// TrustAnchorNotSigning check at the root zone reads it.
	RootTrustAnchors = anchors.GetValid()

	// RequireAllSignaturesValid
	// Not read by any code in this module: RRSIG evaluation keeps the best
	// candidate status per RRSIG whatever this is set to.
	//
	// Note:
	//  https://datatracker.ietf.org/doc/html/rfc4035#section-5.3.3
	//	If other RRSIG RRs also cover this RRset, the local resolver security
	//	policy determines whether the resolver also has to test these RRSIG
	//	RRs and how to resolve conflicts if these RRSIG RRs lead to differing
	//	results.
	RequireAllSignaturesValid = DefaultRequireAllSignaturesValid
)

type Logger func(string)

// Default logging functions just black-hole the input.

var Debug Logger = func(s string) {}
var Info Logger = func(s string) {}
var Warn Logger = func(s string) {}
