package analysis

import "github.com/dnssec-analysis/engine/errs"

// NSStatusInput gathers the name-server bookkeeping needed for NS-name
// sanity checking: the NS names observed at the child's own NS query versus
// the parent's referral, glue offered by the parent, and the addresses the
// child's own NS-target analyses resolved to.
type NSStatusInput struct {
	Zone string

	NamesFromChild  []string
	NamesFromParent []string

	// GlueAddresses maps an NS name to the addresses offered as glue in the
	// parent's referral.
	GlueAddresses map[string][]string

	// AuthAddresses maps an NS name to the addresses its own analysis
	// resolved to (authoritative A/AAAA answers).
	AuthAddresses map[string][]string

	// ResolutionErrors marks NS names whose address resolution failed.
	ResolutionErrors map[string]bool
}

func toSet(names []string) map[string]bool {
	s := make(map[string]bool, len(names))
	for _, n := range names {
		s[canonicalName(n)] = true
	}
	return s
}

// EvaluateNSStatus implements the NS-name sanity portion of C6
// (`_populate_ns_status`): comparing the child's and parent's NS sets,
// cross-checking glue against the child's own authoritative addresses, and
// raising the protocol-family coverage warnings.
func EvaluateNSStatus(in NSStatusInput) errs.List {
	var out errs.List

	childSet := toSet(in.NamesFromChild)
	parentSet := toSet(in.NamesFromParent)

	for name := range childSet {
		if !parentSet[name] {
			out.Insert(errs.New(errs.KindNSNameNotInParent, errs.Witness{Server: name}).WithName(name))
		}
	}
	for name := range parentSet {
		if !childSet[name] {
			out.Insert(errs.New(errs.KindNSNameNotInChild, errs.Witness{Server: name}).WithName(name))
		}
	}

	haveIPv4, haveIPv6 := false, false

	for name := range parentSet {
		if in.ResolutionErrors[name] {
			out.Insert(errs.New(errs.KindErrorResolvingNSName, errs.Witness{Server: name}).WithName(name))
			continue
		}

		authAddrs := in.AuthAddresses[name]
		glueAddrs := in.GlueAddresses[name]

		if InBailiwick(in.Zone, name) {
			if len(glueAddrs) == 0 && len(authAddrs) > 0 {
				out.Insert(errs.New(errs.KindMissingGlueForNSName, errs.Witness{Server: name}).WithName(name))
			} else if len(glueAddrs) > 0 && !addressSetsMatch(glueAddrs, authAddrs) {
				out.Insert(errs.New(errs.KindGlueMismatchError, errs.Witness{Server: name}).WithName(name))
			}
		}

		if len(authAddrs) == 0 {
			out.Insert(errs.New(errs.KindNoAddressForNSName, errs.Witness{Server: name}).WithName(name))
			continue
		}

		for _, addr := range authAddrs {
			if isIPv4Literal(addr) {
				haveIPv4 = true
			} else {
				haveIPv6 = true
			}
		}
	}

	if len(parentSet) > 0 && !haveIPv4 {
		out.Insert(errs.New(errs.KindNoNSAddressesForIPv4))
	}
	if len(parentSet) > 0 && !haveIPv6 {
		out.Insert(errs.New(errs.KindNoNSAddressesForIPv6))
	}

	return out
}

func addressSetsMatch(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := toSet(a)
	for _, addr := range b {
		if !set[addr] {
			return false
		}
	}
	return true
}

func isIPv4Literal(addr string) bool {
	for _, r := range addr {
		if r == '.' {
			return true
		}
		if r == ':' {
			return false
		}
	}
	return false
}
