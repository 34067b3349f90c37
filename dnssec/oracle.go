package dnssec

import "github.com/miekg/dns"

// runtimeAlgorithms is the full set of DNSKEY algorithms this module can
// cryptographically verify, delegated to miekg/dns's RRSIG.Verify.
var runtimeAlgorithms = map[uint8]bool{
	dns.RSASHA1:          true,
	dns.RSASHA1NSEC3SHA1: true,
	dns.RSASHA256:        true,
	dns.RSASHA512:        true,
	dns.ECDSAP256SHA256:  true,
	dns.ECDSAP384SHA384:  true,
	dns.ED25519:          true,
}

// runtimeDigestAlgorithms is the full set of DS digest algorithms this
// module can recompute, delegated to miekg/dns's DNSKEY.ToDS.
var runtimeDigestAlgorithms = map[uint8]bool{
	dns.SHA1:   true,
	dns.SHA256: true,
	dns.SHA384: true,
}

// Oracle answers whether a DNSKEY algorithm or DS digest algorithm is usable
// at verification time: the intersection of an optional caller-configured
// set and the runtime-verifiable set. With no caller set, it is the runtime
// set outright.
type Oracle struct {
	algorithms       map[uint8]bool
	digestAlgorithms map[uint8]bool
}

// NewOracle builds an Oracle from caller-supplied algorithm and digest sets.
// A nil or empty slice means "no restriction": the full runtime set is used.
func NewOracle(algorithms, digestAlgorithms []uint8) *Oracle {
	o := &Oracle{
		algorithms:       intersect(runtimeAlgorithms, algorithms),
		digestAlgorithms: intersect(runtimeDigestAlgorithms, digestAlgorithms),
	}
	return o
}

func intersect(runtime map[uint8]bool, configured []uint8) map[uint8]bool {
	if len(configured) == 0 {
		out := make(map[uint8]bool, len(runtime))
		for k, v := range runtime {
			out[k] = v
		}
		return out
	}
	out := make(map[uint8]bool)
	for _, a := range configured {
		if runtime[a] {
			out[a] = true
		}
	}
	return out
}

// AlgorithmSupported reports whether a is a usable DNSKEY algorithm.
func (o *Oracle) AlgorithmSupported(a uint8) bool { return o.algorithms[a] }

// DigestAlgorithmSupported reports whether a is a usable DS digest algorithm.
func (o *Oracle) DigestAlgorithmSupported(a uint8) bool { return o.digestAlgorithms[a] }

// Algorithms returns the set of usable DNSKEY algorithms.
func (o *Oracle) Algorithms() []uint8 {
	out := make([]uint8, 0, len(o.algorithms))
	for a := range o.algorithms {
		out = append(out, a)
	}
	return out
}
