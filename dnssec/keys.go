package dnssec

import "github.com/miekg/dns"

// KeyTag returns the RFC 4034 Appendix B key tag.
func KeyTag(key *dns.DNSKEY) uint16 {
	return key.KeyTag()
}

// KeyTagNoRevoke returns the key tag the key would have if its REVOKE flag
// (RFC 5011) were not set. RRSIG key_tag references may use either tag, so
// both must be checked when matching a signature or a DS record to a key.
func KeyTagNoRevoke(key *dns.DNSKEY) uint16 {
	if key.Flags&dns.REVOKE == 0 {
		return key.KeyTag()
	}
	clone := *key
	clone.Flags &^= dns.REVOKE
	return clone.KeyTag()
}

// KeyTagMatches reports whether tag equals either of key's two derived tags.
func KeyTagMatches(key *dns.DNSKEY, tag uint16) bool {
	return tag == KeyTag(key) || tag == KeyTagNoRevoke(key)
}

// IsSEPCandidate reports whether the key advertises the SEP bit, or is a KSK
// by convention (a key with a DS/self-signing role is still checked by
// actual DS/RRSIG cross-reference elsewhere; this only reflects the flag).
func IsSEPCandidate(key *dns.DNSKEY) bool {
	return key.Flags&dns.SEP != 0
}

// IsRevoked reports whether the RFC 5011 REVOKE bit is set.
func IsRevoked(key *dns.DNSKEY) bool {
	return key.Flags&dns.REVOKE != 0
}

// IsZoneKey reports whether the ZONE bit is set, as required of any DNSKEY
// usable for zone signing.
func IsZoneKey(key *dns.DNSKEY) bool {
	return key.Flags&dns.ZONE != 0
}
