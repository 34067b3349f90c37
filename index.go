package analysis

import (
	"github.com/miekg/dns"
	"github.com/dnssec-analysis/engine/dnssec"
)

// DNSKEYSet is the semantic set of DNSKEYMeta observed in one particular
// DNSKEY answer.
type DNSKEYSet struct {
	Info *RRsetInfo
	Keys []*DNSKEYMeta
}

// DNSKEYIndex deduplicates every DNSKEY rdata observed for a zone across all
// of its DNSKEY answers, and exposes lookup by key tag and algorithm.
type DNSKEYIndex struct {
	Sets []*DNSKEYSet
	byTag map[dnskeyLookupKey]*DNSKEYMeta
	all   []*DNSKEYMeta
}

type dnskeyLookupKey struct {
	tag       uint16
	algorithm uint8
}

// BuildDNSKEYIndex scans na.Queries[(na.Name, DNSKEY)].AnswerInfo, ignoring
// any RRsetInfo whose owner name differs from na.Name or whose type isn't
// DNSKEY (a CNAME would otherwise have ended up in the same query slot).
func BuildDNSKEYIndex(na *NameAnalysis) *DNSKEYIndex {
	idx := &DNSKEYIndex{byTag: make(map[dnskeyLookupKey]*DNSKEYMeta)}

	q, ok := na.Queries[QueryKey{QName: na.Name, RDType: dns.TypeDNSKEY}]
	if !ok {
		return idx
	}

	rdataSeen := make(map[string]*DNSKEYMeta)

	for _, info := range q.AnswerInfo {
		if info.Name() != na.Name || info.Type() != dns.TypeDNSKEY {
			continue
		}

		set := &DNSKEYSet{Info: info}

		for _, key := range extractRecords[*dns.DNSKEY](info.RRset) {
			rdata := key.String()

			meta, seen := rdataSeen[rdata]
			if !seen {
				meta = &DNSKEYMeta{
					Owner:          canonicalName(key.Header().Name),
					RR:             key,
					TTL:            key.Header().Ttl,
					KeyTag:         dnssec.KeyTag(key),
					KeyTagNoRevoke: dnssec.KeyTagNoRevoke(key),
				}
				rdataSeen[rdata] = meta
				idx.all = append(idx.all, meta)
				idx.byTag[dnskeyLookupKey{meta.KeyTag, key.Algorithm}] = meta
				idx.byTag[dnskeyLookupKey{meta.KeyTagNoRevoke, key.Algorithm}] = meta
			}
			meta.Witnesses = append(meta.Witnesses, info.Witnesses...)
			meta.FromRRsets = append(meta.FromRRsets, info)
			set.Keys = append(set.Keys, meta)
		}

		idx.Sets = append(idx.Sets, set)
	}

	return idx
}

// Lookup returns the DNSKEYMeta matching tag+algorithm, if any. tag may be
// either a key's real tag or its revoke-adjusted tag.
func (idx *DNSKEYIndex) Lookup(tag uint16, algorithm uint8) (*DNSKEYMeta, bool) {
	meta, ok := idx.byTag[dnskeyLookupKey{tag, algorithm}]
	return meta, ok
}

// All returns every deduplicated DNSKEYMeta observed for the zone.
func (idx *DNSKEYIndex) All() []*DNSKEYMeta { return idx.all }

// PotentialTrustedKeys returns (KSKs \ ZSKs \ revoked), falling back to
// (KSKs \ revoked) when that set is empty: active KSKs are preferred over
// dual-role keys.
func PotentialTrustedKeys(ksks, zsks, revoked []*DNSKEYMeta) []*DNSKEYMeta {
	zskSet := make(map[*DNSKEYMeta]bool, len(zsks))
	for _, k := range zsks {
		zskSet[k] = true
	}
	revokedSet := make(map[*DNSKEYMeta]bool, len(revoked))
	for _, k := range revoked {
		revokedSet[k] = true
	}

	var active []*DNSKEYMeta
	var nonRevoked []*DNSKEYMeta
	for _, k := range ksks {
		if revokedSet[k] {
			continue
		}
		nonRevoked = append(nonRevoked, k)
		if !zskSet[k] {
			active = append(active, k)
		}
	}
	if len(active) > 0 {
		return active
	}
	return nonRevoked
}
