package analysis

import (
	"slices"
	"time"

	"github.com/miekg/dns"
	"github.com/dnssec-analysis/engine/dnssec"
	"github.com/dnssec-analysis/engine/errs"
	"github.com/dnssec-analysis/engine/status"
)

// Walker is the memoized traversal of C7: it sequences the DNSKEY index
// (C2), the RRSIG validator (C3), the negative response prover (C5), and
// the delegation evaluator (C6) across a name and its dependencies at the
// right granularity levels.
type Walker struct {
	Oracle      *dnssec.Oracle
	AnalysisEnd time.Time
}

// NewWalker builds a Walker with the given oracle, defaulting AnalysisEnd to
// the package-level AnalysisEnd() if t is the zero value.
func NewWalker(oracle *dnssec.Oracle, t time.Time) *Walker {
	if t.IsZero() {
		t = AnalysisEnd()
	}
	return &Walker{Oracle: oracle, AnalysisEnd: t}
}

// Walk implements the C7 contract: a cycle-safe, memoized, per-level
// traversal that populates na's status maps in place.
func (w *Walker) Walk(na *NameAnalysis, level Level, trace []*NameAnalysis) error {
	// 1. Cycle breaker: a name already on the trace is computed only for its
	// name-status at this level, then the recursion bails.
	if slices.Contains(trace, na) {
		w.populateNameStatus(na)
		return nil
	}

	// 2. Already-populated memo check.
	if na.populated {
		if level > na.populatedLevel {
			return ErrLevelRegression
		}
		return nil
	}

	// 3. Stub names contribute only name/existence signal.
	if na.Stub {
		if len(na.Queries) > 0 {
			return ErrStubHasQueries
		}
		na.populated = true
		na.populatedLevel = level
		return nil
	}

	nextTrace := append(append([]*NameAnalysis(nil), trace...), na)

	// 5. Recurse into dependencies at the right granularity.
	if level >= LevelAllSameName {
		for _, target := range na.CNAMETargets {
			if err := w.Walk(target, LevelAllSameName, nextTrace); err != nil {
				return err
			}
		}
		for _, target := range na.MXTargets {
			if err := w.Walk(target, LevelNSTarget, nextTrace); err != nil {
				return err
			}
		}
	}
	for _, signer := range na.ExternalSigners {
		if err := w.Walk(signer, LevelSecureDelegation, nextTrace); err != nil {
			return err
		}
	}
	for _, dep := range na.NSDependencies {
		if err := w.Walk(dep, LevelNSTarget, nextTrace); err != nil {
			return err
		}
	}
	if na.Parent != nil {
		if err := w.Walk(na.Parent, LevelSecureDelegation, nextTrace); err != nil {
			return err
		}
	}
	if na.DLVParent != nil {
		if err := w.Walk(na.DLVParent, LevelSecureDelegation, nextTrace); err != nil {
			return err
		}
	}

	// 6. Name status.
	w.populateNameStatus(na)

	// 7. Rebuild the DNSKEY index.
	na.DNSKEYIndex = BuildDNSKEYIndex(na)

	// 8. Run C3 over every RRset of interest.
	w.populateRRSIGStatus(na)

	// 9. Run C5 for NODATA, then NXDOMAIN.
	w.populateNegativeStatus(na, status.ProofNoData, func(q *Query) []*NegativeResponseInfo { return q.NoDataInfo })
	w.populateNegativeStatus(na, status.ProofNXDOMAIN, func(q *Query) []*NegativeResponseInfo { return q.NXDomainInfo })
	for key, q := range na.Queries {
		for _, nx := range q.NXDomainInfo {
			na.Warnings = append(na.Warnings, InconsistentNXDOMAIN(na, key, nx)...)
		}
	}

	// 10. Finalize key roles.
	w.finalizeKeyRoles(na)

	// 11. Run C6 for DS.
	w.populateDelegationStatus(na)

	// 12. Evaluate DNSKEY records for key-level diagnostics.
	w.evaluateDNSKEYRecords(na)

	// 13. Cross-check the child's NS set against the parent's referral and glue.
	w.populateNSStatus(na)

	na.populated = true
	na.populatedLevel = level
	return nil
}

// populateNameStatus scans answer, nodata, and nxdomain sets to decide
// NOERROR / NXDOMAIN / INDETERMINATE for na.
func (w *Walker) populateNameStatus(na *NameAnalysis) {
	sawAnswerOrNoData := false
	sawNXDomain := false

	for _, q := range na.Queries {
		if len(q.AnswerInfo) > 0 || len(q.NoDataInfo) > 0 {
			sawAnswerOrNoData = true
		}
		if len(q.NXDomainInfo) > 0 {
			sawNXDomain = true
		}
	}

	switch {
	case sawAnswerOrNoData:
		na.NameStatus = status.NameNoError
	case sawNXDomain:
		na.NameStatus = status.NameNXDomain
	default:
		na.NameStatus = status.NameIndeterminate
	}
}

func (w *Walker) populateRRSIGStatus(na *NameAnalysis) {
	for key, q := range na.Queries {
		for _, info := range q.AnswerInfo {
			zone, dnskeys := signingZone(na, key.RDType)
			statuses, warnings := ValidateRRset(info, zone, dnskeys, w.Oracle, w.AnalysisEnd)
			na.RRSIGStatus[key] = append(na.RRSIGStatus[key], statuses...)
			na.Warnings = append(na.Warnings, warnings...)
		}
	}
}

// signingZone decides which NA's DNSKEY set verifies a given rdtype's
// RRSIGs: DS is signed by the parent zone, DLV by the DLV zone, and every
// other rdtype by the name itself.
func signingZone(na *NameAnalysis, rdtype uint16) (string, *DNSKEYIndex) {
	switch rdtype {
	case dns.TypeDS:
		if na.Parent != nil {
			return na.Parent.Name, na.Parent.DNSKEYIndex
		}
	case dns.TypeDLV:
		if na.DLVParent != nil {
			return na.DLVParent.Name, na.DLVParent.DNSKEYIndex
		}
	}
	return na.Name, na.DNSKEYIndex
}

func (w *Walker) populateNegativeStatus(na *NameAnalysis, kind status.NegativeProofKind, pick func(*Query) []*NegativeResponseInfo) {
	for key, q := range na.Queries {
		for _, info := range pick(q) {
			result := ProveNegativeResponse(info, kind, na.Name, na.DNSKEYIndex, w.Oracle, w.AnalysisEnd)
			if kind == status.ProofNoData {
				na.NoDataStatus[key] = append(na.NoDataStatus[key], result.Statuses...)
			} else {
				na.NXDomainStatus[key] = append(na.NXDomainStatus[key], result.Statuses...)
			}
			na.Errors = append(na.Errors, result.Errors...)
			na.Warnings = append(na.Warnings, result.Warnings...)
		}
	}
}

// finalizeKeyRoles buckets the zone's DNSKEYs into KSKs, ZSKs, published,
// and revoked, based on which keys actually validly self-sign the apex
// DNSKEY RRset (KSK role) versus which merely sign other RRsets (ZSK role).
func (w *Walker) finalizeKeyRoles(na *NameAnalysis) {
	if na.DNSKEYIndex == nil {
		return
	}

	signingKeyTags := make(map[uint16]bool)
	dnskeyKey := QueryKey{QName: na.Name, RDType: dns.TypeDNSKEY}
	for _, st := range na.RRSIGStatus[dnskeyKey] {
		if st.Validation == status.ValidationValid {
			signingKeyTags[st.RRSIG.KeyTag] = true
		}
	}

	for _, meta := range na.DNSKEYIndex.All() {
		switch {
		case dnssec.IsRevoked(meta.RR):
			na.RevokedKeys = append(na.RevokedKeys, meta)
		case signingKeyTags[meta.KeyTag] || signingKeyTags[meta.KeyTagNoRevoke]:
			na.KSKs = append(na.KSKs, meta)
		}
	}

	for key, statuses := range na.RRSIGStatus {
		if key == dnskeyKey {
			continue
		}
		for _, st := range statuses {
			if st.Validation == status.ValidationValid {
				if meta, ok := na.DNSKEYIndex.Lookup(st.RRSIG.KeyTag, st.RRSIG.Algorithm); ok {
					if !containsMeta(na.ZSKs, meta) {
						na.ZSKs = append(na.ZSKs, meta)
					}
				}
			}
		}
	}

	ksks := make(map[*DNSKEYMeta]bool)
	for _, k := range na.KSKs {
		ksks[k] = true
	}
	zsks := make(map[*DNSKEYMeta]bool)
	for _, k := range na.ZSKs {
		zsks[k] = true
	}
	for _, meta := range na.DNSKEYIndex.All() {
		if dnssec.IsRevoked(meta.RR) {
			continue
		}
		if !ksks[meta] && !zsks[meta] {
			na.PublishedKeys = append(na.PublishedKeys, meta)
		}
	}
}

func containsMeta(list []*DNSKEYMeta, m *DNSKEYMeta) bool {
	return slices.Contains(list, m)
}

func (w *Walker) populateDelegationStatus(na *NameAnalysis) {
	dsKey := QueryKey{QName: na.Name, RDType: dns.TypeDS}
	q, hasQuery := na.Queries[dsKey]

	in := DelegationInput{
		ChildName:      na.Name,
		ChildDNSKEYs:   na.DNSKEYIndex,
		ChildDNSKEYSig: rrsigStatusByKeyTag(na.RRSIGStatus[QueryKey{QName: na.Name, RDType: dns.TypeDNSKEY}]),
		Oracle:         w.Oracle,
		AnalysisEnd:    w.AnalysisEnd,
		ParentSigned:   na.Parent != nil && len(na.Parent.DSStatus) > 0,
		ZoneResponsive: zoneResponsive(na),
	}
	if hasQuery {
		in.DSAnswers = q.AnswerInfo
		in.DSNoDataProofs = na.NoDataStatus[dsKey]
		in.DSIsNXDomain = len(q.NXDomainInfo) > 0
	}

	result := EvaluateDelegation(in)
	na.DelegationStatus = result.Status
	for _, st := range result.DSStatuses {
		na.DSStatus[st.DS.Algorithm] = append(na.DSStatus[st.DS.Algorithm], st)
	}
	na.Errors = append(na.Errors, result.Errors...)
	na.Warnings = append(na.Warnings, result.Warnings...)
}

func rrsigStatusByKeyTag(statuses []status.RRSIGStatus) map[uint16][]status.RRSIGStatus {
	out := make(map[uint16][]status.RRSIGStatus)
	for _, st := range statuses {
		out[st.RRSIG.KeyTag] = append(out[st.RRSIG.KeyTag], st)
	}
	return out
}

// zoneResponsive reports whether na's own authoritative servers were ever
// reached and answered validly and, for an authoritative analysis,
// authoritatively: the three-stage get_auth_or_designated_servers /
// get_responsive_auth_or_designated_servers / get_valid_auth_or_designated_servers
// check that gates the LAME delegation degrade.
func zoneResponsive(na *NameAnalysis) bool {
	var responses []*Response
	for _, q := range na.Queries {
		responses = append(responses, q.Responses...)
	}
	if len(responses) == 0 {
		return false
	}

	responsive, valid, authoritative := false, false, false
	for _, r := range responses {
		if r.ResponsiveCause != "" {
			continue
		}
		responsive = true
		if r.Err == nil {
			valid = true
		}
		if r.Authoritative {
			authoritative = true
		}
	}

	if !responsive || !valid {
		return false
	}
	if na.AnalysisType == AnalysisTypeAuthoritative && !authoritative {
		return false
	}
	return true
}

// evaluateDNSKEYRecords raises the per-key diagnostics: a revoked key not
// signing, a DNSKEY appearing away from the zone apex, a key missing from
// some servers, and a configured trust anchor that never signs.
func (w *Walker) evaluateDNSKEYRecords(na *NameAnalysis) {
	if na.DNSKEYIndex == nil {
		return
	}

	dnskeyKey := QueryKey{QName: na.Name, RDType: dns.TypeDNSKEY}
	signing := make(map[uint16]bool)
	for _, st := range na.RRSIGStatus[dnskeyKey] {
		if st.Validation == status.ValidationValid {
			signing[st.RRSIG.KeyTag] = true
		}
	}

	for _, meta := range na.RevokedKeys {
		if !signing[meta.KeyTag] {
			na.Warnings = append(na.Warnings, errs.New(errs.KindRevokedNotSigning, meta.Witnesses...))
		}
	}

	for _, meta := range na.DNSKEYIndex.All() {
		if meta.Owner != na.Name {
			na.Errors = append(na.Errors, errs.New(errs.KindDNSKEYNotAtZoneApex, meta.Witnesses...))
		}
	}

	if keys := na.DNSKEYIndex.All(); len(na.DSStatus) > 0 && len(keys) > 0 {
		dsAlgs := make([]uint8, 0, len(na.DSStatus))
		for alg := range na.DSStatus {
			dsAlgs = append(dsAlgs, alg)
		}
		na.Warnings = append(na.Warnings, MissingRRSIGForAlg(dsAlgs, signedAlgorithms(na.RRSIGStatus[dnskeyKey]), errs.KindMissingRRSIGForAlgDNSKEY, keys[0].Witnesses)...)
	}

	w.flagDNSKEYMissingFromServers(na, dnskeyKey)
	w.flagTrustAnchorNotSigning(na, signing)
}

// flagDNSKEYMissingFromServers raises a warning for any server that
// responded to the DNSKEY query but did not return a given key: an
// inconsistent view of the zone's key set across its servers.
func (w *Walker) flagDNSKEYMissingFromServers(na *NameAnalysis, dnskeyKey QueryKey) {
	q, ok := na.Queries[dnskeyKey]
	if !ok {
		return
	}

	responsiveServers := make(map[string]bool)
	for _, r := range q.Responses {
		if r.Err == nil && r.ResponsiveCause == "" {
			responsiveServers[r.Server] = true
		}
	}
	if len(responsiveServers) == 0 {
		return
	}

	for _, meta := range na.DNSKEYIndex.All() {
		haveServers := make(map[string]bool, len(meta.Witnesses))
		for _, wit := range meta.Witnesses {
			haveServers[wit.Server] = true
		}
		for server := range responsiveServers {
			if !haveServers[server] {
				na.Warnings = append(na.Warnings, errs.New(errs.KindDNSKEYMissingFromServers, errs.Witness{Server: server}))
			}
		}
	}
}

// flagTrustAnchorNotSigning implements the root-zone special case: if na is
// the root and none of its DNSKEYs matching a configured trust anchor
// actually self-signs the apex DNSKEY RRset, every matching-but-non-signing
// key is flagged.
func (w *Walker) flagTrustAnchorNotSigning(na *NameAnalysis, signing map[uint16]bool) {
	if na.Name != "." || len(dnssec.RootTrustAnchors) == 0 {
		return
	}

	var matching, notSigning []*DNSKEYMeta
	for _, meta := range na.DNSKEYIndex.All() {
		isTrustAnchor := false
		for _, ds := range dnssec.RootTrustAnchors {
			if ds.KeyTag != meta.KeyTag && ds.KeyTag != meta.KeyTagNoRevoke {
				continue
			}
			if dnssec.ValidateDS(ds, meta.RR, w.Oracle).Validation == status.ValidationValid {
				isTrustAnchor = true
				break
			}
		}
		if !isTrustAnchor {
			continue
		}
		matching = append(matching, meta)
		if !signing[meta.KeyTag] && !signing[meta.KeyTagNoRevoke] {
			notSigning = append(notSigning, meta)
		}
	}

	if len(matching) > len(notSigning) {
		// at least one matching trust-anchor key does self-sign
		return
	}
	for _, meta := range notSigning {
		na.Errors = append(na.Errors, errs.New(errs.KindTrustAnchorNotSigning, meta.Witnesses...))
	}
}

// populateNSStatus wires the NS-name sanity checks into the traversal: the
// child's own NS answer, the parent's referral, the glue offered alongside
// it, and the addresses the NS-target NAs (na.NSDependencies) resolved to
// authoritatively are all already present by the time step 5 has recursed,
// so this runs as the last step.
func (w *Walker) populateNSStatus(na *NameAnalysis) {
	if na.Parent == nil {
		return
	}

	nsKey := QueryKey{QName: na.Name, RDType: dns.TypeNS}

	var namesFromChild, namesFromParent []string
	if q, ok := na.Queries[nsKey]; ok {
		for _, info := range q.AnswerInfo {
			namesFromChild = append(namesFromChild, nsTargetNames(info)...)
		}
	}
	if q, ok := na.Parent.Queries[nsKey]; ok {
		for _, info := range q.AnswerInfo {
			namesFromParent = append(namesFromParent, nsTargetNames(info)...)
		}
	}

	glue := make(map[string][]string)
	auth := make(map[string][]string)
	resolutionErrors := make(map[string]bool)

	for _, nsName := range namesFromParent {
		if addrs := addressesFromQueries(na.Parent.Queries, nsName); len(addrs) > 0 {
			glue[nsName] = addrs
		}

		dep, ok := na.NSDependencies[nsName]
		if !ok || dep.Stub {
			resolutionErrors[nsName] = true
			continue
		}
		if addrs := addressesFromQueries(dep.Queries, nsName); len(addrs) > 0 {
			auth[nsName] = addrs
		} else {
			resolutionErrors[nsName] = true
		}
	}

	na.Warnings = append(na.Warnings, EvaluateNSStatus(NSStatusInput{
		Zone:             na.Name,
		NamesFromChild:   namesFromChild,
		NamesFromParent:  namesFromParent,
		GlueAddresses:    glue,
		AuthAddresses:    auth,
		ResolutionErrors: resolutionErrors,
	})...)
}

// nsTargetNames extracts the canonicalized target names of the NS records
// in info.
func nsTargetNames(info *RRsetInfo) []string {
	var names []string
	for _, ns := range extractRecords[*dns.NS](info.RRset) {
		names = append(names, canonicalName(ns.Ns))
	}
	return names
}

// addressesFromQueries collects the A/AAAA rdata observed at (name, A) and
// (name, AAAA) within queries, as address literals.
func addressesFromQueries(queries map[QueryKey]*Query, name string) []string {
	var addrs []string
	name = canonicalName(name)
	if q, ok := queries[QueryKey{QName: name, RDType: dns.TypeA}]; ok {
		for _, info := range q.AnswerInfo {
			for _, a := range extractRecords[*dns.A](info.RRset) {
				addrs = append(addrs, a.A.String())
			}
		}
	}
	if q, ok := queries[QueryKey{QName: name, RDType: dns.TypeAAAA}]; ok {
		for _, info := range q.AnswerInfo {
			for _, aaaa := range extractRecords[*dns.AAAA](info.RRset) {
				addrs = append(addrs, aaaa.AAAA.String())
			}
		}
	}
	return addrs
}
