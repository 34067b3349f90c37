package analysis

import (
	"github.com/miekg/dns"
	"github.com/dnssec-analysis/engine/errs"
	"github.com/dnssec-analysis/engine/status"
)

// Response is one collected (server, client) observation of a single DNS
// exchange. It is immutable input: the engine never re-issues or mutates a
// Response, only reads it while computing status.
type Response struct {
	ID     string // correlates this Response across RRsetInfo/NegativeResponseInfo witnesses
	Server string
	Client string
	Msg    *dns.Msg
	Err    error

	Authoritative      bool
	RecursionDesired   bool
	RecursionAvailable bool

	// RequestEDNS/ResponseEDNS/EffectiveEDNS hold the EDNS version in use, or
	// -1 when EDNS was not used, per the three-way taxonomy of the response
	// classifier.
	RequestEDNS   int
	ResponseEDNS  int
	EffectiveEDNS int

	RequestMaxUDPPayload  uint16
	ResponseMaxUDPPayload uint16

	RequestFlags  map[string]bool // EDNS flag name -> set, as requested
	EffectiveFlags map[string]bool // EDNS flag name -> set, as observed effectively

	// ResponsiveCause classifies a failed attempt to reach the server at all,
	// independent of the message returned: "", "network-error", "formerr",
	// "timeout", "other", "rcode".
	ResponsiveCause      string
	ResponsiveCauseIndex int
	ResponsiveCauseRcode int
}

// Witness returns the (server, client, response) triple this Response
// contributes to any artifact it is attached to.
func (r *Response) Witness() errs.Witness {
	return errs.Witness{Server: r.Server, Client: r.Client, Response: r.ID}
}

// RRSIGInfo binds a single RRSIG record to the witnesses that observed it.
type RRSIGInfo struct {
	RRSIG     *dns.RRSIG
	Witnesses []errs.Witness
}

// DNSKEYMeta is a deduplicated DNSKEY rdata observed for a zone, carrying
// its two derived key tags and the witnesses/back-references that produced
// it.
type DNSKEYMeta struct {
	Owner          string
	RR             *dns.DNSKEY
	TTL            uint32
	KeyTag         uint16
	KeyTagNoRevoke uint16
	Witnesses      []errs.Witness
	FromRRsets     []*RRsetInfo
	Errors         errs.List
	Warnings       errs.List
}

// WildcardWitness bundles the NSEC/NSEC3 proof sets accompanying a
// wildcard-synthesized answer for one wildcard source name.
type WildcardWitness struct {
	SourceName string
	NSECSets   []*NSECSetInfo
	Witnesses  []errs.Witness
}

// RRsetInfo carries one observed RRset plus the witnesses and DNSSEC
// material attached to it.
type RRsetInfo struct {
	RRset     []dns.RR
	Witnesses []errs.Witness
	RRSIGs    []*RRSIGInfo

	// DNAMEInfo is set when this RRset (a CNAME) was synthesized from a
	// DNAME; CNAMEInfoFromDNAME is the synthesized CNAME chain it produced.
	DNAMEInfo          *RRsetInfo
	CNAMEInfoFromDNAME []*RRsetInfo

	// WildcardInfo maps a wildcard source name to its proof bundle, when
	// this RRset was produced via wildcard synthesis.
	WildcardInfo map[string]*WildcardWitness

	Status status.RRset
}

func (ri *RRsetInfo) Name() string {
	if len(ri.RRset) == 0 {
		return ""
	}
	return dns.CanonicalName(ri.RRset[0].Header().Name)
}

func (ri *RRsetInfo) Type() uint16 {
	if len(ri.RRset) == 0 {
		return 0
	}
	return ri.RRset[0].Header().Rrtype
}

// NSECSetInfo bundles the records proving an absence: either a set of NSEC
// records or a set of NSEC3 records (use_nsec3 discriminates), plus their
// own RRSIGs and, for NSEC3, the hashing parameters used to produce them.
type NSECSetInfo struct {
	Zone      string
	UseNSEC3  bool
	NSEC      []*dns.NSEC
	NSEC3     []*dns.NSEC3
	RRSIGs    []*RRSIGInfo
	Witnesses []errs.Witness

	IterationCount uint16
	Salt           string
	HashAlgorithm  uint8
}

// NegativeResponseInfo records one NODATA or NXDOMAIN observation: the SOA
// seen (if any), the NSEC/NSEC3 proof sets offered, and the witnesses.
type NegativeResponseInfo struct {
	Owner     string
	RDType    uint16
	SOA       []*RRsetInfo
	NSECSets  []*NSECSetInfo
	Witnesses []errs.Witness

	Status status.RRset
}

// QueryKey identifies one (qname, rdtype) query slot.
type QueryKey struct {
	QName  string
	RDType uint16
}

// Query aggregates every observation made for one (qname, rdtype).
type Query struct {
	QName  string
	RDType uint16

	AnswerInfo   []*RRsetInfo
	NoDataInfo   []*NegativeResponseInfo
	NXDomainInfo []*NegativeResponseInfo
	ErrorInfo    []*Response

	Responses []*Response
}

// NameAnalysis (NA) is the root entity: everything known and computed about
// one owner name under analysis.
type NameAnalysis struct {
	Name         string
	Stub         bool
	AnalysisType AnalysisType

	Queries map[QueryKey]*Query

	Parent    *NameAnalysis
	DLVParent *NameAnalysis

	CNAMETargets    map[string]*NameAnalysis
	MXTargets       map[string]*NameAnalysis
	NSDependencies  map[string]*NameAnalysis
	ExternalSigners map[string]*NameAnalysis

	// --- computed by the engine; nil/zero until Walk populates them ---

	populated      bool
	populatedLevel Level

	DNSKEYIndex *DNSKEYIndex

	KSKs           []*DNSKEYMeta
	ZSKs           []*DNSKEYMeta
	PublishedKeys  []*DNSKEYMeta
	RevokedKeys    []*DNSKEYMeta

	RRSIGStatus map[QueryKey][]status.RRSIGStatus
	DSStatus    map[uint8][]status.DSStatus

	NoDataStatus   map[QueryKey][]status.NegativeProofStatus
	NXDomainStatus map[QueryKey][]status.NegativeProofStatus

	NameStatus       status.Name
	DelegationStatus status.Delegation

	Errors   errs.List
	Warnings errs.List
}

// NewNameAnalysis constructs an empty NA ready to receive externally
// collected queries before analysis.
func NewNameAnalysis(name string, analysisType AnalysisType) *NameAnalysis {
	return &NameAnalysis{
		Name:            dns.CanonicalName(name),
		AnalysisType:    analysisType,
		Queries:         make(map[QueryKey]*Query),
		CNAMETargets:    make(map[string]*NameAnalysis),
		MXTargets:       make(map[string]*NameAnalysis),
		NSDependencies:  make(map[string]*NameAnalysis),
		ExternalSigners: make(map[string]*NameAnalysis),
		RRSIGStatus:     make(map[QueryKey][]status.RRSIGStatus),
		DSStatus:        make(map[uint8][]status.DSStatus),
		NoDataStatus:    make(map[QueryKey][]status.NegativeProofStatus),
		NXDomainStatus:  make(map[QueryKey][]status.NegativeProofStatus),
	}
}

// Query returns the Query for (qname, rdtype), creating it if absent. The
// collector, not the engine, is expected to populate it before Walk runs;
// this exists so tests can build fixtures fluently.
func (na *NameAnalysis) Query(qname string, rdtype uint16) *Query {
	key := QueryKey{QName: dns.CanonicalName(qname), RDType: rdtype}
	q, ok := na.Queries[key]
	if !ok {
		q = &Query{QName: key.QName, RDType: rdtype}
		na.Queries[key] = q
	}
	return q
}

// Populated reports whether Walk has already computed status for this NA at
// populatedLevel or a less restrictive level.
func (na *NameAnalysis) Populated() bool { return na.populated }
