// Package errs implements the witness-bearing error taxonomy of the
// analysis engine: each error kind carries the (server, client, response)
// triples that motivated it. They are data attached to an artifact's
// warning or error list, never unwound as Go errors, though the type
// satisfies the error interface so it composes with assert-style checks
// in tests.
package errs

import "fmt"

// Kind names one error/warning class from the taxonomy.
type Kind string

const (
	// Transport
	KindNetworkError       Kind = "NetworkError"
	KindTimeout            Kind = "Timeout"
	KindFormError          Kind = "FormError"
	KindUnknownResponse    Kind = "UnknownResponseError"
	KindInvalidRcode       Kind = "InvalidRcode"

	// EDNS
	KindEDNSIgnored            Kind = "EDNSIgnored"
	KindUnsupportedEDNSVersion Kind = "UnsupportedEDNSVersion"
	KindPMTUExceeded           Kind = "PMTUExceeded"
	KindResponseErrorWithEDNS  Kind = "ResponseErrorWithEDNS"
	KindResponseErrorWithEDNSFlag Kind = "ResponseErrorWithEDNSFlag"

	// Authority
	KindNotAuthoritative     Kind = "NotAuthoritative"
	KindRecursionNotAvailable Kind = "RecursionNotAvailable"
	KindUpwardReferral       Kind = "UpwardReferral"

	// DNSSEC proof
	KindMissingRRSIG                Kind = "MissingRRSIG"
	KindMissingRRSIGForAlgDNSKEY     Kind = "MissingRRSIGForAlgDNSKEY"
	KindMissingRRSIGForAlgDS         Kind = "MissingRRSIGForAlgDS"
	KindMissingRRSIGForAlgDLV        Kind = "MissingRRSIGForAlgDLV"
	KindUnableToRetrieveDNSSECRecords Kind = "UnableToRetrieveDNSSECRecords"

	// Negative proof
	KindMissingNSECForNXDOMAIN    Kind = "MissingNSECForNXDOMAIN"
	KindMissingNSECForNODATA      Kind = "MissingNSECForNODATA"
	KindMissingNSECForWildcard    Kind = "MissingNSECForWildcard"
	KindSOAOwnerNotZoneForNXDOMAIN Kind = "SOAOwnerNotZoneForNXDOMAIN"
	KindSOAOwnerNotZoneForNODATA   Kind = "SOAOwnerNotZoneForNODATA"
	KindMissingSOAForNXDOMAIN      Kind = "MissingSOAForNXDOMAIN"
	KindMissingSOAForNODATA        Kind = "MissingSOAForNODATA"
	KindInconsistentNXDOMAIN       Kind = "InconsistentNXDOMAIN"

	// Delegation
	KindNoSEP                Kind = "NoSEP"
	KindMissingSEPForAlg     Kind = "MissingSEPForAlg"
	KindNSNameNotInParent    Kind = "NSNameNotInParent"
	KindNSNameNotInChild     Kind = "NSNameNotInChild"
	KindGlueMismatchError    Kind = "GlueMismatchError"
	KindMissingGlueForNSName Kind = "MissingGlueForNSName"
	KindNoAddressForNSName   Kind = "NoAddressForNSName"
	KindErrorResolvingNSName Kind = "ErrorResolvingNSName"
	KindNoNSAddressesForIPv4 Kind = "NoNSAddressesForIPv4"
	KindNoNSAddressesForIPv6 Kind = "NoNSAddressesForIPv6"
	KindNoNSInParent         Kind = "NoNSInParent"
	KindServerUnresponsiveUDP Kind = "ServerUnresponsiveUDP"
	KindServerUnresponsiveTCP Kind = "ServerUnresponsiveTCP"
	KindServerInvalidResponse Kind = "ServerInvalidResponse"
	KindServerNotAuthoritative Kind = "ServerNotAuthoritative"

	// Key
	KindRevokedNotSigning        Kind = "RevokedNotSigning"
	KindDNSKEYNotAtZoneApex      Kind = "DNSKEYNotAtZoneApex"
	KindDNSKEYMissingFromServers Kind = "DNSKEYMissingFromServers"
	KindTrustAnchorNotSigning    Kind = "TrustAnchorNotSigning"

	// Fail-closed sentinel for an unclassified, non-empty responsive-cause.
	KindUnclassified Kind = "Unclassified"
)

// Witness identifies the (server, client, response) triple that observed a
// protocol fact. Response holds the id of the originating Response, not the
// response itself, so an Error stays cheap to copy and compare.
type Witness struct {
	Server   string
	Client   string
	Response string
}

// Error is the single tagged-variant record used for every entry in the
// taxonomy. Unused fields for a given Kind are simply left at zero value.
type Error struct {
	Kind         Kind
	Witnesses    []Witness
	Intermittent bool
	Algorithm    uint8
	Rcode        int
	Attempts     int
	Name         string
	EDNSFlag     string
	Detail       string
}

// New creates an Error of the given kind bound to the supplied witnesses.
func New(kind Kind, witnesses ...Witness) *Error {
	return &Error{Kind: kind, Witnesses: append([]Witness(nil), witnesses...)}
}

func (e *Error) WithIntermittent(v bool) *Error { e.Intermittent = v; return e }
func (e *Error) WithAlgorithm(a uint8) *Error    { e.Algorithm = a; return e }
func (e *Error) WithRcode(r int) *Error          { e.Rcode = r; return e }
func (e *Error) WithAttempts(n int) *Error       { e.Attempts = n; return e }
func (e *Error) WithName(n string) *Error        { e.Name = n; return e }
func (e *Error) WithEDNSFlag(f string) *Error    { e.EDNSFlag = f; return e }
func (e *Error) WithDetail(d string) *Error      { e.Detail = d; return e }

// AddWitness appends a witness if it is not already present.
func (e *Error) AddWitness(w Witness) {
	for _, existing := range e.Witnesses {
		if existing == w {
			return
		}
	}
	e.Witnesses = append(e.Witnesses, w)
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return string(e.Kind)
}

// List is an ordered collection of Errors attached to one artifact.
type List []*Error

// Insert appends err, or merges its witnesses into an existing entry of the
// same Kind/Name/Algorithm/Rcode/EDNSFlag combination.
func (l *List) Insert(err *Error) {
	for _, existing := range *l {
		if existing.Kind == err.Kind &&
			existing.Name == err.Name &&
			existing.Algorithm == err.Algorithm &&
			existing.Rcode == err.Rcode &&
			existing.EDNSFlag == err.EDNSFlag {
			for _, w := range err.Witnesses {
				existing.AddWitness(w)
			}
			return
		}
	}
	*l = append(*l, err)
}
