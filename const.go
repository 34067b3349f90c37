package analysis

import "github.com/miekg/dns"

// DNSProcessedVersion is the stable schema version tag attached to every
// serialized report.
const DNSProcessedVersion = "1.0"

// Level bounds which rdtypes the traversal examines for a given name, from
// most restrictive (DELEGATION) to least restrictive (ALL).
type Level uint8

const (
	LevelDelegation Level = iota
	LevelSecureDelegation
	LevelNSTarget
	LevelAllSameName
	LevelAll
)

func (l Level) String() string {
	switch l {
	case LevelAll:
		return "ALL"
	case LevelAllSameName:
		return "ALL_SAME_NAME"
	case LevelNSTarget:
		return "NS_TARGET"
	case LevelSecureDelegation:
		return "SECURE_DELEGATION"
	default:
		return "DELEGATION"
	}
}

// AtLeast reports whether l is at least as restrictive-inclusive as other,
// i.e. l examines everything other would (ALL > ALL_SAME_NAME > NS_TARGET >
// SECURE_DELEGATION > DELEGATION).
func (l Level) AtLeast(other Level) bool {
	return l >= other
}

// rdtypesForLevel returns the rdtypes examined at a given level, beyond
// whatever specific rdtype the caller is already asking about.
func rdtypesForLevel(l Level) []uint16 {
	switch l {
	case LevelAll:
		return nil // no restriction: every rdtype at the owner name is in scope
	case LevelAllSameName:
		return nil
	case LevelNSTarget:
		return []uint16{dns.TypeA, dns.TypeAAAA}
	case LevelSecureDelegation:
		return []uint16{dns.TypeDNSKEY, dns.TypeDS, dns.TypeDLV}
	default: // LevelDelegation
		return []uint16{dns.TypeNS}
	}
}

// AnalysisType classifies how a name's authoritative data was collected.
type AnalysisType uint8

const (
	AnalysisTypeAuthoritative AnalysisType = iota
	AnalysisTypeRecursive
	AnalysisTypeCache
)
