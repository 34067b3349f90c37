package analysis

import (
	"fmt"
	"sort"

	"github.com/miekg/dns"
	"github.com/dnssec-analysis/engine/errs"
	"github.com/dnssec-analysis/engine/status"
)

// SerializedReport is the top-level output of C9: a stable, ordered,
// hierarchical report keyed by name and query tuple, filtered by severity.
type SerializedReport struct {
	RunID   string           `json:"run_id"`
	Version string           `json:"version"`
	Names   []SerializedName `json:"names"`
}

type SerializedName struct {
	Name       string             `json:"name"`
	Status     string             `json:"status"`
	Queries    []SerializedQuery  `json:"queries"`
	DNSKEY     []SerializedDNSKEY `json:"dnskey,omitempty"`
	Delegation *string            `json:"delegation,omitempty"`
}

type SerializedQuery struct {
	ID       string              `json:"id"`
	Answer   []SerializedRRset   `json:"answer,omitempty"`
	NXDomain []SerializedNegative `json:"nxdomain,omitempty"`
	NoData   []SerializedNegative `json:"nodata,omitempty"`
	Error    []string            `json:"error,omitempty"`
}

type SerializedRRSIG struct {
	KeyTag    uint16 `json:"key_tag"`
	Algorithm uint8  `json:"algorithm"`
	Status    string `json:"status"`
}

type SerializedRRset struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	RRSIG    []SerializedRRSIG `json:"rrsig,omitempty"`
	Servers  []string          `json:"servers,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
	Errors   []string          `json:"errors,omitempty"`
}

type SerializedNegative struct {
	ID       string   `json:"id"`
	Status   string   `json:"status"`
	Proof    string   `json:"proof,omitempty"`
	SOA      string   `json:"soa,omitempty"`
	Servers  []string `json:"servers,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

type SerializedDNSKEY struct {
	KeyTag    uint16 `json:"key_tag"`
	Algorithm uint8  `json:"algorithm"`
	Status    string `json:"status"`
}

// queryID builds the stable "<owner>/<class>/<type>" leaf id.
func queryID(owner string, rdtype uint16) string {
	return fmt.Sprintf("%s/IN/%s", owner, TypeToString(rdtype))
}

func passesLogLevel(level, gate LogLevel) bool { return level <= gate }

func errorStrings(list errs.List, gate LogLevel, isError bool) []string {
	var out []string
	for _, e := range list {
		lvl := Severity(e.Kind, isError)
		if !passesLogLevel(lvl, gate) {
			continue
		}
		out = append(out, string(e.Kind))
	}
	sort.Strings(out)
	return out
}

// Serialize implements C9 for a single name: DNSKEYs and RRSIGs are both
// ordered by algorithm then key tag, and errors/warnings are gated by
// loglevel.
func Serialize(na *NameAnalysis, loglevel LogLevel) SerializedName {
	out := SerializedName{
		Name:   na.Name,
		Status: na.NameStatus.String(),
	}

	delegation := na.DelegationStatus.String()
	out.Delegation = &delegation

	if na.DNSKEYIndex != nil {
		for _, meta := range na.DNSKEYIndex.All() {
			out.DNSKEY = append(out.DNSKEY, SerializedDNSKEY{
				KeyTag:    meta.KeyTag,
				Algorithm: meta.RR.Algorithm,
				Status:    keyRoleStatus(na, meta),
			})
		}
		sort.Slice(out.DNSKEY, func(i, j int) bool {
			if out.DNSKEY[i].Algorithm != out.DNSKEY[j].Algorithm {
				return out.DNSKEY[i].Algorithm < out.DNSKEY[j].Algorithm
			}
			return out.DNSKEY[i].KeyTag < out.DNSKEY[j].KeyTag
		})
	}

	keys := make([]QueryKey, 0, len(na.Queries))
	for k := range na.Queries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].QName != keys[j].QName {
			return keys[i].QName < keys[j].QName
		}
		return keys[i].RDType < keys[j].RDType
	})

	for _, key := range keys {
		q := na.Queries[key]
		sq := SerializedQuery{ID: queryID(key.QName, key.RDType)}

		for _, info := range q.AnswerInfo {
			sq.Answer = append(sq.Answer, serializeRRset(na, key, info, loglevel))
		}
		for _, nd := range q.NoDataInfo {
			sq.NoData = append(sq.NoData, serializeNegative(nd, na.NoDataStatus[key], loglevel))
		}
		for _, nx := range q.NXDomainInfo {
			sq.NXDomain = append(sq.NXDomain, serializeNegative(nx, na.NXDomainStatus[key], loglevel))
		}
		for _, r := range q.ErrorInfo {
			if r.Err != nil {
				sq.Error = append(sq.Error, r.Err.Error())
			}
		}

		out.Queries = append(out.Queries, sq)
	}

	return out
}

func serializeRRset(na *NameAnalysis, key QueryKey, info *RRsetInfo, loglevel LogLevel) SerializedRRset {
	s := SerializedRRset{
		ID:     queryID(info.Name(), info.Type()),
		Status: info.Status.String(),
	}
	for _, w := range info.Witnesses {
		s.Servers = append(s.Servers, w.Server)
	}
	sort.Strings(s.Servers)

	for _, st := range na.RRSIGStatus[key] {
		if st.RRSIG == nil {
			continue
		}
		s.RRSIG = append(s.RRSIG, SerializedRRSIG{
			KeyTag:    st.RRSIG.KeyTag,
			Algorithm: st.RRSIG.Algorithm,
			Status:    st.Validation.String(),
		})
	}
	sort.Slice(s.RRSIG, func(i, j int) bool {
		if s.RRSIG[i].Algorithm != s.RRSIG[j].Algorithm {
			return s.RRSIG[i].Algorithm < s.RRSIG[j].Algorithm
		}
		return s.RRSIG[i].KeyTag < s.RRSIG[j].KeyTag
	})

	zoneSigned := na.DSStatus != nil && len(na.DSStatus) > 0
	s.Errors = errorStrings(na.Errors, loglevel, zoneSigned)
	s.Warnings = errorStrings(na.Warnings, loglevel, zoneSigned)

	return s
}

func serializeNegative(info *NegativeResponseInfo, proofs []status.NegativeProofStatus, loglevel LogLevel) SerializedNegative {
	s := SerializedNegative{
		ID:     queryID(info.Owner, info.RDType),
		Status: info.Status.String(),
	}
	for _, w := range info.Witnesses {
		s.Servers = append(s.Servers, w.Server)
	}
	sort.Strings(s.Servers)

	best := status.ValidationIndeterminate
	for _, p := range proofs {
		if p.Validation == status.ValidationValid {
			best = status.ValidationValid
		}
	}
	s.Proof = best.String()

	return s
}

func keyRoleStatus(na *NameAnalysis, meta *DNSKEYMeta) string {
	for _, k := range na.RevokedKeys {
		if k == meta {
			return "revoked"
		}
	}
	for _, k := range na.KSKs {
		if k == meta {
			return "ksk"
		}
	}
	for _, k := range na.ZSKs {
		if k == meta {
			return "zsk"
		}
	}
	return "published"
}

// SerializeAll builds the full, deterministically ordered report across
// every name in nas, tagged with a run-correlation id.
func SerializeAll(runID string, nas []*NameAnalysis, loglevel LogLevel) SerializedReport {
	report := SerializedReport{RunID: runID, Version: DNSProcessedVersion}

	sorted := append([]*NameAnalysis(nil), nas...)
	sort.Slice(sorted, func(i, j int) bool {
		return dns.CanonicalName(sorted[i].Name) < dns.CanonicalName(sorted[j].Name)
	})

	for _, na := range sorted {
		report.Names = append(report.Names, Serialize(na, loglevel))
	}
	return report
}
