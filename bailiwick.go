package analysis

import (
	"github.com/miekg/dns"
)

// InBailiwick reports whether server is within the bailiwick of zone: a
// server name is in-bailiwick when it is equal to or a subdomain of the
// zone it is meant to be authoritative for. Out-of-bailiwick glue must be
// rejected rather than trusted, per the NS-name sanity checks of the
// delegation evaluator.
func InBailiwick(zone, server string) bool {
	return dns.IsSubDomain(canonicalName(zone), canonicalName(server))
}
