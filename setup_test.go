package analysis

import (
	"crypto/rsa"
	"time"

	"github.com/miekg/dns"
	"github.com/dnssec-analysis/engine/dnssec"
	"github.com/dnssec-analysis/engine/errs"
)

const testZone = "example.com."

func newRR(s string) dns.RR {
	rr, err := dns.NewRR(s)
	if err != nil {
		panic(err)
	}
	return rr
}

type testKey struct {
	key    *dns.DNSKEY
	signer *rsa.PrivateKey
}

func testDNSKEY(zone string, flags uint16) *testKey {
	dnskey := &dns.DNSKEY{
		Hdr: dns.RR_Header{
			Name:   dns.Fqdn(zone),
			Rrtype: dns.TypeDNSKEY,
			Class:  dns.ClassINET,
			Ttl:    300,
		},
		Flags:     flags,
		Protocol:  3,
		Algorithm: dns.RSASHA256,
	}
	secret, err := dnskey.Generate(1024)
	if err != nil {
		panic(err)
	}
	signer, _ := secret.(*rsa.PrivateKey)
	return &testKey{key: dnskey, signer: signer}
}

func (k *testKey) sign(rrset []dns.RR) *dns.RRSIG {
	rrsig := &dns.RRSIG{
		Hdr:        dns.RR_Header{},
		Inception:  uint32(time.Now().Add(-24 * time.Hour).Unix()),
		Expiration: uint32(time.Now().Add(24 * time.Hour).Unix()),
		KeyTag:     k.key.KeyTag(),
		SignerName: k.key.Header().Name,
		Algorithm:  k.key.Algorithm,
	}
	if err := rrsig.Sign(k.signer, rrset); err != nil {
		panic(err)
	}
	return rrsig
}

func witness(server string) errs.Witness { return errs.Witness{Server: server, Response: server} }

// dnskeyQuery builds a (zone, DNSKEY) Query whose single answer is the given
// keys, self-signed by ksk.
func dnskeyQuery(zone string, ksk *testKey, keys ...*dns.DNSKEY) *Query {
	var rrset []dns.RR
	for _, k := range keys {
		rrset = append(rrset, k)
	}
	sig := ksk.sign(rrset)
	info := &RRsetInfo{
		RRset:     rrset,
		Witnesses: []errs.Witness{witness("ns1." + zone)},
		RRSIGs:    []*RRSIGInfo{{RRSIG: sig, Witnesses: []errs.Witness{witness("ns1." + zone)}}},
	}
	return &Query{QName: dns.Fqdn(zone), RDType: dns.TypeDNSKEY, AnswerInfo: []*RRsetInfo{info}}
}

func defaultOracle() *dnssec.Oracle { return dnssec.NewOracle(nil, nil) }
