package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/dnssec-analysis/engine/errs"
)

func TestEvaluateNSStatus_FlagsAsymmetricNSSets(t *testing.T) {
	in := NSStatusInput{
		Zone:            "example.com.",
		NamesFromChild:  []string{"ns1.example.com.", "ns2.example.com."},
		NamesFromParent: []string{"ns1.example.com."},
		AuthAddresses:   map[string][]string{"ns1.example.com.": {"192.0.2.1"}},
		GlueAddresses:   map[string][]string{"ns1.example.com.": {"192.0.2.1"}},
	}

	out := EvaluateNSStatus(in)

	var kinds []errs.Kind
	for _, e := range out {
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, errs.KindNSNameNotInParent, "ns2 is only on the child side")
}

func TestEvaluateNSStatus_GlueMismatchAgainstAuthoritativeAddress(t *testing.T) {
	in := NSStatusInput{
		Zone:            "example.com.",
		NamesFromChild:  []string{"ns1.example.com."},
		NamesFromParent: []string{"ns1.example.com."},
		AuthAddresses:   map[string][]string{"ns1.example.com.": {"192.0.2.1"}},
		GlueAddresses:   map[string][]string{"ns1.example.com.": {"192.0.2.99"}},
	}

	out := EvaluateNSStatus(in)

	found := false
	for _, e := range out {
		if e.Kind == errs.KindGlueMismatchError {
			found = true
		}
	}
	assert.True(t, found)
}

func TestEvaluateNSStatus_OutOfBailiwickGlueIsNotCrossChecked(t *testing.T) {
	in := NSStatusInput{
		Zone:            "example.com.",
		NamesFromChild:  []string{"ns1.other.com."},
		NamesFromParent: []string{"ns1.other.com."},
		AuthAddresses:   map[string][]string{"ns1.other.com.": {"192.0.2.1"}},
		GlueAddresses:   map[string][]string{"ns1.other.com.": {"192.0.2.99"}},
	}

	out := EvaluateNSStatus(in)

	for _, e := range out {
		assert.NotEqual(t, errs.KindGlueMismatchError, e.Kind, "out-of-bailiwick glue must not be cross-checked")
	}
}

func TestEvaluateNSStatus_NoAddressRaisesError(t *testing.T) {
	in := NSStatusInput{
		Zone:            "example.com.",
		NamesFromChild:  []string{"ns1.example.com."},
		NamesFromParent: []string{"ns1.example.com."},
	}

	out := EvaluateNSStatus(in)

	found := false
	for _, e := range out {
		if e.Kind == errs.KindNoAddressForNSName {
			found = true
		}
	}
	assert.True(t, found)
}

func TestEvaluateNSStatus_MissingIPv6CoverageWarns(t *testing.T) {
	in := NSStatusInput{
		Zone:            "example.com.",
		NamesFromChild:  []string{"ns1.example.com."},
		NamesFromParent: []string{"ns1.example.com."},
		AuthAddresses:   map[string][]string{"ns1.example.com.": {"192.0.2.1"}},
	}

	out := EvaluateNSStatus(in)

	found := false
	for _, e := range out {
		if e.Kind == errs.KindNoNSAddressesForIPv6 {
			found = true
		}
	}
	assert.True(t, found)
}
