package dnssec

import "errors"

var (
	ErrNoDSRecords        = errors.New("no DS records passed")
	ErrKeysNotFound       = errors.New("no dnskey records found for zone")
	ErrSignatureSetEmpty  = errors.New("cannot verify an empty signature set")
	ErrInvalidTime        = errors.New("current time is outside of the msg validity period")
	ErrInvalidLabelCount  = errors.New("number of labels in the rrset owner name is less than the value in the rrsig rr's labels field")

	ErrSignerNameNotParentOfQName = errors.New("the signer name is not a parent of the qname")
)
