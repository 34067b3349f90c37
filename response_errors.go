package analysis

import "github.com/dnssec-analysis/engine/errs"

// ResponseClassifier attributes EDNS-related, transport, form, timeout and
// rcode errors to a single (server, client, response) witness, and decides
// whether a failure is intermittent by checking whether another EDNS query
// to the same server succeeded.
type ResponseClassifier struct {
	AllResponses []*Response
}

// Intermittent reports whether some other response from the same server
// used EDNS and completed without a responsive-cause failure.
func (c *ResponseClassifier) Intermittent(server string, exclude *Response) bool {
	for _, r := range c.AllResponses {
		if r == exclude || r.Server != server {
			continue
		}
		if r.RequestEDNS >= 0 && r.ResponsiveCause == "" && r.Err == nil {
			return true
		}
	}
	return false
}

// classifyResponsiveCause implements the per-responsive-cause leaf of the
// decision table shared by both the "effective EDNS disabled" branch and
// the per-flag comparison branch.
func (c *ResponseClassifier) classifyResponsiveCause(r *Response, flag string) *errs.Error {
	w := r.Witness()
	intermittent := c.Intermittent(r.Server, r)

	var e *errs.Error
	switch r.ResponsiveCause {
	case "":
		return nil
	case "network-error":
		e = errs.New(errs.KindNetworkError, w).WithIntermittent(intermittent)
	case "formerr":
		e = errs.New(errs.KindFormError, w).WithIntermittent(intermittent)
	case "timeout":
		e = errs.New(errs.KindTimeout, w).WithAttempts(r.ResponsiveCauseIndex + 1)
	case "other":
		e = errs.New(errs.KindUnknownResponse, w)
	case "rcode":
		e = errs.New(errs.KindInvalidRcode, w).WithRcode(r.ResponsiveCauseRcode).WithDetail(RcodeToString(r.ResponsiveCauseRcode))
	default:
		e = errs.New(errs.KindUnclassified, w).WithDetail(r.ResponsiveCause)
	}

	if flag != "" {
		e.Kind = errs.KindResponseErrorWithEDNSFlag
		e.EDNSFlag = flag
	}
	return e
}

// ClassifyEDNS implements the §4.4 three-way EDNS decision table for one
// response.
func (c *ResponseClassifier) ClassifyEDNS(r *Response) errs.List {
	var out errs.List
	w := r.Witness()

	initialUsedEDNS := r.RequestEDNS >= 0
	responseUsedEDNS := r.ResponseEDNS >= 0

	switch {
	case initialUsedEDNS && !responseUsedEDNS:
		if r.EffectiveEDNS >= 0 {
			out.Insert(errs.New(errs.KindEDNSIgnored, w))
			break
		}
		if e := c.classifyResponsiveCause(r, ""); e != nil {
			out.Insert(e)
		}

	case initialUsedEDNS && responseUsedEDNS:
		if r.RequestMaxUDPPayload != 0 && r.ResponseMaxUDPPayload != 0 &&
			r.RequestMaxUDPPayload != r.ResponseMaxUDPPayload {
			out.Insert(errs.New(errs.KindPMTUExceeded, w))
		}
		if r.EffectiveEDNS >= 0 && r.EffectiveEDNS != r.ResponseEDNS {
			out.Insert(errs.New(errs.KindUnsupportedEDNSVersion, w))
		}
		for flag, requested := range r.RequestFlags {
			if !requested {
				continue
			}
			if r.EffectiveFlags[flag] {
				continue
			}
			if e := c.classifyResponsiveCause(r, flag); e != nil {
				out.Insert(e)
			}
		}
	}

	return out
}

// Severity decides whether an error counts as a warning or an error: an
// EDNS-classification error is always a warning; any other is an error iff
// the owning zone is signed, else a warning.
func Severity(kind errs.Kind, zoneSigned bool) LogLevel {
	switch kind {
	case errs.KindEDNSIgnored, errs.KindUnsupportedEDNSVersion, errs.KindPMTUExceeded,
		errs.KindResponseErrorWithEDNS, errs.KindResponseErrorWithEDNSFlag:
		return LogLevelWarning
	}
	if zoneSigned {
		return LogLevelError
	}
	return LogLevelWarning
}

// ClassifyAuthority raises NotAuthoritative / RecursionNotAvailable per
// §4.4's authority-layer checks.
func ClassifyAuthority(r *Response, analysisType AnalysisType) errs.List {
	var out errs.List
	w := r.Witness()

	if analysisType == AnalysisTypeAuthoritative && !r.Authoritative {
		out.Insert(errs.New(errs.KindNotAuthoritative, w))
	}
	if analysisType == AnalysisTypeRecursive && !r.RecursionAvailable {
		out.Insert(errs.New(errs.KindRecursionNotAvailable, w))
	}
	return out
}
