package analysis

import (
	"time"

	"github.com/dnssec-analysis/engine/dnssec"
)

// LogLevel gates which severities the status serializer emits.
type LogLevel uint8

const (
	LogLevelError LogLevel = iota
	LogLevelWarning
	LogLevelInfo
	LogLevelDebug
)

const (
	// DefaultLogLevel matches serialize_status's conventional default:
	// everything at warning level or above is emitted.
	DefaultLogLevel = LogLevelWarning
)

var (
	// DefaultSerializeLogLevel is the default severity gate serialize runs use when the
	// caller does not specify one explicitly.
	DefaultSerializeLogLevel = DefaultLogLevel
)

// AnalysisEnd returns the instant against which RRSIG/DS temporal checks are
// evaluated. It defaults to wall-clock time, matching the original's
// use of the analysis run's "as of" timestamp, but callers analyzing a
// historical observation record should override it before calling Walk.
var AnalysisEnd = func() time.Time { return time.Now() }

type Logger func(string)

// Default logging functions just black-hole the input.

var Debug Logger = func(s string) {}
var Info Logger = func(s string) {}
var Warn Logger = func(s string) {}

func init() {
	dnssec.Debug = func(s string) { Debug(s) }
	dnssec.Info = func(s string) { Info(s) }
	dnssec.Warn = func(s string) { Warn(s) }
}
