// Package reader ties the tokenizer, parser and filters packages together
// into a cross-reference resolver, an on-demand object store, and a
// page-tree navigator, exposing a single entry point (Open) that turns a
// byte source into a Document.
package reader

// ParseOptions governs how tolerant a Reader is of malformed input. It is
// a plain value, constructed by the named presets below or built field by
// field — there is no package-level mutable configuration.
type ParseOptions struct {
	// StrictMode rejects any non-conformance immediately. When false,
	// recoverable errors are converted to warnings and parsing continues.
	StrictMode bool

	// LenientStreams enables the endstream-scan recovery path when a
	// stream's /Length does not land on "endstream".
	LenientStreams bool

	// MaxRecoveryBytes bounds how far the endstream-scan recovery looks
	// forward.
	MaxRecoveryBytes int

	// MaxRecoveryAttempts bounds how many filter fallback strategies a
	// lenient filter decode tries before giving up.
	MaxRecoveryAttempts int

	// IgnoreCorruptStreams substitutes an empty payload, with a warning,
	// when a filter fails irrecoverably rather than failing the whole
	// parse.
	IgnoreCorruptStreams bool

	// PartialContentAllowed accepts truncated filter output instead of
	// treating it as an error.
	PartialContentAllowed bool

	// CollectWarnings accumulates a warning list on the reader; when
	// false, warnings are discarded as soon as they are raised.
	CollectWarnings bool
}

// NewDefaultOptions returns the tolerant preset: every reader constructed
// without explicit options uses this, since most PDFs encountered in the
// wild have at least one minor non-conformance.
func NewDefaultOptions() ParseOptions {
	return TolerantOptions()
}

// StrictOptions disables every recovery path: the first non-conformance
// is a hard error.
func StrictOptions() ParseOptions {
	return ParseOptions{
		StrictMode:      true,
		CollectWarnings: true,
	}
}

// TolerantOptions enables every recovery path with workable defaults.
func TolerantOptions() ParseOptions {
	return ParseOptions{
		StrictMode:            false,
		LenientStreams:        true,
		MaxRecoveryBytes:      1 << 20, // 1 MiB
		MaxRecoveryAttempts:   16,
		PartialContentAllowed: true,
		CollectWarnings:       true,
	}
}

// SkipErrorsOptions is TolerantOptions plus IgnoreCorruptStreams, for
// callers that would rather get a partially-populated document than an
// error at all.
func SkipErrorsOptions() ParseOptions {
	o := TolerantOptions()
	o.IgnoreCorruptStreams = true
	return o
}
