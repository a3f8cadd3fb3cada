// Package diag implements the reader's warning collector: a simple,
// structured channel separate from the developer-facing named loggers in
// github.com/pdfcpu/pdfcpu/pkg/log, meant for callers that want to inspect
// a specific document's health after parsing.
package diag

// Kind categorises a Warning by which recovery path produced it.
type Kind string

const (
	KindLex       Kind = "lex"
	KindSyntax    Kind = "syntax"
	KindXref      Kind = "xref"
	KindFilter    Kind = "filter"
	KindReference Kind = "reference"
	KindStructure Kind = "structure"
	KindDuplicate Kind = "duplicate-key"
	KindContent   Kind = "content-stream"
	KindPageTree  Kind = "page-tree"
)

// Warning is one (kind, position, message) triple raised during a
// lenient parse.
type Warning struct {
	Kind     Kind
	Position int
	Message  string
}

// Collector accumulates warnings in order, if enabled; when disabled,
// Add is a no-op so callers don't have to branch on collection state
// themselves.
type Collector struct {
	enabled  bool
	warnings []Warning
}

// NewCollector returns a Collector that records warnings only when
// enabled is true.
func NewCollector(enabled bool) *Collector {
	return &Collector{enabled: enabled}
}

// Add records a warning, if collection is enabled.
func (c *Collector) Add(kind Kind, position int, message string) {
	if c == nil || !c.enabled {
		return
	}
	c.warnings = append(c.warnings, Warning{Kind: kind, Position: position, Message: message})
}

// All returns every warning recorded so far, in order.
func (c *Collector) All() []Warning {
	if c == nil {
		return nil
	}
	return c.warnings
}
