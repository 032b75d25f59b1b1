package errors

import (
	"fmt"
	"sort"
)

// Severity of a diagnostic
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns the severity name
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// MarshalText implements encoding.TextMarshaler
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Policy decides the severity of a configurable check
type Policy int

const (
	PolicyWarn Policy = iota
	PolicyError
)

// PolicyFor returns PolicyError when strict is set
func PolicyFor(strict bool) Policy {
	if strict {
		return PolicyError
	}
	return PolicyWarn
}

// Severity maps the policy to the diagnostic severity it produces
func (p Policy) Severity() Severity {
	if p == PolicyError {
		return SeverityError
	}
	return SeverityWarning
}

// String returns the policy name
func (p Policy) String() string {
	if p == PolicyError {
		return "error"
	}
	return "warn"
}

// Anchor identifies what a diagnostic is about
type Anchor struct {
	Declaration string `json:"declaration" yaml:"declaration"`                     // fully-qualified class name
	Member      string `json:"member,omitempty" yaml:"member,omitempty"`           // field, method, parameter or empty for the class
	MemberKind  string `json:"member_kind,omitempty" yaml:"member_kind,omitempty"` // field, method, constructor, parameter
}

// String renders the anchor as Class#member
func (a Anchor) String() string {
	if a.Member == "" {
		return a.Declaration
	}
	return a.Declaration + "#" + a.Member
}

// Diagnostic is one structured message produced while resolving a declaration
type Diagnostic struct {
	*BaseError
	Severity Severity
	Anchor   Anchor
}

// NewDiagnostic creates a diagnostic with a formatted message
func NewDiagnostic(severity Severity, code ErrorCode, anchor Anchor, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		BaseError: Newf(code, format, args...),
		Severity:  severity,
		Anchor:    anchor,
	}
}

// Errorf creates an error diagnostic
func Errorf(code ErrorCode, anchor Anchor, format string, args ...interface{}) *Diagnostic {
	return NewDiagnostic(SeverityError, code, anchor, format, args...)
}

// Warnf creates a warning diagnostic
func Warnf(code ErrorCode, anchor Anchor, format string, args ...interface{}) *Diagnostic {
	return NewDiagnostic(SeverityWarning, code, anchor, format, args...)
}

// WithLocation adds location information to the diagnostic
func (d *Diagnostic) WithLocation(loc SourceLocation) *Diagnostic {
	d.BaseError.WithLocation(loc)
	return d
}

// IsError reports whether the diagnostic fails the declaration
func (d *Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// String renders the diagnostic for logs
func (d *Diagnostic) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", d.Severity, d.Code, d.Anchor, d.Message)
}

// Diagnostics is an ordered list of diagnostics
type Diagnostics []*Diagnostic

// Add appends diagnostics, ignoring nils
func (ds *Diagnostics) Add(diags ...*Diagnostic) {
	for _, d := range diags {
		if d != nil {
			*ds = append(*ds, d)
		}
	}
}

// Merge appends another list
func (ds *Diagnostics) Merge(other Diagnostics) {
	ds.Add(other...)
}

// HasErrors reports whether any diagnostic has error severity
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Errors returns the error diagnostics in order
func (ds Diagnostics) Errors() Diagnostics {
	return ds.filter(SeverityError)
}

// Warnings returns the warning diagnostics in order
func (ds Diagnostics) Warnings() Diagnostics {
	return ds.filter(SeverityWarning)
}

func (ds Diagnostics) filter(severity Severity) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Severity == severity {
			out = append(out, d)
		}
	}
	return out
}

// Messages returns the plain messages in order
func (ds Diagnostics) Messages() []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Message
	}
	return out
}

// Sorted returns a copy ordered by declaration, keeping the emission order inside a declaration
func (ds Diagnostics) Sorted() Diagnostics {
	out := make(Diagnostics, len(ds))
	copy(out, ds)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Anchor.Declaration < out[j].Anchor.Declaration
	})
	return out
}

// Err returns the error diagnostics as a MultipleErrors, or nil when there are none
func (ds Diagnostics) Err() error {
	errs := ds.Errors()
	if len(errs) == 0 {
		return nil
	}
	multiple := NewMultipleErrors()
	for _, d := range errs {
		multiple.Add(d)
	}
	return multiple
}
