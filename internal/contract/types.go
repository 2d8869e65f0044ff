// Package contract compares extracted shapes and classifies the structural
// differences between two API responses.
package contract

import "github.com/contract-parity/parity-go/internal/shape"

// Severity classifies how serious a difference is for contract consumers.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityError, SeverityWarning:
		return true
	}
	return false
}

// DiffKind identifies the category of a structural difference.
type DiffKind string

const (
	DiffTypeMismatch    DiffKind = "type_mismatch"
	DiffFieldMissingInA DiffKind = "field_missing_in_a"
	DiffFieldMissingInB DiffKind = "field_missing_in_b"
)

func (k DiffKind) Valid() bool {
	switch k {
	case DiffTypeMismatch, DiffFieldMissingInA, DiffFieldMissingInB:
		return true
	}
	return false
}

// Severity maps a difference kind to its severity. Type mismatches break
// consumers; missing fields are additive or tolerable and only warn.
// Severity derives from the kind alone.
func (k DiffKind) Severity() Severity {
	if k == DiffTypeMismatch {
		return SeverityError
	}
	return SeverityWarning
}

// Difference is one structural divergence between two shapes.
// AKind/BKind are set for type mismatches and name the conflicting kinds.
type Difference struct {
	Path     string     `json:"path"`
	Kind     DiffKind   `json:"kind"`
	Severity Severity   `json:"severity"`
	AKind    shape.Kind `json:"a_kind,omitempty"`
	BKind    shape.Kind `json:"b_kind,omitempty"`
}

// Result summarizes one shape comparison.
// Identical means zero differences; Compatible means zero error-severity
// differences. Identical implies Compatible.
type Result struct {
	Identical    bool         `json:"identical"`
	Compatible   bool         `json:"compatible"`
	Differences  []Difference `json:"differences"`
	ErrorCount   int          `json:"error_count"`
	WarningCount int          `json:"warning_count"`
}

// NewResult folds a difference list into a Result with derived flags and
// counts. The flags are never stored independently of the list.
func NewResult(diffs []Difference) Result {
	r := Result{Differences: diffs}
	if diffs == nil {
		r.Differences = []Difference{}
	}
	for _, d := range r.Differences {
		switch d.Severity {
		case SeverityError:
			r.ErrorCount++
		case SeverityWarning:
			r.WarningCount++
		}
	}
	r.Identical = len(r.Differences) == 0
	r.Compatible = r.ErrorCount == 0
	return r
}
