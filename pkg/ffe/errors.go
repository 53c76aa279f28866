package ffe

import (
	"errors"
	"fmt"
	"strings"
)

// Stage names the pipeline step that rejected the input.
type Stage string

const (
	StageSplit     Stage = "split"
	StageDecode    Stage = "decode"
	StageNormalize Stage = "normalize"
	StageGrid      Stage = "grid"
	StageMerge     Stage = "merge"
)

// Structural problems carried by FormatError. Match them with errors.Is.
var (
	ErrNoSections          = errors.New("no frequency sections found")
	ErrInvalidSection      = errors.New("invalid section data")
	ErrCoordinatesNotFound = errors.New("coordinate columns not found")
	ErrDuplicateColumn     = errors.New("duplicate column name")
	ErrIrregularGrid       = errors.New("irregular grid")
	ErrUnresolvedOrder     = errors.New("flattening order could not be validated")
	ErrInconsistentGrid    = errors.New("inconsistent grid across frequencies")
)

// FormatError reports input that is structurally invalid. Section is the
// zero-based section index within Path and Line the one-based line number;
// either is -1/0 when not applicable.
type FormatError struct {
	Path    string
	Stage   Stage
	Section int
	Line    int
	Detail  string
	Err     error
}

func (e *FormatError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ffe %s", e.Stage)
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if e.Section >= 0 {
		fmt.Fprintf(&b, " section %d", e.Section)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	if e.Detail != "" {
		fmt.Fprintf(&b, " (%s)", e.Detail)
	}
	return b.String()
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func newFormatError(stage Stage, section int, err error, detail string) *FormatError {
	return &FormatError{Stage: stage, Section: section, Err: err, Detail: detail}
}

// withPath stamps the file path onto a FormatError produced deeper in the
// pipeline, where the path is not known.
func withPath(err error, path string) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.Path == "" {
		fe.Path = path
	}
	return err
}

// DataConversionError describes a data row that was skipped because a token
// was not numeric or the row width did not match the header.
type DataConversionError struct {
	Path    string
	Section int
	Line    int
	Token   string
	Err     error
}

func (e *DataConversionError) Error() string {
	return fmt.Sprintf("ffe %s section %d line %d: cannot convert %q: %v", e.Path, e.Section, e.Line, e.Token, e.Err)
}

func (e *DataConversionError) Unwrap() error {
	return e.Err
}
