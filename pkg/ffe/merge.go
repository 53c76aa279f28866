package ffe

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/RMahshie/farfield/pkg/farfield"
)

// DuplicatePolicy decides which section survives when several carry the
// same frequency.
type DuplicatePolicy int

const (
	// FirstWins keeps the first occurrence in file order, then section order.
	FirstWins DuplicatePolicy = iota
	// LastWins keeps the last occurrence.
	LastWins
)

func (p DuplicatePolicy) String() string {
	if p == LastWins {
		return "last"
	}
	return "first"
}

// ParseDuplicatePolicy accepts "first" or "last".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first", "first-wins":
		return FirstWins, nil
	case "last", "last-wins":
		return LastWins, nil
	}
	return FirstWins, fmt.Errorf("unknown duplicate frequency policy %q", s)
}

// MergeResult is a merged dataset plus the slices that lost to a duplicate.
type MergeResult struct {
	Dataset   *farfield.Dataset
	Discarded []*GridSlice
}

// Merge de-duplicates slices by frequency, sorts them ascending and stacks
// them into a Dataset. Every surviving slice must share the angular grid and
// the column set of the lowest frequency.
func Merge(slices []*GridSlice, policy DuplicatePolicy) (*MergeResult, error) {
	if len(slices) == 0 {
		return nil, newFormatError(StageMerge, -1, ErrNoSections, "nothing to merge")
	}

	byFreq := make(map[uint64]int, len(slices))
	var kept []*GridSlice
	var discarded []*GridSlice
	for _, s := range slices {
		key := math.Float64bits(s.Frequency)
		idx, dup := byFreq[key]
		switch {
		case !dup:
			byFreq[key] = len(kept)
			kept = append(kept, s)
		case policy == LastWins:
			discarded = append(discarded, kept[idx])
			kept[idx] = s
		default:
			discarded = append(discarded, s)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Frequency < kept[j].Frequency })

	ref := kept[0]
	for _, s := range kept[1:] {
		if err := checkConsistent(ref, s); err != nil {
			return nil, err
		}
	}

	nFreq, nTheta, nPhi := len(kept), len(ref.Grid.Thetas), len(ref.Grid.Phis)
	plane := nTheta * nPhi
	freqs := make([]float64, nFreq)
	data := make(map[string]*farfield.Array, len(ref.Columns))
	for _, name := range ref.Columns {
		values := make([]float64, nFreq*plane)
		for f, s := range kept {
			copy(values[f*plane:(f+1)*plane], s.Data[name])
		}
		arr, err := farfield.NewArray(nFreq, nTheta, nPhi, values)
		if err != nil {
			return nil, err
		}
		data[name] = arr
	}
	for f, s := range kept {
		freqs[f] = s.Frequency
	}

	columns := make([]string, len(ref.Columns))
	copy(columns, ref.Columns)
	ds, err := farfield.New(freqs, ref.Grid.Thetas, ref.Grid.Phis, columns, data)
	if err != nil {
		return nil, fmt.Errorf("failed to build dataset: %w", err)
	}
	return &MergeResult{Dataset: ds, Discarded: discarded}, nil
}

func checkConsistent(ref, s *GridSlice) error {
	mismatch := func(detail string) error {
		return &FormatError{Path: s.Path, Stage: StageMerge, Section: s.Section, Err: ErrInconsistentGrid,
			Detail: fmt.Sprintf("frequency %g vs %g: %s", s.Frequency, ref.Frequency, detail)}
	}

	if !s.Grid.Equal(ref.Grid) {
		return mismatch(fmt.Sprintf("grid %dx%d vs %dx%d",
			len(s.Grid.Thetas), len(s.Grid.Phis), len(ref.Grid.Thetas), len(ref.Grid.Phis)))
	}
	if len(s.Columns) != len(ref.Columns) {
		return mismatch(fmt.Sprintf("columns %v vs %v", s.Columns, ref.Columns))
	}
	for _, name := range ref.Columns {
		if _, ok := s.Data[name]; !ok {
			return mismatch(fmt.Sprintf("column %q missing", name))
		}
	}
	return nil
}
