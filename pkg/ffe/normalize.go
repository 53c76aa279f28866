package ffe

import (
	"fmt"
	"strings"

	"github.com/RMahshie/farfield/pkg/farfield"
)

// CoordinateColumns holds the column positions of the angular coordinates.
type CoordinateColumns struct {
	Theta int
	Phi   int
}

type columnMatcher func(column, canonical string) bool

// coordinateMatchers are tried in order; the first that finds a column wins.
var coordinateMatchers = []columnMatcher{
	func(column, canonical string) bool { return column == canonical },
	strings.EqualFold,
}

// NormalizeColumns strips quote decorations from column names, locates the
// Theta and Phi columns and renames them to their canonical spelling. The
// input table is left untouched; running it twice gives the same result.
func NormalizeColumns(t *FrequencyTable) (*FrequencyTable, CoordinateColumns, error) {
	cols := make([]string, len(t.Columns))
	seen := make(map[string]bool, len(cols))
	for i, c := range t.Columns {
		cols[i] = strings.ReplaceAll(c, "'", "")
	}

	theta, ok := locateColumn(cols, farfield.Theta)
	if !ok {
		return nil, CoordinateColumns{}, newFormatError(StageNormalize, t.Section, ErrCoordinatesNotFound,
			fmt.Sprintf("no %s column in %v", farfield.Theta, t.Columns))
	}
	phi, ok := locateColumn(cols, farfield.Phi)
	if !ok {
		return nil, CoordinateColumns{}, newFormatError(StageNormalize, t.Section, ErrCoordinatesNotFound,
			fmt.Sprintf("no %s column in %v", farfield.Phi, t.Columns))
	}
	cols[theta], cols[phi] = farfield.Theta, farfield.Phi

	for _, c := range cols {
		if seen[c] {
			return nil, CoordinateColumns{}, newFormatError(StageNormalize, t.Section, ErrDuplicateColumn, c)
		}
		seen[c] = true
	}

	out := *t
	out.Columns = cols
	return &out, CoordinateColumns{Theta: theta, Phi: phi}, nil
}

func locateColumn(cols []string, canonical string) (int, bool) {
	for _, match := range coordinateMatchers {
		for i, c := range cols {
			if match(c, canonical) {
				return i, true
			}
		}
	}
	return -1, false
}
