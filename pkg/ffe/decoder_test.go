package ffe

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSections(t *testing.T) {
	t.Run("splits at every marker and drops preamble", func(t *testing.T) {
		text := withMarkers(ffeText(
			block{freq: 1e8, thetas: []float64{0, 90}, phis: []float64{0}},
			block{freq: 2e8, thetas: []float64{0, 90}, phis: []float64{0}},
		))
		lines := strings.Split(text, "\n")

		sections, err := SplitSections(lines)
		require.NoError(t, err)
		require.Len(t, sections, 2)

		for i, sec := range sections {
			assert.Equal(t, i, sec.Index)
			assert.Contains(t, sec.Lines[0], SectionMarker)
			assert.Equal(t, lines[sec.StartLine-1], sec.Lines[0])
		}
		for _, sec := range sections {
			for _, line := range sec.Lines {
				assert.NotContains(t, line, "File Type")
			}
		}
	})

	t.Run("file without marker is one section", func(t *testing.T) {
		lines := strings.Split(ffeText(block{freq: 1e8, thetas: []float64{0}, phis: []float64{0}}), "\n")

		sections, err := SplitSections(lines)
		require.NoError(t, err)
		require.Len(t, sections, 1)
		assert.Equal(t, 1, sections[0].StartLine)
		assert.Equal(t, lines, sections[0].Lines)
	})

	t.Run("blank file has no sections", func(t *testing.T) {
		_, err := SplitSections([]string{"", "   ", ""})

		var fe *FormatError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, StageSplit, fe.Stage)
		assert.ErrorIs(t, err, ErrNoSections)
	})
}

func TestDecodeSection(t *testing.T) {
	t.Run("reads frequency header and rows", func(t *testing.T) {
		lines := strings.Split(withMarkers(ffeText(block{freq: 2e5, thetas: []float64{0, 45}, phis: []float64{0, 90}})), "\n")
		sections, err := SplitSections(lines)
		require.NoError(t, err)

		table, skipped, err := DecodeSection(sections[0])
		require.NoError(t, err)
		assert.Empty(t, skipped)

		assert.Equal(t, 2e5, table.Frequency)
		assert.Equal(t, []string{"Theta", "Phi", "Re(Etheta)", "Im(Etheta)", "Re(Ephi)", "Im(Ephi)"}, table.Columns)
		assert.Equal(t, "StandardConfiguration1", table.Configuration)
		assert.Equal(t, "FarField1", table.RequestName)
		assert.Equal(t, 2, table.DeclaredThetas)
		assert.Equal(t, 2, table.DeclaredPhis)
		assert.Equal(t, 4, table.NumRows())

		assert.Equal(t, []float64{0, 0, 45, 45}, table.Column(0))
		assert.Equal(t, []float64{0, 90, 0, 90}, table.Column(1))
		assert.InDelta(t, sampleValue(0, 45, 90), table.Row(3)[2], 1e-6)
	})

	t.Run("missing frequency line leaves zero", func(t *testing.T) {
		sec := RawSection{StartLine: 1, Lines: []string{
			`#  "Theta"  "Phi"  "Re(Etheta)"`,
			"0 0 1.5",
		}}

		table, _, err := DecodeSection(sec)
		require.NoError(t, err)
		assert.Zero(t, table.Frequency)
	})

	t.Run("unparseable frequency leaves zero", func(t *testing.T) {
		sec := RawSection{StartLine: 1, Lines: []string{
			"#Frequency: lots",
			`#  "Theta"  "Phi"  "Re(Etheta)"`,
			"0 0 1.5",
		}}

		table, _, err := DecodeSection(sec)
		require.NoError(t, err)
		assert.Zero(t, table.Frequency)
	})

	t.Run("last header line wins", func(t *testing.T) {
		sec := RawSection{StartLine: 1, Lines: []string{
			`#  "Theta"  "Phi"  "Gain"`,
			`#  "Theta"  "Phi"  "Re(Etheta)"  "Im(Etheta)"`,
			"0 0 1 2",
		}}

		table, _, err := DecodeSection(sec)
		require.NoError(t, err)
		assert.Equal(t, []string{"Theta", "Phi", "Re(Etheta)", "Im(Etheta)"}, table.Columns)
	})

	t.Run("skips bad rows and reports them", func(t *testing.T) {
		sec := RawSection{Index: 3, StartLine: 10, Lines: []string{
			"#Frequency: 1e9",
			`#  "Theta"  "Phi"  "Re(Etheta)"`,
			"0 0 1",
			"0 90 abc",
			"0 180",
			"** trailer comment",
			"90 0 4",
		}}

		table, skipped, err := DecodeSection(sec)
		require.NoError(t, err)
		assert.Equal(t, 2, table.NumRows())
		require.Len(t, skipped, 2)

		assert.Equal(t, 13, skipped[0].Line)
		assert.Equal(t, "abc", skipped[0].Token)
		assert.Equal(t, 3, skipped[0].Section)
		assert.Equal(t, 14, skipped[1].Line)
	})

	t.Run("no header", func(t *testing.T) {
		sec := RawSection{Lines: []string{"#Frequency: 1e9", "0 0 1"}}

		_, _, err := DecodeSection(sec)
		assert.ErrorIs(t, err, ErrInvalidSection)
	})

	t.Run("no data rows", func(t *testing.T) {
		sec := RawSection{Lines: []string{"#Frequency: 1e9", `#  "Theta"  "Phi"`, "x y"}}

		_, skipped, err := DecodeSection(sec)
		assert.ErrorIs(t, err, ErrInvalidSection)
		assert.Len(t, skipped, 1)
	})
}

func TestNormalizeColumns(t *testing.T) {
	t.Run("renames coordinates and strips quotes", func(t *testing.T) {
		table, err := NewFrequencyTable(1e9, []string{"'theta'", "PHI", "Re('Etheta')"}, [][]float64{{0, 0, 1}})
		require.NoError(t, err)

		out, coords, err := NormalizeColumns(table)
		require.NoError(t, err)
		assert.Equal(t, []string{"Theta", "Phi", "Re(Etheta)"}, out.Columns)
		assert.Equal(t, CoordinateColumns{Theta: 0, Phi: 1}, coords)
		assert.Equal(t, []string{"'theta'", "PHI", "Re('Etheta')"}, table.Columns, "input must not change")
	})

	t.Run("exact match preferred over case-insensitive", func(t *testing.T) {
		table, err := NewFrequencyTable(1e9, []string{"THETA", "Phi", "Theta"}, [][]float64{{1, 2, 3}})
		require.NoError(t, err)

		out, coords, err := NormalizeColumns(table)
		require.NoError(t, err)
		assert.Equal(t, CoordinateColumns{Theta: 2, Phi: 1}, coords)
		assert.Equal(t, []string{"THETA", "Phi", "Theta"}, out.Columns)
	})

	t.Run("duplicate after renaming", func(t *testing.T) {
		table, err := NewFrequencyTable(1e9, []string{"theta", "phi", "Gain", "'Gain'"}, [][]float64{{1, 2, 3, 4}})
		require.NoError(t, err)

		_, _, err = NormalizeColumns(table)
		assert.ErrorIs(t, err, ErrDuplicateColumn)
	})

	t.Run("is idempotent", func(t *testing.T) {
		table, err := NewFrequencyTable(1e9, []string{"phi", "theta", "Gain"}, [][]float64{{0, 0, 1}})
		require.NoError(t, err)

		once, c1, err := NormalizeColumns(table)
		require.NoError(t, err)
		twice, c2, err := NormalizeColumns(once)
		require.NoError(t, err)

		assert.Equal(t, once.Columns, twice.Columns)
		assert.Equal(t, c1, c2)
		assert.Equal(t, CoordinateColumns{Theta: 1, Phi: 0}, c1)
	})

	t.Run("missing coordinate", func(t *testing.T) {
		table, err := NewFrequencyTable(1e9, []string{"Theta", "Gain"}, [][]float64{{0, 1}})
		require.NoError(t, err)

		_, _, err = NormalizeColumns(table)
		var fe *FormatError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, StageNormalize, fe.Stage)
		assert.ErrorIs(t, err, ErrCoordinatesNotFound)
	})
}
