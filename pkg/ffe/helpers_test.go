package ffe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

var fieldColumns = []string{"Re(Etheta)", "Im(Etheta)", "Re(Ephi)", "Im(Ephi)"}

// block describes one frequency section of a synthetic FFE file.
type block struct {
	freq      float64
	thetas    []float64
	phis      []float64
	thetaFast bool
	// value returns the sample for a column at (theta, phi); defaults to
	// sampleValue.
	value func(col int, theta, phi float64) float64
}

func sampleValue(col int, theta, phi float64) float64 {
	return float64(col+1)*1000 + theta + phi/1000
}

// ffeText renders blocks the way FEKO writes .ffe files.
func ffeText(blocks ...block) string {
	var b strings.Builder
	b.WriteString("##File Type: Far field\n##File Format: 3\n##Source: dipole\n")
	b.WriteString("** File exported by FEKO kernel version 7.0.1-482\n\n")
	for _, blk := range blocks {
		value := blk.value
		if value == nil {
			value = sampleValue
		}
		b.WriteString("#Request Name: FarField1\n")
		fmt.Fprintf(&b, "#Frequency:   %E\n", blk.freq)
		b.WriteString("#Coordinate System: Spherical\n")
		fmt.Fprintf(&b, "#No. of Theta Samples: %d\n", len(blk.thetas))
		fmt.Fprintf(&b, "#No. of Phi Samples: %d\n", len(blk.phis))
		b.WriteString("#Result Type: Gain\n#No. of Header Lines: 1\n")
		b.WriteString(`#                 "Theta"           "Phi"             "Re(Etheta)"      "Im(Etheta)"      "Re(Ephi)"        "Im(Ephi)"` + "\n")

		row := func(theta, phi float64) {
			fmt.Fprintf(&b, "   %18.8E %18.8E", theta, phi)
			for c := range fieldColumns {
				fmt.Fprintf(&b, " %18.8E", value(c, theta, phi))
			}
			b.WriteString("\n")
		}
		if blk.thetaFast {
			for _, phi := range blk.phis {
				for _, theta := range blk.thetas {
					row(theta, phi)
				}
			}
		} else {
			for _, theta := range blk.thetas {
				for _, phi := range blk.phis {
					row(theta, phi)
				}
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// withMarkers prefixes every "#Request Name" line with a configuration
// marker so the file splits into one section per block.
func withMarkers(text string) string {
	return strings.ReplaceAll(text, "#Request Name:", "#Configuration Name: StandardConfiguration1\n#Request Name:")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// countingSource records how often each path is read.
type countingSource struct {
	mu    sync.Mutex
	inner Source
	reads map[string]int
}

func newCountingSource() *countingSource {
	return &countingSource{inner: FileSource{}, reads: make(map[string]int)}
}

func (s *countingSource) ReadLines(ctx context.Context, path string) ([]string, error) {
	s.mu.Lock()
	s.reads[path]++
	s.mu.Unlock()
	return s.inner.ReadLines(ctx, path)
}

func (s *countingSource) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads[path]
}

// gatedSource holds its first read until release is closed. Later reads go
// straight through.
type gatedSource struct {
	inner   Source
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func newGatedSource() *gatedSource {
	return &gatedSource{inner: FileSource{}, started: make(chan struct{}), release: make(chan struct{})}
}

func (s *gatedSource) ReadLines(ctx context.Context, path string) ([]string, error) {
	if s.calls.Add(1) == 1 {
		close(s.started)
		<-s.release
	}
	return s.inner.ReadLines(ctx, path)
}

// memSource serves file contents from memory.
type memSource map[string]string

func (m memSource) ReadLines(_ context.Context, path string) ([]string, error) {
	text, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("no such file %s", path)
	}
	return strings.Split(text, "\n"), nil
}

func linspace(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}
