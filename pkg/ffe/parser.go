// Package ffe parses FFE far-field exports into farfield datasets.
//
// A file is split into per-frequency sections, each section is decoded into
// a table, its column names are normalised and its rows are reshaped onto a
// regular (theta, phi) grid. Sections from every file are then merged by
// frequency. Rows, sections and files that cannot be decoded are skipped
// with a warning; grid and merge problems fail the whole parse.
package ffe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/RMahshie/farfield/pkg/farfield"
)

// DefaultWorkers bounds how many files are parsed concurrently.
const DefaultWorkers = 4

// Recorder receives parse and cache events. observability.ParserCollector
// implements it for Prometheus.
type Recorder interface {
	ObserveParse(files int, d time.Duration, err error)
	SectionSkipped(stage Stage)
	RowsSkipped(n int)
	DuplicateDiscarded()
	CacheHit()
	CacheMiss()
	CacheEntries(n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveParse(int, time.Duration, error) {}
func (nopRecorder) SectionSkipped(Stage)                   {}
func (nopRecorder) RowsSkipped(int)                        {}
func (nopRecorder) DuplicateDiscarded()                    {}
func (nopRecorder) CacheHit()                              {}
func (nopRecorder) CacheMiss()                             {}
func (nopRecorder) CacheEntries(int)                       {}

// Parser runs the full pipeline over one or more files.
type Parser struct {
	source   Source
	policy   DuplicatePolicy
	workers  int
	logger   zerolog.Logger
	recorder Recorder
}

// Option configures a Parser.
type Option func(*Parser)

// WithSource sets where file contents come from. Defaults to FileSource.
func WithSource(s Source) Option { return func(p *Parser) { p.source = s } }

// WithDuplicatePolicy sets the duplicate-frequency policy. Defaults to FirstWins.
func WithDuplicatePolicy(policy DuplicatePolicy) Option {
	return func(p *Parser) { p.policy = policy }
}

// WithWorkers bounds concurrent file parses; values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(p *Parser) {
		if n < 1 {
			n = 1
		}
		p.workers = n
	}
}

// WithLogger sets the logger for skipped rows and sections.
func WithLogger(l zerolog.Logger) Option { return func(p *Parser) { p.logger = l } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(p *Parser) {
		if r != nil {
			p.recorder = r
		}
	}
}

// NewParser returns a Parser reading local files with first-wins
// de-duplication unless configured otherwise.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		source:   FileSource{},
		policy:   FirstWins,
		workers:  DefaultWorkers,
		logger:   log.Logger,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Policy returns the configured duplicate-frequency policy.
func (p *Parser) Policy() DuplicatePolicy {
	return p.policy
}

// Parse reads every path and merges their sections into one dataset. Files
// are read concurrently but merged in the order given.
func (p *Parser) Parse(ctx context.Context, paths ...string) (*farfield.Dataset, error) {
	start := time.Now()
	ds, err := p.parse(ctx, paths)
	p.recorder.ObserveParse(len(paths), time.Since(start), err)
	return ds, err
}

func (p *Parser) parse(ctx context.Context, paths []string) (*farfield.Dataset, error) {
	if len(paths) == 0 {
		return nil, errors.New("no input files")
	}

	perFile := make([][]*GridSlice, len(paths))
	unusable := make([]error, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			slices, err := p.ParseFile(gctx, path)
			if errors.Is(err, ErrNoSections) {
				// An empty file only drops out of the batch.
				unusable[i] = err
				p.recorder.SectionSkipped(StageSplit)
				p.logger.Warn().Err(err).Str("path", path).Msg("Skipping file without usable sections")
				return nil
			}
			if err != nil {
				return err
			}
			perFile[i] = slices
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []*GridSlice
	for _, slices := range perFile {
		all = append(all, slices...)
	}
	if len(all) == 0 {
		if len(paths) == 1 {
			return nil, unusable[0]
		}
		return nil, &FormatError{Stage: StageMerge, Section: -1, Err: ErrNoSections,
			Detail: fmt.Sprintf("none of %d files has a usable section", len(paths))}
	}

	res, err := Merge(all, p.policy)
	if err != nil {
		return nil, err
	}
	for _, d := range res.Discarded {
		p.recorder.DuplicateDiscarded()
		p.logger.Warn().
			Str("path", d.Path).
			Int("section", d.Section).
			Float64("frequency", d.Frequency).
			Str("policy", p.policy.String()).
			Msg("Discarding duplicate frequency section")
	}

	nf, nt, np := res.Dataset.Shape()
	p.logger.Debug().
		Strs("paths", paths).
		Int("frequencies", nf).
		Int("thetas", nt).
		Int("phis", np).
		Int("columns", len(res.Dataset.Columns())).
		Msg("Parsed FFE dataset")
	return res.Dataset, nil
}

// ParseFile reads one file and assembles a GridSlice per usable section.
// Sections that fail to decode or normalise are skipped; a file with no
// usable section, or any section with an invalid grid, is an error.
func (p *Parser) ParseFile(ctx context.Context, path string) ([]*GridSlice, error) {
	lines, err := p.source.ReadLines(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sections, err := SplitSections(lines)
	if err != nil {
		return nil, withPath(err, path)
	}

	var slices []*GridSlice
	for _, sec := range sections {
		table, coords, err := p.decode(path, sec)
		if err != nil {
			var fe *FormatError
			if errors.As(err, &fe) {
				p.recorder.SectionSkipped(fe.Stage)
			}
			p.logger.Warn().Err(err).Str("path", path).Int("section", sec.Index).Msg("Skipping unreadable section")
			continue
		}

		slice, err := AssembleGrid(table, coords)
		if err != nil {
			return nil, withPath(err, path)
		}
		slice.Path = path
		slices = append(slices, slice)
	}

	if len(slices) == 0 {
		return nil, &FormatError{Path: path, Stage: StageSplit, Section: -1, Err: ErrNoSections,
			Detail: fmt.Sprintf("none of %d sections could be decoded", len(sections))}
	}
	return slices, nil
}

func (p *Parser) decode(path string, sec RawSection) (*FrequencyTable, CoordinateColumns, error) {
	table, skipped, err := DecodeSection(sec)
	if len(skipped) > 0 {
		p.recorder.RowsSkipped(len(skipped))
		for _, s := range skipped {
			s.Path = path
			p.logger.Warn().Err(s.Err).Str("path", path).Int("line", s.Line).Str("token", s.Token).Msg("Skipping data row")
		}
	}
	if err != nil {
		return nil, CoordinateColumns{}, withPath(err, path)
	}

	table, coords, err := NormalizeColumns(table)
	if err != nil {
		return nil, CoordinateColumns{}, withPath(err, path)
	}
	return table, coords, nil
}
