package ffe

import "strings"

// SectionMarker starts a new frequency block.
const SectionMarker = "Configuration Name:"

// RawSection is the run of lines belonging to one frequency block.
// StartLine is the one-based file line of Lines[0].
type RawSection struct {
	Index     int
	StartLine int
	Lines     []string
}

// SplitSections cuts a file into sections at every marker line. Lines ahead
// of the first marker are file preamble and are dropped. A file without any
// marker is a single section.
func SplitSections(lines []string) ([]RawSection, error) {
	if isBlank(lines) {
		return nil, newFormatError(StageSplit, -1, ErrNoSections, "file is empty")
	}

	var starts []int
	for i, line := range lines {
		if strings.Contains(line, SectionMarker) {
			starts = append(starts, i)
		}
	}
	if len(starts) == 0 {
		return []RawSection{{Index: 0, StartLine: 1, Lines: lines}}, nil
	}

	sections := make([]RawSection, 0, len(starts))
	for i, start := range starts {
		end := len(lines)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		sections = append(sections, RawSection{
			Index:     i,
			StartLine: start + 1,
			Lines:     lines[start:end],
		})
	}
	return sections, nil
}

func isBlank(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}
