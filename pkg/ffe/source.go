package ffe

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// ObjectScheme prefixes paths that live in object storage.
const ObjectScheme = "s3://"

// Source yields the lines of an FFE file. Implementations must be safe for
// concurrent use; the parser reads several files at once.
type Source interface {
	ReadLines(ctx context.Context, path string) ([]string, error)
}

// FileSource reads files from the local filesystem.
type FileSource struct{}

// ReadLines reads path and splits it into lines without terminators.
func (FileSource) ReadLines(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	lines, err := scanLines(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}

// Fetcher downloads an object by key. storage.S3Service satisfies it.
type Fetcher interface {
	DownloadFile(ctx context.Context, key string) ([]byte, error)
}

// ObjectSource reads "s3://key" paths through a Fetcher.
type ObjectSource struct {
	Fetcher Fetcher
}

// ReadLines downloads the object named by path and splits it into lines.
func (s ObjectSource) ReadLines(ctx context.Context, path string) ([]string, error) {
	key := strings.TrimPrefix(path, ObjectScheme)
	if key == "" {
		return nil, fmt.Errorf("empty object key in %q", path)
	}
	data, err := s.Fetcher.DownloadFile(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	return scanLines(bytes.NewReader(data))
}

// MultiSource sends "s3://" paths to Objects and everything else to Files.
type MultiSource struct {
	Files   Source
	Objects Source
}

func (m MultiSource) ReadLines(ctx context.Context, path string) ([]string, error) {
	if strings.HasPrefix(path, ObjectScheme) {
		if m.Objects == nil {
			return nil, fmt.Errorf("no object storage configured for %s", path)
		}
		return m.Objects.ReadLines(ctx, path)
	}
	if m.Files == nil {
		return nil, fmt.Errorf("no file source configured for %s", path)
	}
	return m.Files.ReadLines(ctx, path)
}

// scanLines splits on '\n', drops a trailing '\r' and discards bytes that
// are not valid UTF-8.
func scanLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		lines = append(lines, strings.ToValidUTF8(line, ""))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
