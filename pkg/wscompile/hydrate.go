package wscompile

import (
	"fmt"
	"os"
)

// FileReader reads a file's full contents. Exists as a seam so hydration
// can be tested without touching a real filesystem.
type FileReader interface {
	ReadFile(path string) (string, error)
}

type osFileReader struct{}

func (osFileReader) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// OSFileReader reads from the real filesystem.
func OSFileReader() FileReader {
	return osFileReader{}
}

// HydrateWorkingSet fills in Text for every selected item that doesn't
// already carry it (session and memory spans arrive pre-hydrated). Each
// backing file is read at most once per call via an in-memory cache.
func HydrateWorkingSet(reader FileReader, selected []WSItem) WorkingSet {
	if reader == nil {
		reader = OSFileReader()
	}

	fileCache := make(map[string]string)
	readFailed := make(map[string]bool)
	totalTokens := 0

	for i := range selected {
		item := &selected[i]

		switch item.Metadata.SourceType {
		case SourceSession, SourceMemory:
			totalTokens += item.SpanRef.TokenCost
			continue
		}

		content, cached := fileCache[item.Metadata.Filepath]
		if !cached {
			read, err := reader.ReadFile(item.Metadata.Filepath)
			if err != nil {
				content = fmt.Sprintf("[ERROR: Could not read %s - %v]", item.Metadata.Filepath, err)
				readFailed[item.Metadata.Filepath] = true
			} else {
				content = read
			}
			fileCache[item.Metadata.Filepath] = content
		}

		if readFailed[item.Metadata.Filepath] {
			item.Text = content
		} else {
			item.Text = sliceByCharOffset(content, item.SpanRef, item.Metadata.Filepath)
		}
		totalTokens += item.SpanRef.TokenCost
	}

	return WorkingSet{Spans: selected, TotalTokens: totalTokens}
}

// sliceByCharOffset slices content by character offsets rather than byte
// offsets, since char_start/char_end are defined over runes, and clamps
// char_end rather than rejecting it, since upstream offsets are computed
// against a possibly-stale copy of the file.
func sliceByCharOffset(content string, ref SpanRef, filepath string) string {
	chars := []rune(content)
	totalChars := len(chars)

	if ref.CharStart >= totalChars {
		return fmt.Sprintf("[ERROR: Span offset %d-%d out of bounds for file %s (%d chars)]",
			ref.CharStart, ref.CharEnd, filepath, totalChars)
	}

	end := ref.CharEnd
	if end > totalChars {
		end = totalChars
	}
	if end < ref.CharStart {
		end = ref.CharStart
	}

	return string(chars[ref.CharStart:end])
}

// ComputeSourceDistribution tallies tokens per doc_version_id across the
// final working set, for reporting in CompileStats.
func ComputeSourceDistribution(ws WorkingSet) map[string]int {
	dist := make(map[string]int)
	for _, item := range ws.Spans {
		dist[item.SpanRef.DocVersionID] += item.SpanRef.TokenCost
	}
	return dist
}
