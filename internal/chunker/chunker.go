package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the target chunk length in runes.
	DefaultChunkSize = 1000
	// DefaultOverlap is how many trailing runes of one chunk reappear at the
	// start of the next, so that meaning is not lost at chunk boundaries.
	DefaultOverlap = 200
)

// Chunk is a bounded segment of a document's extracted text, the unit of
// embedding and retrieval. Index is the chunk's ordinal within the document,
// starting at 0.
type Chunk struct {
	Index int
	Text  string
}

// Splitter splits document text into overlapping chunks.
// Split points prefer natural boundaries: paragraph break, then line break,
// then sentence end, then word boundary, before falling back to a hard cut.
type Splitter struct {
	chunkSize int
	overlap   int
}

// NewSplitter creates a Splitter. Non-positive or inconsistent arguments fall
// back to the defaults.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultOverlap
		if overlap >= chunkSize {
			overlap = chunkSize / 5
		}
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split chunks text into ordered overlapping segments. Ordinals are contiguous
// from 0. Input that is empty or all whitespace yields no chunks.
// Sizes are measured in runes so multi-byte text never splits mid-character.
func (s *Splitter) Split(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= s.chunkSize {
		return []Chunk{{Index: 0, Text: text}}
	}

	var chunks []Chunk
	start := 0
	for start < len(runes) {
		end := start + s.chunkSize
		if end >= len(runes) {
			chunks = append(chunks, Chunk{Index: len(chunks), Text: string(runes[start:])})
			break
		}

		cut := s.findCut(runes, start, end)
		chunks = append(chunks, Chunk{Index: len(chunks), Text: string(runes[start:cut])})
		start = cut - s.overlap
	}

	return chunks
}

// findCut picks a split point in runes[start:end], preferring natural
// boundaries. The cut must land far enough past start that the overlap step
// still makes forward progress; otherwise the hard limit is used.
func (s *Splitter) findCut(runes []rune, start, end int) int {
	window := string(runes[start:end])
	minCut := start + s.overlap + 1

	for _, boundary := range []string{"\n\n", "\n", ". ", " "} {
		if i := strings.LastIndex(window, boundary); i >= 0 {
			cut := start + utf8.RuneCountInString(window[:i+len(boundary)])
			if cut >= minCut {
				return cut
			}
		}
	}
	return end
}

// Overlap reports the configured overlap length in runes.
func (s *Splitter) Overlap() int { return s.overlap }

// ChunkSize reports the configured target chunk length in runes.
func (s *Splitter) ChunkSize() int { return s.chunkSize }
